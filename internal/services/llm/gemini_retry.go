package llm

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// GeminiRetryConfig defines retry behavior for Gemini API rate limit
// handling, tuned to Gemini's per-minute quota window.
type GeminiRetryConfig struct {
	MaxRetries int

	// InitialBackoff matches Gemini's quota window reset time.
	InitialBackoff time.Duration

	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// Default retry constants for Gemini API rate limiting, based on an observed
// quota window of ~60 seconds.
const (
	defaultGeminiMaxRetries        = 5
	defaultGeminiInitialBackoff    = 45 * time.Second
	defaultGeminiMaxBackoff        = 90 * time.Second
	defaultGeminiBackoffMultiplier = 1.5
)

// NewDefaultGeminiRetryConfig returns retry settings for Gemini rate limits.
func NewDefaultGeminiRetryConfig() *GeminiRetryConfig {
	return &GeminiRetryConfig{
		MaxRetries:        defaultGeminiMaxRetries,
		InitialBackoff:    defaultGeminiInitialBackoff,
		MaxBackoff:        defaultGeminiMaxBackoff,
		BackoffMultiplier: defaultGeminiBackoffMultiplier,
	}
}

// IsRateLimitError checks if an error is a Gemini rate limit error.
// Matches 429 status codes and RESOURCE_EXHAUSTED errors.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "quota")
}

// retryDelayRegex matches "Please retry in Xs" or "retryDelay:Xs" patterns
var retryDelayRegex = regexp.MustCompile(`(?i)(?:Please retry in |retryDelay[:\s]+)(\d+(?:\.\d+)?)\s*s`)

// ExtractRetryDelay parses the API-suggested retry delay from a Gemini
// error. Returns 0 if no delay is found in the error message.
func ExtractRetryDelay(err error) time.Duration {
	if err == nil {
		return 0
	}

	matches := retryDelayRegex.FindStringSubmatch(err.Error())
	if len(matches) < 2 {
		return 0
	}

	seconds, parseErr := strconv.ParseFloat(matches[1], 64)
	if parseErr != nil {
		return 0
	}

	return time.Duration(seconds * float64(time.Second))
}

// CalculateBackoff computes the backoff duration for a given attempt. An
// API-provided delay (from ExtractRetryDelay) overrides InitialBackoff as
// the base; the result is capped at MaxBackoff.
func (c *GeminiRetryConfig) CalculateBackoff(attempt int, apiDelay time.Duration) time.Duration {
	base := c.InitialBackoff
	if apiDelay > 0 {
		base = apiDelay + 5*time.Second
	}

	multiplier := 1.0
	for i := 0; i < attempt; i++ {
		multiplier *= c.BackoffMultiplier
	}

	backoff := time.Duration(float64(base) * multiplier)
	if backoff > c.MaxBackoff {
		backoff = c.MaxBackoff
	}

	return backoff
}
