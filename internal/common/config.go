package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment" validate:"oneof=development production"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Feeds       FeedsConfig      `toml:"feeds"`
	Fulltext    FulltextConfig   `toml:"fulltext"`
	Evidence    EvidenceConfig   `toml:"evidence"`
	LLM         LLMConfig        `toml:"llm"`
	Claude      ClaudeConfig     `toml:"claude"`
	Gemini      GeminiConfig     `toml:"gemini"`
	MarketData  MarketDataConfig `toml:"market_data"`
	Trends      TrendsConfig     `toml:"trends"`
	Scheduler   SchedulerConfig  `toml:"scheduler"`
	Report      ReportConfig     `toml:"report"`
	Pipeline    PipelineConfig   `toml:"pipeline"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"`
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// FeedsConfig controls article ingestion
type FeedsConfig struct {
	File            string `toml:"file"`             // YAML file listing feed URLs
	FetchTimeout    string `toml:"fetch_timeout"`    // e.g., "30s" - per-feed HTTP timeout
	DuplicateWindow string `toml:"duplicate_window"` // e.g., "48h" - rolling window for content-hash dedup
	UserAgent       string `toml:"user_agent"`
	MaxPerFeed      int    `toml:"max_per_feed"` // Cap on entries ingested per feed per run
}

// FulltextConfig bounds the fulltext extraction pass
type FulltextConfig struct {
	Enabled        bool    `toml:"enabled"`
	MaxArticles    int     `toml:"max_articles"`     // Articles extracted per run, highest quality first
	MinTrustScore  float64 `toml:"min_trust_score"`  // Only extract from sources at or above this trust
	RequestTimeout string  `toml:"request_timeout"`  // e.g., "30s" - per-page HTTP timeout
	MaxBodySize    int     `toml:"max_body_size"`    // Max response bytes read per page
}

// EvidenceConfig bounds the evidence pack
type EvidenceConfig struct {
	MaxItems         int `toml:"max_items" validate:"min=1"`
	MaxFulltextItems int `toml:"max_fulltext_items" validate:"min=0"`
	FulltextCharCap  int `toml:"fulltext_char_cap" validate:"min=1"`
	ExcerptCharCap   int `toml:"excerpt_char_cap" validate:"min=1"`
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider" validate:"oneof=claude gemini"`
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	RateLimit   string  `toml:"rate_limit"`
	Temperature float32 `toml:"temperature"`
}

// MarketDataConfig contains the daily-close price API configuration
type MarketDataConfig struct {
	APIKey     string   `toml:"api_key"`
	BaseURL    string   `toml:"base_url"`
	RateLimit  int      `toml:"rate_limit"` // Requests per second
	Benchmarks []string `toml:"benchmarks" validate:"len=3"`
}

// TrendsConfig controls the trend detector windows
type TrendsConfig struct {
	RecentHours   float64 `toml:"recent_hours" validate:"gt=0"`
	BaselineHours float64 `toml:"baseline_hours" validate:"gt=0"`
	MinCount      int     `toml:"min_count" validate:"min=1"`
	TopK          int     `toml:"top_k" validate:"min=1"`
}

// SchedulerConfig controls cron-scheduled pipeline runs in serve mode
type SchedulerConfig struct {
	Enabled          bool   `toml:"enabled"`
	PipelineSchedule string `toml:"pipeline_schedule"` // Cron schedule format
	BacktestSchedule string `toml:"backtest_schedule"`
	TrendsSchedule   string `toml:"trends_schedule"`
}

// ReportConfig controls optional PDF export of accepted briefs
type ReportConfig struct {
	PDFEnabled bool   `toml:"pdf_enabled"`
	OutputDir  string `toml:"output_dir"`
}

// PipelineConfig controls run-level resource behavior
type PipelineConfig struct {
	LockFile      string `toml:"lock_file"`       // Process-exclusive run lock path
	BatchSize     int    `toml:"batch_size"`      // Articles per storage batch
	MaxRetries    int    `toml:"max_retries"`     // Retry ceiling for external calls
	RetryBaseMS   int    `toml:"retry_base_ms"`   // Initial retry backoff in milliseconds
	RetryMaxMS    int    `toml:"retry_max_ms"`    // Retry backoff ceiling in milliseconds
	APICallBudget int    `toml:"api_call_budget"` // Sliding-window call budget per API
	APIWindowSecs int    `toml:"api_window_secs"` // Sliding-window length in seconds
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in meridian.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Feeds: FeedsConfig{
			File:            "./feeds.yaml",
			FetchTimeout:    "30s",
			DuplicateWindow: "48h",
			UserAgent:       "Mozilla/5.0 (compatible; Meridian/1.0)",
			MaxPerFeed:      50,
		},
		Fulltext: FulltextConfig{
			Enabled:        true,
			MaxArticles:    8,
			MinTrustScore:  0.70,
			RequestTimeout: "30s",
			MaxBodySize:    5 * 1024 * 1024, // 5MB
		},
		Evidence: EvidenceConfig{
			MaxItems:         12,
			MaxFulltextItems: 5,
			FulltextCharCap:  2800,
			ExcerptCharCap:   600,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderClaude,
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   8192,
			Timeout:     "5m",
			Temperature: 0.7,
		},
		Gemini: GeminiConfig{
			APIKey:      "",
			Model:       "gemini-3-flash-preview",
			Timeout:     "5m",
			RateLimit:   "4s",
			Temperature: 0.7,
		},
		MarketData: MarketDataConfig{
			APIKey:     "",
			BaseURL:    "https://eodhd.com/api",
			RateLimit:  10,
			Benchmarks: []string{"SPY.US", "QQQ.US", "IWM.US"},
		},
		Trends: TrendsConfig{
			RecentHours:   6,
			BaselineHours: 168, // 7 days
			MinCount:      3,
			TopK:          20,
		},
		Scheduler: SchedulerConfig{
			Enabled:          false,
			PipelineSchedule: "0 */4 * * *", // Every 4 hours (cron format)
			BacktestSchedule: "30 22 * * *", // Daily after US close
			TrendsSchedule:   "15 * * * *",  // Hourly
		},
		Report: ReportConfig{
			PDFEnabled: false,
			OutputDir:  "./reports",
		},
		Pipeline: PipelineConfig{
			LockFile:      "./data/meridian.lock",
			BatchSize:     50,
			MaxRetries:    4,
			RetryBaseMS:   500,
			RetryMaxMS:    30000,
			APICallBudget: 60,
			APIWindowSecs: 60,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against struct tags and verifies that
// every duration-valued string parses.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	durations := map[string]string{
		"feeds.fetch_timeout":      c.Feeds.FetchTimeout,
		"feeds.duplicate_window":   c.Feeds.DuplicateWindow,
		"fulltext.request_timeout": c.Fulltext.RequestTimeout,
		"claude.timeout":           c.Claude.Timeout,
		"gemini.timeout":           c.Gemini.Timeout,
		"gemini.rate_limit":        c.Gemini.RateLimit,
	}
	for key, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid configuration: %s %q is not a valid duration", key, value)
		}
	}
	return nil
}

// ParseDurationOr parses a duration-valued config string, falling back when
// the value is empty or malformed.
func ParseDurationOr(value string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return fallback
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("MERIDIAN_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if badgerPath := os.Getenv("MERIDIAN_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("MERIDIAN_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("MERIDIAN_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	if feedsFile := os.Getenv("MERIDIAN_FEEDS_FILE"); feedsFile != "" {
		config.Feeds.File = feedsFile
	}

	// API keys: environment always wins so secrets can stay out of config files
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("MERIDIAN_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if apiKey := os.Getenv("MERIDIAN_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if apiKey := os.Getenv("MERIDIAN_MARKET_DATA_API_KEY"); apiKey != "" {
		config.MarketData.APIKey = apiKey
	}

	if provider := os.Getenv("MERIDIAN_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}

	if lockFile := os.Getenv("MERIDIAN_LOCK_FILE"); lockFile != "" {
		config.Pipeline.LockFile = lockFile
	}

	if batchSize := os.Getenv("MERIDIAN_BATCH_SIZE"); batchSize != "" {
		if b, err := strconv.Atoi(batchSize); err == nil && b > 0 {
			config.Pipeline.BatchSize = b
		}
	}
}
