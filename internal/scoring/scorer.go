package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/ternarybob/meridian/internal/models"
)

// ScoreInput carries everything the scorer needs. IsDuplicate reports whether
// the article's content hash was already observed within the rolling dedup
// window; the scorer applies the penalty but never deletes rows.
type ScoreInput struct {
	Title        string
	Description  string
	SourceDomain string
	SourceName   string
	PublishedAt  time.Time
	Now          time.Time
	IsDuplicate  bool
}

// ScoredArticle holds the five sub-scores and the aggregate. All values are
// in [0,1]; the aggregate is clamped after penalties.
type ScoredArticle struct {
	Trust        float64
	Relevance    float64
	Completeness float64
	Recency      float64
	IsDeals      bool
	IsDuplicate  bool
	Quality      float64
	Bucket       models.Bucket
}

// Score computes the multi-factor quality score and routing bucket for one
// article. Deterministic and pure: no I/O, no failure modes for normal input.
func Score(input ScoreInput) ScoredArticle {
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	result := ScoredArticle{
		Trust:        TrustScore(input.SourceDomain, input.SourceName),
		Relevance:    RelevanceScore(input.Title, input.Description),
		Completeness: CompletenessScore(input.Description),
		Recency:      RecencyScore(input.PublishedAt, now),
		IsDeals:      IsDealsContent(input.Title, input.Description),
		IsDuplicate:  input.IsDuplicate,
	}

	quality := result.Trust*WeightTrust +
		result.Relevance*WeightRelevance +
		result.Recency*WeightRecency +
		result.Completeness*WeightCompleteness

	// Both penalties apply when both trigger (additive behavior)
	if result.IsDuplicate {
		quality -= DuplicatePenalty
	}
	if result.IsDeals {
		quality -= DealsPenalty
	}

	result.Quality = clamp(quality, 0, 1)

	result.Bucket = models.BucketMain
	if result.IsDeals {
		result.Bucket = models.BucketDeals
	}

	return result
}

// TrustScore looks the source up against the curated trust tables.
// Name matches take the high prior first, then domain tables, then the spam
// patterns, falling back to the neutral default.
func TrustScore(sourceDomain, sourceName string) float64 {
	domain := strings.ToLower(strings.TrimSpace(sourceDomain))
	domain = strings.TrimPrefix(domain, "www.")
	name := strings.ToLower(strings.TrimSpace(sourceName))

	if highTrustDomains[domain] || highTrustNames[name] {
		return TrustHigh
	}
	if mediumTrustDomains[domain] {
		return TrustMedium
	}
	for _, pattern := range spamSourcePatterns {
		if pattern.MatchString(domain) || (name != "" && pattern.MatchString(name)) {
			return TrustSpam
		}
	}
	return TrustDefault
}

// RelevanceScore counts keyword hits over title+description and passes them
// through the saturating curve 1-e^(-hits/4).
func RelevanceScore(title, description string) float64 {
	text := strings.ToLower(title + " " + description)

	hits := 0
	for _, keyword := range relevanceKeywords {
		if strings.Contains(text, keyword) {
			hits++
		}
	}

	return 1 - math.Exp(-float64(hits)/RelevanceSaturation)
}

// CompletenessScore scales linearly with description length, clamped to
// [0.1, 1.0], saturating at 240 characters.
func CompletenessScore(description string) float64 {
	length := len([]rune(strings.TrimSpace(description)))
	score := float64(length) / CompletenessSaturation
	return clamp(score, CompletenessFloor, 1.0)
}

// RecencyScore applies exponential half-life decay (24h). Articles with no
// timestamp get a flat default.
func RecencyScore(publishedAt, now time.Time) float64 {
	if publishedAt.IsZero() {
		return RecencyDefault
	}

	ageHours := now.Sub(publishedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}

	return math.Pow(0.5, ageHours/RecencyHalfLifeHours)
}

// IsDealsContent reports whether the article matches any deals/spam pattern.
func IsDealsContent(title, description string) bool {
	text := title + " " + description
	for _, pattern := range dealsPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
