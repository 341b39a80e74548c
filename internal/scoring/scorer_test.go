package scoring

import (
	"strings"
	"testing"
	"time"

	"github.com/ternarybob/meridian/internal/models"
)

func TestTrustScore(t *testing.T) {
	tests := []struct {
		name         string
		sourceDomain string
		sourceName   string
		want         float64
	}{
		{"high trust domain", "reuters.com", "", TrustHigh},
		{"high trust domain with www", "www.bloomberg.com", "", TrustHigh},
		{"high trust name", "some-syndicator.com", "Reuters", TrustHigh},
		{"medium trust domain", "marketwatch.com", "", TrustMedium},
		{"spam tld", "hotstocks.click", "", TrustSpam},
		{"press release host", "globalnewswire.example.com", "", TrustSpam},
		{"unknown source", "localpaper.example.org", "", TrustDefault},
		{"empty source", "", "", TrustDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrustScore(tt.sourceDomain, tt.sourceName)
			if got != tt.want {
				t.Errorf("TrustScore(%q, %q) = %v, want %v", tt.sourceDomain, tt.sourceName, got, tt.want)
			}
		})
	}
}

func TestRelevanceScore(t *testing.T) {
	zero := RelevanceScore("Local bake sale raises funds", "Cupcakes were popular.")
	if zero != 0 {
		t.Errorf("no keyword hits should score 0, got %v", zero)
	}

	one := RelevanceScore("Markets rally", "")
	if one <= 0 || one >= 1 {
		t.Errorf("single hit should be in (0,1), got %v", one)
	}

	many := RelevanceScore(
		"Fed rate decision lifts stocks as inflation cools",
		"Treasury yields fell while oil and gold rose on tariff news and earnings beats.",
	)
	if many <= one {
		t.Errorf("more hits must score higher: %v <= %v", many, one)
	}
	if many >= 1 {
		t.Errorf("relevance must saturate below 1, got %v", many)
	}

	// Diminishing returns: hits beyond saturation barely move the score
	saturated := RelevanceScore(strings.Join(relevanceKeywords, " "), "")
	if saturated >= 1 {
		t.Errorf("relevance must stay below 1 even with every keyword, got %v", saturated)
	}
}

func TestCompletenessScore(t *testing.T) {
	if got := CompletenessScore(""); got != CompletenessFloor {
		t.Errorf("empty description should hit the floor, got %v", got)
	}
	if got := CompletenessScore(strings.Repeat("a", 240)); got != 1.0 {
		t.Errorf("saturation length should score 1.0, got %v", got)
	}
	if got := CompletenessScore(strings.Repeat("a", 1000)); got != 1.0 {
		t.Errorf("long description should clamp at 1.0, got %v", got)
	}
	mid := CompletenessScore(strings.Repeat("a", 120))
	if mid < 0.45 || mid > 0.55 {
		t.Errorf("half saturation should score ~0.5, got %v", mid)
	}
}

func TestRecencyScore(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if got := RecencyScore(time.Time{}, now); got != RecencyDefault {
		t.Errorf("missing timestamp should use default, got %v", got)
	}
	if got := RecencyScore(now, now); got != 1.0 {
		t.Errorf("fresh article should score 1.0, got %v", got)
	}

	halfLife := RecencyScore(now.Add(-24*time.Hour), now)
	if halfLife < 0.49 || halfLife > 0.51 {
		t.Errorf("24h old article should score ~0.5, got %v", halfLife)
	}

	// Future timestamps are treated as current, not boosted
	if got := RecencyScore(now.Add(2*time.Hour), now); got != 1.0 {
		t.Errorf("future timestamp should score 1.0, got %v", got)
	}
}

func TestIsDealsContent(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  bool
	}{
		{"deal keyword", "Amazon deals on laptops this week", true},
		{"percent off", "Get 40% off noise cancelling headphones", true},
		{"best n listicle", "Best 10 credit cards for travel", true},
		{"how to", "How to refinance your mortgage", true},
		{"black friday", "Black Friday TV picks", true},
		{"market news", "Fed holds rates steady amid inflation concerns", false},
		{"merger news", "Chipmaker agrees to acquisition by rival", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDealsContent(tt.title, ""); got != tt.want {
				t.Errorf("IsDealsContent(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}

func TestScore_AggregateBounds(t *testing.T) {
	now := time.Now()

	// Worst case: spam source, no relevance, duplicate, deals content
	worst := Score(ScoreInput{
		Title:        "Best 5 deals with free shipping",
		SourceDomain: "spam.click",
		Now:          now,
		IsDuplicate:  true,
	})
	if worst.Quality < 0 || worst.Quality > 1 {
		t.Errorf("quality out of bounds: %v", worst.Quality)
	}
	if worst.Quality != 0 {
		t.Errorf("double-penalized junk should floor at 0, got %v", worst.Quality)
	}

	// Best case: trusted, relevant, fresh, complete
	best := Score(ScoreInput{
		Title:        "Fed cuts rates as inflation slows; markets and treasury yields react",
		Description:  strings.Repeat("Central bank policy shifted markedly on earnings and gdp data. ", 5),
		SourceDomain: "reuters.com",
		PublishedAt:  now,
		Now:          now,
	})
	if best.Quality < 0 || best.Quality > 1 {
		t.Errorf("quality out of bounds: %v", best.Quality)
	}
	if best.Quality < 0.8 {
		t.Errorf("ideal article should score high, got %v", best.Quality)
	}
	if best.Bucket != models.BucketMain {
		t.Errorf("bucket = %v, want main", best.Bucket)
	}
}

func TestScore_DealsRouting(t *testing.T) {
	scored := Score(ScoreInput{
		Title:        "Top 10 deals on market data terminals",
		SourceDomain: "reuters.com",
		PublishedAt:  time.Now(),
	})

	if scored.Bucket != models.BucketDeals {
		t.Errorf("deals content must route to deals bucket, got %v", scored.Bucket)
	}
	if !scored.IsDeals {
		t.Error("IsDeals flag not set")
	}

	clean := Score(ScoreInput{
		Title:        "Fed holds rates steady",
		SourceDomain: "reuters.com",
		PublishedAt:  time.Now(),
	})
	if clean.Quality <= scored.Quality {
		t.Errorf("deals penalty must reduce quality: clean %v <= deals %v", clean.Quality, scored.Quality)
	}
}

func TestScore_DuplicatePenalty(t *testing.T) {
	input := ScoreInput{
		Title:        "Oil prices surge on opec supply cut",
		Description:  "Crude futures jumped after the cartel announced deeper cuts.",
		SourceDomain: "reuters.com",
		PublishedAt:  time.Now(),
	}

	fresh := Score(input)

	input.IsDuplicate = true
	dup := Score(input)

	diff := fresh.Quality - dup.Quality
	if diff < DuplicatePenalty-0.001 || diff > DuplicatePenalty+0.001 {
		t.Errorf("duplicate penalty should subtract %v, subtracted %v", DuplicatePenalty, diff)
	}
}
