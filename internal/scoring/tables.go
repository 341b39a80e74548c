package scoring

import "regexp"

// Trust priors by source. Domains are matched on the article's source domain;
// names are matched case-insensitively against the feed's declared source name.
const (
	TrustHigh    = 0.95
	TrustMedium  = 0.70
	TrustSpam    = 0.20
	TrustDefault = 0.48
)

// highTrustDomains is the curated set of wire services and papers of record.
var highTrustDomains = map[string]bool{
	"reuters.com":   true,
	"apnews.com":    true,
	"bloomberg.com": true,
	"ft.com":        true,
	"wsj.com":       true,
	"economist.com": true,
	"cnbc.com":      true,
	"barrons.com":   true,
	"nikkei.com":    true,
	"afr.com":       true,
}

// highTrustNames maps declared source names to the high-trust prior.
var highTrustNames = map[string]bool{
	"reuters":             true,
	"associated press":    true,
	"bloomberg":           true,
	"financial times":     true,
	"wall street journal": true,
}

// mediumTrustDomains covers mainstream outlets with mixed market coverage.
var mediumTrustDomains = map[string]bool{
	"nytimes.com":         true,
	"washingtonpost.com":  true,
	"theguardian.com":     true,
	"bbc.com":             true,
	"bbc.co.uk":           true,
	"cnn.com":             true,
	"forbes.com":          true,
	"marketwatch.com":     true,
	"businessinsider.com": true,
	"yahoo.com":           true,
	"finance.yahoo.com":   true,
	"seekingalpha.com":    true,
	"investing.com":       true,
	"abc.net.au":          true,
}

// spamSourcePatterns penalize content-farm style hosts.
var spamSourcePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\.(top|click|buzz|xyz)$`),
	regexp.MustCompile(`(?i)(press.?release|newswire|sponsored)`),
	regexp.MustCompile(`(?i)(viral|clickbait|gossip)`),
	regexp.MustCompile(`(?i)^blog\.`),
}

// relevanceKeywords is the fixed markets/geopolitics vocabulary. Hits feed a
// saturating curve so extra matches yield diminishing returns.
var relevanceKeywords = []string{
	"market", "stocks", "equities", "bond", "yield", "treasury",
	"fed", "federal reserve", "ecb", "rate", "inflation", "cpi",
	"gdp", "earnings", "revenue", "guidance", "ipo", "merger",
	"acquisition", "oil", "crude", "opec", "gold", "commodity",
	"dollar", "euro", "yen", "currency", "bitcoin", "crypto",
	"etf", "hedge fund", "recession", "tariff", "sanction",
	"geopolitic", "election", "conflict", "ceasefire", "war",
	"china", "taiwan", "ukraine", "middle east", "nato",
	"semiconductor", "chip", "energy", "defense", "central bank",
}

// dealsPatterns route promotional/listicle content to the deals bucket.
var dealsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bdeals?\b`),
	regexp.MustCompile(`(?i)\bdiscount(s|ed)?\b`),
	regexp.MustCompile(`(?i)\bcoupons?\b`),
	regexp.MustCompile(`(?i)\bpromo codes?\b`),
	regexp.MustCompile(`(?i)\b\d+% off\b`),
	regexp.MustCompile(`(?i)\bbest \d+\b`),
	regexp.MustCompile(`(?i)\btop \d+\b`),
	regexp.MustCompile(`(?i)\bhow to\b`),
	regexp.MustCompile(`(?i)\bgift guide\b`),
	regexp.MustCompile(`(?i)\b(black friday|cyber monday|prime day)\b`),
	regexp.MustCompile(`(?i)\bfree shipping\b`),
}

// Aggregate quality weights and penalties. Weights sum to 1; penalties are
// subtracted after weighting and the result is clamped to [0,1].
const (
	WeightTrust        = 0.40
	WeightRelevance    = 0.30
	WeightRecency      = 0.20
	WeightCompleteness = 0.10

	DuplicatePenalty = 0.35
	DealsPenalty     = 0.35

	// RecencyHalfLifeHours is the decay half-life for the recency sub-score.
	RecencyHalfLifeHours = 24.0
	// RecencyDefault applies when no publish timestamp is known.
	RecencyDefault = 0.3

	// CompletenessSaturation is the description length (runes) at which the
	// completeness sub-score reaches 1.0.
	CompletenessSaturation = 240
	CompletenessFloor      = 0.1

	// RelevanceSaturation divides keyword hits inside 1-e^(-hits/k).
	RelevanceSaturation = 4.0
)
