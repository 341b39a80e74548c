// Package trends detects frequency spikes in article text by comparing a
// short recent window against a longer baseline window. The z-score is an
// approximate Poisson surprise used purely as a ranking heuristic, not a
// statistical significance test.
package trends

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern matches letter-led words of length >= 3. Pure numerics never
// match because the first rune must be a letter.
var tokenPattern = regexp.MustCompile(`[a-z][a-z0-9'-]{2,}`)

// stopWords are excluded from both term and topic counting.
var stopWords = map[string]bool{
	"about": true, "after": true, "all": true, "also": true, "and": true,
	"any": true, "are": true, "because": true, "been": true, "before": true,
	"being": true, "between": true, "both": true, "but": true, "can": true,
	"come": true, "could": true, "day": true, "did": true, "does": true,
	"down": true, "even": true, "first": true, "for": true, "from": true,
	"get": true, "had": true, "has": true, "have": true, "her": true,
	"here": true, "him": true, "his": true, "how": true, "into": true,
	"its": true, "just": true, "like": true, "made": true, "make": true,
	"many": true, "may": true, "more": true, "most": true, "much": true,
	"new": true, "news": true, "not": true, "now": true, "off": true,
	"one": true, "only": true, "other": true, "our": true, "out": true,
	"over": true, "own": true, "said": true, "same": true, "say": true,
	"says": true, "see": true, "she": true, "should": true, "since": true,
	"some": true, "still": true, "such": true, "than": true, "that": true,
	"the": true, "their": true, "them": true, "then": true, "there": true,
	"these": true, "they": true, "this": true, "those": true, "through": true,
	"time": true, "two": true, "under": true, "very": true, "was": true,
	"way": true, "week": true, "well": true, "were": true, "what": true,
	"when": true, "where": true, "which": true, "while": true, "who": true,
	"why": true, "will": true, "with": true, "would": true, "year": true,
	"years": true, "you": true, "your": true,
}

// Tokenize lowercases text and returns the kept tokens in order: letter-led,
// at least three characters, not a stop word.
func Tokenize(text string) []string {
	matches := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		if stopWords[m] {
			continue
		}
		tokens = append(tokens, m)
	}
	return tokens
}

// Bigrams returns adjacent token pairs joined by a space, used for
// topic-level counting.
func Bigrams(tokens []string) []string {
	if len(tokens) < 2 {
		return nil
	}
	grams := make([]string, 0, len(tokens)-1)
	for i := 0; i+1 < len(tokens); i++ {
		grams = append(grams, tokens[i]+" "+tokens[i+1])
	}
	return grams
}

// countTerms tallies term frequency across a corpus of texts.
func countTerms(texts []string, topics bool) map[string]int {
	counts := make(map[string]int)
	for _, text := range texts {
		tokens := Tokenize(text)
		if topics {
			tokens = Bigrams(tokens)
		}
		for _, token := range tokens {
			counts[token]++
		}
	}
	return counts
}

// Spike is one detected term or topic with its surprise score.
type Spike struct {
	Term   string
	Count  int
	ZScore float64
}

// Detector scores recent term frequency against a baseline rate.
// BaselineHours is the span the baseline corpus actually covers; when the
// corpora are disjoint windows it is the baseline window minus the recent one.
type Detector struct {
	MinCount      int
	TopK          int
	RecentHours   float64
	BaselineHours float64
}

// Detect counts tokens independently in the recent and baseline corpora and
// returns the top-K recent terms by Poisson surprise. Terms below MinCount in
// the recent window are ignored. topics switches to bigram counting.
func (d Detector) Detect(recentTexts, baselineTexts []string, topics bool) []Spike {
	recent := countTerms(recentTexts, topics)
	baseline := countTerms(baselineTexts, topics)

	spikes := make([]Spike, 0, len(recent))
	for term, observed := range recent {
		if observed < d.MinCount {
			continue
		}
		rate := float64(baseline[term]) / d.BaselineHours
		expected := rate * d.RecentHours
		z := (float64(observed) - expected) / math.Sqrt(expected+1)
		spikes = append(spikes, Spike{Term: term, Count: observed, ZScore: z})
	}

	// Stable order: z descending, then term for determinism on ties
	sort.Slice(spikes, func(i, j int) bool {
		if spikes[i].ZScore != spikes[j].ZScore {
			return spikes[i].ZScore > spikes[j].ZScore
		}
		return spikes[i].Term < spikes[j].Term
	})

	if d.TopK > 0 && len(spikes) > d.TopK {
		spikes = spikes[:d.TopK]
	}
	return spikes
}
