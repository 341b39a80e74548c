package models

import "time"

// TrendKind distinguishes single-term trends from topic-level trends.
type TrendKind string

const (
	TrendKindTerm  TrendKind = "term"
	TrendKindTopic TrendKind = "topic"
)

// Trend is one detected frequency spike for a term or topic over a window.
// Identity is (kind, term, window start, window end); reruns over the same
// window overwrite.
type Trend struct {
	Key         string `badgerhold:"key"` // "kind|term|start-unix|end-unix"
	Kind        TrendKind
	Term        string `badgerholdIndex:"Term"`
	WindowStart time.Time
	WindowEnd   time.Time
	Count       int
	ZScore      float64
	ComputedAt  time.Time
}

// TrendKey builds the storage key for a trend window.
func TrendKey(kind TrendKind, term string, start, end time.Time) string {
	return string(kind) + "|" + term + "|" + start.UTC().Format("20060102T150405") + "|" + end.UTC().Format("20060102T150405")
}
