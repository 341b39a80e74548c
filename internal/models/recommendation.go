package models

import "time"

// Recommendation is a normalized trade idea extracted from an accepted brief.
// Action and Ticker are uppercased; AnalysisID references the originating
// Analysis. Immutable after extraction.
type Recommendation struct {
	ID         string `badgerhold:"key"`
	AnalysisID string `badgerholdIndex:"AnalysisID"`
	Action     string
	Ticker     string `badgerholdIndex:"Ticker"`
	Rationale  string
	CreatedAt  time.Time
}
