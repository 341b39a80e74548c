package models

import (
	"strconv"
	"time"
)

// PriceBar is one daily close for a symbol. The (Symbol, Date) pair is the
// identity; re-ingesting the same pair overwrites with the latest fetch.
type PriceBar struct {
	Key    string `badgerhold:"key"` // "SYMBOL|2006-01-02"
	Symbol string `badgerholdIndex:"Symbol"`
	Date   time.Time
	Close  float64
	Source string
}

// PriceBarKey builds the storage key for a (symbol, date) pair.
func PriceBarKey(symbol string, date time.Time) string {
	return symbol + "|" + date.Format("2006-01-02")
}

// PerformanceSnapshot holds the backtest result for one recommendation at one
// horizon against one benchmark. Recomputed (overwritten) on rerun.
type PerformanceSnapshot struct {
	Key              string `badgerhold:"key"` // "rec|horizon|benchmark"
	RecommendationID string `badgerholdIndex:"RecommendationID"`
	HorizonDays      int
	BenchmarkSymbol  string
	RecReturn        float64
	BenchmarkReturn  float64
	Alpha            float64
	ComputedAt       time.Time
}

// SnapshotKey builds the storage key for a performance snapshot.
func SnapshotKey(recommendationID string, horizonDays int, benchmark string) string {
	return recommendationID + "|" + strconv.Itoa(horizonDays) + "|" + benchmark
}
