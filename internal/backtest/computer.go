package backtest

// Horizons are the fixed holding periods, in calendar days, evaluated for
// every recommendation.
var Horizons = []int{1, 7, 30}

// shortActions invert the raw return. Everything else (BUY, LONG, HOLD,
// HEDGE) is treated as long exposure.
var shortActions = map[string]bool{
	"SELL":  true,
	"SHORT": true,
}

// Returns is the outcome of one (recommendation, horizon, benchmark) cell.
type Returns struct {
	RecReturn       float64
	BenchmarkReturn float64
	Alpha           float64
}

// DirectionMultiplier returns -1 for short-style actions and +1 otherwise.
func DirectionMultiplier(action string) float64 {
	if shortActions[action] {
		return -1
	}
	return 1
}

// ComputeReturns calculates the directional recommendation return, the
// benchmark return, and alpha for one holding period. Non-positive entry
// prices make the computation undefined: ok is false and no snapshot should
// be stored.
func ComputeReturns(action string, entry, exit, benchEntry, benchExit float64) (Returns, bool) {
	if entry <= 0 || benchEntry <= 0 {
		return Returns{}, false
	}

	raw := (exit - entry) / entry
	recReturn := raw * DirectionMultiplier(action)
	benchReturn := (benchExit - benchEntry) / benchEntry

	return Returns{
		RecReturn:       recReturn,
		BenchmarkReturn: benchReturn,
		Alpha:           recReturn - benchReturn,
	}, true
}
