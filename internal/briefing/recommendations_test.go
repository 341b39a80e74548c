package briefing

import (
	"testing"
	"time"

	"github.com/ternarybob/meridian/internal/models"
)

func TestExtractRecommendations(t *testing.T) {
	brief := &models.Brief{
		IdeaDesk: []models.IdeaDeskEntry{
			{Action: "buy", Ticker: "nvda", Rationale: "AI capex cycle"},
			{Action: "", Ticker: "XOM", Rationale: "missing action"},
			{Action: "sell", Ticker: "", Rationale: "missing ticker"},
			{Action: "short", Ticker: "arkk", Rationale: ""},
			{Action: "Hedge", Ticker: "Gld", Rationale: "Tail risk"},
		},
	}

	now := time.Now()
	recs := ExtractRecommendations(brief, "analysis_123", now)

	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2 (incomplete entries dropped)", len(recs))
	}

	if recs[0].Action != "BUY" || recs[0].Ticker != "NVDA" {
		t.Errorf("first rec not normalized: %s %s", recs[0].Action, recs[0].Ticker)
	}
	if recs[1].Action != "HEDGE" || recs[1].Ticker != "GLD" {
		t.Errorf("order not preserved: %s %s", recs[1].Action, recs[1].Ticker)
	}

	for _, rec := range recs {
		if rec.AnalysisID != "analysis_123" {
			t.Errorf("missing analysis back-reference on %s", rec.Ticker)
		}
		if rec.ID == "" {
			t.Error("recommendation missing ID")
		}
		if !rec.CreatedAt.Equal(now) {
			t.Error("recommendation timestamp not set")
		}
	}
}

func TestExtractRecommendations_EmptyIdeaDesk(t *testing.T) {
	recs := ExtractRecommendations(&models.Brief{}, "analysis_1", time.Now())
	if len(recs) != 0 {
		t.Errorf("got %d recommendations from empty idea desk", len(recs))
	}
}

func TestExtractRecommendations_WhitespaceOnlyFieldsDropped(t *testing.T) {
	brief := &models.Brief{
		IdeaDesk: []models.IdeaDeskEntry{
			{Action: "  ", Ticker: "SPY", Rationale: "blank action"},
		},
	}
	recs := ExtractRecommendations(brief, "analysis_1", time.Now())
	if len(recs) != 0 {
		t.Errorf("whitespace-only fields must be treated as empty, got %d recs", len(recs))
	}
}
