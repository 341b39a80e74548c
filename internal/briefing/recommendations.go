package briefing

import (
	"strings"
	"time"

	"github.com/ternarybob/meridian/internal/common"
	"github.com/ternarybob/meridian/internal/models"
)

// ExtractRecommendations pulls normalized (action, ticker, rationale) tuples
// from an accepted brief's idea desk. Entries missing any required field are
// silently dropped; the rest keep their input order. Action and ticker are
// uppercased and each recommendation references the originating analysis.
func ExtractRecommendations(brief *models.Brief, analysisID string, now time.Time) []*models.Recommendation {
	var recs []*models.Recommendation

	for _, entry := range brief.IdeaDesk {
		action := strings.TrimSpace(entry.Action)
		ticker := strings.TrimSpace(entry.Ticker)
		rationale := strings.TrimSpace(entry.Rationale)
		if action == "" || ticker == "" || rationale == "" {
			continue
		}

		recs = append(recs, &models.Recommendation{
			ID:         common.NewRecommendationID(),
			AnalysisID: analysisID,
			Action:     strings.ToUpper(action),
			Ticker:     strings.ToUpper(ticker),
			Rationale:  rationale,
			CreatedAt:  now,
		})
	}

	return recs
}
