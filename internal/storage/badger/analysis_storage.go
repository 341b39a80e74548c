package badger

import (
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/meridian/internal/interfaces"
	"github.com/ternarybob/meridian/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// AnalysisStorage implements the AnalysisStorage interface for Badger
type AnalysisStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAnalysisStorage creates a new AnalysisStorage instance
func NewAnalysisStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AnalysisStorage {
	return &AnalysisStorage{
		db:     db,
		logger: logger,
	}
}

func (s *AnalysisStorage) SaveAnalysis(analysis *models.Analysis) error {
	if analysis.ID == "" {
		return fmt.Errorf("analysis ID is required")
	}
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now()
	}

	if err := s.db.Store().Upsert(analysis.ID, analysis); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

func (s *AnalysisStorage) GetAnalysis(id string) (*models.Analysis, error) {
	var analysis models.Analysis
	if err := s.db.Store().Get(id, &analysis); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("analysis not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return &analysis, nil
}

func (s *AnalysisStorage) SaveRecommendations(recs []*models.Recommendation) error {
	for _, rec := range recs {
		if rec.ID == "" {
			return fmt.Errorf("recommendation ID is required")
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = time.Now()
		}
		if err := s.db.Store().Upsert(rec.ID, rec); err != nil {
			return fmt.Errorf("failed to save recommendation: %w", err)
		}
	}
	return nil
}

func (s *AnalysisStorage) ListRecommendations() ([]*models.Recommendation, error) {
	var recs []models.Recommendation
	if err := s.db.Store().Find(&recs, nil); err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CreatedAt.Before(recs[j].CreatedAt)
	})

	result := make([]*models.Recommendation, len(recs))
	for i := range recs {
		result[i] = &recs[i]
	}
	return result, nil
}

func (s *AnalysisStorage) DistinctTickers() ([]string, error) {
	recs, err := s.ListRecommendations()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	tickers := make([]string, 0, len(recs))
	for _, rec := range recs {
		if rec.Ticker == "" {
			continue
		}
		if _, ok := seen[rec.Ticker]; ok {
			continue
		}
		seen[rec.Ticker] = struct{}{}
		tickers = append(tickers, rec.Ticker)
	}
	sort.Strings(tickers)
	return tickers, nil
}
