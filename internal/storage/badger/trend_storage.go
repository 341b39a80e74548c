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

// TrendStorage implements the TrendStorage interface for Badger
type TrendStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewTrendStorage creates a new TrendStorage instance
func NewTrendStorage(db *BadgerDB, logger arbor.ILogger) interfaces.TrendStorage {
	return &TrendStorage{
		db:     db,
		logger: logger,
	}
}

func (s *TrendStorage) UpsertTrend(trend *models.Trend) error {
	if trend.Term == "" {
		return fmt.Errorf("trend term is required")
	}
	trend.Key = models.TrendKey(trend.Kind, trend.Term, trend.WindowStart, trend.WindowEnd)
	if trend.ComputedAt.IsZero() {
		trend.ComputedAt = time.Now()
	}

	if err := s.db.Store().Upsert(trend.Key, trend); err != nil {
		return fmt.Errorf("failed to save trend: %w", err)
	}
	return nil
}

func (s *TrendStorage) ListTrends(kind models.TrendKind, limit int) ([]*models.Trend, error) {
	var trends []models.Trend
	err := s.db.Store().Find(&trends, badgerhold.Where("Kind").Eq(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list trends: %w", err)
	}

	sort.Slice(trends, func(i, j int) bool {
		return trends[i].ZScore > trends[j].ZScore
	})
	if limit > 0 && len(trends) > limit {
		trends = trends[:limit]
	}

	result := make([]*models.Trend, len(trends))
	for i := range trends {
		result[i] = &trends[i]
	}
	return result, nil
}
