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

// PerformanceStorage implements the PerformanceStorage interface for Badger
type PerformanceStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewPerformanceStorage creates a new PerformanceStorage instance
func NewPerformanceStorage(db *BadgerDB, logger arbor.ILogger) interfaces.PerformanceStorage {
	return &PerformanceStorage{
		db:     db,
		logger: logger,
	}
}

func (s *PerformanceStorage) UpsertSnapshot(snapshot *models.PerformanceSnapshot) error {
	if snapshot.RecommendationID == "" {
		return fmt.Errorf("snapshot recommendation ID is required")
	}
	snapshot.Key = models.SnapshotKey(snapshot.RecommendationID, snapshot.HorizonDays, snapshot.BenchmarkSymbol)
	if snapshot.ComputedAt.IsZero() {
		snapshot.ComputedAt = time.Now()
	}

	if err := s.db.Store().Upsert(snapshot.Key, snapshot); err != nil {
		return fmt.Errorf("failed to save performance snapshot: %w", err)
	}
	return nil
}

func (s *PerformanceStorage) ListByRecommendation(recommendationID string) ([]*models.PerformanceSnapshot, error) {
	var snapshots []models.PerformanceSnapshot
	err := s.db.Store().Find(&snapshots, badgerhold.Where("RecommendationID").Eq(recommendationID))
	if err != nil {
		return nil, fmt.Errorf("failed to list performance snapshots: %w", err)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].HorizonDays != snapshots[j].HorizonDays {
			return snapshots[i].HorizonDays < snapshots[j].HorizonDays
		}
		return snapshots[i].BenchmarkSymbol < snapshots[j].BenchmarkSymbol
	})

	result := make([]*models.PerformanceSnapshot, len(snapshots))
	for i := range snapshots {
		result[i] = &snapshots[i]
	}
	return result, nil
}
