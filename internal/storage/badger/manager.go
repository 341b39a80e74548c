package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/meridian/internal/common"
	"github.com/ternarybob/meridian/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db          *BadgerDB
	article     interfaces.ArticleStorage
	analysis    interfaces.AnalysisStorage
	price       interfaces.PriceStorage
	performance interfaces.PerformanceStorage
	trend       interfaces.TrendStorage
	logger      arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:          db,
		article:     NewArticleStorage(db, logger),
		analysis:    NewAnalysisStorage(db, logger),
		price:       NewPriceStorage(db, logger),
		performance: NewPerformanceStorage(db, logger),
		trend:       NewTrendStorage(db, logger),
		logger:      logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// ArticleStorage returns the Article storage interface
func (m *Manager) ArticleStorage() interfaces.ArticleStorage {
	return m.article
}

// AnalysisStorage returns the Analysis storage interface
func (m *Manager) AnalysisStorage() interfaces.AnalysisStorage {
	return m.analysis
}

// PriceStorage returns the Price storage interface
func (m *Manager) PriceStorage() interfaces.PriceStorage {
	return m.price
}

// PerformanceStorage returns the Performance storage interface
func (m *Manager) PerformanceStorage() interfaces.PerformanceStorage {
	return m.performance
}

// TrendStorage returns the Trend storage interface
func (m *Manager) TrendStorage() interfaces.TrendStorage {
	return m.trend
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
