package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/meridian/internal/interfaces"
	"github.com/ternarybob/meridian/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// PriceStorage implements the PriceStorage interface for Badger
type PriceStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewPriceStorage creates a new PriceStorage instance
func NewPriceStorage(db *BadgerDB, logger arbor.ILogger) interfaces.PriceStorage {
	return &PriceStorage{
		db:     db,
		logger: logger,
	}
}

func (s *PriceStorage) UpsertBar(bar *models.PriceBar) error {
	if bar.Symbol == "" || bar.Date.IsZero() {
		return fmt.Errorf("price bar requires symbol and date")
	}
	bar.Key = models.PriceBarKey(bar.Symbol, bar.Date)

	if err := s.db.Store().Upsert(bar.Key, bar); err != nil {
		return fmt.Errorf("failed to save price bar: %w", err)
	}
	return nil
}

func (s *PriceStorage) UpsertBars(bars []*models.PriceBar) error {
	for _, bar := range bars {
		if err := s.UpsertBar(bar); err != nil {
			return err
		}
	}
	return nil
}

func (s *PriceStorage) FirstCloseOnOrAfter(symbol string, date time.Time) (*models.PriceBar, error) {
	var bars []models.PriceBar
	err := s.db.Store().Find(&bars, badgerhold.Where("Symbol").Eq(symbol).And("Date").Ge(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query price bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, nil
	}

	earliest := &bars[0]
	for i := 1; i < len(bars); i++ {
		if bars[i].Date.Before(earliest.Date) {
			earliest = &bars[i]
		}
	}
	return earliest, nil
}

func (s *PriceStorage) GetBar(symbol string, date time.Time) (*models.PriceBar, error) {
	var bar models.PriceBar
	if err := s.db.Store().Get(models.PriceBarKey(symbol, date), &bar); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get price bar: %w", err)
	}
	return &bar, nil
}
