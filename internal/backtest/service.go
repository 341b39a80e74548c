package backtest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/meridian/internal/common"
	"github.com/ternarybob/meridian/internal/interfaces"
	"github.com/ternarybob/meridian/internal/models"
)

// ClosePoint is one daily close supplied by a price source.
type ClosePoint struct {
	Date  time.Time
	Close float64
}

// PriceSource supplies the full daily-close history for a symbol.
type PriceSource interface {
	DailyCloses(ctx context.Context, symbol string) ([]ClosePoint, error)
}

// Service ingests daily closes for every recommended ticker plus the
// benchmarks, then computes per-horizon return and alpha snapshots.
type Service struct {
	analysis   interfaces.AnalysisStorage
	prices     interfaces.PriceStorage
	perf       interfaces.PerformanceStorage
	source     PriceSource
	benchmarks []string
	retry      common.RetryConfig
	backoff    *common.AdaptiveBackoff
	logger     arbor.ILogger
	sourceTag  string
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithRetryConfig overrides the per-symbol fetch retry settings.
func WithRetryConfig(retry common.RetryConfig) ServiceOption {
	return func(s *Service) {
		s.retry = retry
	}
}

// WithAdaptiveBackoff overrides the batch throttle.
func WithAdaptiveBackoff(backoff *common.AdaptiveBackoff) ServiceOption {
	return func(s *Service) {
		s.backoff = backoff
	}
}

// NewService creates a backtest service. benchmarks must name the three
// fixed benchmark symbols.
func NewService(
	analysis interfaces.AnalysisStorage,
	prices interfaces.PriceStorage,
	perf interfaces.PerformanceStorage,
	source PriceSource,
	benchmarks []string,
	logger arbor.ILogger,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		analysis:   analysis,
		prices:     prices,
		perf:       perf,
		source:     source,
		benchmarks: benchmarks,
		retry:      common.NewDefaultRetryConfig(),
		backoff:    common.NewAdaptiveBackoff(100*time.Millisecond, 10*time.Second),
		logger:     logger,
		sourceTag:  "eodhd",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one full backtest pass: price ingestion then snapshot
// computation. Cancellation is cooperative; in-flight units complete but no
// new unit starts once ctx is done.
func (s *Service) Run(ctx context.Context) error {
	tickers, err := s.analysis.DistinctTickers()
	if err != nil {
		return fmt.Errorf("failed to list recommendation tickers: %w", err)
	}

	symbols := make([]string, 0, len(tickers)+len(s.benchmarks))
	for _, ticker := range tickers {
		symbols = append(symbols, QualifySymbol(ticker))
	}
	symbols = append(symbols, s.benchmarks...)

	if err := s.ingestPrices(ctx, symbols); err != nil {
		return err
	}

	return s.computeSnapshots(ctx)
}

// ingestPrices fetches and upserts the close history for each symbol.
// A single failed symbol is skipped after the retry ceiling; sustained
// failures throttle the batch through the adaptive backoff.
func (s *Service) ingestPrices(ctx context.Context, symbols []string) error {
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.backoff.Pause(ctx); err != nil {
			return err
		}

		var closes []ClosePoint
		err := s.retry.Retry(ctx, func() error {
			var fetchErr error
			closes, fetchErr = s.source.DailyCloses(ctx, symbol)
			return fetchErr
		})
		if err != nil {
			s.backoff.Failure()
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Skipping symbol after failed price fetch")
			continue
		}
		s.backoff.Success()

		bars := make([]*models.PriceBar, 0, len(closes))
		for _, point := range closes {
			if point.Close <= 0 {
				// Bad row from provider: skip the unit, never the batch
				continue
			}
			bars = append(bars, &models.PriceBar{
				Key:    models.PriceBarKey(symbol, point.Date),
				Symbol: symbol,
				Date:   point.Date,
				Close:  point.Close,
				Source: s.sourceTag,
			})
		}

		if err := s.prices.UpsertBars(bars); err != nil {
			return fmt.Errorf("failed to upsert price bars for %s: %w", symbol, err)
		}

		s.logger.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("Ingested daily closes")
	}
	return nil
}

// computeSnapshots walks every stored recommendation and writes one snapshot
// per (horizon, benchmark) where price coverage exists. Missing coverage
// skips the affected cell silently.
func (s *Service) computeSnapshots(ctx context.Context) error {
	recs, err := s.analysis.ListRecommendations()
	if err != nil {
		return fmt.Errorf("failed to list recommendations: %w", err)
	}

	computed := 0
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return err
		}

		symbol := QualifySymbol(rec.Ticker)

		entryBar, err := s.prices.FirstCloseOnOrAfter(symbol, dateOnly(rec.CreatedAt))
		if err != nil {
			return fmt.Errorf("entry lookup failed for %s: %w", symbol, err)
		}
		if entryBar == nil {
			continue
		}

		for _, horizon := range Horizons {
			exitBar, err := s.prices.FirstCloseOnOrAfter(symbol, entryBar.Date.AddDate(0, 0, horizon))
			if err != nil {
				return fmt.Errorf("exit lookup failed for %s: %w", symbol, err)
			}
			if exitBar == nil {
				continue
			}

			for _, benchmark := range s.benchmarks {
				benchEntry, err := s.prices.GetBar(benchmark, entryBar.Date)
				if err != nil {
					return fmt.Errorf("benchmark entry lookup failed for %s: %w", benchmark, err)
				}
				benchExit, err := s.prices.GetBar(benchmark, exitBar.Date)
				if err != nil {
					return fmt.Errorf("benchmark exit lookup failed for %s: %w", benchmark, err)
				}
				if benchEntry == nil || benchExit == nil {
					continue
				}

				returns, ok := ComputeReturns(rec.Action, entryBar.Close, exitBar.Close, benchEntry.Close, benchExit.Close)
				if !ok {
					continue
				}

				snapshot := &models.PerformanceSnapshot{
					Key:              models.SnapshotKey(rec.ID, horizon, benchmark),
					RecommendationID: rec.ID,
					HorizonDays:      horizon,
					BenchmarkSymbol:  benchmark,
					RecReturn:        returns.RecReturn,
					BenchmarkReturn:  returns.BenchmarkReturn,
					Alpha:            returns.Alpha,
					ComputedAt:       time.Now(),
				}
				if err := s.perf.UpsertSnapshot(snapshot); err != nil {
					return fmt.Errorf("failed to store snapshot %s: %w", snapshot.Key, err)
				}
				computed++
			}
		}
	}

	s.logger.Info().Int("recommendations", len(recs)).Int("snapshots", computed).Msg("Backtest pass complete")
	return nil
}

// QualifySymbol appends the default exchange suffix to bare tickers so
// recommendation tickers line up with provider symbols.
func QualifySymbol(ticker string) string {
	if strings.Contains(ticker, ".") {
		return ticker
	}
	return ticker + ".US"
}

// dateOnly truncates a timestamp to midnight UTC.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
