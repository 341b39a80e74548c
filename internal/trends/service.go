package trends

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/meridian/internal/common"
	"github.com/ternarybob/meridian/internal/interfaces"
	"github.com/ternarybob/meridian/internal/models"
)

// Service runs term and topic trend detection over stored articles and
// persists the resulting windows.
type Service struct {
	articles interfaces.ArticleStorage
	trends   interfaces.TrendStorage
	config   common.TrendsConfig
	logger   arbor.ILogger
}

// NewService creates a trend detection service.
func NewService(
	articles interfaces.ArticleStorage,
	trends interfaces.TrendStorage,
	config common.TrendsConfig,
	logger arbor.ILogger,
) *Service {
	return &Service{
		articles: articles,
		trends:   trends,
		config:   config,
		logger:   logger,
	}
}

// Run detects trends for the window ending at now and stores them. The
// recent corpus is the last RecentHours of articles; the baseline corpus is
// everything older within BaselineHours.
func (s *Service) Run(ctx context.Context, now time.Time) error {
	baselineStart := now.Add(-time.Duration(s.config.BaselineHours * float64(time.Hour)))
	recentStart := now.Add(-time.Duration(s.config.RecentHours * float64(time.Hour)))

	articles, err := s.articles.RecentSince(baselineStart)
	if err != nil {
		return fmt.Errorf("failed to load trend corpus: %w", err)
	}

	var recentTexts, baselineTexts []string
	for _, article := range articles {
		text := article.Title + " " + article.Description
		if article.BestTimestamp().Before(recentStart) {
			baselineTexts = append(baselineTexts, text)
		} else {
			recentTexts = append(recentTexts, text)
		}
	}

	// The baseline corpus excludes the recent window, so the rate divides by
	// the span the corpus actually covers
	baselineSpan := s.config.BaselineHours - s.config.RecentHours
	if baselineSpan <= 0 {
		baselineSpan = s.config.BaselineHours
	}

	detector := Detector{
		MinCount:      s.config.MinCount,
		TopK:          s.config.TopK,
		RecentHours:   s.config.RecentHours,
		BaselineHours: baselineSpan,
	}

	kinds := []struct {
		kind   models.TrendKind
		topics bool
	}{
		{models.TrendKindTerm, false},
		{models.TrendKindTopic, true},
	}

	for _, k := range kinds {
		if err := ctx.Err(); err != nil {
			return err
		}

		spikes := detector.Detect(recentTexts, baselineTexts, k.topics)
		for _, spike := range spikes {
			trend := &models.Trend{
				Key:         models.TrendKey(k.kind, spike.Term, recentStart, now),
				Kind:        k.kind,
				Term:        spike.Term,
				WindowStart: recentStart,
				WindowEnd:   now,
				Count:       spike.Count,
				ZScore:      spike.ZScore,
				ComputedAt:  now,
			}
			if err := s.trends.UpsertTrend(trend); err != nil {
				return fmt.Errorf("failed to store %s trend %q: %w", k.kind, spike.Term, err)
			}
		}

		s.logger.Info().
			Str("kind", string(k.kind)).
			Int("recent_articles", len(recentTexts)).
			Int("spikes", len(spikes)).
			Msg("Trend detection pass complete")
	}

	return nil
}
