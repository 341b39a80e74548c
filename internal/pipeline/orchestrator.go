// Package pipeline orchestrates one end-to-end run: ingest feeds, score and
// bucket articles, extract fulltext, assemble the evidence pack, generate a
// brief, and persist the accepted analysis with its recommendations.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/meridian/internal/briefing"
	"github.com/ternarybob/meridian/internal/common"
	"github.com/ternarybob/meridian/internal/evidence"
	"github.com/ternarybob/meridian/internal/feeds"
	"github.com/ternarybob/meridian/internal/fulltext"
	"github.com/ternarybob/meridian/internal/interfaces"
	"github.com/ternarybob/meridian/internal/marketdata"
	"github.com/ternarybob/meridian/internal/models"
	"github.com/ternarybob/meridian/internal/scoring"
)

// evidenceWindow bounds how far back the evidence pack looks for candidates.
const evidenceWindow = 24 * time.Hour

// BriefReporter renders an accepted brief to a file. Optional.
type BriefReporter interface {
	WriteBrief(brief *models.Brief, analysisID string, createdAt time.Time) (string, error)
}

// RunStats summarizes one pipeline run.
type RunStats struct {
	Ingest          feeds.IngestStats
	Scored          int
	Extracted       int
	EvidenceItems   int
	AnalysisID      string
	Recommendations int
	Repaired        bool
}

// Orchestrator wires the pipeline stages over one storage manager. A run is
// process-exclusive: the run lock is taken before any side effect and a
// second invocation fails fast with common.ErrLockHeld.
type Orchestrator struct {
	storage   interfaces.StorageManager
	config    *common.Config
	ingestor  *feeds.Ingestor
	extractor *fulltext.Extractor
	generator *briefing.Generator
	news      *marketdata.Client
	reporter  BriefReporter
	limiter   *common.SlidingWindowLimiter
	logger    arbor.ILogger
	now       func() time.Time
}

// WithReporter attaches an optional brief reporter invoked after a run's
// analysis is stored.
func (o *Orchestrator) WithReporter(reporter BriefReporter) *Orchestrator {
	o.reporter = reporter
	return o
}

// NewOrchestrator creates a pipeline orchestrator. news may be nil when no
// market-data API key is configured; provider news ingestion is skipped.
func NewOrchestrator(
	storage interfaces.StorageManager,
	config *common.Config,
	llm interfaces.LLMService,
	news *marketdata.Client,
	logger arbor.ILogger,
) *Orchestrator {
	return &Orchestrator{
		storage:   storage,
		config:    config,
		ingestor:  feeds.NewIngestor(storage.ArticleStorage(), config.Feeds, logger),
		extractor: fulltext.NewExtractor(storage.ArticleStorage(), config.Fulltext, logger),
		generator: briefing.NewGenerator(llm, logger),
		news:      news,
		limiter: common.NewSlidingWindowLimiter(
			config.Pipeline.APICallBudget,
			time.Duration(config.Pipeline.APIWindowSecs)*time.Second,
		),
		logger: logger,
		now:    time.Now,
	}
}

// Run executes one full pipeline pass under the run lock.
func (o *Orchestrator) Run(ctx context.Context) (*RunStats, error) {
	lock, err := common.AcquireRunLock(o.config.Pipeline.LockFile)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	start := o.now()
	stats := &RunStats{}

	o.logger.Info().Msg("Pipeline run starting")

	if err := o.ingest(ctx, stats); err != nil {
		return stats, err
	}
	if err := o.score(ctx, stats); err != nil {
		return stats, err
	}

	extracted, err := o.extractor.Run(ctx)
	if err != nil {
		return stats, fmt.Errorf("fulltext stage failed: %w", err)
	}
	stats.Extracted = extracted

	if err := o.brief(ctx, stats); err != nil {
		return stats, err
	}

	o.logger.Info().
		Int("added", stats.Ingest.Added).
		Int("scored", stats.Scored).
		Int("extracted", stats.Extracted).
		Int("recommendations", stats.Recommendations).
		Str("analysis_id", stats.AnalysisID).
		Dur("duration", o.now().Sub(start)).
		Msg("Pipeline run complete")

	return stats, nil
}

// ingest pulls the configured RSS/Atom feeds and, when a market-data client
// is available, provider news for previously recommended tickers. Both paths
// share the canonical-URL identity so cross-source duplicates collapse.
func (o *Orchestrator) ingest(ctx context.Context, stats *RunStats) error {
	ingestStats, err := o.ingestor.IngestAll(ctx)
	if err != nil {
		return fmt.Errorf("feed ingestion failed: %w", err)
	}
	stats.Ingest = ingestStats

	if o.news == nil {
		return nil
	}

	tickers, err := o.storage.AnalysisStorage().DistinctTickers()
	if err != nil {
		return fmt.Errorf("failed to list tickers for provider news: %w", err)
	}
	if len(tickers) == 0 {
		return nil
	}

	if err := o.limiter.Wait(ctx); err != nil {
		return err
	}
	items, err := o.news.GetNews(ctx, tickers)
	if err != nil {
		// Provider news is supplementary; the run continues on RSS alone
		o.logger.Warn().Err(err).Msg("Provider news fetch failed")
		return nil
	}

	added, skipped, err := o.ingestor.IngestEntries(ctx, feeds.EntriesFromProviderNews(items))
	if err != nil {
		return fmt.Errorf("provider news ingestion failed: %w", err)
	}
	stats.Ingest.Added += added
	stats.Ingest.Skipped += skipped

	return nil
}

// score recomputes quality and bucket for every article inside the dedup
// window. Only later copies of syndicated content are penalized, never the
// first-observed article, and duplicates are never deleted.
func (o *Orchestrator) score(ctx context.Context, stats *RunStats) error {
	articles := o.storage.ArticleStorage()
	now := o.now()
	windowStart := now.Add(-common.ParseDurationOr(o.config.Feeds.DuplicateWindow, 48*time.Hour))

	recent, err := articles.RecentSince(windowStart)
	if err != nil {
		return fmt.Errorf("failed to load articles for scoring: %w", err)
	}

	for _, article := range recent {
		if err := ctx.Err(); err != nil {
			return err
		}

		isDup, err := articles.HasEarlierContentHash(article.ContentHash, article.ID, windowStart, article.CreatedAt)
		if err != nil {
			return fmt.Errorf("duplicate check failed for %s: %w", article.ID, err)
		}

		scored := scoring.Score(scoring.ScoreInput{
			Title:        article.Title,
			Description:  article.Description,
			SourceDomain: article.SourceDomain,
			SourceName:   article.SourceName,
			PublishedAt:  article.PublishedAt,
			Now:          now,
			IsDuplicate:  isDup,
		})

		article.TrustScore = scored.Trust
		article.QualityScore = scored.Quality
		article.Bucket = scored.Bucket

		if err := articles.SaveArticle(article); err != nil {
			return fmt.Errorf("failed to store scored article %s: %w", article.ID, err)
		}
		stats.Scored++
	}

	o.logger.Info().Int("scored", stats.Scored).Msg("Scoring pass complete")
	return nil
}

// brief assembles the evidence pack, runs the generation cycle, and persists
// the accepted analysis plus extracted recommendations. A rejected brief
// fails the run; nothing is stored.
func (o *Orchestrator) brief(ctx context.Context, stats *RunStats) error {
	now := o.now()

	// Oversample candidates: the pack dedupes by content hash and URL
	candidates, err := o.storage.ArticleStorage().TopByQuality(
		models.BucketMain, now.Add(-evidenceWindow), o.config.Evidence.MaxItems*3)
	if err != nil {
		return fmt.Errorf("failed to load evidence candidates: %w", err)
	}
	if len(candidates) == 0 {
		o.logger.Warn().Msg("No evidence candidates, skipping brief generation")
		return nil
	}

	pack := evidence.Build(candidates, evidence.Bounds{
		MaxItems:         o.config.Evidence.MaxItems,
		MaxFulltextItems: o.config.Evidence.MaxFulltextItems,
		FulltextCharCap:  o.config.Evidence.FulltextCharCap,
		ExcerptCharCap:   o.config.Evidence.ExcerptCharCap,
	}, now)
	stats.EvidenceItems = len(pack.Items)

	if err := o.limiter.Wait(ctx); err != nil {
		return err
	}
	result, err := o.generator.Generate(ctx, pack.Text)
	if err != nil {
		return fmt.Errorf("brief generation failed: %w", err)
	}
	stats.Repaired = result.Repaired

	analysis := resultToAnalysis(result, candidates, pack, now)
	if err := o.storage.AnalysisStorage().SaveAnalysis(analysis); err != nil {
		return fmt.Errorf("failed to store analysis: %w", err)
	}
	stats.AnalysisID = analysis.ID

	recs := briefing.ExtractRecommendations(result.Brief, analysis.ID, now)
	if err := o.storage.AnalysisStorage().SaveRecommendations(recs); err != nil {
		return fmt.Errorf("failed to store recommendations: %w", err)
	}
	stats.Recommendations = len(recs)

	if o.reporter != nil {
		path, err := o.reporter.WriteBrief(result.Brief, analysis.ID, now)
		if err != nil {
			// Report output is best-effort; the analysis is already stored
			o.logger.Warn().Err(err).Msg("Report export failed")
		} else {
			o.logger.Info().Str("path", path).Msg("Report written")
		}
	}

	return nil
}

// resultToAnalysis builds the immutable analysis record. QualityScore is the
// mean stored quality of the articles that made the pack.
func resultToAnalysis(result *briefing.Result, candidates []*models.Article, pack evidence.Pack, now time.Time) *models.Analysis {
	qualityByID := make(map[string]float64, len(candidates))
	for _, article := range candidates {
		qualityByID[article.ID] = article.QualityScore
	}

	var total float64
	for _, item := range pack.Items {
		total += qualityByID[item.ArticleID]
	}
	quality := 0.0
	if len(pack.Items) > 0 {
		quality = total / float64(len(pack.Items))
	}

	return &models.Analysis{
		ID:             common.NewAnalysisID(),
		CreatedAt:      now,
		ModelUsed:      result.ModelUsed,
		ArticleCount:   len(pack.Items),
		ProcessingTime: result.ProcessingTime,
		Topic:          result.Brief.BriefTopic,
		Prompt:         result.Prompt,
		RawResponse:    result.RawJSON,
		QualityScore:   quality,
	}
}
