package interfaces

import (
	"time"

	"github.com/ternarybob/meridian/internal/models"
)

// ArticleStorage persists ingested articles keyed by ID with unique
// canonical URL / URL hash constraints.
type ArticleStorage interface {
	// SaveArticle inserts or updates an article by ID.
	SaveArticle(article *models.Article) error

	// GetArticle retrieves an article by ID.
	GetArticle(id string) (*models.Article, error)

	// GetArticleByURLHash retrieves an article by its canonical URL hash,
	// returning nil without error when absent.
	GetArticleByURLHash(urlHash string) (*models.Article, error)

	// HasEarlierContentHash reports whether another article created in
	// [since, before) shares the content hash. Only later copies of
	// syndicated content count as duplicates; the first-observed article
	// never matches.
	HasEarlierContentHash(contentHash, excludeID string, since, before time.Time) (bool, error)

	// TopByQuality returns up to limit articles from the bucket created at or
	// after since, ordered by quality score descending.
	TopByQuality(bucket models.Bucket, since time.Time, limit int) ([]*models.Article, error)

	// PendingExtraction returns up to limit articles eligible for fulltext
	// extraction: status pending, trust at or above minTrust, best first.
	PendingExtraction(minTrust float64, limit int) ([]*models.Article, error)

	// RecentSince returns all articles created at or after since.
	RecentSince(since time.Time) ([]*models.Article, error)

	// Search returns up to limit articles whose title, description or
	// extracted text matches the query.
	Search(query string, limit int) ([]*models.Article, error)
}

// AnalysisStorage persists accepted briefs and their extracted
// recommendations.
type AnalysisStorage interface {
	// SaveAnalysis stores an accepted brief record. Analyses are immutable
	// once stored.
	SaveAnalysis(analysis *models.Analysis) error

	// GetAnalysis retrieves an analysis by ID.
	GetAnalysis(id string) (*models.Analysis, error)

	// SaveRecommendations stores the recommendations extracted from one
	// analysis.
	SaveRecommendations(recs []*models.Recommendation) error

	// ListRecommendations returns all stored recommendations.
	ListRecommendations() ([]*models.Recommendation, error)

	// DistinctTickers returns the distinct tickers across all stored
	// recommendations.
	DistinctTickers() ([]string, error)
}

// PriceStorage is the append-only daily close cache. Upserts are idempotent:
// the same (symbol, date) always overwrites, never duplicates.
type PriceStorage interface {
	// UpsertBar writes one daily close, last-write-wins on (symbol, date).
	UpsertBar(bar *models.PriceBar) error

	// UpsertBars writes a batch of bars.
	UpsertBars(bars []*models.PriceBar) error

	// FirstCloseOnOrAfter returns the earliest bar for symbol dated on or
	// after date, or nil when no coverage exists.
	FirstCloseOnOrAfter(symbol string, date time.Time) (*models.PriceBar, error)

	// GetBar returns the bar for an exact (symbol, date), or nil.
	GetBar(symbol string, date time.Time) (*models.PriceBar, error)
}

// PerformanceStorage persists backtest snapshots keyed by
// (recommendation, horizon, benchmark); reruns overwrite.
type PerformanceStorage interface {
	// UpsertSnapshot writes one performance snapshot.
	UpsertSnapshot(snapshot *models.PerformanceSnapshot) error

	// ListByRecommendation returns all snapshots for one recommendation.
	ListByRecommendation(recommendationID string) ([]*models.PerformanceSnapshot, error)
}

// TrendStorage persists detected term/topic trends per window.
type TrendStorage interface {
	// UpsertTrend writes one trend row, overwriting the same window.
	UpsertTrend(trend *models.Trend) error

	// ListTrends returns stored trends of one kind, highest z-score first,
	// up to limit.
	ListTrends(kind models.TrendKind, limit int) ([]*models.Trend, error)
}

// StorageManager aggregates the entity storages over one Badger connection.
// Each pipeline worker owns its manager for the duration of a run.
type StorageManager interface {
	ArticleStorage() ArticleStorage
	AnalysisStorage() AnalysisStorage
	PriceStorage() PriceStorage
	PerformanceStorage() PerformanceStorage
	TrendStorage() TrendStorage
	Close() error
}
