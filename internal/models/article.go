package models

import "time"

// Bucket is the coarse routing label assigned by the scorer.
type Bucket string

const (
	// BucketMain holds regular market/geopolitics news
	BucketMain Bucket = "main"
	// BucketDeals holds deal/discount/listicle content demoted by the classifier
	BucketDeals Bucket = "deals"
)

// ExtractionStatus tracks the fulltext extraction lifecycle for an article.
type ExtractionStatus string

const (
	ExtractionPending ExtractionStatus = "pending"
	ExtractionDone    ExtractionStatus = "done"
	ExtractionFailed  ExtractionStatus = "failed"
	ExtractionSkipped ExtractionStatus = "skipped"
)

// Article is the persisted unit of ingested news.
// Identity is the canonical URL and its hash; URLHash is globally unique.
// Articles are created on first ingest, mutated by the scorer and the
// fulltext extractor, and never deleted by the pipeline.
type Article struct {
	ID           string `badgerhold:"key"`
	CanonicalURL string `badgerholdUnique:"CanonicalURL"`
	URLHash      string `badgerholdUnique:"URLHash"`

	// ContentHash is a hash of normalized title+description used for
	// near-duplicate detection within a rolling window.
	ContentHash string `badgerholdIndex:"ContentHash"`

	Title       string
	Description string

	// ExtractedText is the readable body text produced by the fulltext
	// extractor for a bounded subset of high-trust articles.
	ExtractedText string
	Excerpt       string

	SourceDomain string
	SourceName   string

	PublishedAt time.Time

	Bucket               Bucket
	TrustScore           float64
	QualityScore         float64
	ExtractionConfidence float64
	ExtractionStatus     ExtractionStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BestTimestamp returns the publish time if known, else the ingest time.
func (a *Article) BestTimestamp() time.Time {
	if !a.PublishedAt.IsZero() {
		return a.PublishedAt
	}
	return a.CreatedAt
}
