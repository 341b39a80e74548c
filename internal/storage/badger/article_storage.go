package badger

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/meridian/internal/interfaces"
	"github.com/ternarybob/meridian/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ArticleStorage implements the ArticleStorage interface for Badger
type ArticleStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewArticleStorage creates a new ArticleStorage instance
func NewArticleStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ArticleStorage {
	return &ArticleStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ArticleStorage) SaveArticle(article *models.Article) error {
	if article.ID == "" {
		return fmt.Errorf("article ID is required")
	}

	now := time.Now()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	article.UpdatedAt = now

	if err := s.db.Store().Upsert(article.ID, article); err != nil {
		return fmt.Errorf("failed to save article: %w", err)
	}
	return nil
}

func (s *ArticleStorage) GetArticle(id string) (*models.Article, error) {
	var article models.Article
	if err := s.db.Store().Get(id, &article); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("article not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return &article, nil
}

func (s *ArticleStorage) GetArticleByURLHash(urlHash string) (*models.Article, error) {
	var articles []models.Article
	err := s.db.Store().Find(&articles, badgerhold.Where("URLHash").Eq(urlHash).Limit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to find article by URL hash: %w", err)
	}
	if len(articles) == 0 {
		return nil, nil
	}
	return &articles[0], nil
}

func (s *ArticleStorage) HasEarlierContentHash(contentHash, excludeID string, since, before time.Time) (bool, error) {
	if contentHash == "" {
		return false, nil
	}

	var articles []models.Article
	err := s.db.Store().Find(&articles, badgerhold.Where("ContentHash").Eq(contentHash).And("ID").Ne(excludeID))
	if err != nil {
		return false, fmt.Errorf("failed to check content hash: %w", err)
	}

	for i := range articles {
		created := articles[i].CreatedAt
		if !created.Before(since) && created.Before(before) {
			return true, nil
		}
	}
	return false, nil
}

func (s *ArticleStorage) TopByQuality(bucket models.Bucket, since time.Time, limit int) ([]*models.Article, error) {
	var articles []models.Article
	err := s.db.Store().Find(&articles, badgerhold.Where("Bucket").Eq(bucket).And("CreatedAt").Ge(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query articles by bucket: %w", err)
	}

	sort.Slice(articles, func(i, j int) bool {
		return articles[i].QualityScore > articles[j].QualityScore
	})
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	result := make([]*models.Article, len(articles))
	for i := range articles {
		result[i] = &articles[i]
	}
	return result, nil
}

func (s *ArticleStorage) PendingExtraction(minTrust float64, limit int) ([]*models.Article, error) {
	var articles []models.Article
	err := s.db.Store().Find(&articles,
		badgerhold.Where("ExtractionStatus").Eq(models.ExtractionPending).And("TrustScore").Ge(minTrust))
	if err != nil {
		return nil, fmt.Errorf("failed to query pending articles: %w", err)
	}

	// Highest-trust articles first so a bounded pass extracts the best sources
	sort.Slice(articles, func(i, j int) bool {
		return articles[i].TrustScore > articles[j].TrustScore
	})
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	result := make([]*models.Article, len(articles))
	for i := range articles {
		result[i] = &articles[i]
	}
	return result, nil
}

func (s *ArticleStorage) RecentSince(since time.Time) ([]*models.Article, error) {
	var articles []models.Article
	err := s.db.Store().Find(&articles, badgerhold.Where("CreatedAt").Ge(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query recent articles: %w", err)
	}

	result := make([]*models.Article, len(articles))
	for i := range articles {
		result[i] = &articles[i]
	}
	return result, nil
}

func (s *ArticleStorage) Search(query string, limit int) ([]*models.Article, error) {
	// Escape regex special characters in query to treat it as literal text
	escapedQuery := regexp.QuoteMeta(query)
	regex, err := regexp.Compile("(?i)" + escapedQuery) // Case insensitive
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	var articles []models.Article
	err = s.db.Store().Find(&articles,
		badgerhold.Where("Title").RegExp(regex).
			Or(badgerhold.Where("Description").RegExp(regex)).
			Or(badgerhold.Where("ExtractedText").RegExp(regex)).
			Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	result := make([]*models.Article, len(articles))
	for i := range articles {
		result[i] = &articles[i]
	}
	return result, nil
}
