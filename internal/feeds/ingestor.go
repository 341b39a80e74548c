package feeds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/meridian/internal/common"
	"github.com/ternarybob/meridian/internal/interfaces"
	"github.com/ternarybob/meridian/internal/models"
)

// maxFeedBytes caps how much of a feed response is read.
const maxFeedBytes = 4 << 20

// IngestStats summarizes one ingestion pass.
type IngestStats struct {
	FeedsFetched int
	FeedsFailed  int
	Added        int
	Skipped      int
}

// Ingestor fetches configured feeds and stores new articles. Identity is the
// canonical URL hash; an entry whose hash already exists is skipped without
// touching the stored article.
type Ingestor struct {
	articles interfaces.ArticleStorage
	client   *http.Client
	config   common.FeedsConfig
	logger   arbor.ILogger
	now      func() time.Time
}

// NewIngestor creates a feed ingestor.
func NewIngestor(articles interfaces.ArticleStorage, config common.FeedsConfig, logger arbor.ILogger) *Ingestor {
	return &Ingestor{
		articles: articles,
		client:   &http.Client{Timeout: common.ParseDurationOr(config.FetchTimeout, 30*time.Second)},
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// IngestAll loads the feed list and ingests every feed. A failing feed is
// logged and skipped; the pass continues. Cancellation stops before the next
// feed.
func (i *Ingestor) IngestAll(ctx context.Context) (IngestStats, error) {
	list, err := LoadFeedList(i.config.File)
	if err != nil {
		return IngestStats{}, err
	}

	var stats IngestStats
	for _, feed := range list.Feeds {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		entries, err := i.fetchFeed(ctx, feed)
		if err != nil {
			stats.FeedsFailed++
			i.logger.Warn().Err(err).Str("feed", feed.Name).Str("url", feed.URL).Msg("Feed fetch failed")
			continue
		}
		stats.FeedsFetched++

		if i.config.MaxPerFeed > 0 && len(entries) > i.config.MaxPerFeed {
			entries = entries[:i.config.MaxPerFeed]
		}

		added, skipped, err := i.IngestEntries(ctx, entries)
		if err != nil {
			return stats, err
		}
		stats.Added += added
		stats.Skipped += skipped

		i.logger.Info().
			Str("feed", feed.Name).
			Int("added", added).
			Int("skipped", skipped).
			Msg("Feed ingested")
	}

	return stats, nil
}

// fetchFeed retrieves and parses one feed.
func (i *Ingestor) fetchFeed(ctx context.Context, feed Feed) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed request: %w", err)
	}
	req.Header.Set("User-Agent", i.config.UserAgent)

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}

	name := feed.Name
	if name == "" {
		name = domainOf(feed.URL)
	}
	return ParseFeed(data, name)
}

// IngestEntries stores the entries that are new by URL hash. Entries without
// a usable title or link are dropped.
func (i *Ingestor) IngestEntries(ctx context.Context, entries []Entry) (added, skipped int, err error) {
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return added, skipped, err
		}

		if entry.Title == "" || entry.Link == "" {
			skipped++
			continue
		}

		canonical := common.CanonicalURL(entry.Link)
		urlHash := common.URLHash(canonical)

		existing, err := i.articles.GetArticleByURLHash(urlHash)
		if err != nil {
			return added, skipped, fmt.Errorf("url hash lookup failed: %w", err)
		}
		if existing != nil {
			skipped++
			continue
		}

		now := i.now()
		article := &models.Article{
			ID:               common.NewArticleID(),
			CanonicalURL:     canonical,
			URLHash:          urlHash,
			ContentHash:      common.ContentHash(entry.Title, entry.Description),
			Title:            entry.Title,
			Description:      entry.Description,
			SourceDomain:     domainOf(canonical),
			SourceName:       entry.SourceName,
			PublishedAt:      entry.PublishedAt,
			Bucket:           models.BucketMain,
			ExtractionStatus: models.ExtractionPending,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		if err := i.articles.SaveArticle(article); err != nil {
			return added, skipped, fmt.Errorf("failed to store article %s: %w", canonical, err)
		}
		added++
	}
	return added, skipped, nil
}
