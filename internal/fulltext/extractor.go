// Package fulltext fetches article pages and extracts readable body text as
// markdown for a bounded set of high-trust articles per run.
package fulltext

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/meridian/internal/common"
	"github.com/ternarybob/meridian/internal/interfaces"
	"github.com/ternarybob/meridian/internal/models"
)

// excerptRunes is the length of the stored plain-text excerpt.
const excerptRunes = 300

// Extractor pulls readable text out of article pages. Each run handles at
// most MaxArticles pending articles at or above MinTrustScore.
type Extractor struct {
	articles interfaces.ArticleStorage
	client   *http.Client
	config   common.FulltextConfig
	retry    common.RetryConfig
	logger   arbor.ILogger
}

// NewExtractor creates a fulltext extractor.
func NewExtractor(articles interfaces.ArticleStorage, config common.FulltextConfig, logger arbor.ILogger) *Extractor {
	return &Extractor{
		articles: articles,
		client:   &http.Client{Timeout: common.ParseDurationOr(config.RequestTimeout, 30*time.Second)},
		config:   config,
		retry:    common.NewDefaultRetryConfig(),
		logger:   logger,
	}
}

// Run extracts text for pending articles. A failed page marks that article
// failed and the pass continues; cancellation stops before the next article.
func (e *Extractor) Run(ctx context.Context) (int, error) {
	if !e.config.Enabled {
		return 0, nil
	}

	pending, err := e.articles.PendingExtraction(e.config.MinTrustScore, e.config.MaxArticles)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending articles: %w", err)
	}

	extracted := 0
	for _, article := range pending {
		if err := ctx.Err(); err != nil {
			return extracted, err
		}

		text, confidence, err := e.ExtractURL(ctx, article.CanonicalURL)
		now := time.Now()
		if err != nil {
			article.ExtractionStatus = models.ExtractionFailed
			article.UpdatedAt = now
			if saveErr := e.articles.SaveArticle(article); saveErr != nil {
				return extracted, fmt.Errorf("failed to mark extraction failure: %w", saveErr)
			}
			e.logger.Warn().Err(err).Str("url", article.CanonicalURL).Msg("Fulltext extraction failed")
			continue
		}

		article.ExtractedText = text
		article.Excerpt = makeExcerpt(text)
		article.ExtractionConfidence = confidence
		article.ExtractionStatus = models.ExtractionDone
		article.UpdatedAt = now

		if err := e.articles.SaveArticle(article); err != nil {
			return extracted, fmt.Errorf("failed to store extracted article: %w", err)
		}
		extracted++

		e.logger.Debug().
			Str("url", article.CanonicalURL).
			Int("chars", len(text)).
			Float64("confidence", confidence).
			Msg("Fulltext extracted")
	}

	return extracted, nil
}

// ExtractURL fetches one page and returns its readable text as markdown with
// a length-based confidence.
func (e *Extractor) ExtractURL(ctx context.Context, pageURL string) (string, float64, error) {
	var body []byte
	err := e.retry.Retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := e.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("page returned status %d", resp.StatusCode)
		}

		contentType := resp.Header.Get("Content-Type")
		if contentType != "" && !strings.HasPrefix(strings.ToLower(contentType), "text/html") {
			return fmt.Errorf("unsupported content type: %s", contentType)
		}

		limit := int64(e.config.MaxBodySize)
		if limit <= 0 {
			limit = 2 << 20
		}
		body, err = io.ReadAll(io.LimitReader(resp.Body, limit))
		return err
	})
	if err != nil {
		return "", 0, err
	}

	markdown, err := ExtractReadableText(string(body), pageURL)
	if err != nil {
		return "", 0, err
	}

	return markdown, confidenceFor(markdown), nil
}

// ExtractReadableText strips boilerplate from an HTML document and converts
// the main content to markdown.
func ExtractReadableText(html, baseURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, nav, header, footer, aside, iframe, form").Remove()
	doc.Find("[class*=ad], [id*=ad], [class*=promo], [class*=sidebar]").Remove()

	content := doc.Find("main, article, [role=main]").First()
	if content.Length() == 0 {
		content = doc.Find("body")
	}
	if content.Length() == 0 {
		return "", fmt.Errorf("no readable content found")
	}

	contentHTML, err := content.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render content: %w", err)
	}

	converter := md.NewConverter(baseURL, true, nil)
	markdown, err := converter.ConvertString(contentHTML)
	if err != nil {
		return "", fmt.Errorf("failed to convert to markdown: %w", err)
	}

	return strings.TrimSpace(markdown), nil
}

// confidenceFor maps extracted length to a confidence value. Longer bodies
// are more likely to be the actual article rather than residual boilerplate.
func confidenceFor(text string) float64 {
	n := len(text)
	switch {
	case n >= 2000:
		return 0.9
	case n >= 800:
		return 0.7
	case n >= 300:
		return 0.5
	case n > 0:
		return 0.3
	default:
		return 0
	}
}

// makeExcerpt returns the first excerptRunes runes of text flattened to one
// line.
func makeExcerpt(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= excerptRunes {
		return flat
	}
	return string(runes[:excerptRunes]) + "…"
}
