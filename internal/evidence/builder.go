package evidence

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/meridian/internal/models"
)

// Bounds caps the evidence pack. Output size is deterministic given the
// bounds and pack size because the caps are enforced per item.
type Bounds struct {
	MaxItems         int // Total items in the pack
	MaxFulltextItems int // Leading items allowed to use extracted fulltext
	FulltextCharCap  int // Max characters of fulltext per item
	ExcerptCharCap   int // Max characters of excerpt per item
}

// Item is one article rendered into the pack. Ephemeral: exists only for the
// duration of one brief-generation cycle.
type Item struct {
	Index        int // 1-based pack-local position
	ArticleID    string
	Title        string
	SourceName   string
	Timestamp    string // ISO-8601 or "unknown_time"
	CanonicalURL string
	Body         string
	KeyNumbers   []string
	TrustScore   float64
	Confidence   float64
	UsedFulltext bool
}

// Pack is the assembled evidence: structured items for machine use plus the
// rendered text block for the model.
type Pack struct {
	Items []Item
	Text  string
	AsOf  time.Time
}

const packPreamble = `You are given a numbered evidence pack of recent news items. Ground every claim in this evidence only; do not use outside knowledge or invent facts. Evidence generated as of %s.

`

// Build walks the quality-ordered candidates once, dedupes within the pack by
// content hash and canonical URL, applies the per-item character caps, and
// renders the numbered card list.
func Build(candidates []*models.Article, bounds Bounds, asOf time.Time) Pack {
	pack := Pack{AsOf: asOf}

	seenContent := map[string]bool{}
	seenURL := map[string]bool{}

	for _, article := range candidates {
		if len(pack.Items) >= bounds.MaxItems {
			break
		}
		if article.ContentHash != "" && seenContent[article.ContentHash] {
			continue
		}
		if seenURL[article.CanonicalURL] {
			continue
		}
		seenContent[article.ContentHash] = true
		seenURL[article.CanonicalURL] = true

		index := len(pack.Items) + 1
		body, usedFulltext := chooseBody(article, index, bounds)

		item := Item{
			Index:        index,
			ArticleID:    article.ID,
			Title:        article.Title,
			SourceName:   sourceLabel(article),
			Timestamp:    timestampLabel(article),
			CanonicalURL: article.CanonicalURL,
			Body:         body,
			KeyNumbers:   ExtractKeyNumbers(body),
			TrustScore:   article.TrustScore,
			Confidence:   article.ExtractionConfidence,
			UsedFulltext: usedFulltext,
		}
		pack.Items = append(pack.Items, item)
	}

	pack.Text = render(pack.Items, asOf)
	return pack
}

// chooseBody selects fulltext for items within the fulltext budget when
// extracted text exists, otherwise the excerpt, falling back to description.
func chooseBody(article *models.Article, index int, bounds Bounds) (string, bool) {
	if index <= bounds.MaxFulltextItems && article.ExtractedText != "" {
		return truncate(article.ExtractedText, bounds.FulltextCharCap), true
	}

	excerpt := article.Excerpt
	if excerpt == "" {
		excerpt = article.Description
	}
	return truncate(excerpt, bounds.ExcerptCharCap), false
}

func sourceLabel(article *models.Article) string {
	if article.SourceName != "" {
		return article.SourceName
	}
	return article.SourceDomain
}

func timestampLabel(article *models.Article) string {
	ts := article.BestTimestamp()
	if ts.IsZero() {
		return "unknown_time"
	}
	return ts.UTC().Format(time.RFC3339)
}

func render(items []Item, asOf time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(packPreamble, asOf.UTC().Format(time.RFC3339)))

	for _, item := range items {
		sb.WriteString(fmt.Sprintf("[%d] %s\n", item.Index, item.Title))
		sb.WriteString(fmt.Sprintf("source: %s | time: %s\n", item.SourceName, item.Timestamp))
		sb.WriteString(fmt.Sprintf("url: %s\n", item.CanonicalURL))
		sb.WriteString(fmt.Sprintf("trust: %.2f | confidence: %.2f\n", item.TrustScore, item.Confidence))
		if len(item.KeyNumbers) > 0 {
			sb.WriteString("key_numbers: " + strings.Join(item.KeyNumbers, "; ") + "\n")
		}
		sb.WriteString(item.Body)
		sb.WriteString("\n\n")
	}

	return sb.String()
}

// truncate cuts s to at most max runes, appending an ellipsis marker when
// content was dropped.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}
