package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/meridian/internal/common"
	"github.com/ternarybob/meridian/internal/interfaces"
	"github.com/ternarybob/meridian/internal/models"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Wire</title>
    <item>
      <title>Fed signals rate pause as inflation cools</title>
      <link>https://example.com/fed-pause</link>
      <description>The Federal Reserve held rates steady citing cooling inflation data.</description>
      <pubDate>Sat, 29 Aug 2026 12:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Chipmaker beats earnings estimates on AI demand</title>
      <link>https://example.com/chip-earnings</link>
      <description>Quarterly revenue rose 40% on surging demand for AI accelerators.</description>
      <pubDate>Sat, 29 Aug 2026 13:30:00 +0000</pubDate>
    </item>
  </channel>
</rss>`

const validBriefJSON = `{
  "brief_topic": "Rates and AI demand",
  "breaking_news": [{
    "tier": 1,
    "headline": "Fed signals rate pause",
    "time": "2026-08-29T12:00:00Z",
    "summary": "The Fed held rates steady.",
    "key_insight": "Policy is on hold.",
    "actionable_advice": "Watch duration exposure."
  }],
  "key_numbers": [{"title": "Chip revenue growth", "value": "40%", "context": "AI accelerator demand"}],
  "market_pulse": [{"asset": "US equities", "direction": "up", "catalyst": "rate pause", "why_it_matters": "Lower discount rates support valuations."}],
  "idea_desk": [{"action": "buy", "ticker": "nvda", "rationale": "AI demand beat"}],
  "final_intel": {
    "summary": "Constructive setup for risk assets.",
    "investment_horizon": "1-4 weeks",
    "key_risks": ["Inflation re-acceleration"]
  }
}`

type fakeArticleStore struct {
	articles map[string]*models.Article
}

func newFakeArticleStore() *fakeArticleStore {
	return &fakeArticleStore{articles: map[string]*models.Article{}}
}

func (f *fakeArticleStore) SaveArticle(a *models.Article) error {
	copied := *a
	f.articles[a.ID] = &copied
	return nil
}

func (f *fakeArticleStore) GetArticle(id string) (*models.Article, error) {
	a, ok := f.articles[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return a, nil
}

func (f *fakeArticleStore) GetArticleByURLHash(urlHash string) (*models.Article, error) {
	for _, a := range f.articles {
		if a.URLHash == urlHash {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeArticleStore) HasEarlierContentHash(contentHash, excludeID string, since, before time.Time) (bool, error) {
	for _, a := range f.articles {
		if a.ID != excludeID && a.ContentHash == contentHash &&
			!a.CreatedAt.Before(since) && a.CreatedAt.Before(before) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeArticleStore) TopByQuality(bucket models.Bucket, since time.Time, limit int) ([]*models.Article, error) {
	var result []*models.Article
	for _, a := range f.articles {
		if a.Bucket == bucket && !a.CreatedAt.Before(since) {
			result = append(result, a)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeArticleStore) PendingExtraction(minTrust float64, limit int) ([]*models.Article, error) {
	return nil, nil
}

func (f *fakeArticleStore) RecentSince(since time.Time) ([]*models.Article, error) {
	var result []*models.Article
	for _, a := range f.articles {
		if !a.CreatedAt.Before(since) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (f *fakeArticleStore) Search(query string, limit int) ([]*models.Article, error) {
	return nil, nil
}

type fakeAnalysisStore struct {
	analyses map[string]*models.Analysis
	recs     []*models.Recommendation
}

func newFakeAnalysisStore() *fakeAnalysisStore {
	return &fakeAnalysisStore{analyses: map[string]*models.Analysis{}}
}

func (f *fakeAnalysisStore) SaveAnalysis(a *models.Analysis) error {
	f.analyses[a.ID] = a
	return nil
}

func (f *fakeAnalysisStore) GetAnalysis(id string) (*models.Analysis, error) {
	a, ok := f.analyses[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return a, nil
}

func (f *fakeAnalysisStore) SaveRecommendations(recs []*models.Recommendation) error {
	f.recs = append(f.recs, recs...)
	return nil
}

func (f *fakeAnalysisStore) ListRecommendations() ([]*models.Recommendation, error) {
	return f.recs, nil
}

func (f *fakeAnalysisStore) DistinctTickers() ([]string, error) {
	seen := map[string]bool{}
	var tickers []string
	for _, r := range f.recs {
		if !seen[r.Ticker] {
			seen[r.Ticker] = true
			tickers = append(tickers, r.Ticker)
		}
	}
	return tickers, nil
}

type fakeManager struct {
	article  *fakeArticleStore
	analysis *fakeAnalysisStore
}

func (f *fakeManager) ArticleStorage() interfaces.ArticleStorage         { return f.article }
func (f *fakeManager) AnalysisStorage() interfaces.AnalysisStorage       { return f.analysis }
func (f *fakeManager) PriceStorage() interfaces.PriceStorage             { return nil }
func (f *fakeManager) PerformanceStorage() interfaces.PerformanceStorage { return nil }
func (f *fakeManager) TrendStorage() interfaces.TrendStorage             { return nil }
func (f *fakeManager) Close() error                                      { return nil }

type fakeLLM struct {
	responses []string
	calls     int
}

func (f *fakeLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	if f.calls >= len(f.responses) {
		return "", errors.New("no more responses")
	}
	response := f.responses[f.calls]
	f.calls++
	return response, nil
}

func (f *fakeLLM) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeLLM) ModelName() string                     { return "test-model" }
func (f *fakeLLM) Close() error                          { return nil }

func testConfig(t *testing.T, feedURL string) *common.Config {
	t.Helper()
	tmpDir := t.TempDir()

	feedsFile := filepath.Join(tmpDir, "feeds.yaml")
	yaml := "feeds:\n  - name: Test Wire\n    url: " + feedURL + "\n    category: markets\n"
	if err := os.WriteFile(feedsFile, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := common.NewDefaultConfig()
	cfg.Feeds.File = feedsFile
	cfg.Fulltext.Enabled = false
	cfg.Pipeline.LockFile = filepath.Join(tmpDir, "run.lock")
	return cfg
}

func TestRun_EndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	manager := &fakeManager{article: newFakeArticleStore(), analysis: newFakeAnalysisStore()}
	cfg := testConfig(t, server.URL)
	llm := &fakeLLM{responses: []string{validBriefJSON}}

	o := NewOrchestrator(manager, cfg, llm, nil, arbor.NewLogger())

	stats, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.Ingest.Added != 2 {
		t.Errorf("Expected 2 articles added, got %d", stats.Ingest.Added)
	}
	if stats.Scored != 2 {
		t.Errorf("Expected 2 articles scored, got %d", stats.Scored)
	}
	if stats.AnalysisID == "" {
		t.Error("Expected analysis ID to be set")
	}
	if stats.Recommendations != 1 {
		t.Fatalf("Expected 1 recommendation, got %d", stats.Recommendations)
	}

	rec := manager.analysis.recs[0]
	if rec.Action != "BUY" || rec.Ticker != "NVDA" {
		t.Errorf("Expected normalized BUY/NVDA, got %s/%s", rec.Action, rec.Ticker)
	}
	if rec.AnalysisID != stats.AnalysisID {
		t.Error("Recommendation must reference the stored analysis")
	}

	analysis, err := manager.analysis.GetAnalysis(stats.AnalysisID)
	if err != nil {
		t.Fatalf("Stored analysis missing: %v", err)
	}
	if analysis.Topic != "Rates and AI demand" {
		t.Errorf("Unexpected topic: %s", analysis.Topic)
	}
	if analysis.ModelUsed != "test-model" {
		t.Errorf("Unexpected model: %s", analysis.ModelUsed)
	}

	// Rerun while nothing changed: same URLs are skipped, not duplicated
	llm.calls = 0
	llm.responses = []string{validBriefJSON}
	stats, err = o.Run(context.Background())
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if stats.Ingest.Added != 0 || stats.Ingest.Skipped != 2 {
		t.Errorf("Expected 0 added / 2 skipped on rerun, got %d/%d", stats.Ingest.Added, stats.Ingest.Skipped)
	}
}

func TestRun_LockHeld(t *testing.T) {
	manager := &fakeManager{article: newFakeArticleStore(), analysis: newFakeAnalysisStore()}
	cfg := testConfig(t, "http://127.0.0.1:0/feed")

	// A live process already owns the lock
	if err := os.WriteFile(cfg.Pipeline.LockFile, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		t.Fatal(err)
	}

	o := NewOrchestrator(manager, cfg, &fakeLLM{}, nil, arbor.NewLogger())

	_, err := o.Run(context.Background())
	if !errors.Is(err, common.ErrLockHeld) {
		t.Fatalf("Expected ErrLockHeld, got %v", err)
	}
}

func TestRun_RejectedBriefStoresNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	manager := &fakeManager{article: newFakeArticleStore(), analysis: newFakeAnalysisStore()}
	cfg := testConfig(t, server.URL)

	// Draft and repair both come back malformed
	llm := &fakeLLM{responses: []string{"not json at all", "still not json"}}
	o := NewOrchestrator(manager, cfg, llm, nil, arbor.NewLogger())

	_, err := o.Run(context.Background())
	if err == nil {
		t.Fatal("Expected run to fail on rejected brief")
	}
	if !strings.Contains(err.Error(), "rejected") {
		t.Fatalf("Expected rejection error, got %v", err)
	}
	if len(manager.analysis.analyses) != 0 || len(manager.analysis.recs) != 0 {
		t.Error("Rejected brief must not store any artifact")
	}
}
