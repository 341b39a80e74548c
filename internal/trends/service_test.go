package trends

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/ternarybob/meridian/internal/common"
	"github.com/ternarybob/meridian/internal/models"
)

type fakeArticleStore struct {
	articles []*models.Article
}

func (f *fakeArticleStore) SaveArticle(*models.Article) error                { return nil }
func (f *fakeArticleStore) GetArticle(string) (*models.Article, error)      { return nil, nil }
func (f *fakeArticleStore) GetArticleByURLHash(string) (*models.Article, error) {
	return nil, nil
}
func (f *fakeArticleStore) HasEarlierContentHash(string, string, time.Time, time.Time) (bool, error) {
	return false, nil
}
func (f *fakeArticleStore) TopByQuality(models.Bucket, time.Time, int) ([]*models.Article, error) {
	return nil, nil
}
func (f *fakeArticleStore) PendingExtraction(float64, int) ([]*models.Article, error) {
	return nil, nil
}
func (f *fakeArticleStore) Search(string, int) ([]*models.Article, error) { return nil, nil }

func (f *fakeArticleStore) RecentSince(since time.Time) ([]*models.Article, error) {
	var out []*models.Article
	for _, a := range f.articles {
		if !a.BestTimestamp().Before(since) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeTrendStore struct {
	trends map[string]*models.Trend
}

func (f *fakeTrendStore) UpsertTrend(trend *models.Trend) error {
	if f.trends == nil {
		f.trends = map[string]*models.Trend{}
	}
	f.trends[trend.Key] = trend
	return nil
}

func (f *fakeTrendStore) ListTrends(models.TrendKind, int) ([]*models.Trend, error) {
	return nil, nil
}

// A term appearing at a constant rate across the whole window is not a
// trend: its expected recent count must match the observed one, so z stays
// near zero. The baseline rate therefore divides by the span the baseline
// corpus covers, not the full window.
func TestRun_SteadyTermIsNotASpike(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	store := &fakeArticleStore{}
	for i := 0; i < 168; i++ {
		store.articles = append(store.articles, &models.Article{
			ID:          "art-" + string(rune('a'+i%26)) + string(rune('a'+i/26)),
			Title:       "liquidity watch",
			PublishedAt: now.Add(-time.Duration(i)*time.Hour - 30*time.Minute),
		})
	}

	trendStore := &fakeTrendStore{}
	svc := NewService(store, trendStore, common.TrendsConfig{
		RecentHours:   84,
		BaselineHours: 168,
		MinCount:      3,
		TopK:          50,
	}, common.GetLogger())

	if err := svc.Run(context.Background(), now); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	found := false
	for _, trend := range trendStore.trends {
		if trend.Kind != models.TrendKindTerm || trend.Term != "liquidity" {
			continue
		}
		found = true
		if math.Abs(trend.ZScore) >= 1 {
			t.Errorf("steady term z = %v, want near zero", trend.ZScore)
		}
		if trend.Count != 84 {
			t.Errorf("recent count = %d, want 84", trend.Count)
		}
	}
	if !found {
		t.Fatal("steady term above min count must still be recorded")
	}
}

func TestRun_RecentOnlyTermOutranksSteadyTerm(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	store := &fakeArticleStore{}
	for i := 0; i < 24; i++ {
		store.articles = append(store.articles, &models.Article{
			ID:          "steady-" + string(rune('a'+i)),
			Title:       "liquidity watch",
			PublishedAt: now.Add(-time.Duration(i)*time.Hour - 30*time.Minute),
		})
	}
	for i := 0; i < 4; i++ {
		store.articles = append(store.articles, &models.Article{
			ID:          "spike-" + string(rune('a'+i)),
			Title:       "takeover rumor",
			PublishedAt: now.Add(-time.Duration(i)*time.Hour - 15*time.Minute),
		})
	}

	trendStore := &fakeTrendStore{}
	svc := NewService(store, trendStore, common.TrendsConfig{
		RecentHours:   6,
		BaselineHours: 24,
		MinCount:      3,
		TopK:          50,
	}, common.GetLogger())

	if err := svc.Run(context.Background(), now); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var zSteady, zSpike float64
	for _, trend := range trendStore.trends {
		if trend.Kind != models.TrendKindTerm {
			continue
		}
		switch trend.Term {
		case "liquidity":
			zSteady = trend.ZScore
		case "takeover":
			zSpike = trend.ZScore
		}
	}
	if zSpike <= zSteady {
		t.Errorf("recent-only term z (%v) must exceed steady term z (%v)", zSpike, zSteady)
	}
}
