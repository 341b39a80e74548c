package fulltext

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/meridian/internal/common"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Story</title><script>track();</script></head>
<body>
  <nav>Home | Markets | Tech</nav>
  <article>
    <h1>Fed holds rates steady</h1>
    <p>The central bank kept its target range unchanged on Wednesday.</p>
    <p>Officials signaled patience on further moves.</p>
  </article>
  <footer>Copyright</footer>
</body>
</html>`

func TestExtractReadableText(t *testing.T) {
	text, err := ExtractReadableText(samplePage, "https://example.com/story")
	require.NoError(t, err)

	assert.Contains(t, text, "Fed holds rates steady")
	assert.Contains(t, text, "target range unchanged")
	assert.NotContains(t, text, "track()", "scripts removed")
	assert.NotContains(t, text, "Home | Markets", "nav removed")
	assert.NotContains(t, text, "Copyright", "footer removed")
}

func TestExtractReadableText_NoMainFallsBackToBody(t *testing.T) {
	page := `<html><body><p>Just a paragraph.</p></body></html>`
	text, err := ExtractReadableText(page, "https://example.com")
	require.NoError(t, err)
	assert.Contains(t, text, "Just a paragraph.")
}

func TestExtractURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer server.Close()

	e := NewExtractor(nil, common.FulltextConfig{
		Enabled:        true,
		RequestTimeout: "5s",
		MaxBodySize:    1 << 20,
	}, common.GetLogger())
	e.retry = common.RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}

	text, confidence, err := e.ExtractURL(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, text, "Fed holds rates steady")
	assert.Greater(t, confidence, 0.0)
}

func TestExtractURL_RejectsNonHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	e := NewExtractor(nil, common.FulltextConfig{
		Enabled:        true,
		RequestTimeout: "5s",
	}, common.GetLogger())
	e.retry = common.RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}

	_, _, err := e.ExtractURL(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content type")
}

func TestConfidenceFor(t *testing.T) {
	tests := []struct {
		length int
		want   float64
	}{
		{0, 0},
		{100, 0.3},
		{500, 0.5},
		{1200, 0.7},
		{5000, 0.9},
	}
	for _, tt := range tests {
		got := confidenceFor(strings.Repeat("a", tt.length))
		if got != tt.want {
			t.Errorf("confidenceFor(len=%d) = %v, want %v", tt.length, got, tt.want)
		}
	}
}

func TestMakeExcerpt(t *testing.T) {
	long := strings.Repeat("word ", 200)
	excerpt := makeExcerpt(long)
	assert.LessOrEqual(t, len([]rune(excerpt)), excerptRunes+1, "excerpt bounded plus ellipsis")

	short := "one line\nof  text"
	assert.Equal(t, "one line of text", makeExcerpt(short))
}
