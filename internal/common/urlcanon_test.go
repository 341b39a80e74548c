package common

import "testing"

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "strips utm params",
			raw:  "https://example.com/story?utm_source=feed&utm_medium=rss",
			want: "https://example.com/story",
		},
		{
			name: "strips fragment",
			raw:  "https://example.com/story#section-2",
			want: "https://example.com/story",
		},
		{
			name: "lowercases scheme and host",
			raw:  "HTTPS://Example.COM/Story",
			want: "https://example.com/Story",
		},
		{
			name: "sorts remaining params",
			raw:  "https://example.com/s?b=2&a=1",
			want: "https://example.com/s?a=1&b=2",
		},
		{
			name: "sorts repeated param values",
			raw:  "https://example.com/s?a=z&a=b",
			want: "https://example.com/s?a=b&a=z",
		},
		{
			name: "keeps meaningful params while removing fbclid",
			raw:  "https://example.com/s?id=42&fbclid=abc123",
			want: "https://example.com/s?id=42",
		},
		{
			name: "defaults missing scheme",
			raw:  "example.com/path",
			want: "https://example.com/path",
		},
		{
			name: "empty input",
			raw:  "   ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanonicalURL(tt.raw)
			if got != tt.want {
				t.Errorf("CanonicalURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestURLHash_TrackingVariantsCollide(t *testing.T) {
	variants := []string{
		"https://example.com/story?utm_source=a",
		"https://example.com/story?utm_campaign=b&fbclid=xyz",
		"HTTPS://EXAMPLE.com/story#top",
		"https://example.com/story",
	}

	base := URLHash(CanonicalURL(variants[0]))
	for _, v := range variants[1:] {
		if h := URLHash(CanonicalURL(v)); h != base {
			t.Errorf("hash mismatch for %q: got %s, want %s", v, h, base)
		}
	}
}

func TestURLHash_DistinctURLsDiffer(t *testing.T) {
	a := URLHash(CanonicalURL("https://example.com/story-one"))
	b := URLHash(CanonicalURL("https://example.com/story-two"))
	if a == b {
		t.Error("distinct URLs must not collide")
	}
}

func TestContentHash_NormalizesCase(t *testing.T) {
	a := ContentHash("Fed Holds Rates", "The Federal Reserve held rates steady.")
	b := ContentHash("  fed holds rates ", "the federal reserve held rates steady.")
	if a != b {
		t.Error("content hash should be case and whitespace insensitive")
	}
}
