package common

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// trackingParams is the deny-list of query parameters stripped during URL
// canonicalization. Two links differing only by these params (or fragment)
// must resolve to the same identity.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"utm_id":       true,
	"fbclid":       true,
	"gclid":        true,
	"dclid":        true,
	"msclkid":      true,
	"mc_cid":       true,
	"mc_eid":       true,
	"igshid":       true,
	"ref":          true,
	"ref_src":      true,
	"cmpid":        true,
	"smid":         true,
	"ncid":         true,
	"sref":         true,
	"partner":      true,
}

// CanonicalURL normalizes a raw link into a stable identity form: scheme and
// host lowercased, fragment stripped, tracking parameters removed, remaining
// parameters sorted by key then value. Malformed URLs are canonicalized
// best-effort; this never fails.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		// Unparseable input keeps its trimmed form as identity
		return raw
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme == "" {
		scheme = "https"
	}
	host := strings.ToLower(parsed.Host)

	// Filter tracking params, then sort by key and value for determinism
	type kv struct{ key, value string }
	var params []kv
	for key, values := range parsed.Query() {
		if trackingParams[strings.ToLower(key)] {
			continue
		}
		for _, v := range values {
			params = append(params, kv{key, v})
		}
	}
	sort.Slice(params, func(i, j int) bool {
		if params[i].key != params[j].key {
			return params[i].key < params[j].key
		}
		return params[i].value < params[j].value
	})

	var query strings.Builder
	for i, p := range params {
		if i > 0 {
			query.WriteByte('&')
		}
		query.WriteString(url.QueryEscape(p.key))
		query.WriteByte('=')
		query.WriteString(url.QueryEscape(p.value))
	}

	canon := scheme + "://" + host + parsed.EscapedPath()
	if query.Len() > 0 {
		canon += "?" + query.String()
	}
	return canon
}

// URLHash returns the hex SHA-256 of a canonical URL. This hash is the sole
// identity mechanism for ingestion dedup.
func URLHash(canonicalURL string) string {
	sum := sha256.Sum256([]byte(canonicalURL))
	return hex.EncodeToString(sum[:])
}

// ContentHash returns a hash over normalized title and description used for
// near-duplicate detection across sources.
func ContentHash(title, description string) string {
	normalized := strings.ToLower(strings.TrimSpace(title)) + "\n" + strings.ToLower(strings.TrimSpace(description))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
