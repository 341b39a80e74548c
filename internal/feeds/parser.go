package feeds

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Entry is one normalized feed item, independent of the wire format.
type Entry struct {
	Title       string
	Link        string
	Description string
	SourceName  string
	PublishedAt time.Time
}

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	PubDate     string    `xml:"pubDate"`
	Source      rssSource `xml:"source"`
	GUID        string    `xml:"guid"`
}

type rssSource struct {
	URL  string `xml:"url,attr"`
	Text string `xml:",chardata"`
}

type atomDocument struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	Links     []atomLink `xml:"link"`
	Summary   string     `xml:"summary"`
	Content   string     `xml:"content"`
	Updated   string     `xml:"updated"`
	Published string     `xml:"published"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// feedTimeFormats are tried in order when parsing item timestamps.
var feedTimeFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"Mon, 02 Jan 2006 15:04:05 MST",
	"2006-01-02 15:04:05",
}

// ParseFeed parses RSS 2.0 or Atom bytes into normalized entries.
// feedName is used as the source name when the item carries none.
func ParseFeed(data []byte, feedName string) ([]Entry, error) {
	var rss rssDocument
	if err := xml.Unmarshal(data, &rss); err == nil && len(rss.Channel.Items) > 0 {
		return convertRSS(rss, feedName), nil
	}

	var atom atomDocument
	if err := xml.Unmarshal(data, &atom); err == nil && len(atom.Entries) > 0 {
		return convertAtom(atom, feedName), nil
	}

	return nil, fmt.Errorf("unrecognized feed format for %s", feedName)
}

func convertRSS(doc rssDocument, feedName string) []Entry {
	entries := make([]Entry, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		source := strings.TrimSpace(item.Source.Text)
		if source == "" {
			source = feedName
		}
		entries = append(entries, Entry{
			Title:       strings.TrimSpace(item.Title),
			Link:        strings.TrimSpace(item.Link),
			Description: stripHTML(item.Description),
			SourceName:  source,
			PublishedAt: parseFeedTime(item.PubDate),
		})
	}
	return entries
}

func convertAtom(doc atomDocument, feedName string) []Entry {
	entries := make([]Entry, 0, len(doc.Entries))
	for _, item := range doc.Entries {
		link := ""
		for _, l := range item.Links {
			if l.Rel == "" || l.Rel == "alternate" {
				link = l.Href
				break
			}
		}
		if link == "" && len(item.Links) > 0 {
			link = item.Links[0].Href
		}

		description := item.Summary
		if description == "" {
			description = item.Content
		}

		published := item.Published
		if published == "" {
			published = item.Updated
		}

		entries = append(entries, Entry{
			Title:       strings.TrimSpace(item.Title),
			Link:        strings.TrimSpace(link),
			Description: stripHTML(description),
			SourceName:  feedName,
			PublishedAt: parseFeedTime(published),
		})
	}
	return entries
}

// parseFeedTime tries the known feed timestamp formats; unknown formats
// produce a zero time so recency scoring falls back to its default.
func parseFeedTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, format := range feedTimeFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// stripHTML removes markup and decodes common entities from feed
// descriptions, which frequently carry embedded HTML.
func stripHTML(content string) string {
	content = htmlTagPattern.ReplaceAllString(content, " ")
	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
	content = replacer.Replace(content)
	content = whitespacePattern.ReplaceAllString(content, " ")
	return strings.TrimSpace(content)
}

// domainOf extracts the lowercased host from a link, empty on failure.
func domainOf(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Host)
}
