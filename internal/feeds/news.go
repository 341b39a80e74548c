package feeds

import (
	"github.com/ternarybob/meridian/internal/marketdata"
)

// EntriesFromProviderNews converts market-data provider news items into feed
// entries so they flow through the same ingest path as RSS items.
func EntriesFromProviderNews(items marketdata.NewsResponse) []Entry {
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		if item.Title == "" || item.Link == "" {
			continue
		}
		entries = append(entries, Entry{
			Title:       item.Title,
			Link:        item.Link,
			Description: stripHTML(item.Content),
			SourceName:  domainOf(item.Link),
			PublishedAt: item.Date,
		})
	}
	return entries
}
