// Package feeds ingests articles from RSS/Atom feeds and the market-data
// news API into article storage, deduplicating by canonical URL hash.
package feeds

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Feed is one configured source.
type Feed struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category,omitempty"`
}

// FeedList is the parsed feeds.yaml.
type FeedList struct {
	Feeds []Feed `yaml:"feeds"`
}

// LoadFeedList reads and parses the YAML feed list.
func LoadFeedList(path string) (*FeedList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed list %s: %w", path, err)
	}

	var list FeedList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse feed list %s: %w", path, err)
	}

	for i, feed := range list.Feeds {
		if feed.URL == "" {
			return nil, fmt.Errorf("feed entry %d in %s has no url", i, path)
		}
	}

	return &list, nil
}
