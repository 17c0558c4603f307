package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"

	"github.com/jonas-jun/inv-secretary/pkg/news"
	"gopkg.in/yaml.v3"
)

//go:embed default_feeds.yaml
var defaultFeedsFS embed.FS

type FeedSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Feeds is the RSS table: one designated market feed plus the feeds the
// per-symbol fallback filters by keyword.
type Feeds struct {
	Market FeedSource   `yaml:"market"`
	Symbol []FeedSource `yaml:"symbol"`
}

func loadDefaultFeeds() (*Feeds, error) {
	data, err := defaultFeedsFS.ReadFile("default_feeds.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded feeds: %w", err)
	}
	var feeds Feeds
	if err := yaml.Unmarshal(data, &feeds); err != nil {
		return nil, fmt.Errorf("parsing embedded feeds: %w", err)
	}
	return &feeds, nil
}

// LoadFeeds returns the embedded defaults when path is empty, otherwise the
// file at path.
func LoadFeeds(path string) (*Feeds, error) {
	if path == "" {
		return loadDefaultFeeds()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading feeds: %w", err)
	}

	var feeds Feeds
	if err := yaml.Unmarshal(data, &feeds); err != nil {
		return nil, fmt.Errorf("parsing feeds %s: %w", path, err)
	}

	if err := validateFeeds(&feeds); err != nil {
		return nil, err
	}
	return &feeds, nil
}

func validateFeeds(feeds *Feeds) error {
	if err := validateFeed("market", feeds.Market); err != nil {
		return err
	}
	for i, f := range feeds.Symbol {
		if err := validateFeed(fmt.Sprintf("symbol feed %d", i), f); err != nil {
			return err
		}
	}
	return nil
}

func validateFeed(label string, f FeedSource) error {
	if f.Name == "" {
		return fmt.Errorf("%s: name is required", label)
	}
	if f.URL == "" {
		return fmt.Errorf("feed %q: url is required", f.Name)
	}
	u, err := url.Parse(f.URL)
	if err != nil {
		return fmt.Errorf("feed %q: invalid url: %w", f.Name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("feed %q: url scheme must be http or https, got %q", f.Name, u.Scheme)
	}
	return nil
}

func (f *Feeds) MarketFeed() news.Feed {
	return news.Feed{Name: f.Market.Name, URL: f.Market.URL}
}

func (f *Feeds) SymbolFeeds() []news.Feed {
	out := make([]news.Feed, 0, len(f.Symbol))
	for _, s := range f.Symbol {
		out = append(out, news.Feed{Name: s.Name, URL: s.URL})
	}
	return out
}
