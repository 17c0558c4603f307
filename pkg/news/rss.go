package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// RSSClient is the keyword-filtered fallback over the configured feeds.
type RSSClient struct {
	feeds  []Feed
	parser *gofeed.Parser
}

func NewRSSClient(feeds []Feed) *RSSClient {
	return &RSSClient{feeds: feeds, parser: newFeedParser()}
}

func newFeedParser() *gofeed.Parser {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = newHTTPClient()
	return parser
}

func (c *RSSClient) Name() string {
	return "RSS"
}

func (c *RSSClient) Fetch(ctx context.Context, symbol string, limit int) ([]Article, error) {
	keyword := strings.ToUpper(symbol)

	var articles []Article
	var errs []error
	for _, f := range c.feeds {
		feed, err := c.parser.ParseURLWithContext(f.URL, ctx)
		if err != nil {
			slog.Warn("rss feed unavailable", "feed", f.Name, "error", err)
			errs = append(errs, fmt.Errorf("fetching %s: %w", f.Name, err))
			continue
		}

		for _, item := range feed.Items {
			if !strings.Contains(strings.ToUpper(item.Title), keyword) {
				continue
			}
			articles = append(articles, Article{
				Title:       item.Title,
				URL:         item.Link,
				Source:      f.Name,
				PublishedAt: itemTime(item),
				Body:        firstNonEmpty(stripHTML(item.Description), item.Title),
			})
		}
	}

	if len(articles) == 0 && len(errs) > 0 && len(errs) == len(c.feeds) {
		return nil, errors.Join(errs...)
	}

	sortNewestFirst(articles)
	if len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}

// itemTime returns the entry's publish time, or zero when the feed has none.
func itemTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return time.Time{}
}

// sortNewestFirst orders by publish time descending with undated articles last.
func sortNewestFirst(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i].PublishedAt, articles[j].PublishedAt
		if a.IsZero() != b.IsZero() {
			return !a.IsZero()
		}
		return a.After(b)
	})
}
