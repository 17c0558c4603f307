package news

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
)

// MarketClient reads the designated market-wide feed. It ignores the symbol
// and keeps the feed's own ordering.
type MarketClient struct {
	feed    Feed
	parser  *gofeed.Parser
	scraper *Scraper
	now     func() time.Time
}

func NewMarketClient(feed Feed) *MarketClient {
	return &MarketClient{
		feed:    feed,
		parser:  newFeedParser(),
		scraper: NewScraper(),
		now:     time.Now,
	}
}

func (c *MarketClient) Name() string {
	return c.feed.Name
}

func (c *MarketClient) Fetch(ctx context.Context, _ string, limit int) ([]Article, error) {
	feed, err := c.parser.ParseURLWithContext(c.feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", c.feed.Name, err)
	}

	items := feed.Items
	if len(items) > limit {
		items = items[:limit]
	}

	now := c.now().UTC()
	articles := make([]Article, 0, len(items))
	for _, item := range items {
		pub := itemTime(item)
		if pub.IsZero() {
			pub = now
		}

		articles = append(articles, Article{
			Title:       item.Title,
			URL:         item.Link,
			Source:      c.feed.Name,
			PublishedAt: pub,
			Body:        c.body(ctx, item),
		})
	}

	return articles, nil
}

func (c *MarketClient) body(ctx context.Context, item *gofeed.Item) string {
	if summary := stripHTML(item.Description); summary != "" {
		return summary
	}
	if item.Link != "" {
		if text, err := c.scraper.FullText(ctx, item.Link); err == nil {
			return text
		}
	}
	return item.Title
}
