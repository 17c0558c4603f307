package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonas-jun/inv-secretary/internal/model"
)

type ArticleStore interface {
	GetArticlesSince(ctx context.Context, tickerID int64, since time.Time, limit int) ([]model.Article, error)
	SaveArticle(ctx context.Context, article *model.Article) (bool, error)
}

// ArticleCache serves recently collected articles so repeated requests for
// the same subject inside the TTL do not hit upstream sources.
type ArticleCache struct {
	store ArticleStore
	ttl   time.Duration
	now   func() time.Time
}

func NewArticleCache(store ArticleStore, ttl time.Duration) *ArticleCache {
	return &ArticleCache{store: store, ttl: ttl, now: time.Now}
}

// Get reports hit=false with a nil error when no article was collected inside
// the TTL. A non-nil error means the store could not be read.
func (c *ArticleCache) Get(ctx context.Context, tickerID int64, limit int) ([]model.Article, bool, error) {
	cutoff := c.now().Add(-c.ttl)

	articles, err := c.store.GetArticlesSince(ctx, tickerID, cutoff, limit)
	if err != nil {
		return nil, false, fmt.Errorf("reading article cache: %w", err)
	}

	if len(articles) == 0 {
		slog.Debug("article cache miss", "ticker_id", tickerID)
		return nil, false, nil
	}

	slog.Info("article cache hit", "ticker_id", tickerID, "count", len(articles))
	return articles, true, nil
}

// Put stores url-bearing articles and returns the rows actually inserted.
// Articles whose url is already stored are skipped without error.
func (c *ArticleCache) Put(ctx context.Context, tickerID int64, articles []model.Article) ([]model.Article, error) {
	var saved []model.Article
	var duplicated, skipped int

	for _, a := range articles {
		if a.URL == "" {
			skipped++
			continue
		}

		a.TickerID = tickerID
		ok, err := c.store.SaveArticle(ctx, &a)
		if err != nil {
			return saved, fmt.Errorf("saving article %s: %w", a.URL, err)
		}

		if !ok {
			duplicated++
			continue
		}
		saved = append(saved, a)
	}

	slog.Info("articles cached", "ticker_id", tickerID, "saved", len(saved), "duplicated", duplicated, "skipped_no_url", skipped)
	return saved, nil
}
