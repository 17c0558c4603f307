package cache

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/jonas-jun/inv-secretary/internal/model"
)

type fakeArticleStore struct {
	rows   []model.Article
	nextID int64
	now    time.Time
	err    error
}

func (f *fakeArticleStore) GetArticlesSince(ctx context.Context, tickerID int64, since time.Time, limit int) ([]model.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Article
	for _, a := range f.rows {
		if a.TickerID == tickerID && !a.CollectedAt.Before(since) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PublishedAt.IsZero() != out[j].PublishedAt.IsZero() {
			return !out[i].PublishedAt.IsZero()
		}
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeArticleStore) SaveArticle(ctx context.Context, article *model.Article) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, a := range f.rows {
		if a.URL == article.URL {
			return false, nil
		}
	}
	f.nextID++
	article.ID = f.nextID
	article.CollectedAt = f.now
	f.rows = append(f.rows, *article)
	return true, nil
}

func newTestArticleCache(store *fakeArticleStore, now time.Time) *ArticleCache {
	c := NewArticleCache(store, 3*time.Minute)
	c.now = func() time.Time { return now }
	return c
}

func TestArticleCache_MissWhenEmpty(t *testing.T) {
	now := time.Now()
	c := newTestArticleCache(&fakeArticleStore{now: now}, now)

	articles, hit, err := c.Get(context.Background(), 1, 10)

	assert.Equal(t, nil, err)
	assert.Equal(t, false, hit)
	assert.Equal(t, 0, len(articles))
}

func TestArticleCache_PutThenHit(t *testing.T) {
	now := time.Now()
	store := &fakeArticleStore{now: now}
	c := newTestArticleCache(store, now)

	in := []model.Article{
		{Title: "Older", URL: "https://example.com/older", PublishedAt: now.Add(-2 * time.Hour)},
		{Title: "Undated", URL: "https://example.com/undated"},
		{Title: "Newer", URL: "https://example.com/newer", PublishedAt: now.Add(-1 * time.Hour)},
	}

	saved, err := c.Put(context.Background(), 7, in)
	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(saved))

	got, hit, err := c.Get(context.Background(), 7, 10)
	assert.Equal(t, nil, err)
	assert.Equal(t, true, hit)
	assert.Equal(t, 3, len(got))
	assert.Equal(t, "Newer", got[0].Title)
	assert.Equal(t, "Older", got[1].Title)
	assert.Equal(t, "Undated", got[2].Title)
}

func TestArticleCache_LimitApplied(t *testing.T) {
	now := time.Now()
	store := &fakeArticleStore{now: now}
	c := newTestArticleCache(store, now)

	_, err := c.Put(context.Background(), 1, []model.Article{
		{Title: "A", URL: "https://a"},
		{Title: "B", URL: "https://b"},
		{Title: "C", URL: "https://c"},
	})
	assert.Equal(t, nil, err)

	got, hit, _ := c.Get(context.Background(), 1, 2)
	assert.Equal(t, true, hit)
	assert.Equal(t, 2, len(got))
}

func TestArticleCache_ExpiredRowsMiss(t *testing.T) {
	now := time.Now()
	store := &fakeArticleStore{now: now.Add(-10 * time.Minute)}
	c := newTestArticleCache(store, now)

	_, err := c.Put(context.Background(), 1, []model.Article{{Title: "Stale", URL: "https://stale"}})
	assert.Equal(t, nil, err)

	_, hit, err := c.Get(context.Background(), 1, 10)
	assert.Equal(t, nil, err)
	assert.Equal(t, false, hit)
}

func TestArticleCache_PutSkipsMissingURLAndDuplicates(t *testing.T) {
	now := time.Now()
	store := &fakeArticleStore{now: now}
	c := newTestArticleCache(store, now)

	first, err := c.Put(context.Background(), 1, []model.Article{{Title: "A", URL: "https://a"}})
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(first))

	saved, err := c.Put(context.Background(), 1, []model.Article{
		{Title: "A again", URL: "https://a"},
		{Title: "No link"},
		{Title: "B", URL: "https://b"},
	})

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(saved))
	assert.Equal(t, "B", saved[0].Title)
	assert.Equal(t, int64(1), saved[0].TickerID)
	assert.Equal(t, 2, len(store.rows))
}

func TestArticleCache_StoreErrorIsNotAMiss(t *testing.T) {
	now := time.Now()
	c := newTestArticleCache(&fakeArticleStore{err: errors.New("connection refused")}, now)

	_, hit, err := c.Get(context.Background(), 1, 10)

	assert.Equal(t, false, hit)
	assert.NotEqual(t, nil, err)
}
