package news

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonas-jun/inv-secretary/internal/model"
)

// Fetcher walks the source chain for a subject. It never fails: a source
// that errors or returns nothing is logged and the next one is tried.
type Fetcher struct {
	structured []Source
	fallback   Source
	market     Source
	timeout    time.Duration
}

func NewFetcher(structured []Source, fallback, market Source, timeout time.Duration) *Fetcher {
	return &Fetcher{
		structured: structured,
		fallback:   fallback,
		market:     market,
		timeout:    timeout,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, subject model.Subject, limit int) []Article {
	if subject.IsMarket() {
		return f.fetchFrom(ctx, f.market, subject.Symbol, limit)
	}

	for _, src := range f.structured {
		if articles := f.fetchFrom(ctx, src, subject.Symbol, limit); len(articles) > 0 {
			return articles
		}
	}

	slog.Warn("structured sources returned nothing, trying rss", "symbol", subject.Symbol)
	return f.fetchFrom(ctx, f.fallback, subject.Symbol, limit)
}

func (f *Fetcher) fetchFrom(ctx context.Context, src Source, symbol string, limit int) []Article {
	if src == nil {
		return nil
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	articles, err := src.Fetch(ctx, symbol, limit)
	if err != nil {
		slog.Warn("source unavailable", "source", src.Name(), "symbol", symbol, "error", err)
		return nil
	}

	if len(articles) > limit {
		articles = articles[:limit]
	}
	slog.Info("fetched articles", "source", src.Name(), "symbol", symbol, "count", len(articles))
	return articles
}
