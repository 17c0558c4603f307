package news

import (
	"context"
	"net/http"
	"time"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Article is a raw candidate article. A zero PublishedAt means the source
// did not report a publish time.
type Article struct {
	Title       string
	URL         string
	Source      string
	PublishedAt time.Time
	Body        string
}

// Source fetches recent articles for a ticker symbol.
type Source interface {
	Fetch(ctx context.Context, symbol string, limit int) ([]Article, error)
	Name() string
}

// Feed is one RSS feed the fallback and market sources read.
type Feed struct {
	Name string
	URL  string
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
