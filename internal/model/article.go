package model

import "time"

// Article is a news article as served to clients and stored in news_articles.
// A zero PublishedAt means the source did not report a publish time.
type Article struct {
	ID          int64
	TickerID    int64
	Title       string
	URL         string
	Source      string
	PublishedAt time.Time
	Body        string
	CollectedAt time.Time
}
