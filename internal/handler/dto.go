package handler

import "github.com/jonas-jun/inv-secretary/internal/model"

type NewsResponse struct {
	Symbol      string            `json:"symbol"`
	CompanyName string            `json:"company_name"`
	LastUpdated string            `json:"last_updated"`
	Digest      DigestResponse    `json:"digest"`
	Articles    []ArticleResponse `json:"articles"`
}

type DigestResponse struct {
	Summary         []model.SummaryPoint `json:"summary"`
	Sentiment       SentimentResponse    `json:"sentiment"`
	BasedOnArticles int                  `json:"based_on_articles"`
}

type SentimentResponse struct {
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

// ArticleResponse ids are positions in the articles list. PublishedAt is
// empty when the source did not report a time.
type ArticleResponse struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
}

type RefreshResponse struct {
	Symbol      string `json:"symbol"`
	Invalidated int    `json:"invalidated"`
	Queued      bool   `json:"queued"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}
