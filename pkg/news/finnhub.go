package news

import (
	"context"
	"fmt"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

// finnhubLookback is how far back company news is requested.
const finnhubLookback = 7 * 24 * time.Hour

type FinnHubClient struct {
	client *finnhub.DefaultApiService
	now    func() time.Time
}

func NewFinnHubClient(apiKey string) *FinnHubClient {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return &FinnHubClient{client: client, now: time.Now}
}

func (c *FinnHubClient) Fetch(ctx context.Context, symbol string, limit int) ([]Article, error) {
	to := c.now().UTC()
	from := to.Add(-finnhubLookback)

	res, _, err := c.client.CompanyNews(ctx).
		Symbol(symbol).
		From(from.Format("2006-01-02")).
		To(to.Format("2006-01-02")).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub company news: %w", err)
	}

	var articles []Article
	for _, news := range res {
		a, ok := finnhubArticle(news)
		if !ok {
			continue
		}
		articles = append(articles, a)
		if len(articles) == limit {
			break
		}
	}

	return articles, nil
}

func finnhubArticle(news finnhub.CompanyNews) (Article, bool) {
	var a Article

	if news.Headline != nil {
		a.Title = *news.Headline
	}
	if a.Title == "" {
		return Article{}, false
	}

	if news.Summary != nil {
		a.Body = *news.Summary
	}
	if a.Body == "" {
		a.Body = a.Title
	}

	if news.Url != nil {
		a.URL = *news.Url
	}

	if news.Datetime != nil && *news.Datetime > 0 {
		a.PublishedAt = time.Unix(*news.Datetime, 0).UTC()
	}

	if news.Source != nil {
		a.Source = *news.Source
	}
	if a.Source == "" {
		a.Source = "Finnhub"
	}

	return a, true
}

func (c *FinnHubClient) Name() string {
	return "FinnHub"
}
