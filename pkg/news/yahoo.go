package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type YahooClient struct {
	httpClient *http.Client
}

func NewYahooClient() *YahooClient {
	return &YahooClient{httpClient: newHTTPClient()}
}

func (c *YahooClient) Name() string {
	return "Yahoo Finance"
}

func (c *YahooClient) Fetch(ctx context.Context, symbol string, limit int) ([]Article, error) {
	q := url.Values{}
	q.Set("q", symbol)
	q.Set("quotesCount", "0")
	q.Set("newsCount", strconv.Itoa(limit))
	endpoint := "https://query1.finance.yahoo.com/v1/finance/search?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("yahoo request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo fetch: status %d", resp.StatusCode)
	}

	var raw yahooResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}

	articles := make([]Article, 0, len(raw.News))
	for _, item := range raw.News {
		a, ok := item.toArticle()
		if !ok {
			continue
		}
		articles = append(articles, a)
	}

	return articles, nil
}

type yahooResponse struct {
	News []yahooItem `json:"news"`
}

type yahooItem struct {
	Title               string        `json:"title"`
	Summary             string        `json:"summary"`
	Link                string        `json:"link"`
	URL                 string        `json:"url"`
	Publisher           string        `json:"publisher"`
	ProviderPublishTime unixTime      `json:"providerPublishTime"`
	Content             *yahooContent `json:"content"`
}

type yahooContent struct {
	Title           string         `json:"title"`
	Body            string         `json:"body"`
	Summary         string         `json:"summary"`
	PubDate         string         `json:"pubDate"`
	PublishTime     string         `json:"publishTime"`
	ClickThroughURL *yahooLink     `json:"clickThroughUrl"`
	CanonicalURL    *yahooLink     `json:"canonicalUrl"`
	Provider        *yahooProvider `json:"provider"`
}

type yahooLink struct {
	URL string `json:"url"`
}

type yahooProvider struct {
	DisplayName string   `json:"displayName"`
	PublishTime unixTime `json:"publishTime"`
}

// unixTime accepts epoch seconds encoded as a JSON number or string.
// Anything unparseable decodes to zero.
type unixTime int64

func (u *unixTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	*u = unixTime(f)
	return nil
}

func (u unixTime) Time() time.Time {
	if u <= 0 {
		return time.Time{}
	}
	return time.Unix(int64(u), 0).UTC()
}

func (item yahooItem) toArticle() (Article, bool) {
	content := item.Content
	if content == nil {
		content = &yahooContent{}
	}

	title := firstNonEmpty(item.Title, content.Title)
	if title == "" {
		return Article{}, false
	}

	var clickThrough, canonical string
	if content.ClickThroughURL != nil {
		clickThrough = content.ClickThroughURL.URL
	}
	if content.CanonicalURL != nil {
		canonical = content.CanonicalURL.URL
	}

	source := item.Publisher
	if source == "" && content.Provider != nil {
		source = content.Provider.DisplayName
	}
	if source == "" {
		source = "Yahoo Finance"
	}

	return Article{
		Title:       title,
		URL:         firstNonEmpty(clickThrough, item.Link, canonical, item.URL),
		Source:      source,
		PublishedAt: item.publishTime(content),
		Body:        firstNonEmpty(content.Body, content.Summary, item.Summary, title),
	}, true
}

func (item yahooItem) publishTime(content *yahooContent) time.Time {
	if t := item.ProviderPublishTime.Time(); !t.IsZero() {
		return t
	}
	if s := firstNonEmpty(content.PubDate, content.PublishTime); s != "" {
		if t, ok := parseISOTime(s); ok {
			return t
		}
	}
	if content.Provider != nil {
		return content.Provider.PublishTime.Time()
	}
	return time.Time{}
}

// parseISOTime accepts RFC 3339 and zone-less timestamps, the latter as UTC.
func parseISOTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
