package news

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxFullTextChars = 2000
	minFullTextChars = 100
)

// articleSelectors are tried in order until enough paragraph text is found.
var articleSelectors = []string{
	"article p",
	".article-body p",
	".story-body p",
	"[itemprop='articleBody'] p",
	"main p",
}

type Scraper struct {
	httpClient *http.Client
}

func NewScraper() *Scraper {
	return &Scraper{httpClient: newHTTPClient()}
}

// FullText downloads a page and extracts its article paragraphs.
func (s *Scraper) FullText(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Selectors overlap, so keep the longest single pass instead of merging.
	var fullText string
	for _, selector := range articleSelectors {
		var content strings.Builder
		doc.Find(selector).Each(func(i int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if len(text) > 50 {
				content.WriteString(text)
				content.WriteString(" ")
			}
		})

		if text := strings.TrimSpace(content.String()); len(text) > len(fullText) {
			fullText = text
		}
		if len(fullText) > 500 {
			break
		}
	}

	if len([]rune(fullText)) < minFullTextChars {
		return "", fmt.Errorf("insufficient content extracted")
	}

	return truncateRunes(fullText, maxFullTextChars), nil
}

// stripHTML returns the visible text of an HTML fragment with whitespace collapsed.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
