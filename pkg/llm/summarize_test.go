package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/jonas-jun/inv-secretary/internal/model"
)

type fakeProvider struct {
	name    string
	text    string
	err     error
	prompts []string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Complete(ctx context.Context, prompt string) (*Completion, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	return &Completion{Text: f.text, ModelVersion: f.name + "-model"}, nil
}

func articles(n int) []SummaryArticle {
	out := make([]SummaryArticle, n)
	for i := range out {
		out[i] = SummaryArticle{
			Title:  fmt.Sprintf("Headline %d", i),
			Source: "Reuters",
			Body:   fmt.Sprintf("Body %d", i),
		}
	}
	return out
}

func TestSummarizeEmptyInput(t *testing.T) {
	p := &fakeProvider{name: "claude"}

	_, err := Summarize(context.Background(), p, SummaryRequest{Subject: model.NewSubject("AAPL")})

	assert.Equal(t, true, errors.Is(err, ErrEmptyInput))
	assert.Equal(t, 0, len(p.prompts))
}

func TestSummarizeFencedResponse(t *testing.T) {
	p := &fakeProvider{
		name: "claude",
		text: "```json\n" + `{
  "summary": [
    {"point": "Apple beat estimates", "quote": "revenue rose 8%"},
    {"point": "Services grew"}
  ],
  "sentiment_score": 0.45,
  "sentiment_label": "Positive"
}` + "\n```",
	}

	d, err := Summarize(context.Background(), p, SummaryRequest{
		Subject:  model.Subject{Symbol: "AAPL", DisplayName: "Apple Inc."},
		Articles: articles(3),
		Language: model.LanguageEnglish,
	})

	assert.Equal(t, nil, err)
	assert.Equal(t, []model.SummaryPoint{
		{Point: "Apple beat estimates", Quote: "revenue rose 8%"},
		{Point: "Services grew", Quote: ""},
	}, d.Points)
	assert.Equal(t, 0.45, d.SentimentScore)
	assert.Equal(t, model.SentimentPositive, d.SentimentLabel)
	assert.Equal(t, "claude-model", d.ModelVersion)
	assert.Equal(t, []int64{0, 1, 2}, d.ArticleIDs)
	assert.Equal(t, 3, d.ArticleCount)
	assert.Equal(t, model.LanguageEnglish, d.Language)
}

func TestSummarizeDefaults(t *testing.T) {
	p := &fakeProvider{name: "gemini", text: `{"summary":[{"point":"Quiet day"}]}`}

	d, err := Summarize(context.Background(), p, SummaryRequest{
		Subject:  model.NewSubject("MSFT"),
		Articles: articles(1),
		Language: model.LanguageKorean,
	})

	assert.Equal(t, nil, err)
	assert.Equal(t, 0.0, d.SentimentScore)
	assert.Equal(t, model.SentimentNeutral, d.SentimentLabel)
}

func TestSummarizeClampsScore(t *testing.T) {
	p := &fakeProvider{name: "claude", text: `{"summary":[],"sentiment_score":3.2,"sentiment_label":"positive"}`}

	d, err := Summarize(context.Background(), p, SummaryRequest{
		Subject:  model.NewSubject("TSLA"),
		Articles: articles(2),
		Language: model.LanguageEnglish,
	})

	assert.Equal(t, nil, err)
	assert.Equal(t, 1.0, d.SentimentScore)
	assert.Equal(t, model.SentimentPositive, d.SentimentLabel)
}

func TestSummarizeCapsArticlesAndPoints(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`{"summary":[`)
	for i := 0; i < 14; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(fmt.Sprintf(`{"point":"p%d","quote":""}`, i))
	}
	sb.WriteString(`],"sentiment_score":-0.2,"sentiment_label":"Negative"}`)
	p := &fakeProvider{name: "claude", text: sb.String()}

	d, err := Summarize(context.Background(), p, SummaryRequest{
		Subject:  model.NewSubject("NVDA"),
		Articles: articles(15),
		Language: model.LanguageEnglish,
	})

	assert.Equal(t, nil, err)
	assert.Equal(t, 10, len(d.Points))
	assert.Equal(t, 10, d.ArticleCount)
	assert.Equal(t, 10, len(d.ArticleIDs))
	assert.Equal(t, false, strings.Contains(p.prompts[0], "Headline 10"))
	assert.Equal(t, true, strings.Contains(p.prompts[0], "Headline 9"))
}

func TestSummarizeParseError(t *testing.T) {
	p := &fakeProvider{name: "openai", text: "I cannot summarize these articles."}

	_, err := Summarize(context.Background(), p, SummaryRequest{
		Subject:  model.NewSubject("AAPL"),
		Articles: articles(1),
		Language: model.LanguageEnglish,
	})

	var perr *ParseError
	assert.Equal(t, true, errors.As(err, &perr))
	assert.Equal(t, "openai", perr.Provider)
	assert.Equal(t, "I cannot summarize these articles.", perr.Raw)
}

func TestSummarizeProviderError(t *testing.T) {
	boom := errors.New("upstream 529")
	p := &fakeProvider{name: "claude", err: boom}

	_, err := Summarize(context.Background(), p, SummaryRequest{
		Subject:  model.NewSubject("AAPL"),
		Articles: articles(1),
		Language: model.LanguageEnglish,
	})

	assert.Equal(t, true, errors.Is(err, boom))
	var perr *ParseError
	assert.Equal(t, false, errors.As(err, &perr))
}

func TestBuildPrompt(t *testing.T) {
	long := strings.Repeat("가", 600)
	arts := []SummaryArticle{{Title: "Stocks rally", Source: "MarketWatch", Body: long}}

	market := buildPrompt(model.NewSubject(model.MarketSymbol), arts, model.LanguageKorean)
	assert.Equal(t, true, strings.Contains(market, "MarketWatch front page"))
	assert.Equal(t, true, strings.Contains(market, "Korean"))
	assert.Equal(t, true, strings.Contains(market, strings.Repeat("가", 500)))
	assert.Equal(t, false, strings.Contains(market, strings.Repeat("가", 501)))

	symbol := buildPrompt(model.Subject{Symbol: "AAPL", DisplayName: "Apple Inc."}, arts, model.LanguageEnglish)
	assert.Equal(t, true, strings.Contains(symbol, "AAPL (Apple Inc.)"))
	assert.Equal(t, true, strings.Contains(symbol, "Write the summary in English."))
	assert.Equal(t, false, strings.Contains(symbol, "MarketWatch front page"))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "ab", truncateRunes("abc", 2))
	assert.Equal(t, "한국", truncateRunes("한국어", 2))
}
