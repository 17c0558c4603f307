package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonas-jun/inv-secretary/internal/model"
)

// MaxArticles is the most articles a single prompt carries.
const MaxArticles = 10

var ErrEmptyInput = errors.New("no articles to summarize")

// ParseError reports a provider response that could not be decoded.
type ParseError struct {
	Provider string
	Raw      string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s response: %v", e.Provider, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type SummaryArticle struct {
	Title  string
	Source string
	Body   string
}

type SummaryRequest struct {
	Subject  model.Subject
	Articles []SummaryArticle
	Language model.Language
}

type digestResponse struct {
	Summary []struct {
		Point string `json:"point"`
		Quote string `json:"quote"`
	} `json:"summary"`
	SentimentScore *float64 `json:"sentiment_score"`
	SentimentLabel string   `json:"sentiment_label"`
}

// Summarize runs one provider call for req and assembles the digest.
// There is no retry here; callers decide whether to try another provider.
func Summarize(ctx context.Context, provider Provider, req SummaryRequest) (*model.Digest, error) {
	if len(req.Articles) == 0 {
		return nil, ErrEmptyInput
	}

	articles := req.Articles
	if len(articles) > MaxArticles {
		articles = articles[:MaxArticles]
	}

	prompt := buildPrompt(req.Subject, articles, req.Language)

	completion, err := provider.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	content := cleanJSONResponse(completion.Text)

	var parsed digestResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, &ParseError{Provider: provider.Name(), Raw: completion.Text, Err: err}
	}

	points := make([]model.SummaryPoint, 0, len(parsed.Summary))
	for _, s := range parsed.Summary {
		point := strings.TrimSpace(s.Point)
		if point == "" {
			continue
		}
		points = append(points, model.SummaryPoint{Point: point, Quote: strings.TrimSpace(s.Quote)})
		if len(points) == maxPoints {
			break
		}
	}

	score := 0.0
	if parsed.SentimentScore != nil {
		score = *parsed.SentimentScore
	}
	if score < -1 || score > 1 {
		slog.Warn("sentiment score out of range, clamping",
			"provider", provider.Name(), "symbol", req.Subject.Symbol, "score", score)
		score = clamp(score)
	}

	ids := make([]int64, len(articles))
	for i := range articles {
		ids[i] = int64(i)
	}

	return &model.Digest{
		Points:         points,
		SentimentScore: score,
		SentimentLabel: normalizeLabel(parsed.SentimentLabel),
		ModelVersion:   completion.ModelVersion,
		ArticleIDs:     ids,
		ArticleCount:   len(articles),
		Language:       req.Language,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

func clamp(score float64) float64 {
	if score < -1 {
		return -1
	}
	if score > 1 {
		return 1
	}
	return score
}

func normalizeLabel(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "positive":
		return model.SentimentPositive
	case "negative":
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}
