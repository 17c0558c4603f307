package llm

import (
	"fmt"
	"strings"

	"github.com/jonas-jun/inv-secretary/internal/model"
)

const (
	maxBodyChars = 500
	maxPoints    = 10
)

const responseShape = `Output as JSON only, no other text:
{
  "summary": [
    {"point": "summary sentence", "quote": "supporting phrase from the source article (English)"}
  ],
  "sentiment_score": 0.0,
  "sentiment_label": "Positive | Neutral | Negative"
}`

const marketPrompt = `You are a sharp assistant helping a stock investor.
Summarize the latest %d news items from the MarketWatch front page (https://www.marketwatch.com).

Rules:
1. Condense the insights that matter to investors into at most %d bullet points.
2. Keep every bullet objective and professional.
3. Give one sentiment score between -1.0 and +1.0 for the overall news flow.
4. %s

%s

News:
%s`

const symbolPrompt = `You are a financial news analyst. You are reviewing the latest %d news items about %s (%s).

Rules:
1. Summarize the insights that matter to %s investors in at most %d bullet points.
2. Merge duplicated stories and order bullets by importance to an investor.
3. Give one sentiment score between -1.0 and +1.0 for the overall news flow.
4. %s

%s

News:
%s`

func languageInstruction(lang model.Language) string {
	if lang == model.LanguageKorean {
		return "Write the summary in Korean (한국어로 작성하세요)."
	}
	return "Write the summary in English."
}

func buildPrompt(subject model.Subject, articles []SummaryArticle, lang model.Language) string {
	var sb strings.Builder
	for i, a := range articles {
		sb.WriteString(fmt.Sprintf("[Article %d] Title: %s\n", i+1, a.Title))
		sb.WriteString(fmt.Sprintf("Source: %s\n", a.Source))
		sb.WriteString(fmt.Sprintf("Body: %s\n\n", truncateRunes(a.Body, maxBodyChars)))
	}

	if subject.IsMarket() {
		return fmt.Sprintf(marketPrompt, len(articles), maxPoints, languageInstruction(lang), responseShape, sb.String())
	}

	name := subject.DisplayName
	if name == "" {
		name = subject.Symbol
	}
	return fmt.Sprintf(symbolPrompt, len(articles), subject.Symbol, name, subject.Symbol, maxPoints,
		languageInstruction(lang), responseShape, sb.String())
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around JSON.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}
