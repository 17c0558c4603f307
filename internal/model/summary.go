package model

import "time"

type Language string

const (
	LanguageKorean  Language = "ko"
	LanguageEnglish Language = "en"
)

func ParseLanguage(s string) (Language, bool) {
	switch Language(s) {
	case LanguageKorean, LanguageEnglish:
		return Language(s), true
	}
	return "", false
}

// Other returns the language the digest cache falls back to.
func (l Language) Other() Language {
	if l == LanguageEnglish {
		return LanguageKorean
	}
	return LanguageEnglish
}

const (
	SentimentPositive = "Positive"
	SentimentNeutral  = "Neutral"
	SentimentNegative = "Negative"
)

type SummaryPoint struct {
	Point string `json:"point"`
	Quote string `json:"quote"`
}

type Digest struct {
	Points         []SummaryPoint
	SentimentScore float64
	SentimentLabel string
	ModelVersion   string
	ArticleIDs     []int64
	ArticleCount   int
	Language       Language
	CreatedAt      time.Time
}

// SummaryRecord is one row of ticker_summaries. SummaryKO and SummaryEN hold
// the encoded points of each rendering and are empty when not generated.
type SummaryRecord struct {
	ID             int64
	TickerID       int64
	ArticleIDs     []int64
	SummaryKO      string
	SummaryEN      string
	SentimentScore float64
	SentimentLabel string
	ModelVersion   string
	ArticleCount   int
	CreatedAt      time.Time
}
