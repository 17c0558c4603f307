package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonas-jun/inv-secretary/internal/model"
)

type SummaryStore interface {
	GetLatestSince(ctx context.Context, tickerID int64, since time.Time) (*model.SummaryRecord, error)
	SaveSummary(ctx context.Context, summary *model.SummaryRecord) error
	DeleteByTicker(ctx context.Context, tickerID int64) (int, error)
}

// DigestCache keeps the latest digest per ticker. Korean and English
// renderings of one analysis share a single row.
type DigestCache struct {
	store SummaryStore
	ttl   time.Duration
	now   func() time.Time
}

func NewDigestCache(store SummaryStore, ttl time.Duration) *DigestCache {
	return &DigestCache{store: store, ttl: ttl, now: time.Now}
}

// Get returns the freshest digest inside the TTL. When the requested language
// was never generated for that row the other language is served instead.
func (c *DigestCache) Get(ctx context.Context, tickerID int64, lang model.Language) (*model.Digest, bool, error) {
	cutoff := c.now().Add(-c.ttl)

	row, err := c.store.GetLatestSince(ctx, tickerID, cutoff)
	if err != nil {
		return nil, false, fmt.Errorf("reading digest cache: %w", err)
	}

	if row == nil {
		slog.Debug("digest cache miss", "ticker_id", tickerID)
		return nil, false, nil
	}

	servedLang := lang
	text := summaryText(row, lang)
	if text == "" {
		servedLang = lang.Other()
		text = summaryText(row, servedLang)
	}

	decoded := decodePoints(text)
	if decoded.Format == formatLegacyLines {
		slog.Debug("decoded legacy digest row", "ticker_id", tickerID, "summary_id", row.ID)
	}

	slog.Info("digest cache hit", "ticker_id", tickerID, "lang", lang, "served_lang", servedLang)

	return &model.Digest{
		Points:         decoded.Points,
		SentimentScore: row.SentimentScore,
		SentimentLabel: row.SentimentLabel,
		ModelVersion:   row.ModelVersion,
		ArticleIDs:     row.ArticleIDs,
		ArticleCount:   row.ArticleCount,
		Language:       servedLang,
		CreatedAt:      row.CreatedAt,
	}, true, nil
}

// Put inserts a new row holding primary and, when given, a second rendering
// of the same analysis. Sentiment and article metadata come from primary.
func (c *DigestCache) Put(ctx context.Context, tickerID int64, primary *model.Digest, secondary *model.Digest) error {
	row := &model.SummaryRecord{
		TickerID:       tickerID,
		ArticleIDs:     primary.ArticleIDs,
		SentimentScore: primary.SentimentScore,
		SentimentLabel: primary.SentimentLabel,
		ModelVersion:   primary.ModelVersion,
		ArticleCount:   primary.ArticleCount,
		CreatedAt:      primary.CreatedAt,
	}

	for _, d := range []*model.Digest{secondary, primary} {
		if d == nil {
			continue
		}
		encoded, err := encodePoints(d.Points)
		if err != nil {
			return fmt.Errorf("encoding digest: %w", err)
		}
		setSummaryText(row, d.Language, encoded)
	}

	if err := c.store.SaveSummary(ctx, row); err != nil {
		return fmt.Errorf("saving digest: %w", err)
	}

	slog.Info("digest cached", "ticker_id", tickerID, "summary_id", row.ID, "article_count", row.ArticleCount)
	return nil
}

// Invalidate removes every digest row of the ticker.
func (c *DigestCache) Invalidate(ctx context.Context, tickerID int64) (int, error) {
	deleted, err := c.store.DeleteByTicker(ctx, tickerID)
	if err != nil {
		return 0, fmt.Errorf("invalidating digests: %w", err)
	}
	slog.Info("digest cache invalidated", "ticker_id", tickerID, "deleted", deleted)
	return deleted, nil
}

func summaryText(row *model.SummaryRecord, lang model.Language) string {
	if lang == model.LanguageEnglish {
		return row.SummaryEN
	}
	return row.SummaryKO
}

func setSummaryText(row *model.SummaryRecord, lang model.Language, text string) {
	if lang == model.LanguageEnglish {
		row.SummaryEN = text
		return
	}
	row.SummaryKO = text
}
