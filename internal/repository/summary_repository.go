package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jonas-jun/inv-secretary/internal/model"
	"github.com/lib/pq"
)

type SummaryRepository struct {
	db *sql.DB
}

func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

func (r *SummaryRepository) SaveSummary(ctx context.Context, summary *model.SummaryRecord) error {
	createdAt := summary.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return r.db.QueryRowContext(ctx, `
		INSERT INTO ticker_summaries(ticker_id, article_ids, summary_ko, summary_en, sentiment_score, sentiment_label, model_version, article_count, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, summary.TickerID, pq.Int64Array(summary.ArticleIDs), nullString(summary.SummaryKO), nullString(summary.SummaryEN),
		summary.SentimentScore, summary.SentimentLabel, summary.ModelVersion, summary.ArticleCount, createdAt,
	).Scan(&summary.ID, &summary.CreatedAt)
}

// GetLatestSince returns the newest summary created at or after since, or nil.
func (r *SummaryRepository) GetLatestSince(ctx context.Context, tickerID int64, since time.Time) (*model.SummaryRecord, error) {
	var (
		s          model.SummaryRecord
		articleIDs pq.Int64Array
		summaryKO  sql.NullString
		summaryEN  sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, ticker_id, article_ids, summary_ko, summary_en, sentiment_score, sentiment_label, model_version, article_count, created_at
		FROM ticker_summaries
		WHERE ticker_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT 1
	`, tickerID, since).Scan(&s.ID, &s.TickerID, &articleIDs, &summaryKO, &summaryEN,
		&s.SentimentScore, &s.SentimentLabel, &s.ModelVersion, &s.ArticleCount, &s.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	s.ArticleIDs = articleIDs
	s.SummaryKO = summaryKO.String
	s.SummaryEN = summaryEN.String
	return &s, nil
}

func (r *SummaryRepository) DeleteByTicker(ctx context.Context, tickerID int64) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM ticker_summaries WHERE ticker_id = $1
	`, tickerID)
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	return int(n), err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
