package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jonas-jun/inv-secretary/internal/model"
)

type ArticleRepository struct {
	db *sql.DB
}

func NewArticleRepository(db *sql.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// SaveArticle inserts the article unless its url is already stored.
// It reports false without error for a duplicate url.
func (r *ArticleRepository) SaveArticle(ctx context.Context, article *model.Article) (bool, error) {
	var (
		id          int64
		collectedAt time.Time
	)
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO news_articles(ticker_id, title, url, source, published_at, raw_content)
		VALUES($1, $2, $3, $4, $5, $6)
		ON CONFLICT (url) DO NOTHING
		RETURNING id, created_at
	`, article.TickerID, article.Title, article.URL, article.Source, nullTime(article.PublishedAt), article.Body).Scan(&id, &collectedAt)

	if err == sql.ErrNoRows {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	article.ID = id
	article.CollectedAt = collectedAt
	return true, nil
}

// GetArticlesSince returns articles of the ticker collected at or after since,
// newest publish time first with undated articles last.
func (r *ArticleRepository) GetArticlesSince(ctx context.Context, tickerID int64, since time.Time, limit int) ([]model.Article, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ticker_id, title, url, source, published_at, raw_content, created_at
		FROM news_articles
		WHERE ticker_id = $1 AND created_at >= $2
		ORDER BY published_at DESC NULLS LAST
		LIMIT $3
	`, tickerID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []model.Article
	for rows.Next() {
		var (
			a         model.Article
			published sql.NullTime
		)
		err := rows.Scan(&a.ID, &a.TickerID, &a.Title, &a.URL, &a.Source, &published, &a.Body, &a.CollectedAt)
		if err != nil {
			return nil, err
		}
		if published.Valid {
			a.PublishedAt = published.Time
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return articles, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
