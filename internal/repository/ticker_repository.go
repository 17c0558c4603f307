package repository

import (
	"context"
	"database/sql"

	"github.com/jonas-jun/inv-secretary/internal/model"
)

type TickerRepository struct {
	db *sql.DB
}

func NewTickerRepository(db *sql.DB) *TickerRepository {
	return &TickerRepository{db: db}
}

// GetOrCreate returns the ticker id for symbol, inserting the row on first use.
func (r *TickerRepository) GetOrCreate(ctx context.Context, symbol, name string) (int64, error) {
	if name == "" {
		name = symbol
	}

	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO tickers(symbol, name)
		VALUES($1, $2)
		ON CONFLICT (symbol) DO NOTHING
		RETURNING id
	`, symbol, name).Scan(&id)

	if err == sql.ErrNoRows {
		err = r.db.QueryRowContext(ctx, `
			SELECT id FROM tickers WHERE symbol = $1
		`, symbol).Scan(&id)
	}

	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *TickerRepository) GetBySymbol(ctx context.Context, symbol string) (*model.Ticker, error) {
	var t model.Ticker
	err := r.db.QueryRowContext(ctx, `
		SELECT id, symbol, name, created_at
		FROM tickers
		WHERE symbol = $1
	`, symbol).Scan(&t.ID, &t.Symbol, &t.Name, &t.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &t, nil
}
