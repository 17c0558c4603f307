package model

import (
	"strings"
	"time"
)

// MarketSymbol is the sentinel subject for market-wide news.
const MarketSymbol = "MARKET"

type Subject struct {
	Symbol      string
	DisplayName string
}

// NewSubject uppercases the symbol so "aapl" and "AAPL" share cache rows.
func NewSubject(symbol string) Subject {
	return Subject{Symbol: strings.ToUpper(strings.TrimSpace(symbol))}
}

func (s Subject) IsMarket() bool {
	return s.Symbol == MarketSymbol
}

type Ticker struct {
	ID        int64
	Symbol    string
	Name      string
	CreatedAt time.Time
}
