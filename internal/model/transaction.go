package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types recorded for position mutations.
const (
	TransactionAdd    = "add"
	TransactionRemove = "remove"
)

// Transaction is an audit record of a position being added to or removed
// from a portfolio. For a removal, Price is the cost basis that was held.
type Transaction struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolioId"`
	Symbol      string          `json:"symbol"`
	Type        string          `json:"type"`
	Shares      decimal.Decimal `json:"shares"`
	Price       decimal.Decimal `json:"price"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
}
