package request

import "github.com/shopspring/decimal"

// CreatePortfolioRequest represents the request body for creating a portfolio
type CreatePortfolioRequest struct {
	OwnerID     string `json:"ownerId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AddPositionRequest represents the request body for adding shares of a
// symbol to a portfolio. Shares and Price are pointers so a missing field
// can be told apart from zero.
type AddPositionRequest struct {
	Symbol     string           `json:"symbol"`
	Shares     *decimal.Decimal `json:"shares"`
	Price      *decimal.Decimal `json:"price"`
	AcquiredAt string           `json:"acquiredAt,omitempty"`
}
