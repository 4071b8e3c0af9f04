package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio represents a portfolio from the database
type Portfolio struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Position is a holding of one symbol inside a portfolio.
// Shares are always positive for a stored position; a symbol appears at most
// once per portfolio.
type Position struct {
	ID                string          `json:"id"`
	PortfolioID       string          `json:"portfolioId"`
	Symbol            string          `json:"symbol"`
	Shares            decimal.Decimal `json:"shares"`
	CostBasisPerShare decimal.Decimal `json:"costBasisPerShare"`
	AcquiredAt        time.Time       `json:"acquiredAt"`
}

// InvestedValue returns shares multiplied by cost basis.
func (p Position) InvestedValue() decimal.Decimal {
	return p.Shares.Mul(p.CostBasisPerShare)
}

// PositionValuation is a position priced against a fresh quote.
type PositionValuation struct {
	Symbol            string          `json:"symbol"`
	Shares            decimal.Decimal `json:"shares"`
	CostBasisPerShare decimal.Decimal `json:"costBasisPerShare"`
	Price             decimal.Decimal `json:"price"`
	Currency          string          `json:"currency"`
	CurrentValue      decimal.Decimal `json:"currentValue"`
	InvestedValue     decimal.Decimal `json:"investedValue"`
	GainLoss          decimal.Decimal `json:"gainLoss"`
	ReturnPct         decimal.Decimal `json:"returnPct"`
	QuotedAt          time.Time       `json:"quotedAt"`
}

// Valuation is the market value of a whole portfolio at ValuedAt.
// It is only produced when every position could be priced.
type Valuation struct {
	PortfolioID   string              `json:"portfolioId"`
	CurrentValue  decimal.Decimal     `json:"currentValue"`
	InvestedValue decimal.Decimal     `json:"investedValue"`
	GainLoss      decimal.Decimal     `json:"gainLoss"`
	Positions     []PositionValuation `json:"positions"`
	ValuedAt      time.Time           `json:"valuedAt"`
}

// Performance reports returns measured against cost basis.
// TotalReturn is the ratio (current - invested) / invested; TotalReturnPct is
// the same figure multiplied by 100 and rounded to two decimals.
type Performance struct {
	PortfolioID    string          `json:"portfolioId"`
	Period         string          `json:"period"`
	CurrentValue   decimal.Decimal `json:"currentValue"`
	InvestedValue  decimal.Decimal `json:"investedValue"`
	GainLoss       decimal.Decimal `json:"gainLoss"`
	TotalReturn    decimal.Decimal `json:"totalReturn"`
	TotalReturnPct decimal.Decimal `json:"totalReturnPct"`
}

// PortfolioOverview sums the valuations of every portfolio an owner holds.
type PortfolioOverview struct {
	OwnerID        string          `json:"ownerId"`
	PortfolioCount int             `json:"portfolioCount"`
	CurrentValue   decimal.Decimal `json:"currentValue"`
	InvestedValue  decimal.Decimal `json:"investedValue"`
	GainLoss       decimal.Decimal `json:"gainLoss"`
	TotalReturnPct decimal.Decimal `json:"totalReturnPct"`
	Portfolios     []Valuation     `json:"portfolios"`
}

// ValuationSnapshot is a stored end-of-day valuation for a portfolio.
type ValuationSnapshot struct {
	ID            string          `json:"id"`
	PortfolioID   string          `json:"portfolioId"`
	Date          time.Time       `json:"date"`
	CurrentValue  decimal.Decimal `json:"currentValue"`
	InvestedValue decimal.Decimal `json:"investedValue"`
	CalculatedAt  time.Time       `json:"calculatedAt"`
}
