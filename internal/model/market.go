package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a point-in-time price. Quotes are never cached for valuation.
type Quote struct {
	Symbol   string          `json:"symbol"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	AsOf     time.Time       `json:"asOf"`
}

// PriceBar is one daily OHLCV bar.
type PriceBar struct {
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// PriceHistory is a series of daily bars for a period such as "1y".
type PriceHistory struct {
	Symbol   string     `json:"symbol"`
	Currency string     `json:"currency"`
	Period   string     `json:"period"`
	Bars     []PriceBar `json:"bars"`
}

// CompanyInfo holds descriptive and valuation fields for a listed company.
// Optional numeric fields are nil when the provider does not report them.
type CompanyInfo struct {
	Symbol           string           `json:"symbol"`
	Name             string           `json:"name"`
	Sector           string           `json:"sector"`
	Industry         string           `json:"industry"`
	Currency         string           `json:"currency"`
	Exchange         string           `json:"exchange"`
	MarketCap        *int64           `json:"marketCap,omitempty"`
	CurrentPrice     *decimal.Decimal `json:"currentPrice,omitempty"`
	FiftyTwoWeekHigh *decimal.Decimal `json:"fiftyTwoWeekHigh,omitempty"`
	FiftyTwoWeekLow  *decimal.Decimal `json:"fiftyTwoWeekLow,omitempty"`
	TrailingPE       *float64         `json:"trailingPE,omitempty"`
	DividendYield    *float64         `json:"dividendYield,omitempty"`
	Volume           *int64           `json:"volume,omitempty"`
	Beta             *float64         `json:"beta,omitempty"`
}

// StockMetrics are return and risk statistics derived from a price history.
// Percentages are expressed as 0-100 values.
type StockMetrics struct {
	Symbol               string          `json:"symbol"`
	Period               string          `json:"period"`
	CurrentPrice         decimal.Decimal `json:"currentPrice"`
	TotalReturnPct       float64         `json:"totalReturnPct"`
	AnnualizedVolatility float64         `json:"annualizedVolatilityPct"`
	SharpeRatio          float64         `json:"sharpeRatio"`
	MaxDrawdownPct       float64         `json:"maxDrawdownPct"`
	TradingDays          int             `json:"tradingDays"`
	PeriodStart          time.Time       `json:"periodStart"`
	PeriodEnd            time.Time       `json:"periodEnd"`
}

// Stock is persisted company metadata.
type Stock struct {
	Symbol      string    `json:"symbol"`
	CompanyName string    `json:"companyName"`
	Sector      string    `json:"sector"`
	Industry    string    `json:"industry"`
	Currency    string    `json:"currency"`
	Exchange    string    `json:"exchange"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// StoredPrice is a daily closing price recorded by the refresh job.
type StoredPrice struct {
	ID       string          `json:"id"`
	Symbol   string          `json:"symbol"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Date     time.Time       `json:"date"`
}
