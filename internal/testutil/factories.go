package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-tracker/internal/model"
)

const timestampLayout = time.RFC3339

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build(t, db)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithOwner("alice").
//	    WithName("Custom Portfolio").
//	    Build(t, db)
type PortfolioBuilder struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	CreatedAt   time.Time
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:          MakeID(),
		OwnerID:     "test-owner",
		Name:        MakePortfolioName("Test Portfolio"),
		Description: "Test description",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.ID = id
	return b
}

// WithOwner sets the owner.
func (b *PortfolioBuilder) WithOwner(ownerID string) *PortfolioBuilder {
	b.OwnerID = ownerID
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// WithDescription sets a custom description.
func (b *PortfolioBuilder) WithDescription(desc string) *PortfolioBuilder {
	b.Description = desc
	return b
}

// Build creates the portfolio in the database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	query := `
		INSERT INTO portfolio (id, owner_id, name, description, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.OwnerID, b.Name, b.Description, b.CreatedAt.Format(timestampLayout))
	if err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}

	return model.Portfolio{
		ID:          b.ID,
		OwnerID:     b.OwnerID,
		Name:        b.Name,
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
	}
}

// Convenience functions

// CreatePortfolio creates a portfolio with the given name and default values.
//
// Example usage:
//
//	portfolio := testutil.CreatePortfolio(t, db, "My Portfolio")
func CreatePortfolio(t *testing.T, db *sql.DB, name string) model.Portfolio {
	t.Helper()
	return NewPortfolio().WithName(name).Build(t, db)
}

// CreatePortfolios creates multiple portfolios with unique names.
//
// Example usage:
//
//	portfolios := testutil.CreatePortfolios(t, db, 5)
//	// Creates 5 portfolios with auto-generated names
func CreatePortfolios(t *testing.T, db *sql.DB, count int) []model.Portfolio {
	t.Helper()

	portfolios := make([]model.Portfolio, count)
	for i := 0; i < count; i++ {
		portfolios[i] = NewPortfolio().Build(t, db)
	}
	return portfolios
}

// PositionBuilder provides a fluent interface for creating test positions.
//
// Example usage:
//
//	position := testutil.NewPosition(portfolio.ID).
//	    WithSymbol("AAPL").
//	    WithShares(10).
//	    WithCostBasis(150).
//	    Build(t, db)
type PositionBuilder struct {
	ID                string
	PortfolioID       string
	Symbol            string
	Shares            decimal.Decimal
	CostBasisPerShare decimal.Decimal
	AcquiredAt        time.Time
}

// NewPosition creates a PositionBuilder with sensible defaults.
func NewPosition(portfolioID string) *PositionBuilder {
	return &PositionBuilder{
		ID:                MakeID(),
		PortfolioID:       portfolioID,
		Symbol:            MakeSymbol("TEST"),
		Shares:            decimal.NewFromInt(10),
		CostBasisPerShare: decimal.NewFromInt(100),
		AcquiredAt:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

// WithSymbol sets the symbol.
func (b *PositionBuilder) WithSymbol(symbol string) *PositionBuilder {
	b.Symbol = symbol
	return b
}

// WithShares sets the share count.
func (b *PositionBuilder) WithShares(shares float64) *PositionBuilder {
	b.Shares = decimal.NewFromFloat(shares)
	return b
}

// WithCostBasis sets the cost basis per share.
func (b *PositionBuilder) WithCostBasis(cost float64) *PositionBuilder {
	b.CostBasisPerShare = decimal.NewFromFloat(cost)
	return b
}

// WithAcquiredAt sets the acquisition date.
func (b *PositionBuilder) WithAcquiredAt(date time.Time) *PositionBuilder {
	b.AcquiredAt = date
	return b
}

// Build creates the position in the database and returns it.
func (b *PositionBuilder) Build(t *testing.T, db *sql.DB) model.Position {
	t.Helper()

	query := `
		INSERT INTO position (id, portfolio_id, symbol, shares, cost_basis_per_share, acquired_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.ID,
		b.PortfolioID,
		b.Symbol,
		b.Shares.String(),
		b.CostBasisPerShare.String(),
		b.AcquiredAt.Format("2006-01-02"),
	)
	if err != nil {
		t.Fatalf("Failed to create test position: %v", err)
	}

	return model.Position{
		ID:                b.ID,
		PortfolioID:       b.PortfolioID,
		Symbol:            b.Symbol,
		Shares:            b.Shares,
		CostBasisPerShare: b.CostBasisPerShare,
		AcquiredAt:        b.AcquiredAt,
	}
}

// StockPriceBuilder provides a fluent interface for creating stored prices.
//
// Example usage:
//
//	price := testutil.NewStockPrice("AAPL").
//	    WithDate(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)).
//	    WithPrice(185.5).
//	    Build(t, db)
type StockPriceBuilder struct {
	ID       string
	Symbol   string
	Price    decimal.Decimal
	Currency string
	Date     time.Time
}

// NewStockPrice creates a StockPriceBuilder with sensible defaults.
func NewStockPrice(symbol string) *StockPriceBuilder {
	return &StockPriceBuilder{
		ID:       MakeID(),
		Symbol:   symbol,
		Price:    decimal.NewFromInt(100),
		Currency: "USD",
		Date:     time.Now().UTC().Truncate(24 * time.Hour),
	}
}

// WithDate sets the price date.
func (b *StockPriceBuilder) WithDate(date time.Time) *StockPriceBuilder {
	b.Date = date
	return b
}

// WithPrice sets the price.
func (b *StockPriceBuilder) WithPrice(price float64) *StockPriceBuilder {
	b.Price = decimal.NewFromFloat(price)
	return b
}

// Build creates the stored price in the database and returns it.
func (b *StockPriceBuilder) Build(t *testing.T, db *sql.DB) model.StoredPrice {
	t.Helper()

	query := `
		INSERT INTO stock_price (id, symbol, price, currency, date)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Symbol, b.Price.String(), b.Currency, b.Date.Format("2006-01-02"))
	if err != nil {
		t.Fatalf("Failed to create test stock price: %v", err)
	}

	return model.StoredPrice{
		ID:       b.ID,
		Symbol:   b.Symbol,
		Price:    b.Price,
		Currency: b.Currency,
		Date:     b.Date,
	}
}

// SnapshotBuilder provides a fluent interface for creating valuation snapshots.
type SnapshotBuilder struct {
	ID            string
	PortfolioID   string
	Date          time.Time
	CurrentValue  decimal.Decimal
	InvestedValue decimal.Decimal
}

// NewSnapshot creates a SnapshotBuilder with sensible defaults.
func NewSnapshot(portfolioID string) *SnapshotBuilder {
	return &SnapshotBuilder{
		ID:            MakeID(),
		PortfolioID:   portfolioID,
		Date:          time.Now().UTC().Truncate(24 * time.Hour),
		CurrentValue:  decimal.NewFromInt(1100),
		InvestedValue: decimal.NewFromInt(1000),
	}
}

// WithDate sets the snapshot date.
func (b *SnapshotBuilder) WithDate(date time.Time) *SnapshotBuilder {
	b.Date = date
	return b
}

// WithValues sets the current and invested values.
func (b *SnapshotBuilder) WithValues(current, invested float64) *SnapshotBuilder {
	b.CurrentValue = decimal.NewFromFloat(current)
	b.InvestedValue = decimal.NewFromFloat(invested)
	return b
}

// Build creates the snapshot in the database and returns it.
func (b *SnapshotBuilder) Build(t *testing.T, db *sql.DB) model.ValuationSnapshot {
	t.Helper()

	query := `
		INSERT INTO valuation_snapshot (id, portfolio_id, date, current_value, invested_value, calculated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	calculatedAt := time.Now().UTC().Truncate(time.Second)
	_, err := db.Exec(query,
		b.ID,
		b.PortfolioID,
		b.Date.Format("2006-01-02"),
		b.CurrentValue.String(),
		b.InvestedValue.String(),
		calculatedAt.Format(timestampLayout),
	)
	if err != nil {
		t.Fatalf("Failed to create test snapshot: %v", err)
	}

	return model.ValuationSnapshot{
		ID:            b.ID,
		PortfolioID:   b.PortfolioID,
		Date:          b.Date,
		CurrentValue:  b.CurrentValue,
		InvestedValue: b.InvestedValue,
		CalculatedAt:  calculatedAt,
	}
}

// CreateStock inserts a stock row with a company name.
func CreateStock(t *testing.T, db *sql.DB, symbol, companyName string) model.Stock {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	_, err := db.Exec(
		`INSERT INTO stock (symbol, company_name, currency, exchange, updated_at) VALUES (?, ?, ?, ?, ?)`,
		symbol, companyName, "USD", "NASDAQ", now.Format(timestampLayout),
	)
	if err != nil {
		t.Fatalf("Failed to create test stock: %v", err)
	}

	return model.Stock{
		Symbol:      symbol,
		CompanyName: companyName,
		Currency:    "USD",
		Exchange:    "NASDAQ",
		UpdatedAt:   now,
	}
}
