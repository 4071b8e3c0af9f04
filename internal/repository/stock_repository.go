package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// StockRepository provides data access methods for the stock and
// stock_price tables.
type StockRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewStockRepository creates a new StockRepository with the provided database connection.
func NewStockRepository(db *sql.DB) *StockRepository {
	return &StockRepository{db: db}
}

// WithTx returns a new StockRepository scoped to the provided transaction.
func (r *StockRepository) WithTx(tx *sql.Tx) *StockRepository {
	return &StockRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *StockRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// UpsertStock inserts or refreshes company metadata for a symbol.
func (r *StockRepository) UpsertStock(ctx context.Context, s model.Stock) error {
	query := `
		INSERT INTO stock (symbol, company_name, sector, industry, currency, exchange, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			company_name = excluded.company_name,
			sector = excluded.sector,
			industry = excluded.industry,
			currency = excluded.currency,
			exchange = excluded.exchange,
			updated_at = excluded.updated_at
	`

	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now()
	}

	_, err := r.getQuerier().ExecContext(ctx, query,
		s.Symbol,
		s.CompanyName,
		s.Sector,
		s.Industry,
		s.Currency,
		s.Exchange,
		formatTimestamp(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert stock: %w", err)
	}
	return nil
}

// GetStock returns stored metadata for a symbol.
// Returns ErrSymbolNotFound if the symbol has never been looked up.
func (r *StockRepository) GetStock(ctx context.Context, symbol string) (model.Stock, error) {
	query := `
		SELECT symbol, company_name, sector, industry, currency, exchange, updated_at
		FROM stock
		WHERE symbol = ?
	`

	s, err := scanStock(r.getQuerier().QueryRowContext(ctx, query, symbol))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Stock{}, apperrors.ErrSymbolNotFound
	}
	if err != nil {
		return model.Stock{}, err
	}
	return s, nil
}

// ListStocks returns every stored stock ordered by symbol.
func (r *StockRepository) ListStocks(ctx context.Context) ([]model.Stock, error) {
	query := `
		SELECT symbol, company_name, sector, industry, currency, exchange, updated_at
		FROM stock
		ORDER BY symbol ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock table: %w", err)
	}
	defer rows.Close()

	stocks := []model.Stock{}
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, err
		}
		stocks = append(stocks, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock table: %w", err)
	}
	return stocks, nil
}

// UpsertPrice records the closing price of a symbol for a date, replacing
// any price already stored for that day.
func (r *StockRepository) UpsertPrice(ctx context.Context, p model.StoredPrice) error {
	query := `
		INSERT INTO stock_price (id, symbol, price, currency, date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			price = excluded.price,
			currency = excluded.currency
	`

	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	_, err := r.getQuerier().ExecContext(ctx, query,
		p.ID,
		p.Symbol,
		p.Price.String(),
		p.Currency,
		formatDate(p.Date),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert stock price: %w", err)
	}
	return nil
}

// GetPrices returns stored prices of a symbol between startDate and endDate
// inclusive, sorted by date.
func (r *StockRepository) GetPrices(ctx context.Context, symbol string, startDate, endDate time.Time) ([]model.StoredPrice, error) {
	query := `
		SELECT id, symbol, price, currency, date
		FROM stock_price
		WHERE symbol = ?
		AND date >= ?
		AND date <= ?
		ORDER BY date ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, symbol, formatDate(startDate), formatDate(endDate))
	if err != nil {
		return nil, fmt.Errorf("failed to query stock_price table: %w", err)
	}
	defer rows.Close()

	prices := []model.StoredPrice{}
	for rows.Next() {
		var p model.StoredPrice
		var dateStr string

		if err := rows.Scan(&p.ID, &p.Symbol, &p.Price, &p.Currency, &dateStr); err != nil {
			return nil, fmt.Errorf("failed to scan stock_price table results: %w", err)
		}
		p.Date, err = ParseTime(dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		prices = append(prices, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock_price table: %w", err)
	}
	return prices, nil
}

func scanStock(row rowScanner) (model.Stock, error) {
	var s model.Stock
	var updatedAtStr string

	err := row.Scan(
		&s.Symbol,
		&s.CompanyName,
		&s.Sector,
		&s.Industry,
		&s.Currency,
		&s.Exchange,
		&updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Stock{}, err
	}
	if err != nil {
		return model.Stock{}, fmt.Errorf("failed to scan stock: %w", err)
	}

	s.UpdatedAt, err = ParseTime(updatedAtStr)
	if err != nil {
		return model.Stock{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return s, nil
}
