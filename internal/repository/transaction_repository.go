package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// TransactionRepository provides data access methods for the transaction table.
// Rows are an append-only audit trail of position changes.
type TransactionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx returns a new TransactionRepository scoped to the provided transaction.
func (r *TransactionRepository) WithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *TransactionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// InsertTransaction appends an audit record.
func (r *TransactionRepository) InsertTransaction(ctx context.Context, t model.Transaction) error {
	query := `
		INSERT INTO "transaction" (id, portfolio_id, symbol, type, shares, price, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		t.ID,
		t.PortfolioID,
		t.Symbol,
		t.Type,
		t.Shares.String(),
		t.Price.String(),
		formatDate(t.Date),
		formatTimestamp(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// GetTransactions returns the transactions of a portfolio sorted by date,
// then by insertion time. Returns an empty slice when there are none.
func (r *TransactionRepository) GetTransactions(ctx context.Context, portfolioID string) ([]model.Transaction, error) {
	query := `
		SELECT id, portfolio_id, symbol, type, shares, price, date, created_at
		FROM "transaction"
		WHERE portfolio_id = ?
		ORDER BY date ASC, created_at ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}

	for rows.Next() {
		var dateStr, createdAtStr string
		var t model.Transaction

		err := rows.Scan(
			&t.ID,
			&t.PortfolioID,
			&t.Symbol,
			&t.Type,
			&t.Shares,
			&t.Price,
			&dateStr,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}

		t.Date, err = ParseTime(dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		t.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}
