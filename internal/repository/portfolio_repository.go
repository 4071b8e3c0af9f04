package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio table.
type PortfolioRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// WithTx returns a new PortfolioRepository scoped to the provided transaction.
func (r *PortfolioRepository) WithTx(tx *sql.Tx) *PortfolioRepository {
	return &PortfolioRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *PortfolioRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// ListPortfolios returns portfolios ordered by creation time. An empty
// ownerID lists every portfolio.
func (r *PortfolioRepository) ListPortfolios(ctx context.Context, ownerID string) ([]model.Portfolio, error) {
	query := `
		SELECT id, owner_id, name, description, created_at
		FROM portfolio
		WHERE 1=1
	`
	var args []any
	if ownerID != "" {
		query += " AND owner_id = ?"
		args = append(args, ownerID)
	}
	query += " ORDER BY created_at ASC, name ASC"

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio table: %w", err)
	}

	return portfolios, nil
}

// GetPortfolio retrieves a portfolio by ID.
// Returns ErrPortfolioNotFound if no record with the given ID exists.
func (r *PortfolioRepository) GetPortfolio(ctx context.Context, portfolioID string) (model.Portfolio, error) {
	query := `
		SELECT id, owner_id, name, description, created_at
		FROM portfolio
		WHERE id = ?
	`

	p, err := scanPortfolio(r.getQuerier().QueryRowContext(ctx, query, portfolioID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, err
	}
	return p, nil
}

// InsertPortfolio stores a new portfolio. ID and CreatedAt must be set.
func (r *PortfolioRepository) InsertPortfolio(ctx context.Context, p model.Portfolio) error {
	query := `
		INSERT INTO portfolio (id, owner_id, name, description, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		p.ID,
		p.OwnerID,
		p.Name,
		p.Description,
		formatTimestamp(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}
	return nil
}

// DeletePortfolio removes a portfolio. Positions, transactions and
// snapshots are removed by cascade.
// Returns ErrPortfolioNotFound if no record with the given ID exists.
func (r *PortfolioRepository) DeletePortfolio(ctx context.Context, portfolioID string) error {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM portfolio WHERE id = ?`, portfolioID)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	return expectOneRow(result, apperrors.ErrPortfolioNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPortfolio(row rowScanner) (model.Portfolio, error) {
	var p model.Portfolio
	var createdAtStr string

	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Description,
		&createdAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Portfolio{}, err
	}
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to scan portfolio: %w", err)
	}

	p.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return p, nil
}
