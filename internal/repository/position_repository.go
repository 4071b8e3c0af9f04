package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// PositionRepository provides data access methods for the position table.
type PositionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPositionRepository creates a new PositionRepository with the provided database connection.
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// WithTx returns a new PositionRepository scoped to the provided transaction.
func (r *PositionRepository) WithTx(tx *sql.Tx) *PositionRepository {
	return &PositionRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *PositionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetPositions returns every position of a portfolio ordered by symbol.
// Returns an empty slice for a portfolio without holdings.
func (r *PositionRepository) GetPositions(ctx context.Context, portfolioID string) ([]model.Position, error) {
	query := `
		SELECT id, portfolio_id, symbol, shares, cost_basis_per_share, acquired_at
		FROM position
		WHERE portfolio_id = ?
		ORDER BY symbol ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query position table: %w", err)
	}
	defer rows.Close()

	positions := []model.Position{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position table: %w", err)
	}

	return positions, nil
}

// GetPosition returns the position a portfolio holds in symbol.
// Returns ErrPositionNotFound if the symbol is not held.
func (r *PositionRepository) GetPosition(ctx context.Context, portfolioID, symbol string) (model.Position, error) {
	query := `
		SELECT id, portfolio_id, symbol, shares, cost_basis_per_share, acquired_at
		FROM position
		WHERE portfolio_id = ? AND symbol = ?
	`

	p, err := scanPosition(r.getQuerier().QueryRowContext(ctx, query, portfolioID, symbol))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Position{}, apperrors.ErrPositionNotFound
	}
	if err != nil {
		return model.Position{}, err
	}
	return p, nil
}

// HeldSymbols returns the distinct symbols held across all portfolios.
func (r *PositionRepository) HeldSymbols(ctx context.Context) ([]string, error) {
	rows, err := r.getQuerier().QueryContext(ctx, `SELECT DISTINCT symbol FROM position ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query held symbols: %w", err)
	}
	defer rows.Close()

	symbols := []string{}
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating held symbols: %w", err)
	}
	return symbols, nil
}

// InsertPosition stores a new position.
// Returns ErrPositionExists if the portfolio already holds the symbol.
func (r *PositionRepository) InsertPosition(ctx context.Context, p model.Position) error {
	query := `
		INSERT INTO position (id, portfolio_id, symbol, shares, cost_basis_per_share, acquired_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		p.ID,
		p.PortfolioID,
		p.Symbol,
		p.Shares.String(),
		p.CostBasisPerShare.String(),
		formatDate(p.AcquiredAt),
	)
	if isUniqueViolation(err) {
		return apperrors.ErrPositionExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert position: %w", err)
	}
	return nil
}

// UpdatePosition overwrites shares, cost basis and acquisition date.
func (r *PositionRepository) UpdatePosition(ctx context.Context, p model.Position) error {
	query := `
		UPDATE position
		SET shares = ?, cost_basis_per_share = ?, acquired_at = ?
		WHERE id = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		p.Shares.String(),
		p.CostBasisPerShare.String(),
		formatDate(p.AcquiredAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}
	return expectOneRow(result, apperrors.ErrPositionNotFound)
}

// DeletePosition removes the position a portfolio holds in symbol.
// Returns ErrPositionNotFound if the symbol is not held.
func (r *PositionRepository) DeletePosition(ctx context.Context, portfolioID, symbol string) error {
	result, err := r.getQuerier().ExecContext(ctx,
		`DELETE FROM position WHERE portfolio_id = ? AND symbol = ?`, portfolioID, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	return expectOneRow(result, apperrors.ErrPositionNotFound)
}

func scanPosition(row rowScanner) (model.Position, error) {
	var p model.Position
	var acquiredAtStr string

	err := row.Scan(
		&p.ID,
		&p.PortfolioID,
		&p.Symbol,
		&p.Shares,
		&p.CostBasisPerShare,
		&acquiredAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Position{}, err
	}
	if err != nil {
		return model.Position{}, fmt.Errorf("failed to scan position: %w", err)
	}

	p.AcquiredAt, err = ParseTime(acquiredAtStr)
	if err != nil {
		return model.Position{}, fmt.Errorf("failed to parse acquired_at: %w", err)
	}
	return p, nil
}
