package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// SnapshotRepository provides data access methods for the valuation_snapshot table.
type SnapshotRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewSnapshotRepository creates a new repository instance.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// WithTx returns a new SnapshotRepository scoped to the provided transaction.
func (r *SnapshotRepository) WithTx(tx *sql.Tx) *SnapshotRepository {
	return &SnapshotRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *SnapshotRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// UpsertSnapshot stores the end-of-day valuation of a portfolio, replacing
// an existing snapshot for the same date.
func (r *SnapshotRepository) UpsertSnapshot(ctx context.Context, s model.ValuationSnapshot) error {
	query := `
		INSERT INTO valuation_snapshot (id, portfolio_id, date, current_value, invested_value, calculated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(portfolio_id, date) DO UPDATE SET
			current_value = excluded.current_value,
			invested_value = excluded.invested_value,
			calculated_at = excluded.calculated_at
	`

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CalculatedAt.IsZero() {
		s.CalculatedAt = time.Now()
	}

	_, err := r.getQuerier().ExecContext(ctx, query,
		s.ID,
		s.PortfolioID,
		formatDate(s.Date),
		s.CurrentValue.String(),
		s.InvestedValue.String(),
		formatTimestamp(s.CalculatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert valuation snapshot: %w", err)
	}
	return nil
}

// GetSnapshots streams the stored snapshots of a portfolio between
// startDate and endDate inclusive, oldest first.
//
// The callback is invoked once per row; returning an error stops the scan
// and is returned unchanged.
func (r *SnapshotRepository) GetSnapshots(
	ctx context.Context,
	portfolioID string,
	startDate, endDate time.Time,
	callback func(snapshot model.ValuationSnapshot) error,
) error {
	query := `
		SELECT id, portfolio_id, date, current_value, invested_value, calculated_at
		FROM valuation_snapshot
		WHERE portfolio_id = ?
		AND date >= ?
		AND date <= ?
		ORDER BY date ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, portfolioID, formatDate(startDate), formatDate(endDate))
	if err != nil {
		return fmt.Errorf("failed to query valuation_snapshot: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s model.ValuationSnapshot
		var dateStr, calculatedAtStr string

		err := rows.Scan(
			&s.ID,
			&s.PortfolioID,
			&dateStr,
			&s.CurrentValue,
			&s.InvestedValue,
			&calculatedAtStr,
		)
		if err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}

		s.Date, err = ParseTime(dateStr)
		if err != nil {
			return fmt.Errorf("failed to parse date: %w", err)
		}
		s.CalculatedAt, err = ParseTime(calculatedAtStr)
		if err != nil {
			return fmt.Errorf("failed to parse calculated_at: %w", err)
		}

		if err := callback(s); err != nil {
			return err
		}
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", err)
	}
	return nil
}
