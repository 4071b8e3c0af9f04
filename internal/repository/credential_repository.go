package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// CredentialRepository stores encrypted provider tokens in api_credential.
// It never sees plaintext.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new CredentialRepository with the provided database connection.
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// UpsertCredential stores the ciphertext for a provider.
func (r *CredentialRepository) UpsertCredential(ctx context.Context, provider, ciphertext string) error {
	query := `
		INSERT INTO api_credential (provider, token_encrypted, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			token_encrypted = excluded.token_encrypted,
			updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, provider, ciphertext, formatTimestamp(time.Now())); err != nil {
		return fmt.Errorf("failed to upsert credential: %w", err)
	}
	return nil
}

// GetCredential returns the stored ciphertext for a provider in Token.
// Returns ErrCredentialNotFound if none is stored.
func (r *CredentialRepository) GetCredential(ctx context.Context, provider string) (model.Credential, error) {
	query := `
		SELECT provider, token_encrypted, updated_at
		FROM api_credential
		WHERE provider = ?
	`

	var c model.Credential
	var updatedAtStr string
	err := r.db.QueryRowContext(ctx, query, provider).Scan(&c.Provider, &c.Token, &updatedAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Credential{}, apperrors.ErrCredentialNotFound
	}
	if err != nil {
		return model.Credential{}, fmt.Errorf("failed to query credential: %w", err)
	}

	c.UpdatedAt, err = ParseTime(updatedAtStr)
	if err != nil {
		return model.Credential{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return c, nil
}

// ListCredentials returns which providers have a stored token. Token is
// left empty.
func (r *CredentialRepository) ListCredentials(ctx context.Context) ([]model.Credential, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT provider, updated_at FROM api_credential ORDER BY provider ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query api_credential table: %w", err)
	}
	defer rows.Close()

	credentials := []model.Credential{}
	for rows.Next() {
		var c model.Credential
		var updatedAtStr string
		if err := rows.Scan(&c.Provider, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		c.UpdatedAt, err = ParseTime(updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		credentials = append(credentials, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating api_credential table: %w", err)
	}
	return credentials, nil
}

// DeleteCredential removes the token stored for a provider.
// Returns ErrCredentialNotFound if none is stored.
func (r *CredentialRepository) DeleteCredential(ctx context.Context, provider string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM api_credential WHERE provider = ?`, provider)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return expectOneRow(result, apperrors.ErrCredentialNotFound)
}
