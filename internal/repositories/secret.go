package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mysubs/internal/credentials"
)

// SecretRepository implements [credentials.Store] on the secrets table.
type SecretRepository struct {
	db *sql.DB
}

// NewSecretRepository creates a new [SecretRepository] with the given database connection
func NewSecretRepository(db *sql.DB) *SecretRepository {
	return &SecretRepository{db: db}
}

// Get returns the value stored under tag
func (r *SecretRepository) Get(ctx context.Context, tag credentials.Tag) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM secrets WHERE tag = ?", string(tag)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", credentials.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: failed to query secret: %w", credentials.ErrUnavailable, err)
	}
	return value, nil
}

// Set clears any previous row for tag and writes value in one transaction.
func (r *SecretRepository) Set(ctx context.Context, tag credentials.Tag, value string) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM secrets WHERE tag = ?", string(tag)); err != nil {
			return fmt.Errorf("failed to clear secret: %w", err)
		}

		query := `INSERT INTO secrets (tag, value, updated_at) VALUES (?, ?, ?)`
		if _, err := tx.ExecContext(ctx, query, string(tag), value, time.Now().UTC()); err != nil {
			return fmt.Errorf("failed to insert secret: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", credentials.ErrUnavailable, err)
	}
	return nil
}

// Clear deletes the row for tag, if any
func (r *SecretRepository) Clear(ctx context.Context, tag credentials.Tag) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM secrets WHERE tag = ?", string(tag)); err != nil {
		return fmt.Errorf("%w: failed to delete secret: %w", credentials.ErrUnavailable, err)
	}
	return nil
}

// UpdatedAt reports when the value under tag was last written.
func (r *SecretRepository) UpdatedAt(ctx context.Context, tag credentials.Tag) (time.Time, error) {
	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx, "SELECT updated_at FROM secrets WHERE tag = ?", string(tag)).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, credentials.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: failed to query secret: %w", credentials.ErrUnavailable, err)
	}
	return updatedAt, nil
}
