package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// withTx runs fn inside a transaction, committing on success and rolling back otherwise.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// scanner is satisfied by [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}
