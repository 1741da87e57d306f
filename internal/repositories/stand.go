package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atharvtrasi/playlist-stand-chart/internal/shared"
	"github.com/atharvtrasi/playlist-stand-chart/internal/stands"
)

const standColumns = "name, pwr, spd, prc, dev, stm, rng"

// StandRepository persists the reference table in the stands catalog.
type StandRepository struct {
	db *sql.DB
}

// NewStandRepository creates a new [StandRepository] with the given database connection
func NewStandRepository(db *sql.DB) *StandRepository {
	return &StandRepository{db: db}
}

// Seed replaces the catalog with the rows of table, in table order, inside one transaction.
// It returns the number of rows written.
func (r *StandRepository) Seed(ctx context.Context, table *stands.Table) (int, error) {
	if table.Len() == 0 {
		return 0, fmt.Errorf("refusing to seed: %w", shared.ErrEmptyCatalog)
	}

	n := 0
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM stands"); err != nil {
			return fmt.Errorf("failed to clear stands: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO stands (id, position, `+standColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for row := range table.Rows() {
			f := row.Features
			_, err := stmt.ExecContext(ctx, shared.GenerateID(), n, row.Name, f[0], f[1], f[2], f[3], f[4], f[5])
			if err != nil {
				return fmt.Errorf("failed to insert stand %q: %w", row.Name, err)
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Table loads the catalog ordered by position.
func (r *StandRepository) Table(ctx context.Context) (*stands.Table, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+standColumns+" FROM stands ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to query stands: %w", err)
	}
	defer rows.Close()

	var out []stands.Row
	for rows.Next() {
		row, err := scanStand(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stands: %w", err)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("stands catalog has no rows: %w", shared.ErrEmptyCatalog)
	}
	return stands.FromRows(out)
}

// Get retrieves a stand by name, ignoring case.
func (r *StandRepository) Get(ctx context.Context, name string) (stands.Row, error) {
	query := "SELECT " + standColumns + " FROM stands WHERE name = ? COLLATE NOCASE ORDER BY position LIMIT 1"

	row, err := scanStand(r.db.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return stands.Row{}, fmt.Errorf("%w: %s", shared.ErrStandMissing, name)
	}
	return row, err
}

// Count returns the number of rows in the catalog.
func (r *StandRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM stands").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count stands: %w", err)
	}
	return n, nil
}

// Loader adapts the repository to a [stands.Handle] load function.
func (r *StandRepository) Loader(ctx context.Context) func() (*stands.Table, error) {
	return func() (*stands.Table, error) {
		return r.Table(ctx)
	}
}

func scanStand(s scanner) (stands.Row, error) {
	var (
		row stands.Row
		f   = &row.Features
	)
	if err := s.Scan(&row.Name, &f[0], &f[1], &f[2], &f[3], &f[4], &f[5]); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return stands.Row{}, err
		}
		return stands.Row{}, fmt.Errorf("failed to scan stand: %w", err)
	}
	return row, nil
}
