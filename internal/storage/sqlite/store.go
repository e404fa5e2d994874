// Package sqlite provides a SQLite-backed table store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/interfaces"
	"github.com/bobmcallan/stocktrack/internal/models"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS table_meta (
		name    TEXT PRIMARY KEY,
		columns TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS table_rows (
		name      TEXT NOT NULL,
		row_index INTEGER NOT NULL,
		cells     TEXT NOT NULL,
		PRIMARY KEY (name, row_index)
	)`,
}

// Store keeps tables as a header record plus one JSON-encoded cell array per
// row.
type Store struct {
	db     *sql.DB
	logger *common.Logger
}

var _ interfaces.TableBackend = (*Store)(nil)

// NewStore opens (or creates) the database at dbPath.
func NewStore(logger *common.Logger, dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One writer; whole-table replaces run in a transaction.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	logger.Debug().Str("path", dbPath).Msg("SQLite store opened")
	return &Store{db: db, logger: logger}, nil
}

// LoadTable returns the named table.
func (s *Store) LoadTable(ctx context.Context, name string) (*models.Table, error) {
	var rawCols string
	err := s.db.QueryRowContext(ctx, `SELECT columns FROM table_meta WHERE name = ?`, name).Scan(&rawCols)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", models.ErrTableNotFound, name)
		}
		return nil, fmt.Errorf("failed to read table '%s': %w", name, err)
	}

	t := &models.Table{Name: name}
	if err := json.Unmarshal([]byte(rawCols), &t.Columns); err != nil {
		return nil, fmt.Errorf("failed to decode columns of '%s': %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT cells FROM table_rows WHERE name = ? ORDER BY row_index`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of '%s': %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan row of '%s': %w", name, err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, fmt.Errorf("failed to decode row of '%s': %w", name, err)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, rows.Err()
}

// SaveTable replaces the table in one transaction.
func (s *Store) SaveTable(ctx context.Context, t *models.Table) error {
	cols, err := json.Marshal(t.Columns)
	if err != nil {
		return fmt.Errorf("failed to encode columns: %w", err)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := deleteTx(ctx, tx, t.Name); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO table_meta (name, columns) VALUES (?, ?)`, t.Name, string(cols)); err != nil {
			return fmt.Errorf("failed to write header of '%s': %w", t.Name, err)
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO table_rows (name, row_index, cells) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, row := range t.Rows {
			cells, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("failed to encode row %d: %w", i, err)
			}
			if _, err := stmt.ExecContext(ctx, t.Name, i, string(cells)); err != nil {
				return fmt.Errorf("failed to write row %d of '%s': %w", i, t.Name, err)
			}
		}
		return nil
	})
}

// DeleteTable removes the named table.
func (s *Store) DeleteTable(ctx context.Context, name string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return deleteTx(ctx, tx, name)
	})
}

// CopyTable replaces dst with src inside the database. A missing src is a
// no-op.
func (s *Store) CopyTable(ctx context.Context, src, dst string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM table_meta WHERE name = ?`, src).Scan(&n); err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if err := deleteTx(ctx, tx, dst); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO table_meta (name, columns) SELECT ?, columns FROM table_meta WHERE name = ?`, dst, src); err != nil {
			return fmt.Errorf("failed to copy header: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO table_rows (name, row_index, cells) SELECT ?, row_index, cells FROM table_rows WHERE name = ?`, dst, src); err != nil {
			return fmt.Errorf("failed to copy rows: %w", err)
		}
		return nil
	})
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func deleteTx(ctx context.Context, tx *sql.Tx, name string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM table_rows WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete rows of '%s': %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM table_meta WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete header of '%s': %w", name, err)
	}
	return nil
}
