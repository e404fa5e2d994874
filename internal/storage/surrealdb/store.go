// Package surrealdb provides a SurrealDB-backed table store.
package surrealdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/interfaces"
	"github.com/bobmcallan/stocktrack/internal/models"
)

// recordTable is the SurrealDB table holding one record per logical table.
const recordTable = "stock_table"

// tableRecord is the SurrealDB record shape for a stored table.
type tableRecord struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Store implements interfaces.TableBackend using SurrealDB.
type Store struct {
	db     *surrealdb.DB
	logger *common.Logger
}

var _ interfaces.TableBackend = (*Store)(nil)

// Connect signs in, selects the namespace and database and ensures the
// record table exists.
func Connect(ctx context.Context, logger *common.Logger, cfg common.SurrealDBConfig) (*Store, error) {
	db, err := surrealdb.New(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": cfg.Username,
		"pass": cfg.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	store, err := NewStore(ctx, db, logger)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	logger.Info().
		Str("address", cfg.Address).
		Str("namespace", cfg.Namespace).
		Str("database", cfg.Database).
		Msg("SurrealDB table store initialized")
	return store, nil
}

// NewStore wraps an already-selected connection.
func NewStore(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*Store, error) {
	sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", recordTable)
	if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
		return nil, fmt.Errorf("failed to define table %s: %w", recordTable, err)
	}
	return &Store{db: db, logger: logger}, nil
}

// recordID sanitizes dots and slashes for safe record IDs.
func recordID(name string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID(recordTable, strings.NewReplacer(".", "_", "/", "_").Replace(name))
}

// LoadTable returns the named table.
func (s *Store) LoadTable(ctx context.Context, name string) (*models.Table, error) {
	rec, err := surrealdb.Select[tableRecord](ctx, s.db, recordID(name))
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrTableNotFound, name)
		}
		return nil, fmt.Errorf("failed to select table %s: %w", name, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrTableNotFound, name)
	}
	return &models.Table{Name: name, Columns: rec.Columns, Rows: rec.Rows}, nil
}

// SaveTable replaces the table named t.Name.
func (s *Store) SaveTable(ctx context.Context, t *models.Table) error {
	rows := t.Rows
	if rows == nil {
		rows = [][]string{}
	}
	sql := "UPSERT $rid CONTENT $data"
	vars := map[string]any{
		"rid":  recordID(t.Name),
		"data": tableRecord{Name: t.Name, Columns: t.Columns, Rows: rows},
	}
	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to save table %s: %w", t.Name, err)
	}
	s.logger.Debug().Str("table", t.Name).Int("rows", len(t.Rows)).Msg("SurrealDB table saved")
	return nil
}

// DeleteTable removes the named table.
func (s *Store) DeleteTable(ctx context.Context, name string) error {
	if _, err := surrealdb.Delete[tableRecord](ctx, s.db, recordID(name)); err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete table %s: %w", name, err)
	}
	return nil
}

// CopyTable replaces dst with src. A missing src is a no-op.
func (s *Store) CopyTable(ctx context.Context, src, dst string) error {
	t, err := s.LoadTable(ctx, src)
	if err != nil {
		if errors.Is(err, models.ErrTableNotFound) {
			return nil
		}
		return err
	}
	return s.SaveTable(ctx, t.Clone(dst))
}

// Close closes the connection.
func (s *Store) Close() error {
	return s.db.Close(context.Background())
}

func isNotFoundError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "not found")
}
