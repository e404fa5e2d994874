// Package badger provides a BadgerHold-backed table store.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/interfaces"
	"github.com/bobmcallan/stocktrack/internal/models"
)

// TableRecord is one whole table keyed by name.
type TableRecord struct {
	Name    string `badgerhold:"key"`
	Columns []string
	Rows    [][]string
}

// Store wraps a BadgerHold database connection.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

var _ interfaces.TableBackend = (*Store)(nil)

// NewStore creates a new BadgerHold store at the given directory path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create badger directory %s: %w", path, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // Disable default badger logger

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug().Str("path", path).Msg("BadgerHold store opened")

	return &Store{
		db:     db,
		logger: logger,
	}, nil
}

// LoadTable returns the named table.
func (s *Store) LoadTable(_ context.Context, name string) (*models.Table, error) {
	var rec TableRecord
	if err := s.db.Get(name, &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrTableNotFound, name)
		}
		return nil, fmt.Errorf("failed to get table '%s': %w", name, err)
	}
	return &models.Table{Name: name, Columns: rec.Columns, Rows: rec.Rows}, nil
}

// SaveTable replaces the table named t.Name.
func (s *Store) SaveTable(_ context.Context, t *models.Table) error {
	rec := TableRecord{Name: t.Name, Columns: t.Columns, Rows: t.Rows}
	if err := s.db.Upsert(t.Name, &rec); err != nil {
		return fmt.Errorf("failed to save table '%s': %w", t.Name, err)
	}
	s.logger.Debug().Str("table", t.Name).Int("rows", len(t.Rows)).Msg("Badger table saved")
	return nil
}

// DeleteTable removes the named table.
func (s *Store) DeleteTable(_ context.Context, name string) error {
	err := s.db.Delete(name, TableRecord{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete table '%s': %w", name, err)
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

// Tables lists stored table names.
func (s *Store) Tables() ([]string, error) {
	var recs []TableRecord
	if err := s.db.Find(&recs, nil); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	names := make([]string, 0, len(recs))
	for _, r := range recs {
		names = append(names, r.Name)
	}
	return names, nil
}

// Close closes the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
