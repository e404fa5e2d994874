package storage

import (
	"context"
	"fmt"

	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/interfaces"
	"github.com/bobmcallan/stocktrack/internal/storage/parquet"
)

// Manager owns the table backend and the optional index archive.
type Manager struct {
	tables  interfaces.TableBackend
	archive *parquet.Archive
	logger  *common.Logger
}

// NewManager opens the configured backend. The index archive is created only
// when storage.archive_path is set.
func NewManager(ctx context.Context, logger *common.Logger, config *common.Config) (*Manager, error) {
	tables, err := NewTableBackend(ctx, logger, &config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create table backend: %w", err)
	}

	m := &Manager{tables: tables, logger: logger}
	if config.Storage.ArchivePath != "" {
		m.archive = parquet.NewArchive(config.Storage.ArchivePath, logger)
	}

	logger.Info().
		Str("backend", config.Storage.Backend).
		Str("path", config.Storage.Path).
		Str("archive", config.Storage.ArchivePath).
		Msg("Storage manager initialized")
	return m, nil
}

// NewManagerWith wraps existing stores.
func NewManagerWith(tables interfaces.TableBackend, archive *parquet.Archive, logger *common.Logger) *Manager {
	return &Manager{tables: tables, archive: archive, logger: logger}
}

// Tables returns the table backend.
func (m *Manager) Tables() interfaces.TableBackend {
	return m.tables
}

// IndexArchive returns the archive, or nil when archiving is disabled.
func (m *Manager) IndexArchive() interfaces.IndexArchive {
	if m.archive == nil {
		return nil
	}
	return m.archive
}

// Close releases the table backend.
func (m *Manager) Close() error {
	if m.tables == nil {
		return nil
	}
	return m.tables.Close()
}
