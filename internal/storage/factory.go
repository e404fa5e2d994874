package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/interfaces"
	"github.com/bobmcallan/stocktrack/internal/storage/badger"
	"github.com/bobmcallan/stocktrack/internal/storage/sqlite"
	"github.com/bobmcallan/stocktrack/internal/storage/surrealdb"
)

// Backend type constants.
const (
	BackendCSV       = "csv"
	BackendBadger    = "badger"
	BackendSQLite    = "sqlite"
	BackendSurrealDB = "surrealdb"
)

// NewTableBackend creates a table backend based on the configuration.
// Supported backends: "csv" (default), "badger", "sqlite", "surrealdb".
func NewTableBackend(ctx context.Context, logger *common.Logger, config *common.StorageConfig) (interfaces.TableBackend, error) {
	backend := config.Backend
	if backend == "" {
		backend = BackendCSV
	}

	var (
		store interfaces.TableBackend
		err   error
	)
	switch backend {
	case BackendCSV:
		store, err = fileBackend(logger, config.Path)

	case BackendBadger:
		store, err = badgerBackend(logger, filepath.Join(config.Path, "badger"))

	case BackendSQLite:
		store, err = sqliteBackend(logger, filepath.Join(config.Path, "stocktrack.db"))

	case BackendSurrealDB:
		store, err = surrealBackend(ctx, logger, config.SurrealDB)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: csv, badger, sqlite, surrealdb)", backend)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Wrappers return a nil interface on failure.

func fileBackend(logger *common.Logger, path string) (interfaces.TableBackend, error) {
	s, err := NewFileStore(logger, path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func badgerBackend(logger *common.Logger, path string) (interfaces.TableBackend, error) {
	s, err := badger.NewStore(logger, path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func sqliteBackend(logger *common.Logger, path string) (interfaces.TableBackend, error) {
	s, err := sqlite.NewStore(logger, path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func surrealBackend(ctx context.Context, logger *common.Logger, cfg common.SurrealDBConfig) (interfaces.TableBackend, error) {
	s, err := surrealdb.Connect(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}
