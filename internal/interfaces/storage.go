package interfaces

import (
	"context"

	"github.com/bobmcallan/stocktrack/internal/models"
)

// TableBackend loads and saves whole tables by logical name
type TableBackend interface {
	// LoadTable returns models.ErrTableNotFound for a table never saved
	LoadTable(ctx context.Context, name string) (*models.Table, error)

	// SaveTable replaces the table named t.Name
	SaveTable(ctx context.Context, t *models.Table) error

	// DeleteTable removes a table. Deleting a missing table is not an error.
	DeleteTable(ctx context.Context, name string) error

	// CopyTable replaces dst with a copy of src. A missing src is a no-op.
	CopyTable(ctx context.Context, src, dst string) error

	// Close releases backend resources
	Close() error
}

// IndexArchive keeps per-index daily history across lookbacks
type IndexArchive interface {
	// Merge upserts bars by date into the archive for symbol
	Merge(ctx context.Context, symbol string, bars []models.IndexBar) error

	// Load returns archived bars for symbol, oldest first
	Load(ctx context.Context, symbol string) ([]models.IndexBar, error)
}
