// Package interfaces defines service contracts for stocktrack
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/stocktrack/internal/models"
)

// PageFetcher retrieves the rendered HTML of a ranking page
type PageFetcher interface {
	// Fetch returns the page body for url
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// QuoteClient provides bulk and historical quotes by exchange symbol
// (code plus suffix, e.g. "2330.TW").
type QuoteClient interface {
	// BulkQuotes retrieves the last-session snapshot for each symbol. Symbols
	// the upstream does not know are absent from the result.
	BulkQuotes(ctx context.Context, symbols []string) ([]models.Quote, error)

	// History retrieves daily bars in [from, to], oldest first
	History(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error)
}
