package interfaces

import (
	"context"

	"github.com/bobmcallan/stocktrack/internal/models"
)

// Resolver normalises stock identifiers against the directory
type Resolver interface {
	// Resolve strips decorations, applies aliases and looks up by code or name
	Resolve(raw string) models.Resolution

	// ByCode returns the identity with the given code
	ByCode(code string) (models.StockIdentity, bool)

	// ByName returns the identity with the given canonical name
	ByName(name string) (models.StockIdentity, bool)
}

// RankingSource is one tier of turnover-ranked market data
type RankingSource interface {
	Name() string

	// FetchRanking returns valid rows sorted by turnover, descending, cut to
	// limit when limit > 0. universe is the directory's code set; sources that
	// enumerate symbols quote it, page sources ignore it. Failures are
	// classified with models.ErrSourceUnavailable or models.ErrSourceEmpty.
	FetchRanking(ctx context.Context, universe []string, limit int) (models.SourceBatch, error)
}

// RankingService builds the turnover leaderboard across tiers
type RankingService interface {
	// GetRanking never returns an error; an exhausted fallback chain is
	// reported through RankingResult.Available and Diagnostic.
	GetRanking(ctx context.Context, limit int) models.RankingResult
}

// MarketService provides index quotes and index history
type MarketService interface {
	GetIndexQuotes(ctx context.Context) models.IndexQuotesResult
	GetIndexHistory(ctx context.Context, symbol, period string) models.IndexHistory
}

// TurnoverService maps stock names to per-day turnover
type TurnoverService interface {
	EnrichTurnover(ctx context.Context, names []string, date string, overrides map[string]float64) models.TurnoverResult
}

// HistoryService persists DailyRecords keyed by date
type HistoryService interface {
	// UpsertBatch replaces whole rows for incoming dates and returns the table
	UpsertBatch(ctx context.Context, records []models.DailyRecord) ([]models.DailyRecord, error)

	// LoadAll returns every record, newest first. Never fails.
	LoadAll(ctx context.Context) []models.DailyRecord

	// Get returns the record for a date
	Get(ctx context.Context, date string) (models.DailyRecord, bool)

	// SaveFull overwrites the whole table
	SaveFull(ctx context.Context, records []models.DailyRecord) error

	// Delete removes the record for one date
	Delete(ctx context.Context, date string) error

	// Clear removes the persisted table
	Clear(ctx context.Context) error
}
