package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/stocktrack/internal/models"
	"github.com/bobmcallan/stocktrack/internal/services/analytics"
	"github.com/bobmcallan/stocktrack/internal/services/history"
	"github.com/bobmcallan/stocktrack/internal/storage"
)

// ErrUnknownField is returned for a streak or stats field that names no column.
var ErrUnknownField = errors.New("unknown field")

// ImportResult summarises one OCR import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Dates    []string `json:"dates"`
	Total    int      `json:"total"`
}

// ImportOCR turns an OCR payload into records and upserts them by date.
func (a *App) ImportOCR(ctx context.Context, payload []byte) (ImportResult, error) {
	ingest, err := history.IngestOCR(payload, a.now())
	if err != nil {
		return ImportResult{}, err
	}

	table, err := a.History.UpsertBatch(ctx, ingest.Records)
	if err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{
		Imported: len(ingest.Records),
		Skipped:  ingest.Skipped,
		Dates:    make([]string, 0, len(ingest.Records)),
		Total:    len(table),
	}
	for _, r := range ingest.Records {
		result.Dates = append(result.Dates, history.NormaliseDate(r.Date))
	}

	a.Logger.Info().Int("imported", result.Imported).Int("skipped", result.Skipped).
		Int("total", result.Total).Msg("OCR payload imported")
	return result, nil
}

// SetManualTurnover records an operator supplied turnover for one stock on
// date and stamps the record as updated. A negative value removes the
// override.
func (a *App) SetManualTurnover(ctx context.Context, date, name string, value float64) (models.DailyRecord, error) {
	rec, ok := a.History.Get(ctx, date)
	if !ok {
		return models.DailyRecord{}, fmt.Errorf("no record for %s", history.NormaliseDate(date))
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.DailyRecord{}, errors.New("stock name is required")
	}

	overrides := make(map[string]float64, len(rec.ManualTurnover)+1)
	for k, v := range rec.ManualTurnover {
		overrides[k] = v
	}
	if value < 0 {
		delete(overrides, name)
	} else {
		overrides[name] = value
	}
	rec.ManualTurnover = overrides
	rec.LastUpdated = a.now().Truncate(time.Minute)

	if _, err := a.History.UpsertBatch(ctx, []models.DailyRecord{rec}); err != nil {
		return models.DailyRecord{}, err
	}
	return rec, nil
}

// TurnoverFor prices names on date using the record's manual overrides. An
// empty date uses the latest record, or today when there is none. A date
// with no record has no overrides.
func (a *App) TurnoverFor(ctx context.Context, names []string, date string) models.TurnoverResult {
	var overrides map[string]float64
	if date == "" {
		if records := a.History.LoadAll(ctx); len(records) > 0 {
			date = records[0].Date
			overrides = records[0].ManualTurnover
		}
	} else if rec, ok := a.History.Get(ctx, date); ok {
		date = rec.Date
		overrides = rec.ManualTurnover
	}
	if date == "" {
		date = a.now().In(a.History.Location()).Format(models.DateLayout)
	}
	return a.Turnover.EnrichTurnover(ctx, names, history.NormaliseDate(date), overrides)
}

// Streak returns the run ending at date for fieldName. An empty date uses
// the latest record; an empty field is the wind state.
func (a *App) Streak(ctx context.Context, date, fieldName string) (models.StreakResult, error) {
	field, ok := analytics.ParseStreakField(fieldName)
	if !ok {
		return models.StreakResult{}, fmt.Errorf("%w: %s", ErrUnknownField, fieldName)
	}
	records := a.History.LoadAll(ctx)
	if date == "" {
		if len(records) == 0 {
			return models.StreakResult{Field: field.Name}, nil
		}
		date = records[0].Date
	}
	return analytics.Streak(records, history.NormaliseDate(date), field), nil
}

// MonthlyStats returns per-month mention counts. month and fieldName narrow
// the result when set; limit applies per month and field.
func (a *App) MonthlyStats(ctx context.Context, month, fieldName string, limit int) ([]models.MonthlyStat, error) {
	stats := analytics.ComputeMonthlyStats(a.History.LoadAll(ctx), a.Directory)

	fields := models.ListFields
	if fieldName != "" {
		f, ok := models.ParseListField(fieldName)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, fieldName)
		}
		fields = []models.ListField{f}
	}

	months := analytics.Months(stats)
	if month != "" {
		months = []string{month}
	}

	out := []models.MonthlyStat{}
	for _, m := range months {
		for _, f := range fields {
			out = append(out, analytics.TopN(stats, m, f, limit)...)
		}
	}
	return out, nil
}

// WindDays counts closing wind states per month.
func (a *App) WindDays(ctx context.Context) []models.WindDays {
	return analytics.CountWindDays(a.History.LoadAll(ctx))
}

// SearchStocks looks stocks up by partial code, name, alias or sector.
func (a *App) SearchStocks(q string, limit int) ([]models.StockIdentity, error) {
	if a.Search == nil {
		return nil, errors.New("directory search unavailable")
	}
	return a.Search.Search(q, limit)
}

// Export writes the history table as a CSV file into dir and returns its
// path. The written file has the same layout the csv backend reads.
func (a *App) Export(ctx context.Context, dir string) (string, error) {
	fs, err := storage.NewFileStore(a.Logger, dir)
	if err != nil {
		return "", err
	}
	records := a.History.LoadAll(ctx)
	t := history.EncodeTable(a.History.Table(), records, a.History.Location())
	if err := fs.SaveTable(ctx, t); err != nil {
		return "", fmt.Errorf("export %s: %w", t.Name, err)
	}
	path := fs.Path(t.Name)
	a.Logger.Info().Str("path", path).Int("records", len(records)).Msg("History exported")
	return path, nil
}
