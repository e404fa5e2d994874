// Package history persists the date-keyed DailyRecord table
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/interfaces"
	"github.com/bobmcallan/stocktrack/internal/models"
)

// BackupSuffix names the single-generation backup of a table.
const BackupSuffix = "_backup"

// Store implements HistoryService over a TableBackend. Every write replaces
// the whole table; concurrent writers race and the last one wins.
type Store struct {
	backend  interfaces.TableBackend
	table    string
	validate *validator.Validate
	location *time.Location
	logger   *common.Logger
}

var _ interfaces.HistoryService = (*Store)(nil)

// NewStore creates a store for the named table.
func NewStore(backend interfaces.TableBackend, table string, logger *common.Logger) *Store {
	if table == "" {
		table = "daily_records"
	}
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		loc = time.FixedZone("CST", 8*60*60)
	}
	return &Store{
		backend:  backend,
		table:    table,
		validate: validator.New(),
		location: loc,
		logger:   logger,
	}
}

// Table returns the main table name.
func (s *Store) Table() string { return s.table }

// BackupTable returns the backup table name.
func (s *Store) BackupTable() string { return s.table + BackupSuffix }

// Location is the zone LastUpdated stamps are rendered in.
func (s *Store) Location() *time.Location { return s.location }

// LoadAll returns every record, newest first. Read and decode failures are
// logged and yield an empty history.
func (s *Store) LoadAll(ctx context.Context) []models.DailyRecord {
	t, err := s.backend.LoadTable(ctx, s.table)
	if err != nil {
		if errors.Is(err, models.ErrTableNotFound) {
			s.logger.Debug().Str("table", s.table).Msg("History table not found, starting empty")
		} else {
			s.logger.Warn().Str("table", s.table).Err(fmt.Errorf("%w: %v", models.ErrPersistenceRead, err)).Msg("History load failed, treating as empty")
		}
		return []models.DailyRecord{}
	}

	records, skipped := DecodeTable(t, s.location)
	if skipped > 0 {
		s.logger.Warn().Str("table", s.table).Int("skipped", skipped).Msg("History rows without a usable date skipped")
	}
	if records == nil {
		records = []models.DailyRecord{}
	}
	return records
}

// Get returns the record for date.
func (s *Store) Get(ctx context.Context, date string) (models.DailyRecord, bool) {
	date = NormaliseDate(date)
	for _, r := range s.LoadAll(ctx) {
		if r.Date == date {
			return r, true
		}
	}
	return models.DailyRecord{}, false
}

// UpsertBatch replaces the rows for every incoming date and returns the
// persisted table. Within a batch the last record for a date wins. The
// previous table is copied to the backup slot first.
func (s *Store) UpsertBatch(ctx context.Context, records []models.DailyRecord) ([]models.DailyRecord, error) {
	incoming, err := s.prepare(records)
	if err != nil {
		return nil, err
	}
	if len(incoming) == 0 {
		return s.LoadAll(ctx), nil
	}

	byDate := make(map[string]int, len(incoming))
	var batch []models.DailyRecord
	for _, r := range incoming {
		if i, ok := byDate[r.Date]; ok {
			batch[i] = r
			continue
		}
		byDate[r.Date] = len(batch)
		batch = append(batch, r)
	}

	existing := s.LoadAll(ctx)
	merged := make([]models.DailyRecord, 0, len(existing)+len(batch))
	replaced := 0
	for _, r := range existing {
		if _, ok := byDate[r.Date]; ok {
			replaced++
			continue
		}
		merged = append(merged, r)
	}
	merged = append(merged, batch...)
	SortDesc(merged)

	if err := s.write(ctx, merged); err != nil {
		return nil, err
	}

	s.logger.Info().Str("table", s.table).Int("incoming", len(batch)).Int("replaced", replaced).
		Int("total", len(merged)).Msg("History batch upserted")
	return merged, nil
}

// SaveFull overwrites the table with records. Empty input writes nothing.
func (s *Store) SaveFull(ctx context.Context, records []models.DailyRecord) error {
	prepared, err := s.prepare(records)
	if err != nil {
		return err
	}
	if len(prepared) == 0 {
		s.logger.Debug().Str("table", s.table).Msg("SaveFull with no records ignored")
		return nil
	}

	seen := make(map[string]bool, len(prepared))
	unique := prepared[:0]
	for _, r := range prepared {
		if seen[r.Date] {
			continue
		}
		seen[r.Date] = true
		unique = append(unique, r)
	}
	SortDesc(unique)

	if err := s.write(ctx, unique); err != nil {
		return err
	}
	s.logger.Info().Str("table", s.table).Int("total", len(unique)).Msg("History saved in full")
	return nil
}

// Delete removes the record for date. A date not present is not an error.
func (s *Store) Delete(ctx context.Context, date string) error {
	date = NormaliseDate(date)
	existing := s.LoadAll(ctx)
	kept := existing[:0]
	for _, r := range existing {
		if r.Date != date {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(existing) {
		return nil
	}
	if err := s.write(ctx, kept); err != nil {
		return err
	}
	s.logger.Info().Str("table", s.table).Str("date", date).Msg("History record deleted")
	return nil
}

// Clear removes the main table after copying it to the backup slot, so a
// following Restore undoes it.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.CopyTable(ctx, s.table, s.BackupTable()); err != nil {
		s.logger.Warn().Str("table", s.table).Err(err).Msg("History backup failed, continuing with clear")
	}
	if err := s.backend.DeleteTable(ctx, s.table); err != nil {
		return fmt.Errorf("%w: clear %s: %v", models.ErrPersistenceWrite, s.table, err)
	}
	s.logger.Warn().Str("table", s.table).Msg("History cleared")
	return nil
}

// Restore replaces the main table with the backup.
func (s *Store) Restore(ctx context.Context) error {
	if _, err := s.backend.LoadTable(ctx, s.BackupTable()); err != nil {
		return fmt.Errorf("%w: no backup: %v", models.ErrPersistenceRead, err)
	}
	if err := s.backend.CopyTable(ctx, s.BackupTable(), s.table); err != nil {
		return fmt.Errorf("%w: restore %s: %v", models.ErrPersistenceWrite, s.table, err)
	}
	s.logger.Info().Str("table", s.table).Msg("History restored from backup")
	return nil
}

// write backs up the current table and saves records in its place.
func (s *Store) write(ctx context.Context, records []models.DailyRecord) error {
	if err := s.backend.CopyTable(ctx, s.table, s.BackupTable()); err != nil {
		s.logger.Warn().Str("table", s.table).Err(err).Msg("History backup failed, continuing with write")
	}
	t := EncodeTable(s.table, records, s.location)
	if err := s.backend.SaveTable(ctx, t); err != nil {
		return fmt.Errorf("%w: save %s: %v", models.ErrPersistenceWrite, s.table, err)
	}
	return nil
}

// prepare normalises dates and validates each record.
func (s *Store) prepare(records []models.DailyRecord) ([]models.DailyRecord, error) {
	out := make([]models.DailyRecord, 0, len(records))
	for i, r := range records {
		r.Date = NormaliseDate(r.Date)
		if err := s.validate.Struct(r); err != nil {
			return nil, fmt.Errorf("%w: record %d (%s): %v", models.ErrRowParse, i, r.Date, err)
		}
		out = append(out, r)
	}
	return out, nil
}
