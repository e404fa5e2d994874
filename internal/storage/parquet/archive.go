// Package parquet archives daily index bars as one Parquet file per index.
package parquet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/interfaces"
	"github.com/bobmcallan/stocktrack/internal/models"
)

// BarRecord is the Parquet schema for an archived index bar.
type BarRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    int64   `parquet:"volume"`
	MA5       float64 `parquet:"ma5"`
	MA10      float64 `parquet:"ma10"`
	MA20      float64 `parquet:"ma20"`
	MA60      float64 `parquet:"ma60"`
	BiasRate  float64 `parquet:"bias_rate"`
}

// Archive implements IndexArchive on Parquet files under dataDir.
type Archive struct {
	dataDir string
	logger  *common.Logger
	mu      sync.Mutex
}

var _ interfaces.IndexArchive = (*Archive)(nil)

// NewArchive creates an archive rooted at dataDir.
func NewArchive(dataDir string, logger *common.Logger) *Archive {
	return &Archive{dataDir: dataDir, logger: logger}
}

// Merge upserts bars by timestamp, preferring incoming bars.
func (a *Archive) Merge(_ context.Context, symbol string, bars []models.IndexBar) error {
	if len(bars) == 0 {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	path := a.path(symbol)
	existing, err := readParquetFile[BarRecord](path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		a.logger.Warn().Str("symbol", symbol).Err(err).Msg("Index archive unreadable, rewriting")
	}

	incoming := make([]BarRecord, len(bars))
	for i, b := range bars {
		incoming[i] = toRecord(symbol, b)
	}
	merged := mergeBarRecords(existing, incoming)

	if err := writeParquetFile(path, merged); err != nil {
		return fmt.Errorf("writing archive for %s: %w", symbol, err)
	}
	a.logger.Debug().Str("symbol", symbol).Int("bars", len(merged)).Msg("Index archive merged")
	return nil
}

// Load returns the archived bars for symbol, oldest first. A symbol never
// archived yields no bars and no error.
func (a *Archive) Load(_ context.Context, symbol string) ([]models.IndexBar, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	records, err := readParquetFile[BarRecord](a.path(symbol))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading archive for %s: %w", symbol, err)
	}
	out := make([]models.IndexBar, len(records))
	for i, r := range records {
		out[i] = fromRecord(r)
	}
	return out, nil
}

// path returns <dataDir>/index/<SYMBOL>.parquet with the caret dropped.
func (a *Archive) path(symbol string) string {
	name := strings.ToUpper(strings.TrimPrefix(symbol, "^"))
	name = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(name)
	return filepath.Join(a.dataDir, "index", name+".parquet")
}

func toRecord(symbol string, b models.IndexBar) BarRecord {
	return BarRecord{
		Symbol:    symbol,
		Timestamp: b.Date.UnixMilli(),
		Open:      b.Open,
		High:      b.High,
		Low:       b.Low,
		Close:     b.Close,
		Volume:    b.Volume,
		MA5:       b.MA5,
		MA10:      b.MA10,
		MA20:      b.MA20,
		MA60:      b.MA60,
		BiasRate:  b.BiasRate,
	}
}

func fromRecord(r BarRecord) models.IndexBar {
	return models.IndexBar{
		Date:     time.UnixMilli(r.Timestamp),
		Open:     r.Open,
		High:     r.High,
		Low:      r.Low,
		Close:    r.Close,
		Volume:   r.Volume,
		MA5:      r.MA5,
		MA10:     r.MA10,
		MA20:     r.MA20,
		MA60:     r.MA60,
		BiasRate: r.BiasRate,
	}
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return parquet.ReadFile[T](path)
}

// mergeBarRecords deduplicates by timestamp, preferring incoming records.
func mergeBarRecords(existing, incoming []BarRecord) []BarRecord {
	seen := make(map[int64]BarRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.Timestamp] = r
	}
	for _, r := range incoming {
		seen[r.Timestamp] = r
	}

	merged := make([]BarRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
