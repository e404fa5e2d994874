package history

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/stocktrack/internal/models"
)

// Column names of the persisted history table.
const (
	ColDate              = "date"
	ColWind              = "wind"
	ColPartTimeCount     = "part_time_count"
	ColWorkerStrongCount = "worker_strong_count"
	ColWorkerTrendCount  = "worker_trend_count"
	ColLastUpdated       = "last_updated"
	ColManualTurnover    = "manual_turnover"
)

// Columns is the on-disk column order.
var Columns = func() []string {
	cols := []string{ColDate, ColWind, ColPartTimeCount, ColWorkerStrongCount, ColWorkerTrendCount}
	for _, f := range models.ListFields {
		cols = append(cols, f.Key())
	}
	return append(cols, ColLastUpdated, ColManualTurnover)
}()

// EncodeTable renders records into a table, newest first.
func EncodeTable(name string, records []models.DailyRecord, loc *time.Location) *models.Table {
	t := models.NewTable(name, Columns)
	sorted := append([]models.DailyRecord(nil), records...)
	SortDesc(sorted)

	for _, r := range sorted {
		row := []string{
			r.Date,
			string(r.Wind),
			strconv.Itoa(r.PartTimeCount),
			strconv.Itoa(r.WorkerStrongCount),
			strconv.Itoa(r.WorkerTrendCount),
		}
		for _, f := range models.ListFields {
			row = append(row, models.JoinMentions(r.List(f)))
		}
		updated := ""
		if !r.LastUpdated.IsZero() {
			updated = r.LastUpdated.In(loc).Format(models.LastUpdatedLayout)
		}
		manual := ""
		if len(r.ManualTurnover) > 0 {
			if b, err := json.Marshal(r.ManualTurnover); err == nil {
				manual = string(b)
			}
		}
		t.Rows = append(t.Rows, append(row, updated, manual))
	}
	return t
}

// DecodeTable reads records out of a table. Rows without a date are skipped
// and counted; a date seen twice keeps its first row. Counters that do not
// parse become zero. The result is newest first.
func DecodeTable(t *models.Table, loc *time.Location) ([]models.DailyRecord, int) {
	var (
		out     []models.DailyRecord
		skipped int
		seen    = make(map[string]bool)
	)
	for i := 0; i < t.Len(); i++ {
		date := NormaliseDate(t.Cell(i, ColDate))
		if date == "" {
			skipped++
			continue
		}
		if seen[date] {
			skipped++
			continue
		}
		seen[date] = true

		r := models.DailyRecord{
			Date:              date,
			Wind:              models.ParseWindState(t.Cell(i, ColWind)),
			PartTimeCount:     coerceInt(t.Cell(i, ColPartTimeCount)),
			WorkerStrongCount: coerceInt(t.Cell(i, ColWorkerStrongCount)),
			WorkerTrendCount:  coerceInt(t.Cell(i, ColWorkerTrendCount)),
		}
		for _, f := range models.ListFields {
			r.SetList(f, models.ParseMentionList(t.Cell(i, f.Key())))
		}
		if ts := strings.TrimSpace(t.Cell(i, ColLastUpdated)); ts != "" {
			if parsed, err := time.ParseInLocation(models.LastUpdatedLayout, ts, loc); err == nil {
				r.LastUpdated = parsed
			}
		}
		if raw := strings.TrimSpace(t.Cell(i, ColManualTurnover)); raw != "" {
			var manual map[string]float64
			if err := json.Unmarshal([]byte(raw), &manual); err == nil && len(manual) > 0 {
				r.ManualTurnover = manual
			}
		}
		out = append(out, r)
	}
	SortDesc(out)
	return out, skipped
}

// NormaliseDate rewrites y/m/d, y.m.d and single-digit parts as YYYY-MM-DD.
// A trailing time component is dropped. Text that is not a calendar date is
// returned trimmed but otherwise verbatim.
func NormaliseDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return ""
	}
	head := s
	if i := strings.IndexAny(head, " T"); i > 0 {
		head = head[:i]
	}
	parts := strings.FieldsFunc(head, func(r rune) bool { return r == '-' || r == '/' || r == '.' })
	if len(parts) != 3 || len(parts[0]) != 4 {
		return s
	}
	y, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	d, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return s
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return s
	}
	return t.Format(models.DateLayout)
}

// SortDesc orders records newest first by date string.
func SortDesc(records []models.DailyRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date > records[j].Date
	})
}

func coerceInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return nonNegative(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return nonNegative(int(f))
	}
	return 0
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
