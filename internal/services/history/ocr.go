package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bobmcallan/stocktrack/internal/models"
)

// Flat column positions of the OCR contract outside the list fields.
const (
	ocrDate         = 1
	ocrWind         = 2
	ocrPartTime     = 3
	ocrWorkerStrong = 4
	ocrWorkerTrend  = 5
)

// OCRRecord is one flat col_01..col_23 object from the extraction payload.
type OCRRecord map[string]any

// OCRError is an error object returned in place of records.
type OCRError struct {
	Message string
}

func (e *OCRError) Error() string {
	return "ocr payload error: " + e.Message
}

// IngestResult is the outcome of turning a payload into records.
type IngestResult struct {
	Records []models.DailyRecord `json:"records"`
	Skipped int                  `json:"skipped"`
}

// ParseOCRPayload locates every object carrying col_01 anywhere in the
// payload, in document order. A top-level {"error": ...} object is returned
// as *OCRError.
func ParseOCRPayload(payload []byte) ([]OCRRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: decode ocr payload: %v", models.ErrRowParse, err)
	}

	if obj, ok := root.(map[string]any); ok {
		if _, hasCol := obj[colKey(ocrDate)]; !hasCol {
			if msg, ok := obj["error"]; ok {
				return nil, &OCRError{Message: fmt.Sprint(msg)}
			}
		}
	}

	var found []OCRRecord
	collect(root, &found)
	return found, nil
}

func collect(node any, found *[]OCRRecord) {
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			collect(item, found)
		}
	case map[string]any:
		if _, ok := v[colKey(ocrDate)]; ok {
			*found = append(*found, OCRRecord(v))
			return
		}
		// Map order is random; walk keys sorted so nesting order is stable.
		for _, k := range sortedKeys(v) {
			collect(v[k], found)
		}
	}
}

// Cell returns column n as trimmed text. null, empty and "null" are absent.
func (r OCRRecord) Cell(n int) (string, bool) {
	raw, ok := r[colKey(n)]
	if !ok || raw == nil {
		return "", false
	}
	s := strings.TrimSpace(fmt.Sprint(raw))
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return "", false
	}
	return s, true
}

// Mentions returns the de-duplicated mentions across a column range, in
// column order.
func (r OCRRecord) Mentions(cols models.ColumnRange) []models.Mention {
	var out []models.Mention
	seen := make(map[string]bool)
	for n := cols.First; n <= cols.Last; n++ {
		cell, ok := r.Cell(n)
		if !ok || seen[cell] {
			continue
		}
		seen[cell] = true
		m := models.ParseMention(cell)
		if m.Name == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Record maps the flat columns onto a DailyRecord stamped with now.
func (r OCRRecord) Record(now time.Time) (models.DailyRecord, error) {
	date, ok := r.Cell(ocrDate)
	if !ok {
		return models.DailyRecord{}, fmt.Errorf("%w: missing date", models.ErrRowParse)
	}
	wind, _ := r.Cell(ocrWind)
	rec := models.DailyRecord{
		Date:              NormaliseDate(strings.ReplaceAll(date, "/", "-")),
		Wind:              models.ParseWindState(wind),
		PartTimeCount:     r.count(ocrPartTime),
		WorkerStrongCount: r.count(ocrWorkerStrong),
		WorkerTrendCount:  r.count(ocrWorkerTrend),
		LastUpdated:       now.Truncate(time.Minute),
	}
	for _, f := range models.ListFields {
		rec.SetList(f, r.Mentions(f.Columns()))
	}
	return rec, nil
}

func (r OCRRecord) count(n int) int {
	s, _ := r.Cell(n)
	return coerceInt(s)
}

// IngestOCR parses a payload into records. Objects without a date are
// skipped and counted.
func IngestOCR(payload []byte, now time.Time) (IngestResult, error) {
	raw, err := ParseOCRPayload(payload)
	if err != nil {
		return IngestResult{}, err
	}
	result := IngestResult{Records: []models.DailyRecord{}}
	for _, item := range raw {
		rec, err := item.Record(now)
		if err != nil {
			result.Skipped++
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

func colKey(n int) string {
	return fmt.Sprintf("col_%02d", n)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
