package models

import "time"

// RankingRow is one row of the turnover-ranked table. Turnover is in
// hundred-million currency units.
type RankingRow struct {
	Rank      int     `json:"rank"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Sector    string  `json:"sector"`
	Price     float64 `json:"price"`
	PctChange float64 `json:"pct_change"`
	Turnover  float64 `json:"turnover"`
	Market    Market  `json:"market"`
	Source    string  `json:"source"`
}

// TierAttempt records how one ranking tier fared.
type TierAttempt struct {
	Source    string `json:"source"`
	Rows      int    `json:"rows"`
	Dropped   int    `json:"dropped,omitempty"`
	Error     string `json:"error,omitempty"`
	Succeeded bool   `json:"succeeded"`
}

// RankingResult is the tagged outcome of a ranking request. When Available is
// false Rows is empty and Diagnostic explains why.
type RankingResult struct {
	Available  bool          `json:"available"`
	Source     string        `json:"source,omitempty"`
	Rows       []RankingRow  `json:"rows"`
	Attempts   []TierAttempt `json:"attempts"`
	Diagnostic string        `json:"diagnostic,omitempty"`
	FetchedAt  time.Time     `json:"fetched_at"`
}

// Quote is a last-session OHLCV snapshot for one symbol.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name,omitempty"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	PrevClose float64   `json:"prev_close"`
	Volume    int64     `json:"volume"`
	Time      time.Time `json:"time"`
}

// Bar is one daily OHLCV bar.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Turnover returns close times volume in hundred-million units.
func (b Bar) Turnover() float64 {
	return b.Close * float64(b.Volume) / 1e8
}

// TurnoverResult maps names and resolved codes to turnover values. Names that
// could not be resolved or priced are listed in Missing and absent from Values.
type TurnoverResult struct {
	Date      string             `json:"date"`
	Values    map[string]float64 `json:"values"`
	Overrides []string           `json:"overrides,omitempty"`
	Missing   []string           `json:"missing,omitempty"`
}

// Lookup returns the value for a name or code, zero when unknown.
func (r TurnoverResult) Lookup(key string) (float64, bool) {
	v, ok := r.Values[key]
	return v, ok
}

// SourceBatch is what one tier produced: the valid rows and how many rows
// were dropped as malformed.
type SourceBatch struct {
	Source  string
	Rows    []RankingRow
	Dropped int
}
