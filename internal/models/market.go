package models

import "time"

// IndexQuote is the latest level of a market index with its change from the
// previous session close.
type IndexQuote struct {
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	PrevClose float64   `json:"prev_close"`
	Change    float64   `json:"change"`
	PctChange float64   `json:"pct_change"`
	AsOf      time.Time `json:"as_of"`
}

// IndexQuotesResult carries the quotes that could be fetched. Skipped lists
// symbols that failed, Available is false only when nothing was fetched.
type IndexQuotesResult struct {
	Available  bool         `json:"available"`
	Quotes     []IndexQuote `json:"quotes"`
	Skipped    []string     `json:"skipped,omitempty"`
	Diagnostic string       `json:"diagnostic,omitempty"`
}

// IndexBar is a daily index bar with moving averages. Averages are zero until
// enough bars exist to fill the window.
type IndexBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
	MA5      float64   `json:"ma5"`
	MA10     float64   `json:"ma10"`
	MA20     float64   `json:"ma20"`
	MA60     float64   `json:"ma60"`
	BiasRate float64   `json:"bias_rate"`
}

// IndexHistory is the bar series for one index over a lookback period.
type IndexHistory struct {
	Symbol     string     `json:"symbol"`
	Name       string     `json:"name"`
	Period     string     `json:"period"`
	Available  bool       `json:"available"`
	Bars       []IndexBar `json:"bars"`
	Diagnostic string     `json:"diagnostic,omitempty"`
}

// Latest returns the most recent bar, or false when the series is empty.
func (h IndexHistory) Latest() (IndexBar, bool) {
	if len(h.Bars) == 0 {
		return IndexBar{}, false
	}
	return h.Bars[len(h.Bars)-1], true
}
