// Package models defines data structures for stocktrack
package models

// StockIdentity is one directory entry. Code and Name are unique within a
// directory; any number of aliases may point at the same identity.
type StockIdentity struct {
	Code    string   `json:"code" toml:"code" yaml:"code"`
	Name    string   `json:"name" toml:"name" yaml:"name"`
	Sector  string   `json:"sector" toml:"sector" yaml:"sector"`
	Aliases []string `json:"aliases,omitempty" toml:"aliases" yaml:"aliases"`
}

// Resolution is the outcome of resolving a raw identifier. Code is empty when
// the name is known only by sector or not known at all.
type Resolution struct {
	Code   string `json:"code,omitempty"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
	Found  bool   `json:"found"`
}

// HasCode reports whether the identifier resolved to a tradable code.
func (r Resolution) HasCode() bool {
	return r.Code != ""
}

// Market is the exchange segment of a listing.
type Market string

const (
	MarketListed Market = "listed"
	MarketOTC    Market = "otc"
)

// Label returns the display label used in ranking tables.
func (m Market) Label() string {
	if m == MarketOTC {
		return "上櫃"
	}
	return "上市"
}

// ParseMarket accepts the English token or the display label.
func ParseMarket(s string) Market {
	switch s {
	case "otc", "OTC", "上櫃", "tpex", "TPEX":
		return MarketOTC
	default:
		return MarketListed
	}
}
