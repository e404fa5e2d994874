package common

import "time"

// Freshness TTLs for live market data
const (
	FreshnessRanking      = 60 * time.Second
	FreshnessIndexQuotes  = 60 * time.Second
	FreshnessIndexHistory = 5 * time.Minute
	FreshnessTurnover     = 5 * time.Minute // per stock, per date
)
