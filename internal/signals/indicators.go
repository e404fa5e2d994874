// Package signals provides moving average calculations for index series
package signals

import (
	"github.com/bobmcallan/stocktrack/internal/models"
)

// MovingAverageWindows are the averages carried on every index bar.
var MovingAverageWindows = []int{5, 10, 20, 60}

// SMA calculates the Simple Moving Average of the last period closes.
// closes are oldest first. Returns 0 when there are fewer closes than period.
func SMA(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period {
		return 0
	}

	sum := 0.0
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	return sum / float64(period)
}

// RollingSMA returns the SMA ending at every position. Positions before the
// window fills are 0.
func RollingSMA(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	if period <= 0 {
		return out
	}
	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= period {
			sum -= closes[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// BiasRate is the percentage distance of price from a moving average.
func BiasRate(price, ma float64) float64 {
	if ma == 0 {
		return 0
	}
	return ((price - ma) / ma) * 100
}

// IndexBars turns daily bars (oldest first) into index bars carrying MA5,
// MA10, MA20, MA60 and the bias rate against MA20.
func IndexBars(bars []models.Bar) []models.IndexBar {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	ma5 := RollingSMA(closes, 5)
	ma10 := RollingSMA(closes, 10)
	ma20 := RollingSMA(closes, 20)
	ma60 := RollingSMA(closes, 60)

	out := make([]models.IndexBar, len(bars))
	for i, b := range bars {
		out[i] = models.IndexBar{
			Date:     b.Date,
			Open:     b.Open,
			High:     b.High,
			Low:      b.Low,
			Close:    b.Close,
			Volume:   b.Volume,
			MA5:      ma5[i],
			MA10:     ma10[i],
			MA20:     ma20[i],
			MA60:     ma60[i],
			BiasRate: BiasRate(b.Close, ma20[i]),
		}
	}
	return out
}

// Recompute refreshes the averages of already-built index bars, for series
// merged from several fetches.
func Recompute(bars []models.IndexBar) []models.IndexBar {
	raw := make([]models.Bar, len(bars))
	for i, b := range bars {
		raw[i] = models.Bar{Date: b.Date, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}
	}
	return IndexBars(raw)
}
