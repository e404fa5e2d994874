package analytics

import (
	"sort"
	"time"

	"github.com/bobmcallan/stocktrack/internal/directory"
	"github.com/bobmcallan/stocktrack/internal/interfaces"
	"github.com/bobmcallan/stocktrack/internal/models"
)

const monthLayout = "2006-01"

// Month returns the YYYY-MM of a canonical date, or false when the date does
// not parse.
func Month(date string) (string, bool) {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return "", false
	}
	return t.Format(monthLayout), true
}

type statKey struct {
	month string
	stock string
	field models.ListField
}

// ComputeMonthlyStats counts, per month and list field, the records naming
// each stock under its cleaned name, so decorated spellings of one stock
// share a count. A stock listed twice in one record's field counts once. Records
// whose date is not a calendar date are ignored. Sectors come from resolver.
// The result is ordered by month desc, field, count desc, stock asc.
func ComputeMonthlyStats(history []models.DailyRecord, resolver interfaces.Resolver) []models.MonthlyStat {
	counts := make(map[statKey]int)
	for _, r := range history {
		month, ok := Month(r.Date)
		if !ok {
			continue
		}
		for _, f := range models.ListFields {
			seen := make(map[string]bool)
			for _, m := range r.List(f) {
				name := directory.Clean(m.Name)
				if name == "" || seen[name] {
					continue
				}
				seen[name] = true
				counts[statKey{month: month, stock: name, field: f}]++
			}
		}
	}

	sectors := make(map[string]string)
	stats := make([]models.MonthlyStat, 0, len(counts))
	for k, n := range counts {
		sector, ok := sectors[k.stock]
		if !ok {
			sector = resolver.Resolve(k.stock).Sector
			sectors[k.stock] = sector
		}
		stats = append(stats, models.MonthlyStat{
			Month:  k.month,
			Stock:  k.stock,
			Field:  k.field,
			Label:  k.field.Label(),
			Count:  n,
			Sector: sector,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.Month != b.Month {
			return a.Month > b.Month
		}
		if a.Field != b.Field {
			return a.Field < b.Field
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Stock < b.Stock
	})
	return stats
}

// TopN returns the first n stats for month and field. n <= 0 returns all.
func TopN(stats []models.MonthlyStat, month string, field models.ListField, n int) []models.MonthlyStat {
	out := []models.MonthlyStat{}
	for _, s := range stats {
		if s.Month != month || s.Field != field {
			continue
		}
		out = append(out, s)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}

// Months lists the distinct months present in stats, newest first.
func Months(stats []models.MonthlyStat) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range stats {
		if !seen[s.Month] {
			seen[s.Month] = true
			out = append(out, s.Month)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// CountWindDays counts the days per month closing with each wind state.
// Months are newest first; within a month known states follow display order
// and unknown labels sort after them.
func CountWindDays(history []models.DailyRecord) []models.WindDays {
	type key struct {
		month string
		wind  models.WindState
	}
	counts := make(map[key]int)
	for _, r := range history {
		month, ok := Month(r.Date)
		if !ok {
			continue
		}
		w := models.WindState(WindField.Value(r))
		counts[key{month, w}]++
	}

	out := make([]models.WindDays, 0, len(counts))
	for k, n := range counts {
		out = append(out, models.WindDays{Month: k.month, Wind: k.wind, Days: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month > out[j].Month
		}
		oi, oj := windOrder(out[i].Wind), windOrder(out[j].Wind)
		if oi != oj {
			return oi < oj
		}
		return out[i].Wind < out[j].Wind
	})
	return out
}

func windOrder(w models.WindState) int {
	for i, s := range models.WindStates {
		if s == w {
			return i
		}
	}
	return len(models.WindStates)
}
