// Package analytics derives streaks and monthly leaderboards from history
package analytics

import (
	"sort"
	"strings"

	"github.com/bobmcallan/stocktrack/internal/models"
)

// StreakField extracts the categorical value a streak runs over.
type StreakField struct {
	Name  string
	Value func(r models.DailyRecord) string
}

// WindField is the default streak field: the wind label with any CB marker
// stripped.
var WindField = StreakField{
	Name: "wind",
	Value: func(r models.DailyRecord) string {
		return strings.TrimSpace(strings.ReplaceAll(string(r.Wind), models.CBMarker, ""))
	},
}

// ListStreakField runs over the joined contents of a list field, so a streak
// counts days on which the list was unchanged.
func ListStreakField(f models.ListField) StreakField {
	return StreakField{
		Name: f.Key(),
		Value: func(r models.DailyRecord) string {
			names := make([]string, 0, len(r.List(f)))
			for _, m := range r.List(f) {
				names = append(names, m.Name)
			}
			sort.Strings(names)
			return strings.Join(names, models.MentionSeparator)
		},
	}
}

// ParseStreakField maps "wind" or a list field name onto a StreakField.
func ParseStreakField(s string) (StreakField, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == WindField.Name {
		return WindField, true
	}
	if f, ok := models.ParseListField(s); ok {
		return ListStreakField(f), true
	}
	return StreakField{}, false
}

// ComputeStreak returns the length of the run of identical field values that
// ends at the latest record dated on or before anchor. A zero-valued field
// selects WindField. History with nothing on or before anchor yields 0.
func ComputeStreak(history []models.DailyRecord, anchor string, field StreakField) int {
	if field.Value == nil {
		field = WindField
	}

	past := make([]models.DailyRecord, 0, len(history))
	for _, r := range history {
		if r.Date != "" && r.Date <= anchor {
			past = append(past, r)
		}
	}
	if len(past) == 0 {
		return 0
	}
	sort.SliceStable(past, func(i, j int) bool { return past[i].Date > past[j].Date })

	ref := field.Value(past[0])
	streak := 1
	for _, r := range past[1:] {
		if field.Value(r) != ref {
			break
		}
		streak++
	}
	return streak
}

// Streak wraps ComputeStreak into a result carrying the run's value.
func Streak(history []models.DailyRecord, anchor string, field StreakField) models.StreakResult {
	if field.Value == nil {
		field = WindField
	}
	res := models.StreakResult{Date: anchor, Field: field.Name}
	res.Days = ComputeStreak(history, anchor, field)
	if res.Days == 0 {
		return res
	}
	latest := ""
	for _, r := range history {
		if r.Date <= anchor && r.Date > latest {
			latest = r.Date
			res.Value = field.Value(r)
		}
	}
	return res
}
