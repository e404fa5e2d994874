package models

// MonthlyStat counts the days in Month on which Stock appeared in Field.
type MonthlyStat struct {
	Month  string    `json:"month"` // YYYY-MM
	Stock  string    `json:"stock"`
	Field  ListField `json:"field"`
	Label  string    `json:"label"`
	Count  int       `json:"count"`
	Sector string    `json:"sector"`
}

// WindDays counts the days in Month that closed with a given wind state.
type WindDays struct {
	Month string    `json:"month"`
	Wind  WindState `json:"wind"`
	Days  int       `json:"days"`
}

// StreakResult is the run of identical values ending at Date.
type StreakResult struct {
	Date  string `json:"date"`
	Field string `json:"field"`
	Value string `json:"value"`
	Days  int    `json:"days"`
}
