package models

// AnnotatedMention is a list mention joined with the directory and live
// turnover. Turnover is zero when HasTurnover is false.
type AnnotatedMention struct {
	Name        string  `json:"name"`
	CB          bool    `json:"cb,omitempty"`
	Code        string  `json:"code,omitempty"`
	Sector      string  `json:"sector"`
	Turnover    float64 `json:"turnover"`
	HasTurnover bool    `json:"has_turnover"`
	Override    bool    `json:"override,omitempty"`
}

// DashboardSection is one list field of the selected record.
type DashboardSection struct {
	Field  ListField          `json:"field"`
	Label  string             `json:"label"`
	Stocks []AnnotatedMention `json:"stocks"`
}

// Leaderboard is the monthly top picks for one list field.
type Leaderboard struct {
	Field ListField     `json:"field"`
	Label string        `json:"label"`
	Stats []MonthlyStat `json:"stats"`
}

// Dashboard is everything shown for one selected date. Ranking and Indices
// are nil unless requested; their own Available flags report live failures.
type Dashboard struct {
	Date         string             `json:"date"`
	Dates        []string           `json:"dates"`
	Record       DailyRecord        `json:"record"`
	Streak       StreakResult       `json:"streak"`
	Sections     []DashboardSection `json:"sections"`
	Month        string             `json:"month,omitempty"`
	Leaderboards []Leaderboard      `json:"leaderboards"`
	WindDays     []WindDays         `json:"wind_days"`
	Turnover     TurnoverResult     `json:"turnover"`
	Ranking      *RankingResult     `json:"ranking,omitempty"`
	Indices      *IndexQuotesResult `json:"indices,omitempty"`
}
