package models

import (
	"strings"
	"time"
)

// WindState is the daily regime label. Values are the labels as persisted;
// unrecognised text is carried verbatim.
type WindState string

const (
	WindNoWind     WindState = "無風"
	WindGust       WindState = "陣風"
	WindTurbulence WindState = "亂流"
	WindStorm      WindState = "強風"
)

// WindStates lists the known states in display order.
var WindStates = []WindState{WindNoWind, WindGust, WindTurbulence, WindStorm}

var windTokens = map[string]WindState{
	"nowind":     WindNoWind,
	"gust":       WindGust,
	"turbulence": WindTurbulence,
	"storm":      WindStorm,
}

// ParseWindState maps an English token or label onto a WindState. A trailing
// CB marker and surrounding whitespace are dropped.
func ParseWindState(s string) WindState {
	s = strings.TrimSpace(strings.ReplaceAll(s, CBMarker, ""))
	if w, ok := windTokens[strings.ToLower(strings.ReplaceAll(s, " ", ""))]; ok {
		return w
	}
	return WindState(s)
}

// Token returns the English token, or the raw value for unknown states.
func (w WindState) Token() string {
	switch w {
	case WindNoWind:
		return "NoWind"
	case WindGust:
		return "Gust"
	case WindTurbulence:
		return "Turbulence"
	case WindStorm:
		return "Storm"
	}
	return string(w)
}

// Known reports whether w is one of the four defined states.
func (w WindState) Known() bool {
	for _, s := range WindStates {
		if s == w {
			return true
		}
	}
	return false
}

// CBMarker tags a mention as the convertible bond rather than the equity.
const CBMarker = "(CB)"

// MentionSeparator joins mentions inside a persisted list cell.
const MentionSeparator = "、"

// Mention is one stock named in a list field.
type Mention struct {
	Name string `json:"name"`
	CB   bool   `json:"cb,omitempty"`
}

// String renders the mention in its persisted form.
func (m Mention) String() string {
	if m.CB {
		return m.Name + CBMarker
	}
	return m.Name
}

// ParseMention reads a single mention, accepting half and full width markers.
func ParseMention(s string) Mention {
	s = strings.TrimSpace(s)
	cb := false
	for _, marker := range []string{CBMarker, "（CB）", "(cb)"} {
		if strings.Contains(s, marker) {
			cb = true
			s = strings.ReplaceAll(s, marker, "")
		}
	}
	return Mention{Name: strings.TrimSpace(s), CB: cb}
}

// ParseMentionList splits a list cell into mentions, dropping blanks.
func ParseMentionList(cell string) []Mention {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "nan") || strings.EqualFold(cell, "null") {
		return nil
	}
	parts := strings.FieldsFunc(cell, func(r rune) bool {
		return r == '、' || r == '，' || r == ','
	})
	var out []Mention
	for _, p := range parts {
		m := ParseMention(p)
		if m.Name == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

// JoinMentions renders mentions into a persisted list cell.
func JoinMentions(mentions []Mention) string {
	parts := make([]string, 0, len(mentions))
	for _, m := range mentions {
		parts = append(parts, m.String())
	}
	return strings.Join(parts, MentionSeparator)
}

// ListField names one of the five pick lists on a DailyRecord.
type ListField int

const (
	FieldWorkerStrong ListField = iota
	FieldWorkerTrend
	FieldBossPullback
	FieldBossBargain
	FieldTopRevenue
)

// ListFields is every list field in display order.
var ListFields = []ListField{
	FieldWorkerStrong,
	FieldWorkerTrend,
	FieldBossPullback,
	FieldBossBargain,
	FieldTopRevenue,
}

// ColumnRange is an inclusive range of OCR column numbers.
type ColumnRange struct {
	First int
	Last  int
}

type listFieldInfo struct {
	key     string
	label   string
	columns ColumnRange
}

var listFieldTable = map[ListField]listFieldInfo{
	FieldWorkerStrong: {key: "worker_strong_list", label: "強勢週", columns: ColumnRange{6, 8}},
	FieldWorkerTrend:  {key: "worker_trend_list", label: "週趨勢", columns: ColumnRange{9, 11}},
	FieldBossPullback: {key: "boss_pullback_list", label: "週拉回", columns: ColumnRange{12, 14}},
	FieldBossBargain:  {key: "boss_bargain_list", label: "廉價收購", columns: ColumnRange{15, 17}},
	FieldTopRevenue:   {key: "top_revenue_list", label: "營收創高", columns: ColumnRange{18, 23}},
}

// Key is the persisted column name.
func (f ListField) Key() string { return listFieldTable[f].key }

// Label is the display name of the strategy.
func (f ListField) Label() string { return listFieldTable[f].label }

// Columns is the OCR column range feeding this field.
func (f ListField) Columns() ColumnRange { return listFieldTable[f].columns }

func (f ListField) String() string { return f.Key() }

// MarshalText encodes the field as its column key.
func (f ListField) MarshalText() ([]byte, error) {
	return []byte(f.Key()), nil
}

// UnmarshalText decodes a column key, a label or a short alias.
func (f *ListField) UnmarshalText(b []byte) error {
	field, ok := ParseListField(string(b))
	if !ok {
		return &FieldError{Field: string(b)}
	}
	*f = field
	return nil
}

// ParseListField accepts the column key, the key without its _list suffix,
// or the display label.
func ParseListField(s string) (ListField, bool) {
	s = strings.TrimSpace(s)
	for _, f := range ListFields {
		info := listFieldTable[f]
		if s == info.key || s == strings.TrimSuffix(info.key, "_list") || s == info.label {
			return f, true
		}
	}
	return 0, false
}

// FieldError reports an unknown list field name.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return "unknown list field: " + e.Field
}

// LastUpdatedLayout is the persisted format of DailyRecord.LastUpdated.
const LastUpdatedLayout = "2006-01-02 15:04"

// DateLayout is the canonical DailyRecord date.
const DateLayout = "2006-01-02"

// DailyRecord is one day of regime observations, keyed by Date.
type DailyRecord struct {
	Date              string             `json:"date" validate:"required"`
	Wind              WindState          `json:"wind"`
	PartTimeCount     int                `json:"part_time_count" validate:"gte=0"`
	WorkerStrongCount int                `json:"worker_strong_count" validate:"gte=0"`
	WorkerTrendCount  int                `json:"worker_trend_count" validate:"gte=0"`
	WorkerStrong      []Mention          `json:"worker_strong_list"`
	WorkerTrend       []Mention          `json:"worker_trend_list"`
	BossPullback      []Mention          `json:"boss_pullback_list"`
	BossBargain       []Mention          `json:"boss_bargain_list"`
	TopRevenue        []Mention          `json:"top_revenue_list"`
	LastUpdated       time.Time          `json:"last_updated"`
	ManualTurnover    map[string]float64 `json:"manual_turnover,omitempty" validate:"omitempty,dive,gte=0"`
}

// List returns the mentions held in the given field.
func (r *DailyRecord) List(f ListField) []Mention {
	switch f {
	case FieldWorkerStrong:
		return r.WorkerStrong
	case FieldWorkerTrend:
		return r.WorkerTrend
	case FieldBossPullback:
		return r.BossPullback
	case FieldBossBargain:
		return r.BossBargain
	case FieldTopRevenue:
		return r.TopRevenue
	}
	return nil
}

// SetList replaces the mentions held in the given field.
func (r *DailyRecord) SetList(f ListField, mentions []Mention) {
	switch f {
	case FieldWorkerStrong:
		r.WorkerStrong = mentions
	case FieldWorkerTrend:
		r.WorkerTrend = mentions
	case FieldBossPullback:
		r.BossPullback = mentions
	case FieldBossBargain:
		r.BossBargain = mentions
	case FieldTopRevenue:
		r.TopRevenue = mentions
	}
}

// Mentions returns every mention across all five list fields.
func (r *DailyRecord) Mentions() []Mention {
	var out []Mention
	for _, f := range ListFields {
		out = append(out, r.List(f)...)
	}
	return out
}
