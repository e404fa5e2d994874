// Package dashboard assembles the per-date view over history and live data
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/directory"
	"github.com/bobmcallan/stocktrack/internal/interfaces"
	"github.com/bobmcallan/stocktrack/internal/models"
	"github.com/bobmcallan/stocktrack/internal/services/analytics"
	"github.com/bobmcallan/stocktrack/internal/services/history"
)

// LeaderboardSize caps each monthly leaderboard.
const LeaderboardSize = 10

var (
	// ErrNoHistory is returned when nothing has been recorded yet.
	ErrNoHistory = errors.New("no history recorded")
	// ErrDateNotFound is returned for a date with no record.
	ErrDateNotFound = errors.New("no record for date")
)

// Options selects the optional live parts.
type Options struct {
	Ranking      bool
	RankingLimit int
	Indices      bool
}

// Service builds dashboards. turnover, ranking and market may be nil.
type Service struct {
	history  interfaces.HistoryService
	resolver interfaces.Resolver
	turnover interfaces.TurnoverService
	ranking  interfaces.RankingService
	market   interfaces.MarketService
	logger   *common.Logger
}

// NewService creates a dashboard service
func NewService(
	hist interfaces.HistoryService,
	resolver interfaces.Resolver,
	turnover interfaces.TurnoverService,
	ranking interfaces.RankingService,
	market interfaces.MarketService,
	logger *common.Logger,
) *Service {
	return &Service{
		history:  hist,
		resolver: resolver,
		turnover: turnover,
		ranking:  ranking,
		market:   market,
		logger:   logger,
	}
}

// Build returns the dashboard for date, or for the latest record when date is
// empty. Live parts that fail are reported inside their results; only a
// missing record is an error.
func (s *Service) Build(ctx context.Context, date string, opts Options) (models.Dashboard, error) {
	records := s.history.LoadAll(ctx)
	if len(records) == 0 {
		return models.Dashboard{}, ErrNoHistory
	}

	dates := make([]string, len(records))
	for i, r := range records {
		dates[i] = r.Date
	}

	var (
		rec   models.DailyRecord
		found bool
	)
	if date == "" {
		rec, found = records[0], true
	} else {
		date = history.NormaliseDate(date)
		for _, r := range records {
			if r.Date == date {
				rec, found = r, true
				break
			}
		}
	}
	if !found {
		return models.Dashboard{}, fmt.Errorf("%w: %s", ErrDateNotFound, date)
	}

	d := models.Dashboard{
		Date:     rec.Date,
		Dates:    dates,
		Record:   rec,
		Streak:   analytics.Streak(records, rec.Date, analytics.WindField),
		WindDays: analytics.CountWindDays(records),
	}

	stats := analytics.ComputeMonthlyStats(records, s.resolver)
	if month, ok := analytics.Month(rec.Date); ok {
		d.Month = month
		for _, f := range models.ListFields {
			top := analytics.TopN(stats, month, f, LeaderboardSize)
			if len(top) == 0 {
				continue
			}
			d.Leaderboards = append(d.Leaderboards, models.Leaderboard{Field: f, Label: f.Label(), Stats: top})
		}
	}

	var wg sync.WaitGroup
	if opts.Ranking && s.ranking != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := s.ranking.GetRanking(ctx, opts.RankingLimit)
			d.Ranking = &r
		}()
	}
	if opts.Indices && s.market != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q := s.market.GetIndexQuotes(ctx)
			d.Indices = &q
		}()
	}

	d.Turnover = s.enrich(ctx, rec)
	d.Sections = s.sections(rec, d.Turnover)
	wg.Wait()

	s.logger.Debug().Str("date", rec.Date).Int("streak", d.Streak.Days).
		Int("missing_turnover", len(d.Turnover.Missing)).Msg("Dashboard built")
	return d, nil
}

func (s *Service) enrich(ctx context.Context, rec models.DailyRecord) models.TurnoverResult {
	if s.turnover == nil {
		return models.TurnoverResult{Date: rec.Date, Values: map[string]float64{}}
	}
	var names []string
	seen := make(map[string]bool)
	for _, m := range rec.Mentions() {
		if !seen[m.Name] {
			seen[m.Name] = true
			names = append(names, m.Name)
		}
	}
	return s.turnover.EnrichTurnover(ctx, names, rec.Date, rec.ManualTurnover)
}

func (s *Service) sections(rec models.DailyRecord, turnover models.TurnoverResult) []models.DashboardSection {
	overrides := make(map[string]bool, len(turnover.Overrides))
	for _, n := range turnover.Overrides {
		overrides[n] = true
	}

	out := make([]models.DashboardSection, 0, len(models.ListFields))
	for _, f := range models.ListFields {
		sec := models.DashboardSection{Field: f, Label: f.Label(), Stocks: []models.AnnotatedMention{}}
		for _, m := range rec.List(f) {
			res := s.resolver.Resolve(m.Name)
			a := models.AnnotatedMention{
				Name:     m.Name,
				CB:       m.CB,
				Code:     res.Code,
				Sector:   res.Sector,
				Override: overrides[m.Name] || overrides[directory.Clean(m.Name)],
			}
			if v, ok := turnover.Lookup(m.Name); ok {
				a.Turnover, a.HasTurnover = v, true
			} else if v, ok := turnover.Lookup(res.Code); ok && res.Code != "" {
				a.Turnover, a.HasTurnover = v, true
			}
			sec.Stocks = append(sec.Stocks, a)
		}
		out = append(out, sec)
	}
	return out
}
