// Package turnover resolves stock names to their traded value for a session
package turnover

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/bobmcallan/stocktrack/internal/cache"
	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/directory"
	"github.com/bobmcallan/stocktrack/internal/interfaces"
	"github.com/bobmcallan/stocktrack/internal/models"
)

var errNoTurnover = errors.New("no turnover for session")

// Service implements TurnoverService
type Service struct {
	client   interfaces.QuoteClient
	resolver interfaces.Resolver
	cache    *cache.Cache[float64]
	ttl      time.Duration
	suffixes []string
	location *time.Location
	logger   *common.Logger
}

var _ interfaces.TurnoverService = (*Service)(nil)

// NewService creates a turnover enricher. Suffixes are tried listed first.
func NewService(client interfaces.QuoteClient, resolver interfaces.Resolver, yahoo common.YahooConfig, ttl time.Duration, logger *common.Logger) *Service {
	listed, otc := yahoo.ListedSuffix, yahoo.OTCSuffix
	if listed == "" {
		listed = ".TW"
	}
	if otc == "" {
		otc = ".TWO"
	}
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		loc = time.FixedZone("CST", 8*60*60)
	}
	return &Service{
		client:   client,
		resolver: resolver,
		cache:    cache.New[float64](),
		ttl:      ttl,
		suffixes: []string{listed, otc},
		location: loc,
		logger:   logger,
	}
}

// Cache exposes the per-stock cache for inspection.
func (s *Service) Cache() *cache.Cache[float64] {
	return s.cache
}

// EnrichTurnover returns turnover for each name on date, keyed by both the
// name as given and its resolved code. Overrides win and skip the network.
// Names that cannot be resolved or priced are listed in Missing.
func (s *Service) EnrichTurnover(ctx context.Context, names []string, date string, overrides map[string]float64) models.TurnoverResult {
	result := models.TurnoverResult{Date: date, Values: make(map[string]float64)}
	manual := s.indexOverrides(overrides)

	day, dateErr := time.ParseInLocation(models.DateLayout, date, s.location)
	if dateErr != nil {
		s.logger.Warn().Str("date", date).Err(dateErr).Msg("Turnover date unparseable, live lookup disabled")
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		res := s.resolver.Resolve(name)

		if v, ok := lookupOverride(manual, name, res); ok {
			result.Values[name] = v
			if res.HasCode() {
				result.Values[res.Code] = v
			}
			result.Overrides = append(result.Overrides, name)
			continue
		}

		if !res.HasCode() || dateErr != nil {
			result.Missing = append(result.Missing, name)
			continue
		}

		v, cached, err := s.cache.GetOrCompute(ctx, cache.Key("turnover", res.Code, date), s.ttl, func(ctx context.Context) (float64, error) {
			return s.fetch(ctx, res.Code, day)
		})
		if err != nil {
			s.logger.Debug().Str("name", name).Str("code", res.Code).Err(err).Msg("Turnover lookup missed")
			result.Missing = append(result.Missing, name)
			continue
		}
		if cached {
			s.logger.Debug().Str("code", res.Code).Str("date", date).Msg("Turnover served from cache")
		}
		result.Values[name] = v
		result.Values[res.Code] = v
	}

	return result
}

// fetch tries each market suffix for the session and keeps the first
// non-zero turnover.
func (s *Service) fetch(ctx context.Context, code string, day time.Time) (float64, error) {
	want := day.Format(models.DateLayout)
	var errs []error
	for _, suffix := range s.suffixes {
		symbol := code + suffix
		bars, err := s.client.History(ctx, symbol, day, day.AddDate(0, 0, 1))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", symbol, err))
			continue
		}
		for _, b := range bars {
			if b.Date.In(s.location).Format(models.DateLayout) != want {
				continue
			}
			if v := b.Turnover(); v > 0 {
				return math.Round(v*100) / 100, nil
			}
		}
	}
	if len(errs) > 0 {
		return 0, errors.Join(append([]error{errNoTurnover}, errs...)...)
	}
	return 0, errNoTurnover
}

// indexOverrides keys every override by its raw key, cleaned key and, when
// the key resolves, the canonical name and code.
func (s *Service) indexOverrides(overrides map[string]float64) map[string]float64 {
	if len(overrides) == 0 {
		return nil
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]float64, len(overrides)*3)
	for _, k := range keys {
		v := overrides[k]
		out[k] = v
		if clean := directory.Clean(k); clean != "" {
			out[clean] = v
		}
		if res := s.resolver.Resolve(k); res.Found {
			out[res.Name] = v
			if res.HasCode() {
				out[res.Code] = v
			}
		}
	}
	return out
}

func lookupOverride(manual map[string]float64, name string, res models.Resolution) (float64, bool) {
	if manual == nil {
		return 0, false
	}
	for _, k := range []string{name, directory.Clean(name), res.Name, res.Code} {
		if k == "" {
			continue
		}
		if v, ok := manual[k]; ok {
			return v, true
		}
	}
	return 0, false
}
