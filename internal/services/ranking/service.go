// Package ranking builds the turnover leaderboard from a chain of data tiers
package ranking

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/stocktrack/internal/cache"
	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/interfaces"
	"github.com/bobmcallan/stocktrack/internal/models"
)

// DefaultLimit is the leaderboard length when the caller passes none.
const DefaultLimit = 20

// Tier is one source in the fallback chain. Its rows are accepted only when
// there are more than MinRows of them.
type Tier struct {
	Source  interfaces.RankingSource
	MinRows int
}

// Service implements RankingService over an ordered chain of tiers.
type Service struct {
	tiers    []Tier
	universe []string
	cache    *cache.Cache[models.RankingResult]
	ttl      time.Duration
	logger   *common.Logger
	now      func() time.Time
}

var _ interfaces.RankingService = (*Service)(nil)

var errExhausted = errors.New("all ranking tiers failed")

// NewService creates a ranking service. universe is the directory's code set
// handed to every tier.
func NewService(universe []string, ttl time.Duration, logger *common.Logger, tiers ...Tier) *Service {
	return &Service{
		tiers:    tiers,
		universe: universe,
		cache:    cache.New[models.RankingResult](),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Cache exposes the result cache for inspection.
func (s *Service) Cache() *cache.Cache[models.RankingResult] {
	return s.cache
}

// GetRanking returns the top limit rows from the first tier that yields
// enough valid rows. Unavailable results are never cached.
func (s *Service) GetRanking(ctx context.Context, limit int) models.RankingResult {
	if limit <= 0 {
		limit = DefaultLimit
	}
	key := cache.Key("ranking", strconv.Itoa(limit), cache.Signature(s.universe))

	var failed models.RankingResult
	result, cached, err := s.cache.GetOrCompute(ctx, key, s.ttl, func(ctx context.Context) (models.RankingResult, error) {
		r := s.compute(ctx, limit)
		if !r.Available {
			failed = r
			return r, errExhausted
		}
		return r, nil
	})
	if err != nil {
		return failed
	}
	if cached {
		s.logger.Debug().Str("key", key).Msg("Ranking served from cache")
	}
	return result
}

func (s *Service) compute(ctx context.Context, limit int) models.RankingResult {
	result := models.RankingResult{FetchedAt: s.now()}
	var diag []string

	for _, tier := range s.tiers {
		name := tier.Source.Name()
		batch, err := tier.Source.FetchRanking(ctx, s.universe, 0)

		attempt := models.TierAttempt{Source: name, Rows: len(batch.Rows), Dropped: batch.Dropped}
		if err == nil && len(batch.Rows) <= tier.MinRows {
			err = models.Empty(name, len(batch.Rows))
		}
		if err != nil {
			attempt.Error = err.Error()
			result.Attempts = append(result.Attempts, attempt)
			diag = append(diag, err.Error())
			s.logger.Warn().Str("source", name).Int("rows", attempt.Rows).Int("dropped", attempt.Dropped).
				Err(err).Msg("Ranking tier failed, falling back")
			continue
		}

		attempt.Succeeded = true
		result.Attempts = append(result.Attempts, attempt)
		s.logger.Info().Str("source", name).Int("rows", attempt.Rows).Int("dropped", attempt.Dropped).
			Msg("Ranking tier succeeded")

		result.Available = true
		result.Source = name
		result.Rows = finalise(batch.Rows, limit)
		return result
	}

	result.Rows = []models.RankingRow{}
	result.Diagnostic = "market data unavailable"
	if len(diag) > 0 {
		result.Diagnostic += ": " + strings.Join(diag, "; ")
	}
	s.logger.Error().Str("diagnostic", result.Diagnostic).Msg("Ranking unavailable")
	return result
}

// finalise sorts, truncates, ranks from 1 and rounds for display.
func finalise(rows []models.RankingRow, limit int) []models.RankingRow {
	out := append([]models.RankingRow(nil), rows...)
	sortRows(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Rank = i + 1
		out[i].Turnover = round(out[i].Turnover, 2)
		out[i].Price = round(out[i].Price, 1)
		out[i].PctChange = round(out[i].PctChange, 2)
	}
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
