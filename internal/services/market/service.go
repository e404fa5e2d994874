// Package market provides index quotes and index history services
package market

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bobmcallan/stocktrack/internal/cache"
	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/interfaces"
	"github.com/bobmcallan/stocktrack/internal/models"
	"github.com/bobmcallan/stocktrack/internal/signals"
)

// DefaultPeriod is the history lookback when none is requested.
const DefaultPeriod = "6mo"

// quoteLookback spans enough calendar days to hold two sessions across a
// long weekend or holiday.
const quoteLookback = 10 * 24 * time.Hour

// warmup is fetched ahead of the requested period so the longest moving
// average is already filled on the first visible bar.
const warmup = 100 * 24 * time.Hour

// periods maps lookback names to calendar offsets.
var periods = map[string]func(time.Time) time.Time{
	"1mo": func(t time.Time) time.Time { return t.AddDate(0, -1, 0) },
	"3mo": func(t time.Time) time.Time { return t.AddDate(0, -3, 0) },
	"6mo": func(t time.Time) time.Time { return t.AddDate(0, -6, 0) },
	"1y":  func(t time.Time) time.Time { return t.AddDate(-1, 0, 0) },
}

// Periods lists the accepted lookbacks, shortest first.
var Periods = []string{"1mo", "3mo", "6mo", "1y"}

// marketIndex maps the market segment labels to their index symbol.
var marketIndex = map[string]string{
	"上市":     "^TWII",
	"listed": "^TWII",
	"上櫃":     "^TWOII",
	"otc":    "^TWOII",
}

// Service implements MarketService
type Service struct {
	client       interfaces.QuoteClient
	archive      interfaces.IndexArchive
	indices      []common.IndexConfig
	quoteCache   *cache.Cache[models.IndexQuotesResult]
	historyCache *cache.Cache[models.IndexHistory]
	quoteTTL     time.Duration
	historyTTL   time.Duration
	logger       *common.Logger
	now          func() time.Time
}

var _ interfaces.MarketService = (*Service)(nil)

var errNoData = errors.New("no index data")

// NewService creates a new market service.
// archive may be nil, in which case fetched history is not retained.
func NewService(client interfaces.QuoteClient, archive interfaces.IndexArchive, indices []common.IndexConfig, cacheCfg common.CacheConfig, logger *common.Logger) *Service {
	return &Service{
		client:       client,
		archive:      archive,
		indices:      indices,
		quoteCache:   cache.New[models.IndexQuotesResult](),
		historyCache: cache.New[models.IndexHistory](),
		quoteTTL:     cacheCfg.IndexQuotesTTL(),
		historyTTL:   cacheCfg.IndexHistoryTTL(),
		logger:       logger,
		now:          time.Now,
	}
}

// GetIndexQuotes fetches each configured index independently. A failing
// index is skipped and listed; the result is unavailable only when every
// index failed.
func (s *Service) GetIndexQuotes(ctx context.Context) models.IndexQuotesResult {
	symbols := make([]string, 0, len(s.indices))
	for _, idx := range s.indices {
		symbols = append(symbols, idx.Symbol)
	}
	key := cache.Key("index_quotes", cache.Signature(symbols))

	var failed models.IndexQuotesResult
	result, _, err := s.quoteCache.GetOrCompute(ctx, key, s.quoteTTL, func(ctx context.Context) (models.IndexQuotesResult, error) {
		r := s.fetchQuotes(ctx)
		if !r.Available {
			failed = r
			return r, errNoData
		}
		return r, nil
	})
	if err != nil {
		return failed
	}
	return result
}

func (s *Service) fetchQuotes(ctx context.Context) models.IndexQuotesResult {
	result := models.IndexQuotesResult{Quotes: []models.IndexQuote{}}
	now := s.now()

	for _, idx := range s.indices {
		bars, err := s.client.History(ctx, idx.Symbol, now.Add(-quoteLookback), now)
		if err != nil || len(bars) == 0 {
			if err == nil {
				err = errNoData
			}
			s.logger.Warn().Str("symbol", idx.Symbol).Err(err).Msg("Index quote skipped")
			result.Skipped = append(result.Skipped, idx.Symbol)
			continue
		}
		result.Quotes = append(result.Quotes, quoteFromBars(idx, bars))
	}

	result.Available = len(result.Quotes) > 0
	if !result.Available {
		result.Diagnostic = fmt.Sprintf("no index quotes available (%d skipped)", len(result.Skipped))
	}
	return result
}

// quoteFromBars prices an index from its last two closes. With a single bar
// the change is zero.
func quoteFromBars(idx common.IndexConfig, bars []models.Bar) models.IndexQuote {
	last := bars[len(bars)-1]
	prev := last.Close
	if len(bars) >= 2 {
		prev = bars[len(bars)-2].Close
	}
	q := models.IndexQuote{
		Symbol:    idx.Symbol,
		Name:      idx.Name,
		Price:     last.Close,
		PrevClose: prev,
		Change:    last.Close - prev,
		AsOf:      last.Date,
	}
	if prev > 0 {
		q.PctChange = q.Change / prev * 100
	}
	return q
}

// GetIndexHistory returns bars for symbol over period with moving averages.
// symbol may also be a market segment label (上市, 上櫃). When the upstream
// fails, archived bars are served if any exist.
func (s *Service) GetIndexHistory(ctx context.Context, symbol, period string) models.IndexHistory {
	if period == "" {
		period = DefaultPeriod
	}
	symbol = s.resolveSymbol(symbol)
	hist := models.IndexHistory{Symbol: symbol, Name: s.indexName(symbol), Period: period, Bars: []models.IndexBar{}}

	startOf, ok := periods[period]
	if !ok {
		hist.Diagnostic = fmt.Sprintf("unknown period %q, expected one of %s", period, strings.Join(Periods, ", "))
		return hist
	}

	key := cache.Key("index_history", symbol, period)
	var failed models.IndexHistory
	result, _, err := s.historyCache.GetOrCompute(ctx, key, s.historyTTL, func(ctx context.Context) (models.IndexHistory, error) {
		r := s.fetchHistory(ctx, hist, startOf)
		if !r.Available {
			failed = r
			return r, errNoData
		}
		return r, nil
	})
	if err != nil {
		return failed
	}
	return result
}

func (s *Service) fetchHistory(ctx context.Context, hist models.IndexHistory, startOf func(time.Time) time.Time) models.IndexHistory {
	now := s.now()
	start := startOf(now)

	bars, err := s.client.History(ctx, hist.Symbol, start.Add(-warmup), now)
	if err != nil || len(bars) == 0 {
		if err == nil {
			err = errNoData
		}
		s.logger.Warn().Str("symbol", hist.Symbol).Str("period", hist.Period).Err(err).Msg("Index history fetch failed")
		return s.fromArchive(ctx, hist, start, err)
	}

	all := signals.IndexBars(bars)
	if s.archive != nil {
		if err := s.archive.Merge(ctx, hist.Symbol, all); err != nil {
			s.logger.Warn().Str("symbol", hist.Symbol).Err(err).Msg("Index archive merge failed")
		}
	}

	hist.Bars = trimBefore(all, start)
	hist.Available = len(hist.Bars) > 0
	if !hist.Available {
		hist.Diagnostic = "no bars in period"
	}
	return hist
}

func (s *Service) fromArchive(ctx context.Context, hist models.IndexHistory, start time.Time, cause error) models.IndexHistory {
	hist.Diagnostic = fmt.Sprintf("index history unavailable: %v", cause)
	if s.archive == nil {
		return hist
	}
	archived, err := s.archive.Load(ctx, hist.Symbol)
	if err != nil || len(archived) == 0 {
		return hist
	}
	bars := trimBefore(signals.Recompute(archived), start)
	if len(bars) == 0 {
		return hist
	}
	s.logger.Info().Str("symbol", hist.Symbol).Int("bars", len(bars)).Msg("Index history served from archive")
	hist.Bars = bars
	hist.Available = true
	hist.Diagnostic = "served from archive: " + cause.Error()
	return hist
}

func trimBefore(bars []models.IndexBar, start time.Time) []models.IndexBar {
	i := sort.Search(len(bars), func(i int) bool { return !bars[i].Date.Before(start) })
	return append([]models.IndexBar{}, bars[i:]...)
}

func (s *Service) resolveSymbol(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if mapped, ok := marketIndex[strings.ToLower(symbol)]; ok {
		return mapped
	}
	if symbol == "" {
		return "^TWII"
	}
	return symbol
}

func (s *Service) indexName(symbol string) string {
	for _, idx := range s.indices {
		if idx.Symbol == symbol {
			return idx.Name
		}
	}
	return symbol
}
