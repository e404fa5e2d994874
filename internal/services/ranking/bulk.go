package ranking

import (
	"context"
	"errors"
	"strings"

	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/interfaces"
	"github.com/bobmcallan/stocktrack/internal/models"
)

// SourceBulk names the bulk quote tier.
const SourceBulk = "bulk_api"

// MinBulkTurnover drops illiquid listings from the bulk tier, in
// hundred-million units.
const MinBulkTurnover = 1.0

// BulkSource quotes every code in the universe on both market suffixes and
// derives turnover from the session close and volume.
type BulkSource struct {
	client       interfaces.QuoteClient
	resolver     interfaces.Resolver
	listedSuffix string
	otcSuffix    string
	logger       *common.Logger
}

var _ interfaces.RankingSource = (*BulkSource)(nil)

// NewBulkSource creates a bulk quote tier
func NewBulkSource(client interfaces.QuoteClient, resolver interfaces.Resolver, cfg common.YahooConfig, logger *common.Logger) *BulkSource {
	listed, otc := cfg.ListedSuffix, cfg.OTCSuffix
	if listed == "" {
		listed = ".TW"
	}
	if otc == "" {
		otc = ".TWO"
	}
	return &BulkSource{
		client:       client,
		resolver:     resolver,
		listedSuffix: listed,
		otcSuffix:    otc,
		logger:       logger,
	}
}

// Name implements RankingSource
func (s *BulkSource) Name() string { return SourceBulk }

// FetchRanking implements RankingSource. A code quoted on both segments
// keeps its higher-turnover listing.
func (s *BulkSource) FetchRanking(ctx context.Context, universe []string, limit int) (models.SourceBatch, error) {
	batch := models.SourceBatch{Source: SourceBulk}
	if len(universe) == 0 {
		return batch, models.Unavailable(SourceBulk, errors.New("empty universe"))
	}

	symbols := make([]string, 0, len(universe)*2)
	for _, code := range universe {
		symbols = append(symbols, code+s.listedSuffix, code+s.otcSuffix)
	}

	quotes, err := s.client.BulkQuotes(ctx, symbols)
	if err != nil {
		return batch, models.Unavailable(SourceBulk, err)
	}

	best := make(map[string]models.RankingRow)
	for _, q := range quotes {
		code, market := s.split(q.Symbol)
		if code == "" {
			batch.Dropped++
			continue
		}
		if q.Close <= 0 || q.Volume <= 0 {
			batch.Dropped++
			continue
		}
		turnover := q.Close * float64(q.Volume) / 1e8
		if turnover < MinBulkTurnover {
			continue
		}
		pct := 0.0
		if q.Open > 0 {
			pct = (q.Close - q.Open) / q.Open * 100
		}

		res := s.resolver.Resolve(code)
		name := res.Name
		if !res.Found && q.Name != "" {
			name = q.Name
		}

		row := models.RankingRow{
			Code:      code,
			Name:      name,
			Sector:    res.Sector,
			Price:     q.Close,
			PctChange: pct,
			Turnover:  turnover,
			Market:    market,
			Source:    SourceBulk,
		}
		if prev, ok := best[code]; !ok || row.Turnover > prev.Turnover {
			best[code] = row
		}
	}

	for _, row := range best {
		batch.Rows = append(batch.Rows, row)
	}
	s.logger.Debug().Int("symbols", len(symbols)).Int("quotes", len(quotes)).Int("rows", len(batch.Rows)).Msg("Bulk ranking computed")

	if len(batch.Rows) == 0 {
		return batch, models.Empty(SourceBulk, 0)
	}

	sortRows(batch.Rows)
	if limit > 0 && len(batch.Rows) > limit {
		batch.Rows = batch.Rows[:limit]
	}
	return batch, nil
}

// split maps an exchange symbol back to its code and market. The OTC suffix
// is checked first since the listed suffix is its prefix.
func (s *BulkSource) split(symbol string) (string, models.Market) {
	upper := strings.ToUpper(symbol)
	if strings.HasSuffix(upper, strings.ToUpper(s.otcSuffix)) {
		return symbol[:len(symbol)-len(s.otcSuffix)], models.MarketOTC
	}
	if strings.HasSuffix(upper, strings.ToUpper(s.listedSuffix)) {
		return symbol[:len(symbol)-len(s.listedSuffix)], models.MarketListed
	}
	return "", models.MarketListed
}
