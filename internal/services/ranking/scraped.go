package ranking

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/interfaces"
	"github.com/bobmcallan/stocktrack/internal/models"
)

// SourceScraped names the page scraping tier.
const SourceScraped = "scraped"

type column int

const (
	colCode column = iota
	colName
	colPrice
	colPct
	colTurnover
)

func (c column) String() string {
	return [...]string{"code", "name", "price", "pct", "turnover"}[c]
}

// headerKeywords maps a header cell to a column. Order matters: the turnover
// keywords are checked before price so 成交值 never lands in the price column.
var headerKeywords = []struct {
	col      column
	keywords []string
}{
	{colTurnover, []string{"成交值", "成交金額", "turnover", "value"}},
	{colPct, []string{"漲跌幅", "漲幅", "change%", "chg%", "% change", "pct"}},
	{colCode, []string{"代號", "代碼", "code", "symbol"}},
	{colName, []string{"名稱", "股票", "name"}},
	{colPrice, []string{"成交價", "股價", "收盤", "price", "last"}},
}

var (
	codePattern   = regexp.MustCompile(`\b(\d{4,6})\b`)
	digitsPattern = regexp.MustCompile(`\d{4,6}`)
)

// Segment is one ranking page and the market it covers.
type Segment struct {
	Market       models.Market
	URL          string
	TurnoverUnit float64
}

// ScrapedSource reads turnover ranking tables from exchange pages.
type ScrapedSource struct {
	fetcher  interfaces.PageFetcher
	resolver interfaces.Resolver
	segments []Segment
	logger   *common.Logger
}

var _ interfaces.RankingSource = (*ScrapedSource)(nil)

// NewScrapedSource creates a page source over the given segments
func NewScrapedSource(fetcher interfaces.PageFetcher, resolver interfaces.Resolver, segments []Segment, logger *common.Logger) *ScrapedSource {
	return &ScrapedSource{
		fetcher:  fetcher,
		resolver: resolver,
		segments: segments,
		logger:   logger,
	}
}

// SegmentsFromConfig converts configured segments
func SegmentsFromConfig(cfgs []common.SegmentConfig) []Segment {
	out := make([]Segment, 0, len(cfgs))
	for _, c := range cfgs {
		unit := c.TurnoverUnit
		if unit <= 0 {
			unit = 1
		}
		out = append(out, Segment{Market: models.ParseMarket(c.Market), URL: c.URL, TurnoverUnit: unit})
	}
	return out
}

// Name implements RankingSource
func (s *ScrapedSource) Name() string { return SourceScraped }

// FetchRanking fetches every segment and merges the parsed rows. A segment
// that fails is logged and skipped; only when all fail is the tier down.
func (s *ScrapedSource) FetchRanking(ctx context.Context, _ []string, limit int) (models.SourceBatch, error) {
	batch := models.SourceBatch{Source: SourceScraped}
	if len(s.segments) == 0 {
		return batch, models.Unavailable(SourceScraped, errors.New("no segments configured"))
	}

	var errs []error
	for _, seg := range s.segments {
		body, err := s.fetcher.Fetch(ctx, seg.URL)
		if err != nil {
			s.logger.Warn().Err(err).Str("market", string(seg.Market)).Str("url", seg.URL).Msg("Ranking page fetch failed")
			errs = append(errs, fmt.Errorf("%s: %w", seg.Market, err))
			continue
		}

		rows, dropped, err := s.parse(body, seg)
		if err != nil {
			s.logger.Warn().Err(err).Str("market", string(seg.Market)).Msg("Ranking page parse failed")
			errs = append(errs, fmt.Errorf("%s: %w", seg.Market, err))
			continue
		}
		batch.Rows = append(batch.Rows, rows...)
		batch.Dropped += dropped
	}

	if len(errs) == len(s.segments) {
		return batch, models.Unavailable(SourceScraped, errors.Join(errs...))
	}
	if len(batch.Rows) == 0 {
		return batch, models.Empty(SourceScraped, 0)
	}

	sortRows(batch.Rows)
	if limit > 0 && len(batch.Rows) > limit {
		batch.Rows = batch.Rows[:limit]
	}
	return batch, nil
}

// parse picks the turnover table out of a page and reads its rows.
func (s *ScrapedSource) parse(body []byte, seg Segment) ([]models.RankingRow, int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("parse html: %w", err)
	}

	var (
		table   *goquery.Selection
		columns map[column]int
		header  []string
	)
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		cells := headerCells(t)
		cols := mapColumns(cells)
		if _, ok := cols[colTurnover]; !ok {
			return true
		}
		if _, ok := cols[colPrice]; !ok {
			return true
		}
		_, hasCode := cols[colCode]
		_, hasName := cols[colName]
		if !hasCode && !hasName {
			return true
		}
		table, columns, header = t, cols, cells
		return false
	})
	if table == nil {
		return nil, 0, errors.New("no table with a turnover column")
	}

	mapped := make([]string, 0, len(columns))
	for c := colCode; c <= colTurnover; c++ {
		if i, ok := columns[c]; ok {
			mapped = append(mapped, c.String()+"="+strconv.Itoa(i))
		}
	}
	s.logger.Info().Str("market", string(seg.Market)).Strs("header", header).
		Str("columns", strings.Join(mapped, ",")).Msg("Ranking table selected")

	var (
		rows    []models.RankingRow
		dropped int
	)
	bodyRows(table).Each(func(i int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td, th").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		if len(cells) == 0 {
			return
		}
		row, err := s.readRow(cells, columns, seg)
		if err != nil {
			dropped++
			s.logger.Debug().Err(err).Int("row", i).Str("market", string(seg.Market)).Msg("Ranking row dropped")
			return
		}
		rows = append(rows, row)
	})

	return rows, dropped, nil
}

func (s *ScrapedSource) readRow(cells []string, columns map[column]int, seg Segment) (models.RankingRow, error) {
	cell := func(c column) (string, bool) {
		i, ok := columns[c]
		if !ok || i >= len(cells) {
			return "", false
		}
		return cells[i], true
	}

	code, _ := cell(colCode)
	name, _ := cell(colName)
	if code == "" && name != "" {
		if m := codePattern.FindStringSubmatch(name); m != nil {
			code = m[1]
			name = strings.TrimSpace(strings.Replace(name, m[0], "", 1))
		}
	}
	code = digitsPattern.FindString(code)
	if code == "" && name == "" {
		return models.RankingRow{}, fmt.Errorf("%w: no code or name", models.ErrRowParse)
	}

	rawPrice, _ := cell(colPrice)
	price, err := parseNumber(rawPrice)
	if err != nil || price <= 0 {
		return models.RankingRow{}, fmt.Errorf("%w: price %q", models.ErrRowParse, rawPrice)
	}

	rawTurnover, _ := cell(colTurnover)
	turnover, err := parseNumber(rawTurnover)
	if err != nil || turnover <= 0 {
		return models.RankingRow{}, fmt.Errorf("%w: turnover %q", models.ErrRowParse, rawTurnover)
	}
	if seg.TurnoverUnit > 0 {
		turnover /= seg.TurnoverUnit
	}

	pct := 0.0
	if rawPct, ok := cell(colPct); ok && rawPct != "" {
		pct, err = parseNumber(rawPct)
		if err != nil {
			return models.RankingRow{}, fmt.Errorf("%w: pct %q", models.ErrRowParse, rawPct)
		}
	}

	lookup := code
	if lookup == "" {
		lookup = name
	}
	res := s.resolver.Resolve(lookup)
	if res.Found && res.HasCode() {
		code, name = res.Code, res.Name
	} else if name == "" {
		name = code
	}

	return models.RankingRow{
		Code:      code,
		Name:      name,
		Sector:    res.Sector,
		Price:     price,
		PctChange: pct,
		Turnover:  turnover,
		Market:    seg.Market,
		Source:    SourceScraped,
	}, nil
}

func headerCells(t *goquery.Selection) []string {
	var cells []string
	head := t.Find("thead tr").First()
	if head.Length() == 0 {
		head = t.Find("tr").First()
	}
	head.Find("th, td").Each(func(_ int, c *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(c.Text()))
	})
	return cells
}

func bodyRows(t *goquery.Selection) *goquery.Selection {
	if rows := t.Find("tbody tr"); rows.Length() > 0 {
		if t.Find("thead").Length() > 0 {
			return rows
		}
		return rows.Slice(1, rows.Length())
	}
	rows := t.Find("tr")
	if rows.Length() <= 1 {
		return rows.Slice(0, 0)
	}
	return rows.Slice(1, rows.Length())
}

// mapColumns assigns each header cell to at most one column, first match wins.
func mapColumns(header []string) map[column]int {
	cols := make(map[column]int)
	for i, h := range header {
		h = strings.ToLower(strings.Join(strings.Fields(h), " "))
		for _, hk := range headerKeywords {
			if _, taken := cols[hk.col]; taken {
				continue
			}
			if containsAny(h, hk.keywords) {
				cols[hk.col] = i
				break
			}
		}
	}
	return cols
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

var numberReplacer = strings.NewReplacer(",", "", "%", "", "+", "", "−", "-", "▲", "", "▼", "-", " ", "")

func parseNumber(s string) (float64, error) {
	s = numberReplacer.Replace(strings.TrimSpace(s))
	if s == "" || s == "-" || s == "--" {
		return 0, fmt.Errorf("empty number")
	}
	return strconv.ParseFloat(s, 64)
}

// sortRows orders by turnover descending, code ascending on ties.
func sortRows(rows []models.RankingRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Turnover != rows[j].Turnover {
			return rows[i].Turnover > rows[j].Turnover
		}
		return rows[i].Code < rows[j].Code
	})
}
