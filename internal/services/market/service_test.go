package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/models"
)

// --- Mocks ---

type mockQuoteClient struct {
	historyFn func(symbol string, from, to time.Time) ([]models.Bar, error)
	calls     int
}

func (m *mockQuoteClient) BulkQuotes(_ context.Context, _ []string) ([]models.Quote, error) {
	return nil, errors.New("not implemented")
}

func (m *mockQuoteClient) History(_ context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	m.calls++
	return m.historyFn(symbol, from, to)
}

type mockArchive struct {
	bars   map[string][]models.IndexBar
	merged int
}

func (m *mockArchive) Merge(_ context.Context, symbol string, bars []models.IndexBar) error {
	m.merged++
	if m.bars == nil {
		m.bars = make(map[string][]models.IndexBar)
	}
	m.bars[symbol] = bars
	return nil
}

func (m *mockArchive) Load(_ context.Context, symbol string) ([]models.IndexBar, error) {
	return m.bars[symbol], nil
}

var testNow = time.Date(2024, 12, 2, 14, 0, 0, 0, time.UTC)

// dailyBars returns one bar per day over [from, to], closes rising by one.
func dailyBars(from, to time.Time) []models.Bar {
	var bars []models.Bar
	c := 100.0
	for d := from.Truncate(24 * time.Hour); !d.After(to); d = d.AddDate(0, 0, 1) {
		bars = append(bars, models.Bar{Date: d, Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000})
		c++
	}
	return bars
}

func newTestService(client *mockQuoteClient, archive *mockArchive) *Service {
	indices := []common.IndexConfig{
		{Symbol: "^TWII", Name: "台股加權"},
		{Symbol: "^TWOII", Name: "櫃買指數"},
		{Symbol: "^N225", Name: "日經225"},
	}
	var svc *Service
	if archive != nil {
		svc = NewService(client, archive, indices, common.CacheConfig{}, common.NewSilentLogger())
	} else {
		svc = NewService(client, nil, indices, common.CacheConfig{}, common.NewSilentLogger())
	}
	svc.now = func() time.Time { return testNow }
	return svc
}

// --- Quotes ---

func TestGetIndexQuotes_SkipsFailures(t *testing.T) {
	client := &mockQuoteClient{historyFn: func(symbol string, _, _ time.Time) ([]models.Bar, error) {
		switch symbol {
		case "^TWII":
			return []models.Bar{{Date: testNow.AddDate(0, 0, -1), Close: 100}, {Date: testNow, Close: 110}}, nil
		case "^TWOII":
			return []models.Bar{{Date: testNow, Close: 250}}, nil
		}
		return nil, errors.New("timeout")
	}}
	svc := newTestService(client, nil)

	res := svc.GetIndexQuotes(context.Background())
	require.True(t, res.Available)
	require.Len(t, res.Quotes, 2)
	assert.Equal(t, []string{"^N225"}, res.Skipped)

	tw := res.Quotes[0]
	assert.Equal(t, "台股加權", tw.Name)
	assert.Equal(t, 110.0, tw.Price)
	assert.Equal(t, 10.0, tw.Change)
	assert.InDelta(t, 10.0, tw.PctChange, 1e-9)

	otc := res.Quotes[1]
	assert.Equal(t, 0.0, otc.Change)
	assert.Equal(t, 0.0, otc.PctChange)

	svc.GetIndexQuotes(context.Background())
	assert.Equal(t, 3, client.calls)
}

func TestGetIndexQuotes_AllFailNotCached(t *testing.T) {
	client := &mockQuoteClient{historyFn: func(string, time.Time, time.Time) ([]models.Bar, error) {
		return nil, errors.New("offline")
	}}
	svc := newTestService(client, nil)

	res := svc.GetIndexQuotes(context.Background())
	assert.False(t, res.Available)
	assert.Empty(t, res.Quotes)
	assert.Len(t, res.Skipped, 3)
	assert.NotEmpty(t, res.Diagnostic)

	svc.GetIndexQuotes(context.Background())
	assert.Equal(t, 6, client.calls)
}

// --- History ---

func TestGetIndexHistory_WarmsUpAverages(t *testing.T) {
	var gotFrom time.Time
	client := &mockQuoteClient{historyFn: func(_ string, from, to time.Time) ([]models.Bar, error) {
		gotFrom = from
		return dailyBars(from, to), nil
	}}
	archive := &mockArchive{}
	svc := newTestService(client, archive)

	hist := svc.GetIndexHistory(context.Background(), "^TWII", "1mo")
	require.True(t, hist.Available)
	assert.Equal(t, "台股加權", hist.Name)
	assert.True(t, gotFrom.Before(testNow.AddDate(0, -1, 0)))

	start := testNow.AddDate(0, -1, 0)
	require.NotEmpty(t, hist.Bars)
	assert.False(t, hist.Bars[0].Date.Before(start))
	assert.Greater(t, hist.Bars[0].MA60, 0.0)
	for i := 1; i < len(hist.Bars); i++ {
		assert.True(t, hist.Bars[i-1].Date.Before(hist.Bars[i].Date))
	}

	last, ok := hist.Latest()
	require.True(t, ok)
	assert.InDelta(t, (last.Close-last.MA20)/last.MA20*100, last.BiasRate, 1e-9)

	assert.Equal(t, 1, archive.merged)
	svc.GetIndexHistory(context.Background(), "^TWII", "1mo")
	assert.Equal(t, 1, client.calls)
}

func TestGetIndexHistory_MarketLabel(t *testing.T) {
	var gotSymbol string
	client := &mockQuoteClient{historyFn: func(symbol string, from, to time.Time) ([]models.Bar, error) {
		gotSymbol = symbol
		return dailyBars(from, to), nil
	}}
	hist := newTestService(client, nil).GetIndexHistory(context.Background(), "上櫃", "")
	assert.Equal(t, "^TWOII", gotSymbol)
	assert.Equal(t, "^TWOII", hist.Symbol)
	assert.Equal(t, DefaultPeriod, hist.Period)
}

func TestGetIndexHistory_UnknownPeriod(t *testing.T) {
	client := &mockQuoteClient{}
	hist := newTestService(client, nil).GetIndexHistory(context.Background(), "^TWII", "5y")
	assert.False(t, hist.Available)
	assert.Contains(t, hist.Diagnostic, "5y")
	assert.Equal(t, 0, client.calls)
}

func TestGetIndexHistory_FallsBackToArchive(t *testing.T) {
	archived := make([]models.IndexBar, 0)
	for _, b := range dailyBars(testNow.AddDate(0, -2, 0), testNow.AddDate(0, 0, -1)) {
		archived = append(archived, models.IndexBar{Date: b.Date, Close: b.Close})
	}
	archive := &mockArchive{bars: map[string][]models.IndexBar{"^TWII": archived}}
	client := &mockQuoteClient{historyFn: func(string, time.Time, time.Time) ([]models.Bar, error) {
		return nil, errors.New("503")
	}}

	hist := newTestService(client, archive).GetIndexHistory(context.Background(), "^TWII", "1mo")
	require.True(t, hist.Available)
	assert.Contains(t, hist.Diagnostic, "archive")
	assert.False(t, hist.Bars[0].Date.Before(testNow.AddDate(0, -1, 0)))
}

func TestGetIndexHistory_UnavailableWithoutArchive(t *testing.T) {
	client := &mockQuoteClient{historyFn: func(string, time.Time, time.Time) ([]models.Bar, error) {
		return nil, errors.New("503")
	}}
	hist := newTestService(client, nil).GetIndexHistory(context.Background(), "^TWII", "3mo")
	assert.False(t, hist.Available)
	assert.Empty(t, hist.Bars)
	assert.Contains(t, hist.Diagnostic, "503")
}
