package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stocktrack/internal/models"
)

const chartJSON = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "2330.TW", "exchangeTimezoneName": "Asia/Taipei"},
      "timestamp": [1733101200, 1733187600, 1733274000],
      "indicators": {"quote": [{
        "open":   [1000.0, null, 1010.0],
        "high":   [1010.0, null, 1020.0],
        "low":    [990.0,  null, 1000.0],
        "close":  [1005.0, null, 1015.0],
        "volume": [30000000, null, 25000000]
      }]}
    }],
    "error": null
  }
}`

func TestHistory_ParsesChartAndSkipsNullClose(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/2330.TW" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("interval") != "1d" {
			t.Errorf("expected interval=1d, got %s", r.URL.Query().Get("interval"))
		}
		if r.URL.Query().Get("period1") == "" || r.URL.Query().Get("period2") == "" {
			t.Error("expected period1 and period2")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chartJSON))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	to := time.Date(2024, 12, 4, 0, 0, 0, 0, time.UTC)
	bars, err := client.History(context.Background(), "2330.TW", to.AddDate(0, 0, -5), to)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, 1005.0, bars[0].Close)
	assert.Equal(t, int64(30000000), bars[0].Volume)
	assert.Equal(t, 1015.0, bars[1].Close)
	assert.True(t, bars[0].Date.Before(bars[1].Date))
	assert.InDelta(t, 1005.0*30000000/1e8, bars[0].Turnover(), 1e-9)
}

func TestHistory_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.History(context.Background(), "NOPE.TW", time.Now().AddDate(0, 0, -5), time.Now())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.True(t, strings.Contains(apiErr.Endpoint, "NOPE.TW"))
}

func TestHistory_ChartErrorInBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[],"error":{"code":"Bad","description":"Invalid period"}}}`))
	}))
	defer server.Close()

	_, err := NewClient(WithBaseURL(server.URL)).History(context.Background(), "^TWII", time.Now(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid period")
}

func TestHistory_EmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	}))
	defer server.Close()

	bars, err := NewClient(WithBaseURL(server.URL)).History(context.Background(), "^TWII", time.Now(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, bars)
}

type stubLister struct {
	batches [][]string
	err     error
}

func (s *stubLister) List(_ context.Context, symbols []string) ([]models.Quote, error) {
	s.batches = append(s.batches, append([]string(nil), symbols...))
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.Quote, 0, len(symbols))
	for _, sym := range symbols {
		if sym == "MISSING.TW" {
			continue
		}
		out = append(out, models.Quote{Symbol: sym, Close: 10})
	}
	return out, nil
}

func TestBulkQuotes_Batches(t *testing.T) {
	lister := &stubLister{}
	client := NewClient(WithQuoteLister(lister), WithBatchSize(2), WithRateLimit(100))

	quotes, err := client.BulkQuotes(context.Background(), []string{"1.TW", "2.TW", "MISSING.TW", "4.TW", "5.TW"})
	require.NoError(t, err)
	assert.Len(t, quotes, 4)
	assert.Equal(t, [][]string{{"1.TW", "2.TW"}, {"MISSING.TW", "4.TW"}, {"5.TW"}}, lister.batches)
}

func TestBulkQuotes_BatchError(t *testing.T) {
	lister := &stubLister{err: errors.New("503")}
	client := NewClient(WithQuoteLister(lister))

	_, err := client.BulkQuotes(context.Background(), []string{"1.TW"})
	assert.Error(t, err)
}

func TestBulkQuotes_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(WithQuoteLister(&stubLister{}), WithRateLimit(1))
	// Drain the burst so Wait must block and observe the cancellation.
	client.limiter.Allow()
	_, err := client.BulkQuotes(ctx, []string{"1.TW"})
	assert.Error(t, err)
}

// blockingLister never answers on its own; it returns when ctx ends.
type blockingLister struct{}

func (blockingLister) List(ctx context.Context, _ []string) ([]models.Quote, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestBulkQuotes_SlowBatchIsCutOffByTimeout(t *testing.T) {
	client := NewClient(WithQuoteLister(blockingLister{}), WithTimeout(50*time.Millisecond), WithRateLimit(100))

	start := time.Now()
	_, err := client.BulkQuotes(context.Background(), []string{"1.TW"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestFromFinance_NameFallsBackToSymbol(t *testing.T) {
	q := fromFinance(&finance.Quote{Symbol: "2330.TW", RegularMarketPrice: 600, RegularMarketVolume: 1000})
	assert.Equal(t, "2330.TW", q.Name)
	assert.Equal(t, 600.0, q.Close)
	assert.Equal(t, int64(1000), q.Volume)

	q = fromFinance(&finance.Quote{Symbol: "2330.TW", ShortName: "TSMC"})
	assert.Equal(t, "TSMC", q.Name)
}
