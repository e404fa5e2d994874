package page

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stocktrack/internal/common"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "stocktrack-test" {
			t.Errorf("unexpected user agent: %s", r.Header.Get("User-Agent"))
		}
		w.Write([]byte("<html><body><table></table></body></html>"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(WithUserAgent("stocktrack-test"), WithRateLimit(50))
	body, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<table>")
}

func TestHTTPFetcher_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewHTTPFetcher().Fetch(context.Background(), server.URL)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
}

func TestNew_PicksRenderer(t *testing.T) {
	logger := common.NewSilentLogger()

	_, ok := New(common.ScrapeConfig{Renderer: "http"}, logger).(*HTTPFetcher)
	assert.True(t, ok)

	_, ok = New(common.ScrapeConfig{}, logger).(*HTTPFetcher)
	assert.True(t, ok)

	b, ok := New(common.ScrapeConfig{Renderer: "browser", WaitSelector: "table"}, logger).(*BrowserFetcher)
	require.True(t, ok)
	assert.Equal(t, "table", b.waitSelector)
}
