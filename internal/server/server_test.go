package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stocktrack/internal/app"
	"github.com/bobmcallan/stocktrack/internal/models"
)

const ocrPayload = `[
	{"col_01": "2024/12/02", "col_02": "Gust", "col_06": "台積電"},
	{"col_01": "2024/12/03", "col_02": "Storm", "col_06": "台積電"},
	{"col_01": "2024/12/04", "col_02": "Storm"}
]`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	config := `
environment = "test"

[storage]
backend = "csv"
path = "` + filepath.Join(dir, "data") + `"

[storage.surrealdb]
password = "supersecret"

[sources.scrape]
enabled = false

[logging]
level = "error"
`
	path := filepath.Join(dir, "stocktrack.toml")
	require.NoError(t, os.WriteFile(path, []byte(config), 0644))

	a, err := app.NewApp(path)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return NewServer(a)
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t)

	rr := do(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Correlation-ID"))

	rr = do(t, s, http.MethodGet, "/api/version", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"version"`)

	rr = do(t, s, http.MethodPost, "/api/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET, HEAD", rr.Header().Get("Allow"))
}

func TestConfig_MasksSecrets(t *testing.T) {
	s := newTestServer(t)
	rr := do(t, s, http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "supersecret")
	assert.Contains(t, rr.Body.String(), "supe****")
}

func TestRecords_ImportListGetDelete(t *testing.T) {
	s := newTestServer(t)

	rr := do(t, s, http.MethodPost, "/api/records/import", ocrPayload)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var res app.ImportResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, 3, res.Total)

	rr = do(t, s, http.MethodGet, "/api/records?limit=2", "")
	var records []models.DailyRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "2024-12-04", records[0].Date)

	rr = do(t, s, http.MethodGet, "/api/records/2024-12-03", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var rec models.DailyRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, models.WindStorm, rec.Wind)

	rr = do(t, s, http.MethodGet, "/api/records/2023-01-01", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, s, http.MethodDelete, "/api/records/2024-12-03", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = do(t, s, http.MethodGet, "/api/records/2024-12-03", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// The delete left the previous table in the backup slot.
	rr = do(t, s, http.MethodPost, "/api/records/restore", "")
	require.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, s, http.MethodGet, "/api/records/2024-12-03", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRecords_ImportErrors(t *testing.T) {
	s := newTestServer(t)

	rr := do(t, s, http.MethodPost, "/api/records/import", `{"error": "quota exceeded"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "ocr_error")

	rr = do(t, s, http.MethodPost, "/api/records/import", `{"col_01":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, s, http.MethodPost, "/api/records/import?format=records", `[{"date": "", "wind": "Storm"}]`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "row_parse")

	rr = do(t, s, http.MethodPost, "/api/records/restore", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRecords_ImportStructured(t *testing.T) {
	s := newTestServer(t)
	body := `[{"date": "2024/12/5", "wind": "陣風", "worker_strong_list": [{"name": "鴻海", "cb": true}]}]`
	rr := do(t, s, http.MethodPost, "/api/records/import?format=records", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "2024-12-05")

	rr = do(t, s, http.MethodGet, "/api/records/2024-12-05", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var rec models.DailyRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, []models.Mention{{Name: "鴻海", CB: true}}, rec.WorkerStrong)
}

func TestRecordTurnover_Override(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/records/import", ocrPayload).Code)

	rr := do(t, s, http.MethodPut, "/api/records/2024-12-03/turnover", `{"name": "台積電", "value": 88.8}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, s, http.MethodPost, "/api/turnover", `{"names": ["台積電"], "date": "2024-12-03"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var res models.TurnoverResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, 88.8, res.Values["2330"])
	assert.Equal(t, []string{"台積電"}, res.Overrides)

	rr = do(t, s, http.MethodPut, "/api/records/2024-12-03/turnover", `{"name": "台積電", "value": -3}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, s, http.MethodDelete, "/api/records/2024-12-03/turnover?name="+url.QueryEscape("台積電"), "")
	require.Equal(t, http.StatusOK, rr.Code)
	var rec models.DailyRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Empty(t, rec.ManualTurnover)

	rr = do(t, s, http.MethodPut, "/api/records/2023-01-01/turnover", `{"name": "台積電", "value": 1}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/turnover", `{"names": []}`).Code)
}

func TestDashboardAndAnalytics(t *testing.T) {
	s := newTestServer(t)

	rr := do(t, s, http.MethodGet, "/api/dashboard", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "no_history")

	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/records/import", ocrPayload).Code)

	// 2024-12-04 has no mentions, so no turnover lookups are made.
	rr = do(t, s, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var d models.Dashboard
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &d))
	assert.Equal(t, "2024-12-04", d.Date)
	assert.Equal(t, 2, d.Streak.Days)
	assert.Equal(t, "2024-12", d.Month)
	assert.Len(t, d.Dates, 3)

	rr = do(t, s, http.MethodGet, "/api/dashboard?date=2022-01-01", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "date_not_found")

	rr = do(t, s, http.MethodGet, "/api/streak?date=2024-12-03", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var streak models.StreakResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &streak))
	assert.Equal(t, 1, streak.Days)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/streak?field=bogus", "").Code)

	rr = do(t, s, http.MethodGet, "/api/stats/monthly?month=2024-12&field=worker_strong_list", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var stats []models.MonthlyStat
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	require.Len(t, stats, 1)
	assert.Equal(t, 2, stats[0].Count)

	rr = do(t, s, http.MethodGet, "/api/stats/wind", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var wind []models.WindDays
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &wind))
	require.Len(t, wind, 2)
	assert.Equal(t, models.WindGust, wind[0].Wind)
	assert.Equal(t, 2, wind[1].Days)
}

func TestStocks_ResolveAndSearch(t *testing.T) {
	s := newTestServer(t)

	rr := do(t, s, http.MethodGet, "/api/stocks/resolve?name=2330", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var res models.Resolution
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, "台積電", res.Name)

	rr = do(t, s, http.MethodGet, "/api/stocks/resolve?name="+url.QueryEscape("不存在"), "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.False(t, res.Found)
	assert.Equal(t, "其他", res.Sector)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/stocks/resolve", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/stocks/search", "").Code)

	rr = do(t, s, http.MethodGet, "/api/stocks/search?q=2330", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "台積電")
}

func TestRouting_NotFound(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/records/2024-12-03/bogus", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/indices/TWII", "").Code)
}

func TestShutdown_DisabledInProduction(t *testing.T) {
	s := newTestServer(t)
	s.app.Config.Environment = "production"
	rr := do(t, s, http.MethodPost, "/api/shutdown", "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
