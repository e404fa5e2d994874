package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/models"
)

const samplePayload = `[
	{"col_01": "2024/12/02", "col_02": "Gust", "col_03": 3, "col_06": "台積電"},
	{"col_01": "2024/12/03", "col_02": "Storm", "col_03": 4, "col_06": "台積電", "col_07": "鴻海(CB)"},
	{"col_01": "2024/12/04", "col_02": "Storm", "col_03": 5, "col_06": "台積電"},
	{"col_01": "", "col_02": "Gust"}
]`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	config := `
environment = "test"

[storage]
backend = "csv"
path = "` + filepath.Join(dir, "data") + `"

[sources.scrape]
enabled = false

[logging]
level = "error"
outputs = ["console"]
`
	configPath := filepath.Join(dir, "stocktrack.toml")
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := NewApp(writeTestConfig(t))
	require.NoError(t, err)
	a.now = func() time.Time { return time.Date(2024, 12, 4, 19, 0, 0, 0, time.UTC) }
	t.Cleanup(a.Close)
	return a
}

func TestNewApp_InitializesAllServices(t *testing.T) {
	a := newTestApp(t)

	assert.Equal(t, "test", a.Config.Environment)
	assert.NotNil(t, a.Storage)
	assert.NotNil(t, a.Directory)
	assert.NotNil(t, a.Search)
	assert.NotNil(t, a.History)
	assert.NotNil(t, a.Ranking)
	assert.NotNil(t, a.Market)
	assert.NotNil(t, a.Turnover)
	assert.NotNil(t, a.Dashboard)
	assert.NotNil(t, a.MCPServer)
	assert.False(t, a.StartupTime.IsZero())
}

func TestBuildTiers(t *testing.T) {
	cfg := common.NewDefaultConfig()
	a := newTestApp(t)

	tiers := buildTiers(cfg, a.Directory, a.QuoteClient, a.Logger)
	require.Len(t, tiers, 2)
	assert.Equal(t, "scraped", tiers[0].Source.Name())
	assert.Equal(t, cfg.Sources.Scrape.MinRows, tiers[0].MinRows)
	assert.Equal(t, "bulk_api", tiers[1].Source.Name())

	cfg.Sources.Scrape.Enabled = false
	tiers = buildTiers(cfg, a.Directory, a.QuoteClient, a.Logger)
	require.Len(t, tiers, 1)
	assert.Equal(t, "bulk_api", tiers[0].Source.Name())
}

func TestImportOCR_UpsertsByDate(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	res, err := a.ImportOCR(ctx, []byte(samplePayload))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, []string{"2024-12-02", "2024-12-03", "2024-12-04"}, res.Dates)

	// Re-importing one day replaces it.
	res, err = a.ImportOCR(ctx, []byte(`[{"col_01": "2024-12-04", "col_02": "Turbulence"}]`))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)

	rec, ok := a.History.Get(ctx, "2024-12-04")
	require.True(t, ok)
	assert.Equal(t, models.WindTurbulence, rec.Wind)
	assert.Empty(t, rec.WorkerStrong)
}

func TestImportOCR_ErrorPayload(t *testing.T) {
	a := newTestApp(t)
	_, err := a.ImportOCR(context.Background(), []byte(`{"error": "quota exceeded"}`))
	require.Error(t, err)
	assert.Empty(t, a.History.LoadAll(context.Background()))
}

func TestStreakAndStats(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	_, err := a.ImportOCR(ctx, []byte(samplePayload))
	require.NoError(t, err)

	s, err := a.Streak(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-12-04", s.Date)
	assert.Equal(t, 2, s.Days)

	s, err = a.Streak(ctx, "2024/12/3", "worker_strong")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Days)

	_, err = a.Streak(ctx, "", "nope")
	assert.True(t, errors.Is(err, ErrUnknownField))

	stats, err := a.MonthlyStats(ctx, "2024-12", "worker_strong_list", 1)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "台積電", stats[0].Stock)
	assert.Equal(t, 3, stats[0].Count)
	assert.Equal(t, "晶圓代工", stats[0].Sector)

	_, err = a.MonthlyStats(ctx, "", "nope", 0)
	assert.True(t, errors.Is(err, ErrUnknownField))

	days := a.WindDays(ctx)
	require.NotEmpty(t, days)
	assert.Equal(t, models.WindGust, days[0].Wind)
}

func TestSetManualTurnover_FeedsTurnover(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	_, err := a.ImportOCR(ctx, []byte(samplePayload))
	require.NoError(t, err)

	_, err = a.SetManualTurnover(ctx, "2024-12-04", "台積電", 321.5)
	require.NoError(t, err)

	// The override is served without touching the network.
	res := a.TurnoverFor(ctx, []string{"台積電"}, "")
	assert.Equal(t, "2024-12-04", res.Date)
	assert.Equal(t, 321.5, res.Values["台積電"])
	assert.Equal(t, 321.5, res.Values["2330"])

	rec, err := a.SetManualTurnover(ctx, "2024-12-04", "台積電", -1)
	require.NoError(t, err)
	assert.Empty(t, rec.ManualTurnover)

	_, err = a.SetManualTurnover(ctx, "2023-01-01", "台積電", 1)
	assert.Error(t, err)
}

func TestSetManualTurnover_StampsLastUpdated(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	_, err := a.ImportOCR(ctx, []byte(samplePayload))
	require.NoError(t, err)

	edited := time.Date(2024, 12, 5, 8, 30, 0, 0, time.UTC)
	a.now = func() time.Time { return edited }

	rec, err := a.SetManualTurnover(ctx, "2024-12-03", "鴻海", 12.5)
	require.NoError(t, err)
	assert.True(t, rec.LastUpdated.Equal(edited))

	stored, ok := a.History.Get(ctx, "2024-12-03")
	require.True(t, ok)
	assert.True(t, stored.LastUpdated.Equal(edited), stored.LastUpdated.String())

	untouched, ok := a.History.Get(ctx, "2024-12-02")
	require.True(t, ok)
	assert.False(t, untouched.LastUpdated.Equal(edited))
}

func TestExport_WritesReadableCSV(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	_, err := a.ImportOCR(ctx, []byte(samplePayload))
	require.NoError(t, err)

	out := t.TempDir()
	path, err := a.Export(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "daily_records.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2024-12-03")
	assert.Contains(t, string(data), "鴻海(CB)")
}

func TestSearchStocks(t *testing.T) {
	a := newTestApp(t)
	got, err := a.SearchStocks("2330", 5)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "台積電", got[0].Name)
}

func TestClampRankingLimit(t *testing.T) {
	assert.Equal(t, 20, ClampRankingLimit(0))
	assert.Equal(t, 5, ClampRankingLimit(5))
	assert.Equal(t, MaxRankingLimit, ClampRankingLimit(1000))
}
