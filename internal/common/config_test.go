package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DefaultPort(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 8501 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 8501)
	}
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("STOCKTRACK_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
}

func TestConfig_InvalidPortEnvIgnored(t *testing.T) {
	t.Setenv("STOCKTRACK_PORT", "not-a-port")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, 8501, cfg.Server.Port)
}

func TestConfig_StorageEnvOverrides(t *testing.T) {
	t.Setenv("STOCKTRACK_DATA_PATH", "/tmp/st")
	t.Setenv("STOCKTRACK_STORAGE_BACKEND", "sqlite")
	t.Setenv("STOCKTRACK_ARCHIVE", "true")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, "/tmp/st", cfg.Storage.Path)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, filepath.Join("/tmp/st", "archive"), cfg.Storage.ArchivePath)
}

func TestLoadConfig_MissingFileSkipped(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"), "")
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Storage.Backend)
	assert.Len(t, cfg.Indices, 6)
}

func TestLoadConfig_LaterFileOverrides(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.toml")
	second := filepath.Join(dir, "b.toml")

	require.NoError(t, os.WriteFile(first, []byte(`
environment = "staging"

[storage]
backend = "BADGER"

[sources.scrape]
min_rows = 25
`), 0644))
	require.NoError(t, os.WriteFile(second, []byte(`
environment = "production"

[cache]
ranking = "30s"
turnover = "bogus"
`), 0644))

	cfg, err := LoadConfig(first, second)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.Equal(t, 25, cfg.Sources.Scrape.MinRows)
	assert.Equal(t, 30*time.Second, cfg.Cache.RankingTTL())
	assert.Equal(t, FreshnessTurnover, cfg.Cache.TurnoverTTL())
	assert.Equal(t, FreshnessIndexQuotes, cfg.Cache.IndexQuotesTTL())
}

func TestLoadConfig_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[storage\nbackend="), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestNormalizeConfig_FillsZeroValues(t *testing.T) {
	cfg := &Config{
		Sources: SourcesConfig{Scrape: ScrapeConfig{
			Segments: []SegmentConfig{{Market: "listed", URL: "http://x"}},
		}},
	}
	normalizeConfig(cfg)

	assert.Equal(t, "csv", cfg.Storage.Backend)
	assert.Equal(t, "daily_records", cfg.Storage.MainTable)
	assert.Equal(t, 10, cfg.Sources.Scrape.MinRows)
	assert.Equal(t, 1.0, cfg.Sources.Scrape.Segments[0].TurnoverUnit)
	assert.Equal(t, "其他", cfg.Directory.OtherSector)
}

func TestTimeouts_FallbackOnInvalid(t *testing.T) {
	s := ScrapeConfig{Timeout: "abc"}
	y := YahooConfig{Timeout: "3s"}

	assert.Equal(t, 10*time.Second, s.GetTimeout())
	assert.Equal(t, 3*time.Second, y.GetTimeout())
}

func TestCacheTTLs_DefaultToFreshnessWindows(t *testing.T) {
	var c CacheConfig
	assert.Equal(t, FreshnessRanking, c.RankingTTL())
	assert.Equal(t, FreshnessIndexQuotes, c.IndexQuotesTTL())
	assert.Equal(t, FreshnessIndexHistory, c.IndexHistoryTTL())
	assert.Equal(t, FreshnessTurnover, c.TurnoverTTL())

	c = CacheConfig{IndexHistory: "not-a-duration", Turnover: "90s"}
	assert.Equal(t, FreshnessIndexHistory, c.IndexHistoryTTL())
	assert.Equal(t, 90*time.Second, c.TurnoverTTL())
}
