// Package common provides shared utilities for stocktrack
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for stocktrack
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Directory   DirectoryConfig `toml:"directory"`
	Sources     SourcesConfig   `toml:"sources"`
	Cache       CacheConfig     `toml:"cache"`
	Indices     []IndexConfig   `toml:"indices"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig selects the table backend and where it keeps its data.
type StorageConfig struct {
	Backend     string          `toml:"backend"` // csv, badger, sqlite, surrealdb
	Path        string          `toml:"path"`
	MainTable   string          `toml:"main_table"`
	ArchivePath string          `toml:"archive_path"` // per-index parquet history, empty disables
	SurrealDB   SurrealDBConfig `toml:"surrealdb"`
}

// SurrealDBConfig holds connection settings for the surrealdb backend.
type SurrealDBConfig struct {
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// DirectoryConfig points at an optional stock directory file (TOML or YAML)
// merged over the built-in seed table.
type DirectoryConfig struct {
	File        string `toml:"file"`
	OtherSector string `toml:"other_sector"`
}

// SourcesConfig holds upstream market-data source configuration
type SourcesConfig struct {
	Scrape ScrapeConfig `toml:"scrape"`
	Yahoo  YahooConfig  `toml:"yahoo"`
}

// ScrapeConfig configures the scraped ranking tier.
type ScrapeConfig struct {
	Enabled      bool            `toml:"enabled"`
	Renderer     string          `toml:"renderer"` // http or browser
	Segments     []SegmentConfig `toml:"segments"`
	MinRows      int             `toml:"min_rows"`
	RateLimit    int             `toml:"rate_limit"`
	Timeout      string          `toml:"timeout"`
	UserAgent    string          `toml:"user_agent"`
	WaitSelector string          `toml:"wait_selector"`
}

// SegmentConfig is one market segment ranking page.
type SegmentConfig struct {
	Market       string  `toml:"market"` // listed or otc
	URL          string  `toml:"url"`
	TurnoverUnit float64 `toml:"turnover_unit"` // divisor to reach hundred-million units
}

// GetTimeout parses and returns the timeout duration
func (c *ScrapeConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// YahooConfig holds quote API configuration
type YahooConfig struct {
	ListedSuffix string `toml:"listed_suffix"`
	OTCSuffix    string `toml:"otc_suffix"`
	RateLimit    int    `toml:"rate_limit"`
	Timeout      string `toml:"timeout"`
	BatchSize    int    `toml:"batch_size"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// CacheConfig overrides the freshness windows. Empty values use the defaults.
type CacheConfig struct {
	Ranking      string `toml:"ranking"`
	IndexQuotes  string `toml:"index_quotes"`
	IndexHistory string `toml:"index_history"`
	Turnover     string `toml:"turnover"`
}

// RankingTTL returns the ranking cache window
func (c *CacheConfig) RankingTTL() time.Duration {
	return parseTTL(c.Ranking, FreshnessRanking)
}

// IndexQuotesTTL returns the index quote cache window
func (c *CacheConfig) IndexQuotesTTL() time.Duration {
	return parseTTL(c.IndexQuotes, FreshnessIndexQuotes)
}

// IndexHistoryTTL returns the index history cache window
func (c *CacheConfig) IndexHistoryTTL() time.Duration {
	return parseTTL(c.IndexHistory, FreshnessIndexHistory)
}

// TurnoverTTL returns the per-stock turnover cache window
func (c *CacheConfig) TurnoverTTL() time.Duration {
	return parseTTL(c.Turnover, FreshnessTurnover)
}

func parseTTL(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// IndexConfig is one tracked market index.
type IndexConfig struct {
	Symbol string `toml:"symbol"`
	Name   string `toml:"name"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Outputs  []string `toml:"outputs"`
	FilePath string   `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8501,
		},
		Storage: StorageConfig{
			Backend:   "csv",
			Path:      "data",
			MainTable: "daily_records",
			SurrealDB: SurrealDBConfig{
				Address:   "ws://localhost:8000/rpc",
				Namespace: "stocktrack",
				Database:  "stocktrack",
				Username:  "root",
				Password:  "root",
			},
		},
		Directory: DirectoryConfig{
			OtherSector: "其他",
		},
		Sources: SourcesConfig{
			Scrape: ScrapeConfig{
				Enabled:  true,
				Renderer: "http",
				Segments: []SegmentConfig{
					{Market: "listed", URL: "https://tw.stock.yahoo.com/rank/turnover?exchange=TAI", TurnoverUnit: 1},
					{Market: "otc", URL: "https://tw.stock.yahoo.com/rank/turnover?exchange=TWO", TurnoverUnit: 1},
				},
				MinRows:   10,
				RateLimit: 2,
				Timeout:   "10s",
				UserAgent: "Mozilla/5.0 (compatible; stocktrack/1.0)",
			},
			Yahoo: YahooConfig{
				ListedSuffix: ".TW",
				OTCSuffix:    ".TWO",
				RateLimit:    5,
				Timeout:      "10s",
				BatchSize:    50,
			},
		},
		Indices: []IndexConfig{
			{Symbol: "^TWII", Name: "台股加權"},
			{Symbol: "^TWOII", Name: "櫃買指數"},
			{Symbol: "^N225", Name: "日經225"},
			{Symbol: "^DJI", Name: "道瓊工業"},
			{Symbol: "^IXIC", Name: "那斯達克"},
			{Symbol: "^SOX", Name: "費城半導體"},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Outputs:  []string{"console"},
			FilePath: "./logs/stocktrack.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	normalizeConfig(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("STOCKTRACK_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("STOCKTRACK_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("STOCKTRACK_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("STOCKTRACK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("STOCKTRACK_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if os.Getenv("STOCKTRACK_ARCHIVE") == "true" {
		config.Storage.ArchivePath = filepath.Join(config.Storage.Path, "archive")
	}

	if backend := os.Getenv("STOCKTRACK_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}

	if v := os.Getenv("STOCKTRACK_SURREALDB_ADDRESS"); v != "" {
		config.Storage.SurrealDB.Address = v
	}
	if v := os.Getenv("STOCKTRACK_SURREALDB_PASSWORD"); v != "" {
		config.Storage.SurrealDB.Password = v
	}

	if v := os.Getenv("STOCKTRACK_DIRECTORY_FILE"); v != "" {
		config.Directory.File = v
	}

	if v := os.Getenv("STOCKTRACK_SCRAPE_RENDERER"); v != "" {
		config.Sources.Scrape.Renderer = v
	}
}

// normalizeConfig lowercases enum-like fields and fills zero values that
// would otherwise disable a component.
func normalizeConfig(config *Config) {
	config.Storage.Backend = strings.ToLower(strings.TrimSpace(config.Storage.Backend))
	if config.Storage.Backend == "" {
		config.Storage.Backend = "csv"
	}
	if config.Storage.MainTable == "" {
		config.Storage.MainTable = "daily_records"
	}
	config.Sources.Scrape.Renderer = strings.ToLower(strings.TrimSpace(config.Sources.Scrape.Renderer))
	if config.Sources.Scrape.MinRows <= 0 {
		config.Sources.Scrape.MinRows = 10
	}
	for i := range config.Sources.Scrape.Segments {
		if config.Sources.Scrape.Segments[i].TurnoverUnit <= 0 {
			config.Sources.Scrape.Segments[i].TurnoverUnit = 1
		}
	}
	if config.Directory.OtherSector == "" {
		config.Directory.OtherSector = "其他"
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
