// Package app wires configuration, storage, clients and services into the
// shared core used by cmd/stocktrack-server and cmd/stocktrack.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/stocktrack/internal/clients/page"
	"github.com/bobmcallan/stocktrack/internal/clients/yahoo"
	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/directory"
	"github.com/bobmcallan/stocktrack/internal/interfaces"
	"github.com/bobmcallan/stocktrack/internal/services/dashboard"
	"github.com/bobmcallan/stocktrack/internal/services/history"
	"github.com/bobmcallan/stocktrack/internal/services/market"
	"github.com/bobmcallan/stocktrack/internal/services/ranking"
	"github.com/bobmcallan/stocktrack/internal/services/turnover"
	"github.com/bobmcallan/stocktrack/internal/storage"
)

// App holds all initialized services, clients, and the MCP server.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Storage     *storage.Manager
	Directory   *directory.Directory
	Search      *directory.SearchIndex
	QuoteClient interfaces.QuoteClient
	History     *history.Store
	Ranking     interfaces.RankingService
	Market      interfaces.MarketService
	Turnover    interfaces.TurnoverService
	Dashboard   *dashboard.Service
	MCPServer   *server.MCPServer
	StartupTime time.Time

	now func() time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: the given path, STOCKTRACK_CONFIG,
// stocktrack.toml next to the binary, then config/stocktrack.toml.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("STOCKTRACK_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "stocktrack.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/stocktrack.toml"
		}
	}
	return configPath
}

// NewApp loads configuration and initializes the App.
// configPath may be empty, in which case ResolveConfigPath applies.
func NewApp(configPath string) (*App, error) {
	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := common.NewLoggerFromConfig(config.Logging)
	return New(context.Background(), config, logger)
}

// New initializes storage, the directory, upstream clients and services.
// Nothing here touches the network except the surrealdb backend.
func New(ctx context.Context, config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	storageManager, err := storage.NewManager(ctx, logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	dir, err := directory.Load(config.Directory, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to load stock directory: %w", err)
	}

	search, err := directory.NewSearchIndex(dir)
	if err != nil {
		logger.Warn().Err(err).Msg("Directory search unavailable")
		search = nil
	}

	yahooCfg := config.Sources.Yahoo
	quoteClient := yahoo.NewClient(
		yahoo.WithLogger(logger),
		yahoo.WithRateLimit(yahooCfg.RateLimit),
		yahoo.WithTimeout(yahooCfg.GetTimeout()),
		yahoo.WithBatchSize(yahooCfg.BatchSize),
	)

	hist := history.NewStore(storageManager.Tables(), config.Storage.MainTable, logger)
	rankingService := ranking.NewService(dir.Codes(), config.Cache.RankingTTL(), logger, buildTiers(config, dir, quoteClient, logger)...)
	marketService := market.NewService(quoteClient, storageManager.IndexArchive(), config.Indices, config.Cache, logger)
	turnoverService := turnover.NewService(quoteClient, dir, yahooCfg, config.Cache.TurnoverTTL(), logger)
	dashboardService := dashboard.NewService(hist, dir, turnoverService, rankingService, marketService, logger)

	mcpServer := server.NewMCPServer(
		"stocktrack",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:      config,
		Logger:      logger,
		Storage:     storageManager,
		Directory:   dir,
		Search:      search,
		QuoteClient: quoteClient,
		History:     hist,
		Ranking:     rankingService,
		Market:      marketService,
		Turnover:    turnoverService,
		Dashboard:   dashboardService,
		MCPServer:   mcpServer,
		StartupTime: startupStart,
		now:         time.Now,
	}

	a.registerTools()

	logger.Info().Str("startup", time.Since(startupStart).String()).Msg("App initialized")
	return a, nil
}

// buildTiers assembles the ranking fallback chain: the scraped ranking pages
// when enabled, then the bulk quote API over the directory universe.
func buildTiers(config *common.Config, dir *directory.Directory, client interfaces.QuoteClient, logger *common.Logger) []ranking.Tier {
	var tiers []ranking.Tier

	scrape := config.Sources.Scrape
	if scrape.Enabled && len(scrape.Segments) > 0 {
		scraped := ranking.NewScrapedSource(page.New(scrape, logger), dir, ranking.SegmentsFromConfig(scrape.Segments), logger)
		tiers = append(tiers, ranking.Tier{Source: scraped, MinRows: scrape.MinRows})
	}

	bulk := ranking.NewBulkSource(client, dir, config.Sources.Yahoo, logger)
	tiers = append(tiers, ranking.Tier{Source: bulk})

	return tiers
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Search != nil {
		a.Search.Close()
		a.Search = nil
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Storage close failed")
		}
		a.Storage = nil
	}
}
