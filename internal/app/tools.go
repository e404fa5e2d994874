package app

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer

	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createGetDashboardTool(), handleGetDashboard(a))
	s.AddTool(createGetRankingTool(), handleGetRanking(a.Ranking))
	s.AddTool(createGetIndexQuotesTool(), handleGetIndexQuotes(a.Market))
	s.AddTool(createGetIndexHistoryTool(), handleGetIndexHistory(a.Market))
	s.AddTool(createGetTurnoverTool(), handleGetTurnover(a))
	s.AddTool(createGetStreakTool(), handleGetStreak(a))
	s.AddTool(createGetMonthlyStatsTool(), handleGetMonthlyStats(a))
	s.AddTool(createListRecordsTool(), handleListRecords(a))
	s.AddTool(createImportOCRTool(), handleImportOCR(a))
	s.AddTool(createSearchStocksTool(), handleSearchStocks(a))
	s.AddTool(createResolveStockTool(), handleResolveStock(a.Directory))
}

func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the stocktrack server version and status. Use this to verify connectivity."),
	)
}

func createGetDashboardTool() mcp.Tool {
	return mcp.NewTool("get_dashboard",
		mcp.WithDescription("Get the daily dashboard: wind state and streak, counters, picks annotated with sector and turnover, and the month's leaderboards."),
		mcp.WithString("date",
			mcp.Description("Record date (YYYY-MM-DD). Defaults to the latest record."),
		),
		mcp.WithBoolean("include_ranking",
			mcp.Description("Include the live turnover ranking (default: false)"),
		),
		mcp.WithBoolean("include_indices",
			mcp.Description("Include live index quotes (default: false)"),
		),
	)
}

func createGetRankingTool() mcp.Tool {
	return mcp.NewTool("get_ranking",
		mcp.WithDescription("Get the live turnover ranking across listed and OTC markets, with the data tier that produced it."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum rows to return (default: 20, max: 100)"),
		),
	)
}

func createGetIndexQuotesTool() mcp.Tool {
	return mcp.NewTool("get_index_quotes",
		mcp.WithDescription("Get the latest quote and daily change for each tracked market index."),
	)
}

func createGetIndexHistoryTool() mcp.Tool {
	return mcp.NewTool("get_index_history",
		mcp.WithDescription("Get daily bars with 5/10/20/60 day moving averages and bias for an index."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Index symbol (e.g. '^TWII') or market label ('listed', 'otc')"),
		),
		mcp.WithString("period",
			mcp.Description("Lookback: 1mo, 3mo, 6mo or 1y (default: 6mo)"),
		),
	)
}

func createGetTurnoverTool() mcp.Tool {
	return mcp.NewTool("get_turnover",
		mcp.WithDescription("Get per-stock turnover for a date. Manual overrides stored on the record take precedence."),
		mcp.WithArray("names",
			mcp.WithStringItems(),
			mcp.Required(),
			mcp.Description("Stock names or codes"),
		),
		mcp.WithString("date",
			mcp.Description("Trading date (YYYY-MM-DD). Defaults to the latest record."),
		),
	)
}

func createGetStreakTool() mcp.Tool {
	return mcp.NewTool("get_streak",
		mcp.WithDescription("Count consecutive recorded days ending at date with the same value."),
		mcp.WithString("date",
			mcp.Description("Anchor date (YYYY-MM-DD). Defaults to the latest record."),
		),
		mcp.WithString("field",
			mcp.Description("wind (default) or a list field such as worker_strong_list"),
		),
	)
}

func createGetMonthlyStatsTool() mcp.Tool {
	return mcp.NewTool("get_monthly_stats",
		mcp.WithDescription("Count days each stock appeared per pick list per month, with its sector."),
		mcp.WithString("month",
			mcp.Description("Month (YYYY-MM). Defaults to every month."),
		),
		mcp.WithString("field",
			mcp.Description("List field, e.g. worker_strong_list. Defaults to all five."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Top N per month and field (default: 10, 0 for all)"),
		),
	)
}

func createListRecordsTool() mcp.Tool {
	return mcp.NewTool("list_records",
		mcp.WithDescription("List stored daily records, newest first."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum records to return (default: 30, 0 for all)"),
		),
	)
}

func createImportOCRTool() mcp.Tool {
	return mcp.NewTool("import_ocr",
		mcp.WithDescription("Import daily records from an OCR JSON payload. Existing records with the same date are replaced."),
		mcp.WithString("payload",
			mcp.Required(),
			mcp.Description("OCR output as JSON: objects with col_01 (date) through col_23"),
		),
	)
}

func createSearchStocksTool() mcp.Tool {
	return mcp.NewTool("search_stocks",
		mcp.WithDescription("Search the stock directory by partial code, name, alias or sector."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search text"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum matches (default: 10)"),
		),
	)
}

func createResolveStockTool() mcp.Tool {
	return mcp.NewTool("resolve_stock",
		mcp.WithDescription("Resolve a stock name or code to its canonical identity and sector."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Stock name, alias or code; CB markers are ignored"),
		),
	)
}
