package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/interfaces"
	"github.com/bobmcallan/stocktrack/internal/services/dashboard"
	"github.com/bobmcallan/stocktrack/internal/services/ranking"
)

// MaxRankingLimit caps the ranking rows a caller may ask for.
const MaxRankingLimit = 100

func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("stocktrack\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

func handleGetDashboard(a *App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		opts := dashboard.Options{
			Ranking: request.GetBool("include_ranking", false),
			Indices: request.GetBool("include_indices", false),
		}
		d, err := a.Dashboard.Build(ctx, request.GetString("date", ""), opts)
		if err != nil {
			return errorResult(fmt.Sprintf("Dashboard error: %v", err)), nil
		}
		return jsonResult(d)
	}
}

func handleGetRanking(svc interfaces.RankingService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := ClampRankingLimit(request.GetInt("limit", ranking.DefaultLimit))
		return jsonResult(svc.GetRanking(ctx, limit))
	}
}

func handleGetIndexQuotes(svc interfaces.MarketService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(svc.GetIndexQuotes(ctx))
	}
}

func handleGetIndexHistory(svc interfaces.MarketService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil || symbol == "" {
			return errorResult("Error: symbol parameter is required"), nil
		}
		return jsonResult(svc.GetIndexHistory(ctx, symbol, request.GetString("period", "")))
	}
}

func handleGetTurnover(a *App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		names := request.GetStringSlice("names", nil)
		if len(names) == 0 {
			return errorResult("Error: names parameter is required"), nil
		}
		return jsonResult(a.TurnoverFor(ctx, names, request.GetString("date", "")))
	}
}

func handleGetStreak(a *App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := a.Streak(ctx, request.GetString("date", ""), request.GetString("field", ""))
		if err != nil {
			return errorResult(fmt.Sprintf("Streak error: %v", err)), nil
		}
		return jsonResult(res)
	}
}

func handleGetMonthlyStats(a *App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := a.MonthlyStats(ctx,
			request.GetString("month", ""),
			request.GetString("field", ""),
			request.GetInt("limit", dashboard.LeaderboardSize),
		)
		if err != nil {
			return errorResult(fmt.Sprintf("Stats error: %v", err)), nil
		}
		return jsonResult(stats)
	}
}

func handleListRecords(a *App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		records := a.History.LoadAll(ctx)
		if limit := request.GetInt("limit", 30); limit > 0 && len(records) > limit {
			records = records[:limit]
		}
		return jsonResult(records)
	}
}

func handleImportOCR(a *App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload, err := request.RequireString("payload")
		if err != nil || payload == "" {
			return errorResult("Error: payload parameter is required"), nil
		}
		res, err := a.ImportOCR(ctx, []byte(payload))
		if err != nil {
			a.Logger.Error().Err(err).Msg("OCR import failed")
			return errorResult(fmt.Sprintf("Import error: %v", err)), nil
		}
		return jsonResult(res)
	}
}

func handleSearchStocks(a *App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q, err := request.RequireString("query")
		if err != nil || q == "" {
			return errorResult("Error: query parameter is required"), nil
		}
		matches, err := a.SearchStocks(q, request.GetInt("limit", 10))
		if err != nil {
			return errorResult(fmt.Sprintf("Search error: %v", err)), nil
		}
		return jsonResult(matches)
	}
}

func handleResolveStock(resolver interfaces.Resolver) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return errorResult("Error: name parameter is required"), nil
		}
		return jsonResult(resolver.Resolve(name))
	}
}

// ClampRankingLimit applies the default and the upper bound.
func ClampRankingLimit(limit int) int {
	if limit <= 0 {
		return ranking.DefaultLimit
	}
	if limit > MaxRankingLimit {
		return MaxRankingLimit
	}
	return limit
}

// Helper functions

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("Encoding error: %v", err)), nil
	}
	return textResult(string(data)), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
