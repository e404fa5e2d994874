package main

import (
	"github.com/spf13/cobra"

	"github.com/bobmcallan/stocktrack/internal/app"
	"github.com/bobmcallan/stocktrack/internal/services/dashboard"
	"github.com/bobmcallan/stocktrack/internal/services/ranking"
)

var (
	dashboardDate    string
	dashboardRanking bool
	dashboardIndices bool
	dashboardLimit   int
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Build the dashboard for a date (latest by default)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := application.Dashboard.Build(cmd.Context(), dashboardDate, dashboard.Options{
			Ranking:      dashboardRanking,
			RankingLimit: app.ClampRankingLimit(dashboardLimit),
			Indices:      dashboardIndices,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, d)
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardDate, "date", "", "Record date (YYYY-MM-DD)")
	dashboardCmd.Flags().BoolVar(&dashboardRanking, "ranking", false, "Include the live turnover ranking")
	dashboardCmd.Flags().BoolVar(&dashboardIndices, "indices", false, "Include live index quotes")
	dashboardCmd.Flags().IntVar(&dashboardLimit, "limit", ranking.DefaultLimit, "Ranking rows")
}

var (
	streakDate  string
	streakField string
)

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Count consecutive days a field has held its current value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := application.Streak(cmd.Context(), streakDate, streakField)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

func init() {
	streakCmd.Flags().StringVar(&streakDate, "date", "", "Anchor date (latest by default)")
	streakCmd.Flags().StringVar(&streakField, "field", "wind", "Field name (wind or a list field)")
}

var (
	statsMonth string
	statsField string
	statsLimit int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Monthly mention frequency leaderboards",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := application.MonthlyStats(cmd.Context(), statsMonth, statsField, statsLimit)
		if err != nil {
			return err
		}
		return printJSON(cmd, stats)
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsMonth, "month", "", "Month (YYYY-MM), all months when empty")
	statsCmd.Flags().StringVar(&statsField, "field", "", "Mention field name, all fields when empty")
	statsCmd.Flags().IntVar(&statsLimit, "limit", dashboard.LeaderboardSize, "Leaderboard size per month and field")
}

var windCmd = &cobra.Command{
	Use:   "wind",
	Short: "Count days per wind value per month",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(cmd, application.WindDays(cmd.Context()))
	},
}
