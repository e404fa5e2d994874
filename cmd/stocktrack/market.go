package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/stocktrack/internal/app"
	"github.com/bobmcallan/stocktrack/internal/services/ranking"
)

var (
	rankingLimit int
	rankingJSON  bool
)

var rankingCmd = &cobra.Command{
	Use:   "ranking",
	Short: "Fetch the live turnover ranking",
	Args:  cobra.NoArgs,
	RunE:  runRanking,
}

func init() {
	rankingCmd.Flags().IntVar(&rankingLimit, "limit", ranking.DefaultLimit, "Rows to return")
	rankingCmd.Flags().BoolVar(&rankingJSON, "json", false, "Print the raw result as JSON")
}

func runRanking(cmd *cobra.Command, args []string) error {
	res := application.Ranking.GetRanking(cmd.Context(), app.ClampRankingLimit(rankingLimit))
	if rankingJSON {
		return printJSON(cmd, res)
	}
	if !res.Available {
		return fmt.Errorf("ranking unavailable: %s", res.Diagnostic)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCODE\tNAME\tSECTOR\tPRICE\tCHG%\tTURNOVER(億)")
	for _, r := range res.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\t%+.2f\t%.2f\n",
			r.Rank, r.Code, r.Name, r.Sector, r.Price, r.PctChange, r.Turnover)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "source: %s\n", res.Source)
	return nil
}

var turnoverDate string

var turnoverCmd = &cobra.Command{
	Use:   "turnover [name...]",
	Short: "Look up turnover for stock names on a date",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(cmd, application.TurnoverFor(cmd.Context(), args, turnoverDate))
	},
}

func init() {
	turnoverCmd.Flags().StringVar(&turnoverDate, "date", "", "Trading date (YYYY-MM-DD, latest record by default)")
}

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the stock directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		matches, err := application.SearchStocks(args[0], searchLimit)
		if err != nil {
			return err
		}
		return printJSON(cmd, matches)
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum matches")
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [name]",
	Short: "Resolve a stock name to its code and market",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(cmd, application.Directory.Resolve(args[0]))
	},
}
