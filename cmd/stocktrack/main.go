// Command stocktrack drives the history store and live market lookups from
// the terminal.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/stocktrack/internal/app"
)

var (
	configPath string

	// application is built once per invocation by the root pre-run hook.
	application *app.App
)

var rootCmd = &cobra.Command{
	Use:           "stocktrack",
	Short:         "Market regime history and live turnover tracker",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		a, err := app.NewApp(configPath)
		if err != nil {
			return fmt.Errorf("initialize app: %w", err)
		}
		application = a
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(
		versionCmd,
		importCmd,
		recordsCmd,
		dashboardCmd,
		streakCmd,
		statsCmd,
		windCmd,
		rankingCmd,
		turnoverCmd,
		overrideCmd,
		exportCmd,
		clearCmd,
		restoreCmd,
		searchCmd,
		resolveCmd,
	)
}

func main() {
	err := rootCmd.ExecuteContext(context.Background())
	if application != nil {
		application.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
