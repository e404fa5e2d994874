package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [ocr-file]",
	Short: "Import an OCR payload into the history",
	Long:  `Parses an OCR payload (JSON array of row objects, optionally fenced) and upserts one record per dated row.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	payload, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	res, err := application.ImportOCR(cmd.Context(), payload)
	if err != nil {
		return err
	}
	return printJSON(cmd, res)
}

var recordsLimit int

var recordsCmd = &cobra.Command{
	Use:   "records [date]",
	Short: "List history records, newest first, or show one date",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRecords,
}

func init() {
	recordsCmd.Flags().IntVar(&recordsLimit, "limit", 0, "Maximum records to list (0 for all)")
}

func runRecords(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if len(args) == 1 {
		rec, ok := application.History.Get(ctx, args[0])
		if !ok {
			return fmt.Errorf("no record for %s", args[0])
		}
		return printJSON(cmd, rec)
	}
	records := application.History.LoadAll(ctx)
	if recordsLimit > 0 && len(records) > recordsLimit {
		records = records[:recordsLimit]
	}
	return printJSON(cmd, records)
}

var overrideDelete bool

var overrideCmd = &cobra.Command{
	Use:   "override [date] [name] [value]",
	Short: "Set or remove a manual turnover value on a record",
	Long:  `Stores a manual turnover (hundred-million units) for one mention stock on a record. With --delete the override is removed.`,
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runOverride,
}

func init() {
	overrideCmd.Flags().BoolVar(&overrideDelete, "delete", false, "Remove the override")
}

func runOverride(cmd *cobra.Command, args []string) error {
	value := -1.0
	if !overrideDelete {
		if len(args) != 3 {
			return fmt.Errorf("value is required unless --delete is given")
		}
		if _, err := fmt.Sscanf(args[2], "%g", &value); err != nil || value < 0 {
			return fmt.Errorf("invalid turnover value %q", args[2])
		}
	}
	rec, err := application.SetManualTurnover(cmd.Context(), args[0], args[1], value)
	if err != nil {
		return err
	}
	return printJSON(cmd, rec)
}

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the history as a CSV file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := application.Export(cmd.Context(), exportDir)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "dir", ".", "Directory to write the export into")
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the history (a backup is kept for restore)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := application.History.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the history from the last backup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := application.History.Restore(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %d records\n", len(application.History.LoadAll(cmd.Context())))
		return nil
	},
}
