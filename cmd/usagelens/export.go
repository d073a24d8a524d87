package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/usagelens/app"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <file.csv>",
	Short: "Re-export a filtered CSV file",
	Long: `Ingest a CSV file, apply filters, and write the surviving rows back
as CSV. The output re-ingests cleanly, so it can seed another instance.

Examples:
  usagelens export usage.csv --user alice -o alice.csv
  usagelens export usage.csv --window 7`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	events, err := loadEvents(args[0])
	if err != nil {
		return err
	}

	out := app.NewExportService(nil).CSV(events)
	if exportOut == "" {
		fmt.Print(out)
		return nil
	}
	if err := os.WriteFile(exportOut, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(os.Stderr, "wrote %d records to %s\n", len(events), exportOut)
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	registerFilterFlags(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: stdout)")
}
