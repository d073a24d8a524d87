package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "usagelens",
	Short: "Usage analytics dashboard for AI model request logs",
	Long: `usagelens ingests CSV usage logs (timestamp, user, model, request
counts, monthly quotas) and serves an analytics dashboard: totals,
trends, growth, peak hours, and per-user quota consumption.

Start the server and upload a CSV:
  usagelens serve --config usagelens.yaml
  curl -X POST --data-binary @usage.csv 'http://localhost:8080/api/datasets?name=usage.csv'

Or analyze a file directly from the command line:
  usagelens report usage.csv
  usagelens export usage.csv --user alice --window 30`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("usagelens %s (commit: %s, built: %s)\n", version, commit, buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "usagelens.yaml", "Path to configuration file")
	rootCmd.AddCommand(versionCmd)
}
