package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/artpar/usagelens/bootstrap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP server",
	Long: `Start the HTTP server. When the dataset archive is enabled the most
recent upload is restored at startup, so the dashboard survives restarts.

The config file is watched for changes; SIGHUP also triggers a reload.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.New(configPath)
	if err != nil {
		return err
	}
	app.Restore(context.Background())
	return app.Run()
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
