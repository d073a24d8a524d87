package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/usagelens/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	fmt.Println("Configuration valid")
	fmt.Printf("  Listen: %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("  Archive: %v (%s)\n", cfg.Archive.Enabled, cfg.Archive.DSN)
	fmt.Printf("  Auth: %v\n", cfg.Auth.Enabled)
	fmt.Printf("  Log: %s/%s\n", cfg.Logging.Level, cfg.Logging.Format)
	fmt.Printf("  Hot-reloadable: %s\n", strings.Join(config.ReloadableFields(), ", "))
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
