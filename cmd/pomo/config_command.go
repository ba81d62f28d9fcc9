package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amonks/pomo/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as TOML",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

const redacted = "REDACTED"

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out, err := config.Encode(redactConfig(cfg))
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// redactConfig returns a copy of cfg that is safe to print.
func redactConfig(cfg *config.Config) *config.Config {
	copied := *cfg
	if copied.Store.AuthToken != "" {
		copied.Store.AuthToken = redacted
	}
	return &copied
}
