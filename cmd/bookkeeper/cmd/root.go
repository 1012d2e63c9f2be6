package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/bookkeeper/config"
)

var rootCmd = &cobra.Command{
	Use:   "bookkeeper",
	Short: "Account book keeping for trading desks and strategies",
	Long: `Bookkeeper keeps the account book of one trading account or strategy.

It provides tools for:
  - Replaying recorded quotes, orders, trades and broker reports into a book
  - Journaling the asset and position snapshots the book publishes
  - Querying journaled snapshots by trading day
  - Generating and validating book configuration files`,
	SilenceUsage: true,
}

var (
	cfgFile string
	envFile string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (defaults are used when empty)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "dotenv file with BOOK_* overrides (default ./.env)")
}

// loadConfig reads --config when set, then applies the environment.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		var err error
		if cfg, err = config.LoadFromFile(cfgFile); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	if err := cfg.ApplyEnv(envFile); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
