package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/bookkeeper/broker"
	"github.com/rustyeddy/bookkeeper/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query journaled book snapshots",
	Long: `Query asset and position snapshots from a SQLite journal.

Examples:
  bookkeeper journal assets --day 20240702
  bookkeeper journal positions --day 20240702 -d book.db`,
}

var journalAssetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "List asset snapshots of a trading day",
	Args:  cobra.NoArgs,
	RunE:  runJournalAssets,
}

var journalPositionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "List position snapshots of a trading day",
	Args:  cobra.NoArgs,
	RunE:  runJournalPositions,
}

var (
	journalDBPath string
	journalDay    string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalAssetsCmd)
	journalCmd.AddCommand(journalPositionsCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./book.db", "path to SQLite journal DB")
	journalCmd.PersistentFlags().StringVar(&journalDay, "day", "", "trading day YYYYMMDD (default today)")
}

func tradingDay() (string, error) {
	if journalDay == "" {
		return time.Now().Format(broker.DayLayout), nil
	}
	if _, err := broker.ParseDay(journalDay); err != nil {
		return "", fmt.Errorf("--day: %w", err)
	}
	return journalDay, nil
}

func runJournalAssets(cmd *cobra.Command, args []string) error {
	day, err := tradingDay()
	if err != nil {
		return err
	}

	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rows, err := j.ListAssets(day)
	if err != nil {
		return fmt.Errorf("query assets: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatAssetsOrg(rows))
	return nil
}

func runJournalPositions(cmd *cobra.Command, args []string) error {
	day, err := tradingDay()
	if err != nil {
		return err
	}

	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rows, err := j.ListPositions(day)
	if err != nil {
		return fmt.Errorf("query positions: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatPositionsOrg(rows))
	return nil
}
