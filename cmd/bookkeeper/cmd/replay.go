package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/bookkeeper/book"
	"github.com/rustyeddy/bookkeeper/config"
	"github.com/rustyeddy/bookkeeper/events"
	"github.com/rustyeddy/bookkeeper/internal/logging"
	"github.com/rustyeddy/bookkeeper/journal"
	"github.com/rustyeddy/bookkeeper/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay recorded events into a book",
	Long: `Replay a CSV of time,event,fields... rows into the configured book and
journal every snapshot it publishes.

Examples:
  bookkeeper replay -e data/session.csv
  bookkeeper replay -c book.yaml -e data/session.csv`,
	RunE: runReplay,
}

var (
	replayEventsPath string
	replayBuffer     int
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVarP(&replayEventsPath, "events", "e", "", "CSV file of events (required)")
	replayCmd.Flags().IntVar(&replayBuffer, "buffer", 4096, "journal subscription buffer")
	replayCmd.MarkFlagRequired("events")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer log.Sync()

	loc, err := cfg.BookLocation()
	if err != nil {
		return err
	}
	opts, err := cfg.BookOptions()
	if err != nil {
		return err
	}

	bus := events.NewBus(log)
	opts.Publisher = bus
	opts.Logger = log

	ctx := context.Background()
	j, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	var recorded int
	wait := func() {}
	if j != nil {
		defer j.Close()
		ch, unsubscribe := bus.Subscribe(replayBuffer)
		done := make(chan int, 1)
		go func() { done <- journal.NewRecorder(j, ch, log).Run(ctx) }()

		// closing the subscription lets the recorder drain and return
		var once sync.Once
		wait = func() {
			once.Do(func() {
				unsubscribe()
				recorded = <-done
			})
		}
		defer wait()
	}

	day := opts.TradingDay
	if day.IsZero() {
		now := time.Now().UTC()
		day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	d := replay.NewDispatcher(day, log)
	b, err := d.Open(loc, opts)
	if err != nil {
		return err
	}

	feed, err := replay.OpenCSVFeed(replayEventsPath)
	if err != nil {
		return err
	}
	defer feed.Close()

	n, err := d.Run(ctx, feed)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	log.Info("replay finished", zap.Int("events", n), zap.Uint64("dropped", bus.Dropped()))

	wait()

	printSummary(cmd.OutOrStdout(), b, n, recorded)
	return nil
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.AssetsFile, cfg.Journal.PositionsFile)
	}
	return nil, nil
}

func printSummary(w io.Writer, b *book.Book, n, recorded int) {
	fmt.Fprintf(w, "Replay complete: %d events, %d snapshots journaled\n", n, recorded)
	fmt.Fprintf(w, "  Book:           %s\n", b.Location())
	fmt.Fprintf(w, "  Trading day:    %s\n", b.TradingDay().Format("20060102"))
	fmt.Fprintf(w, "  Avail:          %s\n", decimal.NewFromFloat(b.Avail()).StringFixed(2))
	fmt.Fprintf(w, "  Margin:         %s\n", decimal.NewFromFloat(b.Margin()).StringFixed(2))
	fmt.Fprintf(w, "  Market value:   %s\n", decimal.NewFromFloat(b.MarketValue()).StringFixed(2))
	fmt.Fprintf(w, "  Dynamic equity: %s\n", decimal.NewFromFloat(b.DynamicEquity()).StringFixed(2))
	fmt.Fprintf(w, "  Positions:      %d\n", len(b.Positions()))
	fmt.Fprintf(w, "  Active orders:  %d\n", len(b.ActiveOrders()))
}
