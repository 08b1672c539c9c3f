// Package main provides the parcoursctl CLI: direct operations against
// a local tracker database.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/parcours/dbopen"
	"github.com/hazyhaar/parcours/tracker"
)

var (
	version     = "0.1.0-dev"
	globalDB    string
	globalDelay int
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "parcoursctl",
		Short:   "Track public career changes of a set of people",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVar(&globalDB, "db", "data/parcours.db", "Path to the tracker database")
	rootCmd.PersistentFlags().IntVar(&globalDelay, "delay", -1, "Delay between fetches in ms (-1 = default)")

	rootCmd.AddCommand(
		newRunCmd(),
		newAddCmd(),
		newAddURLCmd(),
		newStatusCmd(),
		newSetFirmCmd(),
		newExportCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}

// withService opens the database, builds the service and runs fn.
func withService(ctx context.Context, fn func(svc *tracker.Service) error) error {
	db, err := dbopen.Open(globalDB, dbopen.WithMkdirAll())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	cfg := tracker.DefaultConfig()
	if globalDelay >= 0 {
		cfg.Delay = time.Duration(globalDelay) * time.Millisecond
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	svc, err := tracker.New(db, cfg, logger)
	if err != nil {
		return err
	}
	return fn(svc)
}
