// Package cmd provides the tariffctl commands.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/OpenNSW/tariff/internal/archive"
	"github.com/OpenNSW/tariff/internal/config"
	"github.com/OpenNSW/tariff/internal/database"
	"github.com/OpenNSW/tariff/internal/lock"
	"github.com/OpenNSW/tariff/internal/tariff"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "tariffctl",
	Short: "Operate the tariff resolution store",
	Long: `tariffctl runs tariff resolutions and maintenance against the configured database.

Configuration is read from the same environment variables as the server.

Examples:
  tariffctl bootstrap
  tariffctl current singapore china slippers 19.99
  tariffctl overview singapore china slippers --start 2015-01-01
  tariffctl countries --limit 50`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(bootstrapCmd)
	rootCmd.AddCommand(currentCmd)
	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(countriesCmd)
	rootCmd.AddCommand(archiveCmd)
}

// env holds the resources opened for one command.
type env struct {
	cfg     *config.Config
	db      *gorm.DB
	archive *archive.Service
	manager *tariff.Manager
	closers []func() error
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			slog.Error("failed to release resource", "error", err)
		}
	}
}

// openEnv loads configuration, connects and migrates the database, and wires the tariff manager.
func openEnv(ctx context.Context, stderr io.Writer) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
	decimal.MarshalJSONWithoutQuotes = true

	e := &env{cfg: cfg}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}
	e.db = db
	e.closers = append(e.closers, func() error { return database.Close(db) })

	if err := database.Migrate(db); err != nil {
		e.Close()
		return nil, err
	}

	locker, closeLocker, err := lock.NewFromConfig(ctx, cfg.Lock)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.closers = append(e.closers, closeLocker)

	driver, err := archive.NewStorageFromConfig(ctx, cfg.Archive)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.archive = archive.NewService(driver)

	e.manager = tariff.NewManager(cfg, db, tariff.Options{Locker: locker, Archive: e.archive})
	return e, nil
}

// withEnv runs fn against a freshly opened env and releases it afterwards.
func withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := openEnv(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(ctx, e)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
