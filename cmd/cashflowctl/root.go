package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cashflow/internal/backend"
	"cashflow/internal/cli"
	"cashflow/internal/config"
	"cashflow/internal/log"
)

type rootOptions struct {
	jsonOut bool
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "cashflowctl",
		Short:         "Operate the cashflow expense tracker",
		Long:          "Run migrations and inspect thresholds, alerts and spending statistics.\nCommands other than migrate read the SQLite database named by SQLITE_DB_PATH.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Print results as JSON")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")

	root.AddCommand(
		newMigrateCmd(opts),
		newStatsCmd(opts),
		newAlertsCmd(opts),
		newThresholdsCmd(opts),
	)
	return root
}

func (o *rootOptions) logger() *log.Logger {
	if !o.verbose {
		return log.Discard()
	}
	return cli.SetupLogger(os.Stderr, "debug", "text")
}

func loadConfig() (*config.Config, error) {
	cli.LoadEnvFile()
	return cli.LoadConfig()
}

// withApp opens the configured backend for the duration of fn. Only SQLite
// is accepted: a memory store starts empty on every invocation.
func (o *rootOptions) withApp(ctx context.Context, fn func(ctx context.Context, app *cli.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if backend.BackendType(cfg.DataBackend) != backend.SQLiteBackend {
		return fmt.Errorf("cashflowctl needs DATA_BACKEND=sqlite, got %q: the memory backend does not persist between invocations", cfg.DataBackend)
	}
	logger := o.logger()
	res, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if res.Cleanup != nil {
			if cerr := res.Cleanup(); cerr != nil {
				logger.Warn("Backend cleanup failed", log.FieldError, cerr.Error())
			}
		}
	}()
	return fn(ctx, cli.NewApp(res, cfg, logger))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func requireUser(userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("--user is required")
	}
	return nil
}
