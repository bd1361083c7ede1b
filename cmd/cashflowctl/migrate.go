package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cashflow/internal/storage"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQLite schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dbPath == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				dbPath = cfg.SQLiteDBPath
			}
			if err := storage.RunMigrations(dbPath); err != nil {
				return err
			}
			version, dirty, err := storage.MigrationVersion(dbPath)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"path": dbPath, "version": version, "dirty": dirty})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s at schema version %d", dbPath, version)
			if dirty {
				fmt.Fprint(cmd.OutOrStdout(), " (dirty)")
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default SQLITE_DB_PATH)")
	return cmd
}
