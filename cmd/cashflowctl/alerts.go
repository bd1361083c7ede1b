package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cashflow/internal/cli"
	"cashflow/internal/core"
)

func newAlertsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Threshold alerts",
	}
	cmd.AddCommand(
		newAlertsRunCmd(opts, "current", "Show alerts without changing breach flags", false),
		newAlertsRunCmd(opts, "check", "Evaluate thresholds and record breaches", true),
	)
	return cmd
}

func newAlertsRunCmd(opts *rootOptions, use, short string, mutate bool) *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireUser(userID); err != nil {
				return err
			}
			return opts.withApp(cmd.Context(), func(ctx context.Context, app *cli.App) error {
				var (
					alerts []core.Alert
					err    error
				)
				if mutate {
					alerts, err = app.Alerts.EvaluateAlerts(ctx, userID)
				} else {
					alerts, err = app.Alerts.CurrentAlerts(ctx, userID)
				}
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return writeJSON(cmd.OutOrStdout(), alerts)
				}
				if len(alerts) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No alerts.")
					return nil
				}
				for _, a := range alerts {
					fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s (%s of %s)\n", a.Kind, a.Message, a.CurrentSpending, a.Limit)
				}
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User id")
	return cmd
}
