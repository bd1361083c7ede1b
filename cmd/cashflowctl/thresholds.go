package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cashflow/internal/cli"
)

func newThresholdsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thresholds",
		Short: "Spending thresholds",
	}
	cmd.AddCommand(newThresholdsListCmd(opts))
	return cmd
}

func newThresholdsListCmd(opts *rootOptions) *cobra.Command {
	var (
		userID     int64
		activeOnly bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's thresholds with current usage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireUser(userID); err != nil {
				return err
			}
			return opts.withApp(cmd.Context(), func(ctx context.Context, app *cli.App) error {
				list := app.Thresholds.ListThresholds
				if activeOnly {
					list = app.Thresholds.ActiveThresholds
				}
				views, err := list(ctx, userID)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return writeJSON(cmd.OutOrStdout(), views)
				}
				breached, err := app.Thresholds.BreachedCount(ctx, userID)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tScope\tType\tLimit\tSpent\tUsage\tAlert at\tActive\tBreached")
				for _, v := range views {
					scope := "overall"
					if !v.IsOverall() {
						scope = v.CategoryName
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%.1f%%\t%d%%\t%t\t%t\n",
						v.ID, scope, v.Type, v.Limit, v.CurrentSpending, v.UsagePercentage,
						v.AlertPercentage, v.Active, v.Breached)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d breached\n", breached, len(views))
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User id")
	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only active thresholds")
	return cmd
}
