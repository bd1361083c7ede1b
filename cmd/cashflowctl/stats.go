package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"cashflow/internal/cli"
	"cashflow/internal/core"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Spending statistics",
	}
	cmd.AddCommand(newStatsMonthlyCmd(opts), newStatsTrendsCmd(opts))
	return cmd
}

func newStatsMonthlyCmd(opts *rootOptions) *cobra.Command {
	var (
		userID int64
		year   int
		month  int
	)
	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Statistics for one calendar month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireUser(userID); err != nil {
				return err
			}
			now := time.Now()
			if year == 0 {
				year = now.Year()
			}
			if month == 0 {
				month = int(now.Month())
			}
			return opts.withApp(cmd.Context(), func(ctx context.Context, app *cli.App) error {
				s, err := app.Stats.MonthlyStats(ctx, userID, year, month)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return writeJSON(cmd.OutOrStdout(), s)
				}
				printMonthly(cmd, s)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User id")
	cmd.Flags().IntVar(&year, "year", 0, "Year (default current)")
	cmd.Flags().IntVar(&month, "month", 0, "Month 1-12 (default current)")
	return cmd
}

func printMonthly(cmd *cobra.Command, s core.MonthlyStats) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %d\n", s.MonthName, s.Year)
	fmt.Fprintf(out, "  Total spent:    %s (%d transactions)\n", s.TotalSpent, s.TransactionCount)
	fmt.Fprintf(out, "  Average daily:  %s over %d days\n", s.AverageDaily, s.DaysInMonth)
	fmt.Fprintf(out, "  Previous month: %s (change %s, %.1f%%)\n", s.PreviousMonth, s.ChangeAmount, s.ChangePercentage)
	if s.TopCategoryName != "" {
		fmt.Fprintf(out, "  Top category:   %s (%s)\n", s.TopCategoryName, s.TopCategoryAmount)
	}
	if len(s.CategoryBreakdown) == 0 {
		return
	}
	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Category\tAmount\tShare\t")
	for _, c := range s.CategoryBreakdown {
		fmt.Fprintf(tw, "%s\t%s\t%.1f%%\t\n", c.CategoryName, c.Amount, c.Percentage)
	}
	_ = tw.Flush()
}

func newStatsTrendsCmd(opts *rootOptions) *cobra.Command {
	var (
		userID     int64
		months     int
		categoryID int64
	)
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Monthly totals ending at the current month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireUser(userID); err != nil {
				return err
			}
			var category *int64
			if categoryID > 0 {
				category = &categoryID
			}
			return opts.withApp(cmd.Context(), func(ctx context.Context, app *cli.App) error {
				points, err := app.Stats.MonthlyTrends(ctx, userID, months, category)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return writeJSON(cmd.OutOrStdout(), points)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
				fmt.Fprintln(tw, "Month\tTotal\tCount\t")
				for _, p := range points {
					fmt.Fprintf(tw, "%s %d\t%s\t%d\t\n", p.MonthName, p.Year, p.TotalSpent, p.TransactionCount)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User id")
	cmd.Flags().IntVar(&months, "months", 6, "Number of months")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "Restrict to one category id")
	return cmd
}
