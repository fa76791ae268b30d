package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sadopc/studylog/internal/session"
)

func newSummaryCommand(_ context.Context, rt *Runtime) *cobra.Command {
	var monthFlag string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show per-day and total study time for a month.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			month, err := resolveMonth(rt, monthFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			totals := session.DailyTotals(rt.Sessions.ListByMonth(month))
			days := make([]string, 0, len(totals))
			for d := range totals {
				days = append(days, d)
			}
			sort.Strings(days)

			fmt.Fprintln(out, month)
			if len(days) == 0 {
				fmt.Fprintln(out, "No sessions this month.")
			}
			for _, d := range days {
				fmt.Fprintf(out, "%s  %s\n", d, session.FormatHM(totals[d]))
			}
			fmt.Fprintf(out, "Total study time this month: %s\n", session.FormatHM(rt.Sessions.MonthlyTotal(month)))
			return nil
		},
	}

	cmd.Flags().StringVar(&monthFlag, "month", "", "Target month in YYYY-MM (default: current month)")
	return cmd
}
