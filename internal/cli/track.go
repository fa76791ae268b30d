package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/studylog/internal/session"
	"github.com/sadopc/studylog/internal/timer"
)

func newTrackCommand(ctx context.Context, rt *Runtime) *cobra.Command {
	var forFlag time.Duration

	cmd := &cobra.Command{
		Use:   "track <id>",
		Short: "Run the stopwatch for a session in the foreground.",
		Long:  "track starts the session's timer and prints the elapsed MM:SS every second until interrupted, then stops it and saves.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			runCtx := ctx
			if forFlag > 0 {
				var cancel context.CancelFunc
				runCtx, cancel = context.WithTimeout(ctx, forFlag)
				defer cancel()
			}

			queue := timer.NewQueue(runCtx)
			engine := rt.NewEngine(timer.NewLoop(queue.Dispatch))

			out := cmd.OutOrStdout()
			engine.Observe(id, func(_, _ int64, display string) {
				fmt.Fprintln(out, display)
			})

			if err := persisted(cmd, engine.Start(id)); err != nil {
				return err
			}
			fmt.Fprintf(out, "Tracking session %d (ctrl+c to stop)\n", id)

			if err := queue.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}

			if err := persisted(cmd, engine.Stop(id)); err != nil {
				return err
			}

			s, _ := rt.Sessions.Find(id)
			fmt.Fprintf(out, "Stopped at %s, duration %s\n", session.OrDash(s.EndTime), session.FormatMS(s.Duration))
			return nil
		},
	}

	cmd.Flags().DurationVar(&forFlag, "for", 0, "Stop automatically after this long (e.g. 25m)")
	return cmd
}
