package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/studylog/internal/config"
	"github.com/sadopc/studylog/internal/timer"
	"github.com/sadopc/studylog/internal/tui"
	"github.com/sadopc/studylog/internal/version"
)

// NewRootCommand creates the top-level Cobra command to host subcommands and TUI launcher.
func NewRootCommand(ctx context.Context, rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "studylog",
		Short: "Track study sessions by day from your terminal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(ctx, rt)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newAddCommand(ctx, rt),
		newListCommand(ctx, rt),
		newNoteCommand(ctx, rt),
		newTagCommand(ctx, rt),
		newDeleteCommand(ctx, rt),
		newTrackCommand(ctx, rt),
		newSummaryCommand(ctx, rt),
		newVersionCommand(),
	)

	return cmd
}

// runTUI serves timer firings through a queue the Bubble Tea program drains,
// and stops whatever is still running once the program exits.
func runTUI(ctx context.Context, rt *Runtime) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := timer.NewQueue(ctx)
	engine := rt.NewEngine(timer.NewLoop(queue.Dispatch))

	app := tui.NewApp(rt.Sessions, engine, queue, rt.Now)
	_, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	if stopErr := engine.StopAll(); stopErr != nil {
		rt.Logger.Warn("stopping timers on exit", "error", stopErr)
	}
	if err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "studylog %s\n", version.Info())
			return nil
		},
	}
}

// ExecuteCommand loads configuration, opens the stores and executes the
// Cobra root command with args.
func ExecuteCommand(ctx context.Context, args []string) error {
	home, err := config.ResolveHome()
	if err != nil {
		return err
	}
	cfg, err := config.Load(home)
	if err != nil {
		return err
	}

	rt, err := Open(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	cmd := NewRootCommand(ctx, rt)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// Main is a helper used by main.go to keep wiring contained in one package.
func Main(ctx context.Context) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ExecuteCommand(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
