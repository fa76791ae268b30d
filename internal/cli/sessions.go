package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAddCommand(_ context.Context, rt *Runtime) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an empty study session.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := resolveDate(rt, dateFlag)
			if err != nil {
				return err
			}

			s, err := rt.Sessions.Create(date)
			if err := persisted(cmd, err); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added session %d on %s\n", s.ID, s.Date)
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Target date in YYYY-MM-DD (default: today)")
	return cmd
}

func newListCommand(_ context.Context, rt *Runtime) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the sessions of a day.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := resolveDate(rt, dateFlag)
			if err != nil {
				return err
			}
			printDay(cmd, date, rt.Sessions.ListByDate(date))
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Target date in YYYY-MM-DD (default: today)")
	return cmd
}

func newNoteCommand(_ context.Context, rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "note <id> [text ...]",
		Short: "Replace the notes of a session.",
		Long:  "note overwrites the session's notes with the remaining arguments. With no text the notes are cleared.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			notes := strings.Join(args[1:], " ")
			if err := persisted(cmd, rt.Sessions.SetNotes(id, notes)); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated notes for session %d\n", id)
			return nil
		},
	}
}

func newTagCommand(_ context.Context, rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <id> <tag>",
		Short: "Append a tag to a session.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			tag := strings.TrimPrefix(strings.TrimSpace(args[1]), "#")
			if err := persisted(cmd, rt.Sessions.AddTag(id, tag)); err != nil {
				return err
			}
			if tag == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Empty tag ignored")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Tagged session %d with #%s\n", id, tag)
			return nil
		},
	}
}

func newDeleteCommand(_ context.Context, rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := persisted(cmd, rt.Sessions.Delete(id)); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %d\n", id)
			return nil
		},
	}
}
