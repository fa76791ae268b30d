package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/studylog/internal/session"
)

func resolveDate(rt *Runtime, dateFlag string) (string, error) {
	if dateFlag == "" {
		return rt.Now().Format(session.DateLayout), nil
	}
	if _, err := session.ParseDate(dateFlag); err != nil {
		return "", fmt.Errorf("parse date: %w", err)
	}
	return dateFlag, nil
}

func resolveMonth(rt *Runtime, monthFlag string) (string, error) {
	if monthFlag == "" {
		return rt.Now().Format(session.MonthLayout), nil
	}
	if _, err := session.ParseMonth(monthFlag); err != nil {
		return "", fmt.Errorf("parse month: %w", err)
	}
	return monthFlag, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid session id %q", arg)
	}
	return id, nil
}

// persisted downgrades a save failure to a warning: the change is kept in
// memory for this run but did not reach disk.
func persisted(cmd *cobra.Command, err error) error {
	if errors.Is(err, session.ErrPersistence) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		return nil
	}
	return err
}

func formatSession(s session.Session) string {
	builder := strings.Builder{}
	builder.Grow(48 + len(s.Notes) + len(s.Tags)*8)

	fmt.Fprintf(&builder, "%d  %s  %s → %s", s.ID, s.Display(),
		session.OrDash(s.StartTime), session.OrDash(s.EndTime))

	if len(s.Tags) > 0 {
		builder.WriteString(" (")
		for i, tag := range s.Tags {
			if i > 0 {
				builder.WriteString(", ")
			}
			builder.WriteString("#")
			builder.WriteString(tag)
		}
		builder.WriteString(")")
	}

	if s.Notes != "" {
		builder.WriteString("  ")
		builder.WriteString(strings.ReplaceAll(s.Notes, "\n", " / "))
	}

	return builder.String()
}

func printDay(cmd *cobra.Command, date string, sessions []session.Session) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, date)
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions for this day.")
		return
	}
	for i, s := range sessions {
		fmt.Fprintf(out, "%d. %s\n", i+1, formatSession(s))
	}
	fmt.Fprintf(out, "Total Today: %s\n", session.FormatHM(session.Total(sessions)))
}
