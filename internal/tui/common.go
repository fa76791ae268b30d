package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/studylog/internal/session"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDay viewState = iota
	viewMonth
)

var viewNames = []string{"Calendar", "Month"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

// dispatchMsg carries a timer firing onto the update loop.
type dispatchMsg struct {
	fn func()
}

type sessionCreatedMsg struct {
	session session.Session
}

type sessionDeletedMsg struct {
	id int64
}

type timerStartedMsg struct {
	id int64
}

type timerStoppedMsg struct {
	id int64
}

// --- Helpers ---

func dateKey(t time.Time) string {
	return t.Format(session.DateLayout)
}

func monthKey(t time.Time) string {
	return t.Format(session.MonthLayout)
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// shiftMonth moves by n months, clamping the day to the target month's
// length so Jan 31 + 1 lands on Feb 28/29.
func shiftMonth(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	day := t.Day()
	if last := daysIn(first); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

func formatHours(secs int64) string {
	return fmt.Sprintf("%.1fh", float64(secs)/3600)
}
