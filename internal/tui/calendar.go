package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studylog/internal/session"
	"github.com/sadopc/studylog/internal/timer"
)

// dayModel is the calendar view: a month grid, the sessions of the
// selected day and the day/month overview.
type dayModel struct {
	sessions *session.Store
	engine   *timer.Engine
	now      func() time.Time
	width    int
	height   int

	selected time.Time
	cursor   int

	// displays holds the latest MM:SS pushed by the engine per session. It is
	// a map so the observer closures and every copy of the model share it.
	displays map[int64]string

	formActive bool
	form       *huh.Form
	formType   string // "notes", "tag"
	formValue  *string
	editingID  int64
}

func newDayModel(s *session.Store, e *timer.Engine, now func() time.Time) dayModel {
	v := ""
	return dayModel{
		sessions:  s,
		engine:    e,
		now:       now,
		selected:  dayOf(now()),
		displays:  make(map[int64]string),
		formValue: &v,
	}
}

func (d *dayModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dayModel) date() string {
	return dateKey(d.selected)
}

// list returns the sessions of the selected day, registering a display
// callback for each of them.
func (d dayModel) list() []session.Session {
	list := d.sessions.ListByDate(d.date())
	displays := d.displays
	for _, s := range list {
		d.engine.Observe(s.ID, func(id, _ int64, display string) {
			displays[id] = display
		})
	}
	return list
}

func (d dayModel) current() (session.Session, bool) {
	list := d.sessions.ListByDate(d.date())
	if d.cursor < 0 || d.cursor >= len(list) {
		return session.Session{}, false
	}
	return list[d.cursor], true
}

func (d *dayModel) clampCursor() {
	n := len(d.sessions.ListByDate(d.date()))
	if d.cursor >= n {
		d.cursor = n - 1
	}
	if d.cursor < 0 {
		d.cursor = 0
	}
}

func (d *dayModel) selectDay(t time.Time) {
	d.selected = dayOf(t)
	d.cursor = 0
}

func (d dayModel) update(msg tea.Msg) (dayModel, tea.Cmd) {
	if d.formActive && d.form != nil {
		return d.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}

	switch {
	case key.Matches(km, keys.Left):
		d.selectDay(d.selected.AddDate(0, 0, -1))
	case key.Matches(km, keys.Right):
		d.selectDay(d.selected.AddDate(0, 0, 1))
	case key.Matches(km, keys.PrevMonth):
		d.selectDay(shiftMonth(d.selected, -1))
	case key.Matches(km, keys.NextMonth):
		d.selectDay(shiftMonth(d.selected, 1))
	case key.Matches(km, keys.Today):
		d.selectDay(d.now())
	case key.Matches(km, keys.Up):
		if d.cursor > 0 {
			d.cursor--
		}
	case key.Matches(km, keys.Down):
		d.cursor++
		d.clampCursor()
	case key.Matches(km, keys.New):
		return d.create()
	case key.Matches(km, keys.Start):
		if s, ok := d.current(); ok {
			err := d.engine.Start(s.ID)
			return d, result(err, timerStartedMsg{id: s.ID})
		}
	case key.Matches(km, keys.Stop):
		if s, ok := d.current(); ok {
			err := d.engine.Stop(s.ID)
			return d, result(err, timerStoppedMsg{id: s.ID})
		}
	case key.Matches(km, keys.Delete):
		if s, ok := d.current(); ok {
			err := d.sessions.Delete(s.ID)
			d.engine.Forget(s.ID)
			delete(d.displays, s.ID)
			d.clampCursor()
			return d, result(err, sessionDeletedMsg{id: s.ID})
		}
	case key.Matches(km, keys.Notes):
		if s, ok := d.current(); ok {
			return d.showNotesForm(s)
		}
	case key.Matches(km, keys.Tag):
		if s, ok := d.current(); ok {
			return d.showTagForm(s)
		}
	}
	return d, nil
}

func (d dayModel) create() (dayModel, tea.Cmd) {
	s, err := d.sessions.Create(d.date())
	if err != nil && s.ID == 0 {
		return d, statusCmd(fmt.Sprintf("Create failed: %v", err), true)
	}
	d.cursor = len(d.sessions.ListByDate(d.date())) - 1
	return d, result(err, sessionCreatedMsg{session: s})
}

// result reports a persistence warning or a hard error as a status line,
// and otherwise emits ok.
func result(err error, ok tea.Msg) tea.Cmd {
	switch {
	case err == nil:
		return func() tea.Msg { return ok }
	case errors.Is(err, session.ErrPersistence):
		return statusCmd("Warning: changes not saved", true)
	default:
		return statusCmd(err.Error(), true)
	}
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}

func (d dayModel) showNotesForm(s session.Session) (dayModel, tea.Cmd) {
	*d.formValue = s.Notes
	d.formType = "notes"
	d.editingID = s.ID

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().Title("Notes").Value(d.formValue),
		),
	).WithShowHelp(true).WithShowErrors(true)

	d.formActive = true
	return d, d.form.Init()
}

func (d dayModel) showTagForm(s session.Session) (dayModel, tea.Cmd) {
	*d.formValue = ""
	d.formType = "tag"
	d.editingID = s.ID

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Tag").Placeholder("e.g. math").Value(d.formValue),
		),
	).WithShowHelp(true).WithShowErrors(true)

	d.formActive = true
	return d, d.form.Init()
}

func (d dayModel) updateForm(msg tea.Msg) (dayModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			d.formActive = false
			d.form = nil
			return d, nil
		}
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	if d.form.State == huh.StateCompleted {
		d.formActive = false
		d.form = nil
		return d, d.applyForm()
	}
	return d, cmd
}

func (d dayModel) applyForm() tea.Cmd {
	switch d.formType {
	case "notes":
		err := d.sessions.SetNotes(d.editingID, *d.formValue)
		return result(err, statusMsg{text: "Notes saved"})
	case "tag":
		if strings.TrimSpace(*d.formValue) == "" {
			return nil
		}
		err := d.sessions.AddTag(d.editingID, *d.formValue)
		return result(err, statusMsg{text: "Tag added"})
	}
	return nil
}

func (d dayModel) view() string {
	w := d.width - 4
	if w < 40 {
		w = 40
	}

	if d.formActive && d.form != nil {
		title := titleStyle.Render("Edit Notes")
		if d.formType == "tag" {
			title = titleStyle.Render("Add Tag")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", d.form.View())
		return activePanelStyle.Width(w).Render(content)
	}

	calendar := panelStyle.Render(d.renderCalendar())
	sessions := panelStyle.Width(max(w-lipgloss.Width(calendar)-1, 30)).Render(d.renderSessions())
	top := lipgloss.JoinHorizontal(lipgloss.Top, calendar, " ", sessions)

	overview := panelStyle.Width(w).Render(d.renderOverview())
	return lipgloss.JoinVertical(lipgloss.Left, top, overview)
}

// renderCalendar draws the month of the selected day, weeks starting on
// Sunday, with days that have sessions highlighted.
func (d dayModel) renderCalendar() string {
	first := time.Date(d.selected.Year(), d.selected.Month(), 1, 0, 0, 0, 0, d.selected.Location())
	active := d.sessions.ActiveDays(monthKey(first))
	today := dateKey(d.now())

	var b strings.Builder
	b.WriteString(titleStyle.Render(first.Format("January 2006")))
	b.WriteString("\n\n")

	var head []string
	for _, wd := range []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"} {
		head = append(head, weekdayStyle.Render(wd))
	}
	b.WriteString(strings.Join(head, ""))
	b.WriteString("\n")

	cells := make([]string, 0, 42)
	for i := 0; i < int(first.Weekday()); i++ {
		cells = append(cells, dayStyle.Render(""))
	}
	for day := 1; day <= daysIn(first); day++ {
		t := first.AddDate(0, 0, day-1)
		ds := dateKey(t)
		style := dayStyle
		switch {
		case ds == d.date():
			style = selectedDayStyle
		case active[ds]:
			style = activeDayStyle
		case ds == today:
			style = todayStyle
		}
		cells = append(cells, style.Render(fmt.Sprintf("%d", day)))
	}

	for i := 0; i < len(cells); i += 7 {
		end := min(i+7, len(cells))
		b.WriteString(strings.Join(cells[i:end], ""))
		if end < len(cells) {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("[/]: month  ←/→: day  g: today"))
	return b.String()
}

func (d dayModel) renderSessions() string {
	title := titleStyle.Render(d.selected.Format("Monday, Jan 02 2006"))
	list := d.list()
	if len(list) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No sessions. Press n to add one."),
		)
	}

	rows := []string{title, ""}
	for i, s := range list {
		cursor := "  "
		style := normalItemStyle
		if i == d.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		display := s.Display()
		if v, ok := d.displays[s.ID]; ok && s.Running {
			display = v
		}
		clock := timerStyle.Render(display)
		if s.Running {
			clock = timerRunningStyle.Render("● " + display)
		}

		row := style.Render(fmt.Sprintf("%s#%d ", cursor, i+1)) + clock
		if len(s.Tags) > 0 {
			row += tagStyle.Render("  #" + strings.Join(s.Tags, " #"))
		}
		rows = append(rows, row)
		if s.Notes != "" {
			rows = append(rows, mutedStyle.Render("    "+firstLine(s.Notes)))
		}
	}
	rows = append(rows, "", mutedStyle.Render("n: new  s: start  x: stop  e: notes  t: tag  d: delete"))
	return strings.Join(rows, "\n")
}

// renderOverview lists each session's span and duration followed by the
// day and month totals.
func (d dayModel) renderOverview() string {
	list := d.sessions.ListByDate(d.date())
	rows := []string{titleStyle.Render("Overview"), ""}

	if len(list) == 0 {
		rows = append(rows, mutedStyle.Render("No sessions for this day."))
	} else {
		for _, s := range list {
			rows = append(rows, fmt.Sprintf("%s → %s | Duration: %s",
				session.OrDash(s.StartTime), session.OrDash(s.EndTime), session.FormatMS(s.Duration)))
		}
		rows = append(rows, "", accentStyle.Render("Total Today: "+session.FormatHM(d.sessions.DailyTotal(d.date()))))
	}

	month := monthKey(d.selected)
	rows = append(rows, successStyle.Render("Total study time this month: "+session.FormatHM(d.sessions.MonthlyTotal(month))))
	return strings.Join(rows, "\n")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
