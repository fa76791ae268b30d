package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studylog/internal/session"
	"github.com/sadopc/studylog/internal/timer"
)

// App is the root Bubble Tea model.
//
// Timer firings arrive on the queue's channel and are executed inside
// Update, so the session store is only ever touched from the program's
// event loop.
type App struct {
	sessions *session.Store
	engine   *timer.Engine
	queue    *timer.Queue
	width    int
	height   int

	activeView viewState
	showHelp   bool

	day   dayModel
	month monthModel

	help      help.Model
	status    string
	statusErr bool
}

// NewApp builds the root model. now supplies the current time in the zone
// dates are resolved in.
func NewApp(s *session.Store, e *timer.Engine, q *timer.Queue, now func() time.Time) App {
	h := help.New()
	h.ShowAll = false

	if now == nil {
		now = time.Now
	}

	return App{
		sessions:   s,
		engine:     e,
		queue:      q,
		activeView: viewDay,
		day:        newDayModel(s, e, now),
		month:      newMonthModel(s, now()),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return waitForDispatch(a.queue)
}

// waitForDispatch blocks until the next timer firing and hands it to Update.
func waitForDispatch(q *timer.Queue) tea.Cmd {
	if q == nil {
		return nil
	}
	return func() tea.Msg {
		fn, ok := <-q.C()
		if !ok {
			return nil
		}
		return dispatchMsg{fn: fn}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.day.setSize(a.width, contentHeight)
		a.month.setSize(a.width, contentHeight)
		a.month.refresh()
		return a, nil

	case dispatchMsg:
		msg.fn()
		if a.activeView == viewMonth {
			a.month.refresh()
		}
		return a, waitForDispatch(a.queue)

	case tea.KeyMsg:
		// If a child view is capturing input (e.g. form), delegate first.
		if a.day.formActive {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			a.engine.StopAll()
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDay
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewMonth
			a.month.refresh()
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			if a.activeView == viewMonth {
				a.month.refresh()
			}
			return a, nil
		}

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case sessionCreatedMsg:
		a.setStatus("Session added")
		return a, nil

	case sessionDeletedMsg:
		a.setStatus("Session deleted")
		return a, nil

	case timerStartedMsg:
		a.setStatus("Timer started")
		return a, nil

	case timerStoppedMsg:
		a.setStatus("Timer stopped")
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string) {
	a.status = text
	a.statusErr = false
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDay:
		a.day, cmd = a.day.update(msg)
	case viewMonth:
		a.month, cmd = a.month.update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDay:
		content = a.day.view()
	case viewMonth:
		content = a.month.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("studylog")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = warningStyle
		}
		status = style.Render(" " + a.status)
	}

	timerInfo := ""
	if n := a.engine.RunningCount(); n > 0 {
		timerInfo = successStyle.Render(" ● " + pluralRunning(n))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func pluralRunning(n int) string {
	if n == 1 {
		return "1 timer running"
	}
	return fmt.Sprintf("%d timers running", n)
}
