package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("#6C63FF")
	colorSecondary = lipgloss.Color("#2EC4B6")
	colorAccent    = lipgloss.Color("#FF6B6B")
	colorMuted     = lipgloss.Color("#666666")
	colorSuccess   = lipgloss.Color("#2ECC71")
	colorWarning   = lipgloss.Color("#F39C12")
	colorBg        = lipgloss.Color("#1A1B26")
	colorFg        = lipgloss.Color("#C0CAF5")
	colorSubtle    = lipgloss.Color("#414868")
	colorHighlight = lipgloss.Color("#7AA2F7")
)

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	// Forms
	activePanelStyle = panelStyle.
				BorderForeground(colorPrimary)

	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)
)

// Session rows
var (
	timerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	timerRunningStyle = timerStyle.
				Foreground(colorSuccess)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	tagStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)
)

// Month grid. Every cell is four columns wide so weekday headers line up.
var (
	weekdayStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(4).
			Align(lipgloss.Right)

	dayStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Width(4).
			Align(lipgloss.Right)

	activeDayStyle = dayStyle.
			Foreground(colorSecondary).
			Bold(true)

	selectedDayStyle = dayStyle.
				Foreground(colorBg).
				Background(colorPrimary).
				Bold(true)

	todayStyle = dayStyle.
			Underline(true)
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorFg)
	accentStyle  = lipgloss.NewStyle().Foreground(colorAccent)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
)
