package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studylog/internal/session"
)

type monthModel struct {
	sessions *session.Store
	width    int
	height   int

	month  time.Time // first day of the shown month
	totals map[string]int64
	counts map[string]int

	chart barchart.Model
}

func newMonthModel(s *session.Store, now time.Time) monthModel {
	return monthModel{
		sessions: s,
		month:    time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()),
		chart:    barchart.New(60, 12),
	}
}

func (m *monthModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

// refresh recomputes the per-day totals and redraws the chart.
func (m *monthModel) refresh() {
	list := m.sessions.ListByMonth(monthKey(m.month))
	m.totals = session.DailyTotals(list)
	m.counts = make(map[string]int)
	for _, s := range list {
		m.counts[s.Date]++
	}
	m.buildChart()
}

func (m monthModel) update(msg tea.Msg) (monthModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Left), key.Matches(msg, keys.PrevMonth):
			m.month = m.month.AddDate(0, -1, 0)
			m.refresh()
		case key.Matches(msg, keys.Right), key.Matches(msg, keys.NextMonth):
			m.month = m.month.AddDate(0, 1, 0)
			m.refresh()
		}
	}
	return m, nil
}

func (m *monthModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if m.height > 30 {
		chartHeight = 16
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for day := 1; day <= daysIn(m.month); day++ {
		d := m.month.AddDate(0, 0, day-1)
		minutes := float64(m.totals[dateKey(d)]) / 60
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if minutes == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label:  fmt.Sprintf("%d", day),
			Values: []barchart.BarValue{{Name: "minutes", Value: minutes, Style: style}},
		})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m monthModel) view() string {
	w := m.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Month"), "  ", mutedStyle.Render(m.month.Format("January 2006")),
	)

	total := successStyle.Render("Total study time this month: " +
		session.FormatHM(m.sessions.MonthlyTotal(monthKey(m.month))))

	nav := mutedStyle.Render("  ←/→: change month")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", m.chart.View(), "", m.renderTable(w), "", total, "", nav,
		),
	)
}

func (m monthModel) renderTable(w int) string {
	if len(m.totals) == 0 {
		return mutedStyle.Render("  No sessions this month")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %10s %10s %9s", "Date", "Duration", "Hours", "Sessions")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 44))))

	for day := 1; day <= daysIn(m.month); day++ {
		date := dateKey(m.month.AddDate(0, 0, day-1))
		secs, ok := m.totals[date]
		if !ok {
			continue
		}
		rows = append(rows, fmt.Sprintf("  %-12s %10s %10s %9d",
			date, session.FormatHM(secs), formatHours(secs), m.counts[date],
		))
	}
	return strings.Join(rows, "\n")
}
