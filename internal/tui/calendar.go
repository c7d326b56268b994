package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/streakr/internal/planner"
	"github.com/sadopc/streakr/internal/recur"
)

const heatmapWeeks = 12

type calendarModel struct {
	svc    *planner.Service
	width  int
	height int

	days   int // 7 or 30
	offset int // windows back from today (0 = current)

	activity []recur.DayActivity
	heatmap  []recur.DayActivity
	streak   recur.StreakData

	chart barchart.Model
}

func newCalendarModel(svc *planner.Service) calendarModel {
	return calendarModel{
		svc:   svc,
		days:  7,
		chart: barchart.New(60, 12),
	}
}

func (r *calendarModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type calendarDataMsg struct {
	activity []recur.DayActivity
	heatmap  []recur.DayActivity
	streak   recur.StreakData
}

func (r calendarModel) refresh() tea.Cmd {
	svc := r.svc
	from, to := r.dateRange()
	hFrom, hTo := heatmapRange(svc.Today())
	return func() tea.Msg {
		ctx := context.Background()
		activity, err := svc.Calendar(ctx, from, to)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Calendar error: %v", err), isError: true}
		}
		heat, err := svc.Calendar(ctx, hFrom, hTo)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Calendar error: %v", err), isError: true}
		}
		snap, err := svc.Snapshot(ctx)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Calendar error: %v", err), isError: true}
		}
		return calendarDataMsg{activity: activity, heatmap: heat, streak: snap.Streak}
	}
}

// dateRange is the inclusive window shown in the bar chart.
func (r calendarModel) dateRange() (recur.Date, recur.Date) {
	to := r.svc.Today().AddDays(-r.days * r.offset)
	return to.AddDays(1 - r.days), to
}

// heatmapRange starts on a Monday so columns line up as weeks.
func heatmapRange(today recur.Date) (recur.Date, recur.Date) {
	back := (int(today.Weekday()) + 6) % 7
	from := today.AddDays(-back - 7*(heatmapWeeks-1))
	return from, today
}

func (r calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	switch msg := msg.(type) {
	case calendarDataMsg:
		r.activity = msg.activity
		r.heatmap = msg.heatmap
		r.streak = msg.streak
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		case key.Matches(msg, keys.Range):
			if r.days == 7 {
				r.days = 30
			} else {
				r.days = 7
			}
			r.offset = 0
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *calendarModel) buildChart() {
	chartWidth := max(20, r.width-8)
	chartHeight := 10
	if r.height > 36 {
		chartHeight = 14
	}
	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, a := range r.activity {
		label := a.Date.Time().Format("Mon 02")
		if r.days > 7 {
			label = a.Date.Time().Format("02")
		}
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{{
				Name:  a.Date.String(),
				Value: a.Completion * 100,
				Style: lipgloss.NewStyle().Foreground(heatColors[a.Level]),
			}},
		})
	}
	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r calendarModel) view() string {
	w := r.width - 4

	weekTab := inactiveTabStyle.Render("7 days")
	monthTab := inactiveTabStyle.Render("30 days")
	if r.days == 7 {
		weekTab = activeTabStyle.Render("7 days")
	} else {
		monthTab = activeTabStyle.Render("30 days")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, weekTab, monthTab)

	from, to := r.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s – %s", from.Time().Format("Jan 02"), to.Time().Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Calendar"), "  ", modeTabs, "  ", dateLabel,
	)

	nav := mutedStyle.Render("  ←/→: navigate  r: 7/30 days")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", r.renderStats(), "", r.renderHeatmap(), "", nav,
		),
	)
}

func (r calendarModel) renderStats() string {
	var full, tracked int
	var sum float64
	for _, a := range r.activity {
		if a.Planned == 0 {
			continue
		}
		tracked++
		sum += a.Completion
		if a.Level == 4 {
			full++
		}
	}
	avg := 0.0
	if tracked > 0 {
		avg = sum / float64(tracked) * 100
	}
	return fmt.Sprintf("  %s  %s  %s",
		streakStyle.Render(fmt.Sprintf("streak %d", r.streak.CurrentStreak)),
		mutedStyle.Render(fmt.Sprintf("best %d", r.streak.LongestStreak)),
		highlightStyle.Render(fmt.Sprintf("%d/%d full days, avg %.0f%%", full, tracked, avg)),
	)
}

// renderHeatmap draws weeks as columns and weekdays as rows, Monday on top.
func (r calendarModel) renderHeatmap() string {
	if len(r.heatmap) == 0 {
		return mutedStyle.Render("  No activity yet")
	}
	labels := []string{"Mon", "   ", "Wed", "   ", "Fri", "   ", "Sun"}
	grid := make([][]string, 7)
	for i := range grid {
		grid[i] = []string{mutedStyle.Render("  " + labels[i] + " ")}
	}
	for _, a := range r.heatmap {
		row := (int(a.Date.Weekday()) + 6) % 7
		cell := lipgloss.NewStyle().Foreground(heatColors[a.Level]).Render("■")
		grid[row] = append(grid[row], cell)
	}

	rows := []string{mutedStyle.Render(fmt.Sprintf("  Last %d weeks", heatmapWeeks))}
	for _, cells := range grid {
		rows = append(rows, strings.Join(cells, " "))
	}
	legend := mutedStyle.Render("  less ")
	for _, c := range heatColors {
		legend += lipgloss.NewStyle().Foreground(c).Render("■") + " "
	}
	rows = append(rows, legend+mutedStyle.Render("more"))
	return strings.Join(rows, "\n")
}
