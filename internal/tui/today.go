package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/streakr/internal/planner"
	"github.com/sadopc/streakr/internal/recur"
)

type todayModel struct {
	svc    *planner.Service
	width  int
	height int

	today    recur.Date
	tasks    []recur.Task
	progress recur.DailyProgress
	streak   recur.StreakData
	cursor   int
}

func newTodayModel(svc *planner.Service) todayModel {
	return todayModel{svc: svc, today: svc.Today()}
}

func (d todayModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *todayModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type todayDataMsg struct {
	today    recur.Date
	tasks    []recur.Task
	progress recur.DailyProgress
	streak   recur.StreakData
}

func (d todayModel) loadData() tea.Cmd {
	svc := d.svc
	return func() tea.Msg {
		ctx := context.Background()
		tasks, err := svc.DueToday(ctx)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		snap, err := svc.Snapshot(ctx)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		today := svc.Today()
		p, _ := recur.Lookup(snap.Progress, today)
		return todayDataMsg{today: today, tasks: tasks, progress: p, streak: snap.Streak}
	}
}

func (d todayModel) selected() (recur.Task, bool) {
	if d.cursor < 0 || d.cursor >= len(d.tasks) {
		return recur.Task{}, false
	}
	return d.tasks[d.cursor], true
}

func (d todayModel) update(msg tea.Msg) (todayModel, tea.Cmd) {
	switch msg := msg.(type) {
	case todayDataMsg:
		d.today = msg.today
		d.tasks = msg.tasks
		d.progress = msg.progress
		d.streak = msg.streak
		if d.cursor >= len(d.tasks) {
			d.cursor = max(0, len(d.tasks)-1)
		}
		return d, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, keys.Down):
			if d.cursor < len(d.tasks)-1 {
				d.cursor++
			}
		case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
			t, ok := d.selected()
			if !ok {
				return d, nil
			}
			if t.Completed() {
				return d, setStatusCmd(d.svc, t, recur.StatusPending)
			}
			return d, setStatusCmd(d.svc, t, recur.StatusCompleted)
		case key.Matches(msg, keys.Progress):
			if t, ok := d.selected(); ok && t.Status != recur.StatusInProgress {
				return d, setStatusCmd(d.svc, t, recur.StatusInProgress)
			}
		case key.Matches(msg, keys.Start):
			if t, ok := d.selected(); ok && !t.Completed() {
				return d, func() tea.Msg { return focusRequestMsg{task: t} }
			}
		}
	}
	return d, nil
}

func setStatusCmd(svc *planner.Service, t recur.Task, status recur.Status) tea.Cmd {
	return func() tea.Msg {
		updated, err := svc.SetStatus(context.Background(), t.ID, status)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		text := fmt.Sprintf("%q marked %s", t.Title, status)
		if status == recur.StatusCompleted && t.Recurrence.Repeats() {
			text += ", next on " + recur.NextOccurrenceAfter(t, svc.Today()).String()
		}
		return taskChangedMsg{task: updated, text: text}
	}
}

func (d todayModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderSummaryPanel(w),
		d.renderTaskPanel(w),
	)
}

func (d todayModel) renderSummaryPanel(w int) string {
	title := titleStyle.Render("Today") + "  " + mutedStyle.Render(d.today.Time().Format("Mon, 02 Jan 2006"))

	done, planned := d.progress.TasksCompleted, d.progress.TasksPlanned
	if planned == 0 {
		for _, t := range d.tasks {
			planned++
			if t.Completed() {
				done++
			}
		}
	}
	frac := 0.0
	if planned > 0 {
		frac = float64(done) / float64(planned)
	}
	barWidth := min(40, max(10, w-30))
	progressLine := fmt.Sprintf("%s  %d/%d  %3.0f%%", renderBar(frac, barWidth), done, planned, frac*100)

	streakLine := streakStyle.Render(fmt.Sprintf("Streak: %d day%s", d.streak.CurrentStreak, plural(d.streak.CurrentStreak))) +
		mutedStyle.Render(fmt.Sprintf("   best %d", d.streak.LongestStreak))
	if last := d.streak.LastCompletionDate; last != nil {
		streakLine += mutedStyle.Render("   last full day " + last.String())
	}

	return activePanelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", progressLine, streakLine),
	)
}

func (d todayModel) renderTaskPanel(w int) string {
	title := titleStyle.Render("Due Today")
	if len(d.tasks) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Nothing due. Press 2 to add tasks."),
		))
	}

	rows := []string{title}
	for i, t := range d.tasks {
		cursor := "  "
		style := normalItemStyle
		if t.Completed() {
			style = doneItemStyle
		}
		if i == d.cursor {
			cursor = "> "
			if !t.Completed() {
				style = selectedItemStyle
			}
		}
		line := style.Render(fmt.Sprintf("%s%s %s", cursor, statusIcon(t.Status), truncate(t.Title, w-30)))
		var extra []string
		if rec := describeRecurrence(t.Recurrence); rec != "" {
			extra = append(extra, rec)
		}
		if est := formatEstimate(t.EstimateMinutes); est != "" {
			extra = append(extra, est)
		}
		if len(extra) > 0 {
			line += mutedStyle.Render("  " + strings.Join(extra, " · "))
		}
		rows = append(rows, line+renderTagDots(t.Tags))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  x: done/undo  i: in progress  s: focus"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func renderBar(frac float64, width int) string {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac*float64(width) + 0.5)
	return successStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
}

func renderTagDots(tags []recur.Tag) string {
	var out string
	for _, t := range tags {
		out += " " + lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color)).Render("#"+t.Name)
	}
	return out
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
