package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/streakr/internal/planner"
	"github.com/sadopc/streakr/internal/recur"
)

type focusModel struct {
	svc    *planner.Service
	width  int
	height int

	timer           timerModel
	defaultDuration time.Duration

	candidates []recur.Task // open tasks due today
	cursor     int

	notified  bool // time-up message already sent for this session
	completed int  // sessions finished this run
}

func newFocusModel(svc *planner.Service, defaultDuration, idleTimeout time.Duration) focusModel {
	return focusModel{
		svc:             svc,
		timer:           newTimerModel(idleTimeout),
		defaultDuration: defaultDuration,
	}
}

func (p *focusModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type focusDataMsg struct {
	tasks []recur.Task
}

func (p focusModel) refresh() tea.Cmd {
	svc := p.svc
	return func() tea.Msg {
		due, err := svc.DueToday(context.Background())
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		var open []recur.Task
		for _, t := range due {
			if !t.Completed() {
				open = append(open, t)
			}
		}
		return focusDataMsg{tasks: open}
	}
}

// sessionLength uses the task estimate when it has one.
func (p focusModel) sessionLength(t recur.Task) time.Duration {
	if t.EstimateMinutes > 0 {
		return time.Duration(t.EstimateMinutes) * time.Minute
	}
	return p.defaultDuration
}

// begin starts a session on t and marks it in progress.
func (p focusModel) begin(t recur.Task) (focusModel, tea.Cmd) {
	if p.timer.running() {
		return p, func() tea.Msg {
			return statusMsg{text: "A focus session is already running", isError: true}
		}
	}
	p.timer.start(t.ID, t.Title, p.sessionLength(t))
	p.notified = false

	if t.Status == recur.StatusInProgress {
		return p, func() tea.Msg { return statusMsg{text: "Focusing on " + t.Title} }
	}
	return p, setStatusCmd(p.svc, t, recur.StatusInProgress)
}

func (p *focusModel) recordActivity() {
	p.timer.recordActivity()
}

func (p focusModel) update(msg tea.Msg) (focusModel, tea.Cmd) {
	switch msg := msg.(type) {
	case focusDataMsg:
		p.candidates = msg.tasks
		if p.cursor >= len(p.candidates) {
			p.cursor = max(0, len(p.candidates)-1)
		}
		return p, nil

	case tickMsg:
		p.timer.tick()
		if p.timer.finished() && !p.notified {
			p.notified = true
			title := p.timer.taskTitle
			return p, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Time is up for %q \a", title)}
			}
		}
		return p, nil

	case tea.KeyMsg:
		if !p.timer.running() {
			return p.updatePicker(msg)
		}
		switch {
		case key.Matches(msg, keys.Pause):
			p.timer.toggle()
		case key.Matches(msg, keys.Stop):
			return p.finish(false)
		case key.Matches(msg, keys.Toggle):
			return p.finish(true)
		}
	}
	return p, nil
}

func (p focusModel) updatePicker(msg tea.KeyMsg) (focusModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.candidates)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Start):
		if len(p.candidates) > 0 {
			return p.begin(p.candidates[p.cursor])
		}
	}
	return p, nil
}

// finish stops the session, completing the task when done is set.
func (p focusModel) finish(done bool) (focusModel, tea.Cmd) {
	taskID, title := p.timer.taskID, p.timer.taskTitle
	elapsed := p.timer.stop()
	p.completed++
	text := fmt.Sprintf("Focused %s on %q", formatDuration(elapsed), title)

	if !done {
		return p, tea.Batch(p.refresh(), func() tea.Msg { return statusMsg{text: text} })
	}
	svc := p.svc
	return p, func() tea.Msg {
		t, err := svc.SetStatus(context.Background(), taskID, recur.StatusCompleted)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return taskChangedMsg{task: t, text: text + ", done"}
	}
}

func (p focusModel) view() string {
	w := p.width - 4
	title := titleStyle.Render("Focus")

	if !p.timer.running() {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", p.renderPicker(), "", mutedStyle.Render("  enter/s: start focus"),
		))
	}

	remaining := p.timer.remaining()
	var timeDisplay, indicator string
	switch {
	case remaining <= 0:
		timeDisplay = accentStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render("+" + formatCountdown(-remaining))
		indicator = accentStyle.Bold(true).Render("TIME'S UP")
	case p.timer.paused():
		timeDisplay = timerPausedStyle.Width(w - 6).Render(formatCountdown(remaining))
		indicator = warningStyle.Render("⏸  PAUSED")
		if p.timer.isIdle {
			indicator = warningStyle.Render("⏸  IDLE")
		}
	default:
		timeDisplay = timerRunningStyle.Width(w - 6).Render(formatCountdown(remaining))
		indicator = successStyle.Render("●  FOCUSING")
	}

	frac := 0.0
	if p.timer.target > 0 {
		frac = float64(p.timer.currentElapsed()) / float64(p.timer.target)
	}
	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		timeDisplay,
		indicator,
		highlightStyle.Render(p.timer.taskTitle),
		"",
		renderBar(frac, min(40, max(10, w-10))),
	)
	controls := mutedStyle.Render("space: pause/resume  x: done  S: stop")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", controls),
	)
}

func (p focusModel) renderPicker() string {
	if len(p.candidates) == 0 {
		return mutedStyle.Render("  Nothing open today.")
	}
	rows := []string{subtitleStyle.Render("  Pick a task")}
	for i, t := range p.candidates {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %s", cursor, statusIcon(t.Status), t.Title))+
			mutedStyle.Render("  "+formatCountdown(p.sessionLength(t))))
	}
	if p.completed > 0 {
		rows = append(rows, "", mutedStyle.Render(fmt.Sprintf("  %d session%s this run", p.completed, plural(p.completed))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
