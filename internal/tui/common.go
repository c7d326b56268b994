package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/streakr/internal/recur"
	"github.com/sadopc/streakr/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewToday viewState = iota
	viewTasks
	viewCalendar
	viewFocus
	viewBookmarks
)

var viewNames = []string{"Today", "Tasks", "Calendar", "Focus", "Bookmarks"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// storeEventMsg carries a save notification from the hub.
type storeEventMsg store.Event

// taskChangedMsg follows any mutation made from a view.
type taskChangedMsg struct {
	task recur.Task
	text string
}

// focusRequestMsg asks the app to open the focus view on a task.
type focusRequestMsg struct {
	task recur.Task
}

func errCmd(prefix string, err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("%s: %v", prefix, err), isError: true}
	}
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}

func formatEstimate(minutes int) string {
	switch {
	case minutes <= 0:
		return ""
	case minutes < 60:
		return fmt.Sprintf("%dm", minutes)
	case minutes%60 == 0:
		return fmt.Sprintf("%dh", minutes/60)
	}
	return fmt.Sprintf("%dh%02dm", minutes/60, minutes%60)
}

// describeRecurrence renders a task's recurrence for list rows.
func describeRecurrence(r *recur.Recurrence) string {
	if !r.Repeats() {
		return ""
	}
	s := string(r.Pattern)
	if r.Pattern == recur.PatternWeekly && len(r.WeekDays) > 0 {
		short := make([]string, len(r.WeekDays))
		for i, d := range r.WeekDays {
			if len(d) > 3 {
				d = d[:3]
			}
			short[i] = d
		}
		s += " " + strings.Join(short, ",")
	}
	if r.EndDate != nil {
		s += " until " + r.EndDate.String()
	}
	return s
}

func statusIcon(s recur.Status) string {
	switch s {
	case recur.StatusCompleted:
		return "✓"
	case recur.StatusInProgress:
		return "◐"
	}
	return "○"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
