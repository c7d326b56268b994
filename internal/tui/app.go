package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/streakr/internal/export"
	"github.com/sadopc/streakr/internal/planner"
	"github.com/sadopc/streakr/internal/store"
)

// Config carries the settings the views need from the outside.
type Config struct {
	FocusDuration time.Duration
	IdleTimeout   time.Duration
	ExportDir     string // defaults to the home directory
	NextRollover  func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	svc    *planner.Service
	events <-chan store.Event
	cfg    Config
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	today     todayModel
	tasks     tasksModel
	calendar  calendarModel
	focus     focusModel
	bookmarks bookmarksModel

	help        help.Model
	status      string
	statusError bool
}

// NewApp builds the UI. events may be nil when nothing publishes saves.
func NewApp(svc *planner.Service, events <-chan store.Event, cfg Config) App {
	h := help.New()
	h.ShowAll = false
	if cfg.FocusDuration <= 0 {
		cfg.FocusDuration = 25 * time.Minute
	}

	return App{
		svc:        svc,
		events:     events,
		cfg:        cfg,
		activeView: viewToday,
		today:      newTodayModel(svc),
		tasks:      newTasksModel(svc),
		calendar:   newCalendarModel(svc),
		focus:      newFocusModel(svc, cfg.FocusDuration, cfg.IdleTimeout),
		bookmarks:  newBookmarksModel(svc),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.today.Init(),
		a.focus.refresh(),
		waitForEvent(a.events),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForEvent blocks on the hub channel and re-arms from Update.
func waitForEvent(ch <-chan store.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return storeEventMsg(e)
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.today.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.calendar.setSize(a.width, contentHeight)
		a.focus.setSize(a.width, contentHeight)
		a.bookmarks.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		a.focus.recordActivity()

		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewToday)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewTasks)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewCalendar)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewFocus)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewBookmarks)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// Ticks always reach the focus timer, whatever view is shown.
		var cmd tea.Cmd
		a.focus, cmd = a.focus.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		a.statusError = msg.isError
		return a, nil

	case taskChangedMsg:
		a.status = msg.text
		a.statusError = false
		return a, a.refreshAll()

	case storeEventMsg:
		return a, tea.Batch(waitForEvent(a.events), a.refreshAll())

	case focusRequestMsg:
		a.activeView = viewFocus
		var cmd tea.Cmd
		a.focus, cmd = a.focus.begin(msg.task)
		return a, cmd

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusError = false
		a.exportPicking = false
		return a, nil

	case todayDataMsg:
		a.today, _ = a.today.update(msg)
		return a, nil

	case focusDataMsg:
		a.focus, _ = a.focus.update(msg)
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewToday:
		a.today, cmd = a.today.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewCalendar:
		a.calendar, cmd = a.calendar.update(msg)
	case viewFocus:
		a.focus, cmd = a.focus.update(msg)
	case viewBookmarks:
		a.bookmarks, cmd = a.bookmarks.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTasks:
		return a.tasks.formActive
	case viewBookmarks:
		return a.bookmarks.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewToday:
		return a.today.loadData()
	case viewTasks:
		return a.tasks.refresh()
	case viewCalendar:
		return a.calendar.refresh()
	case viewFocus:
		return a.focus.refresh()
	case viewBookmarks:
		return a.bookmarks.refresh()
	}
	return nil
}

// refreshAll reloads the header data plus whatever view is open.
func (a App) refreshAll() tea.Cmd {
	cmds := []tea.Cmd{a.today.loadData()}
	if a.activeView != viewFocus {
		cmds = append(cmds, a.focus.refresh())
	}
	if a.activeView != viewToday {
		cmds = append(cmds, a.refreshCurrentView())
	}
	return tea.Batch(cmds...)
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewToday:
		content = a.today.view()
	case viewTasks:
		content = a.tasks.view()
	case viewCalendar:
		content = a.calendar.view()
	case viewFocus:
		content = a.focus.view()
	case viewBookmarks:
		content = a.bookmarks.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(1, a.height-headerHeight-footerHeight)

	if a.exportPicking {
		content = a.renderExportPicker()
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

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("streakr")
	if user := a.svc.UserID(); user != "" {
		title += mutedStyle.Render(" · " + user)
	}
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
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
		if a.statusError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Focus countdown wins over the streak badge while a session runs.
	var indicator string
	switch {
	case a.focus.timer.paused():
		indicator = warningStyle.Render(" ⏸ " + formatCountdown(a.focus.timer.remaining()))
	case a.focus.timer.running():
		indicator = successStyle.Render(" ● " + formatCountdown(a.focus.timer.remaining()))
	case a.today.streak.CurrentStreak > 0:
		indicator = streakStyle.Render(fmt.Sprintf(" 🔥 %d", a.today.streak.CurrentStreak))
	}

	left := footerStyle.Render(helpView)
	right := indicator + a.rolloverHint() + status

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

// rolloverHint shows when the next day is closed out.
func (a App) rolloverHint() string {
	if a.cfg.NextRollover == nil {
		return ""
	}
	next := a.cfg.NextRollover()
	if next.IsZero() {
		return ""
	}
	return mutedStyle.Render(" ↻ " + next.Format("15:04"))
}

var exportFormats = []string{"CSV (tasks)", "JSON (everything)"}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Format"), ""}
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) exportPath(ext string) (string, error) {
	dir := a.cfg.ExportDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = home
	}
	name := fmt.Sprintf("streakr-export-%s.%s", a.svc.Today(), ext)
	return filepath.Join(dir, name), nil
}

func (a App) doExport(format int) tea.Cmd {
	svc := a.svc
	return func() tea.Msg {
		snap, err := svc.Snapshot(context.Background())
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		ext := "csv"
		if format == 1 {
			ext = "json"
		}
		path, err := a.exportPath(ext)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		if format == 0 {
			if err := export.TasksToCSV(snap.Tasks, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			if err := export.ToJSON(*snap, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}
		return exportDoneMsg{path: path}
	}
}
