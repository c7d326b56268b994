package tui

import "github.com/charmbracelet/lipgloss"

// Palette: warm accents for streaks, greens for completion.
var (
	colorPrimary   = lipgloss.Color("#F08A24")
	colorAccent    = lipgloss.Color("#FF5F5F")
	colorMuted     = lipgloss.Color("#6B7089")
	colorSuccess   = lipgloss.Color("#39D353")
	colorWarning   = lipgloss.Color("#E5C07B")
	colorError     = lipgloss.Color("#E06C75")
	colorFg        = lipgloss.Color("#D8DEE9")
	colorSubtle    = lipgloss.Color("#3B4252")
	colorHighlight = lipgloss.Color("#88C0D0")
)

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 2)
	activePanelStyle = panelStyle.BorderForeground(colorPrimary)

	timerRunningStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess).Align(lipgloss.Center)
	timerPausedStyle  = timerRunningStyle.Foreground(colorWarning)

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorFg)
	subtitleStyle  = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
	accentStyle    = lipgloss.NewStyle().Foreground(colorAccent)
	successStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle   = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	highlightStyle = lipgloss.NewStyle().Foreground(colorHighlight)
	streakStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = mutedStyle.Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	normalItemStyle   = lipgloss.NewStyle().Foreground(colorFg)
	doneItemStyle     = mutedStyle.Strikethrough(true)
)

// heatColors index by recur.DayActivity.Level.
var heatColors = []lipgloss.Color{
	colorSubtle,
	lipgloss.Color("#0E4429"),
	lipgloss.Color("#006D32"),
	lipgloss.Color("#26A641"),
	colorSuccess,
}
