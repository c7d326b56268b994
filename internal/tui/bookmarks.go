package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/streakr/internal/planner"
	"github.com/sadopc/streakr/internal/store"
)

type bookmarksModel struct {
	svc    *planner.Service
	width  int
	height int

	bookmarks []store.Bookmark
	cursor    int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	title *string
	url   *string
}

func newBookmarksModel(svc *planner.Service) bookmarksModel {
	title, url := "", ""
	return bookmarksModel{svc: svc, title: &title, url: &url}
}

func (b *bookmarksModel) setSize(w, h int) {
	b.width = w
	b.height = h
}

type bookmarksDataMsg struct {
	bookmarks []store.Bookmark
}

type bookmarkSavedMsg struct {
	text string
}

func (b bookmarksModel) refresh() tea.Cmd {
	svc := b.svc
	return func() tea.Msg {
		snap, err := svc.Snapshot(context.Background())
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		return bookmarksDataMsg{bookmarks: snap.Bookmarks}
	}
}

func (b bookmarksModel) update(msg tea.Msg) (bookmarksModel, tea.Cmd) {
	if b.formActive && b.form != nil {
		return b.updateForm(msg)
	}

	switch msg := msg.(type) {
	case bookmarksDataMsg:
		b.bookmarks = msg.bookmarks
		if b.cursor >= len(b.bookmarks) {
			b.cursor = max(0, len(b.bookmarks)-1)
		}
		return b, nil

	case bookmarkSavedMsg:
		return b, tea.Batch(b.refresh(), func() tea.Msg { return statusMsg{text: msg.text} })

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if b.cursor > 0 {
				b.cursor--
			}
		case key.Matches(msg, keys.Down):
			if b.cursor < len(b.bookmarks)-1 {
				b.cursor++
			}
		case key.Matches(msg, keys.New):
			return b.showForm()
		case key.Matches(msg, keys.Delete):
			if len(b.bookmarks) > 0 {
				return b, deleteBookmarkCmd(b.svc, b.bookmarks[b.cursor])
			}
		}
	}
	return b, nil
}

func deleteBookmarkCmd(svc *planner.Service, bm store.Bookmark) tea.Cmd {
	return func() tea.Msg {
		if err := svc.DeleteBookmark(context.Background(), bm.ID); err != nil {
			return statusMsg{text: fmt.Sprintf("Delete error: %v", err), isError: true}
		}
		return bookmarkSavedMsg{text: fmt.Sprintf("Deleted %q", bm.Title)}
	}
}

func (b bookmarksModel) showForm() (bookmarksModel, tea.Cmd) {
	*b.title = ""
	*b.url = ""

	b.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("URL").Placeholder("https://").Value(b.url).Validate(requireText),
			huh.NewInput().Title("Title (optional)").Value(b.title),
		).Title("New Bookmark"),
	).WithShowHelp(true).WithShowErrors(true)

	b.formActive = true
	return b, b.form.Init()
}

func (b bookmarksModel) updateForm(msg tea.Msg) (bookmarksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			b.formActive = false
			b.form = nil
			return b, nil
		}
	}

	form, cmd := b.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		b.form = f
	}

	if b.form.State == huh.StateCompleted {
		b.formActive = false
		b.form = nil
		return b, b.submit()
	}
	return b, cmd
}

func (b bookmarksModel) submit() tea.Cmd {
	svc, title, url := b.svc, *b.title, *b.url
	return func() tea.Msg {
		bm, err := svc.CreateBookmark(context.Background(), title, url)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
		}
		return bookmarkSavedMsg{text: fmt.Sprintf("Saved %q", bm.Title)}
	}
}

func (b bookmarksModel) view() string {
	w := b.width - 4
	title := titleStyle.Render("Bookmarks")

	if b.formActive && b.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", b.form.View()),
		)
	}

	rows := []string{title, ""}
	if len(b.bookmarks) == 0 {
		rows = append(rows, mutedStyle.Render("  No bookmarks yet."))
	}
	for i, bm := range b.bookmarks {
		cursor := "  "
		style := normalItemStyle
		if i == b.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		label := lipgloss.NewStyle().Width(24).Render(truncate(bm.Title, 22))
		rows = append(rows, style.Render(cursor+label)+" "+highlightStyle.Render(truncate(bm.URL, max(10, w-34))))
	}
	rows = append(rows, "", mutedStyle.Render("  n: new  d: delete"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
