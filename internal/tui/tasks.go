package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/streakr/internal/planner"
	"github.com/sadopc/streakr/internal/recur"
)

var patternOptions = []string{"once", "daily", "weekly", "monthly"}

// taskFormValues is shared by pointer so it survives model copies.
type taskFormValues struct {
	title       string
	description string
	due         string
	estimate    string
	pattern     string
	weekDays    []string
	endDate     string
	tags        string
}

type tasksModel struct {
	svc    *planner.Service
	width  int
	height int

	tasks  []recur.Task
	cursor int
	offset int

	formActive bool
	form       *huh.Form
	values     *taskFormValues
	editingID  string // empty when creating
}

func newTasksModel(svc *planner.Service) tasksModel {
	return tasksModel{svc: svc, values: &taskFormValues{}}
}

func (p *tasksModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type tasksDataMsg struct {
	tasks []recur.Task
}

func (p tasksModel) refresh() tea.Cmd {
	svc := p.svc
	return func() tea.Msg {
		snap, err := svc.Snapshot(context.Background())
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		return tasksDataMsg{tasks: snap.Tasks}
	}
}

func (p tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		p.tasks = msg.tasks
		if p.cursor >= len(p.tasks) {
			p.cursor = max(0, len(p.tasks)-1)
		}
		p.clampOffset()
		return p, nil

	case tea.KeyMsg:
		return p.updateList(msg)
	}
	return p, nil
}

func (p tasksModel) updateList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.tasks)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.New):
		return p.showForm(nil)
	case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
		if len(p.tasks) > 0 {
			t := p.tasks[p.cursor]
			return p.showForm(&t)
		}
	case key.Matches(msg, keys.Delete):
		if len(p.tasks) > 0 {
			return p, deleteTaskCmd(p.svc, p.tasks[p.cursor])
		}
	case key.Matches(msg, keys.Toggle):
		if len(p.tasks) > 0 {
			t := p.tasks[p.cursor]
			if t.Completed() {
				return p, setStatusCmd(p.svc, t, recur.StatusPending)
			}
			return p, setStatusCmd(p.svc, t, recur.StatusCompleted)
		}
	}
	p.clampOffset()
	return p, nil
}

func (p *tasksModel) visibleRows() int {
	return max(3, p.height-10)
}

func (p *tasksModel) clampOffset() {
	n := p.visibleRows()
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+n {
		p.offset = p.cursor - n + 1
	}
}

func deleteTaskCmd(svc *planner.Service, t recur.Task) tea.Cmd {
	return func() tea.Msg {
		if err := svc.DeleteTask(context.Background(), t.ID); err != nil {
			return statusMsg{text: fmt.Sprintf("Delete error: %v", err), isError: true}
		}
		return taskChangedMsg{task: t, text: fmt.Sprintf("Deleted %q", t.Title)}
	}
}

// showForm opens the create form, or the edit form when t is set.
func (p tasksModel) showForm(t *recur.Task) (tasksModel, tea.Cmd) {
	v := p.values
	*v = taskFormValues{due: p.svc.Today().String(), pattern: string(recur.PatternOnce)}
	p.editingID = ""
	if t != nil {
		p.editingID = t.ID
		v.title = t.Title
		v.description = t.Description
		v.due = t.DueDate.String()
		if t.EstimateMinutes > 0 {
			v.estimate = strconv.Itoa(t.EstimateMinutes)
		}
		if r := t.Recurrence; r != nil {
			v.pattern = string(r.Pattern)
			v.weekDays = append([]string(nil), r.WeekDays...)
			if r.EndDate != nil {
				v.endDate = r.EndDate.String()
			}
		}
		names := make([]string, len(t.Tags))
		for i, tag := range t.Tags {
			names[i] = tag.Name
		}
		v.tags = strings.Join(names, ", ")
	}

	dayOptions := make([]huh.Option[string], len(weekdayOrder))
	for i, name := range weekdayOrder {
		dayOptions[i] = huh.NewOption(strings.ToUpper(name[:1])+name[1:], name)
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(&v.title).Validate(requireText),
			huh.NewInput().Title("Description").Value(&v.description),
			huh.NewInput().Title("Due date (YYYY-MM-DD)").Value(&v.due).Validate(optionalDate),
			huh.NewInput().Title("Estimate (minutes)").Value(&v.estimate).Validate(optionalMinutes),
			huh.NewInput().Title("Tags (comma-separated)").Value(&v.tags),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Repeats").Options(huh.NewOptions(patternOptions...)...).Value(&v.pattern),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().Title("On days").Options(dayOptions...).Value(&v.weekDays).
				Validate(func(days []string) error {
					if len(days) == 0 {
						return fmt.Errorf("pick at least one day")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return v.pattern != string(recur.PatternWeekly) }),
		huh.NewGroup(
			huh.NewInput().Title("Ends on (YYYY-MM-DD, optional)").Value(&v.endDate).Validate(optionalDate),
		).WithHideFunc(func() bool { return v.pattern == string(recur.PatternOnce) }),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

var weekdayOrder = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func requireText(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

func optionalDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := recur.ParseDate(strings.TrimSpace(s))
	return err
}

func optionalMinutes(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number of minutes")
	}
	return nil
}

// input converts the form values into a planner.TaskInput.
func (v taskFormValues) input() (planner.TaskInput, error) {
	in := planner.TaskInput{
		Title:       v.title,
		Description: v.description,
		Pattern:     v.pattern,
	}
	if s := strings.TrimSpace(v.due); s != "" {
		d, err := recur.ParseDate(s)
		if err != nil {
			return in, err
		}
		in.DueDate = d
	}
	if s := strings.TrimSpace(v.estimate); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return in, fmt.Errorf("estimate: %w", err)
		}
		in.EstimateMinutes = n
	}
	if v.pattern == string(recur.PatternWeekly) {
		in.WeekDays = v.weekDays
	}
	if s := strings.TrimSpace(v.endDate); s != "" && v.pattern != string(recur.PatternOnce) {
		d, err := recur.ParseDate(s)
		if err != nil {
			return in, err
		}
		in.EndDate = &d
	}
	for _, tag := range strings.Split(v.tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			in.Tags = append(in.Tags, tag)
		}
	}
	return in, nil
}

func (p tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		p.form = nil
		return p, p.submit()
	}
	return p, cmd
}

func (p tasksModel) submit() tea.Cmd {
	in, err := p.values.input()
	if err != nil {
		return errCmd("Invalid task", err)
	}
	svc, id := p.svc, p.editingID
	return func() tea.Msg {
		var t recur.Task
		var err error
		verb := "Created"
		if id == "" {
			t, err = svc.CreateTask(context.Background(), in)
		} else {
			verb = "Updated"
			t, err = svc.UpdateTask(context.Background(), id, in)
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
		}
		return taskChangedMsg{task: t, text: fmt.Sprintf("%s %q", verb, t.Title)}
	}
}

func (p tasksModel) view() string {
	w := p.width - 4
	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Task")
		if p.editingID != "" {
			title = titleStyle.Render("Edit Task")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View()),
		)
	}
	return p.renderList(w)
}

func (p tasksModel) renderList(w int) string {
	title := titleStyle.Render(fmt.Sprintf("Tasks (%d)", len(p.tasks)))

	if len(p.tasks) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks yet. Press n to create one."),
		))
	}

	rows := []string{title, ""}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-2s %-28s %-11s %-26s %s", "", "Title", "Due", "Repeats", "Est.")))

	end := min(len(p.tasks), p.offset+p.visibleRows())
	for i := p.offset; i < end; i++ {
		t := p.tasks[i]
		cursor := "  "
		style := normalItemStyle
		if t.Completed() {
			style = doneItemStyle
		}
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		row := style.Render(fmt.Sprintf("%s%s %-28s %-11s %-26s %s",
			cursor,
			statusIcon(t.Status),
			truncate(t.Title, 28),
			t.DueDate.String(),
			truncate(describeRecurrence(t.Recurrence), 26),
			formatEstimate(t.EstimateMinutes),
		))
		rows = append(rows, row+renderTagDots(t.Tags))
	}
	if len(p.tasks) > end || p.offset > 0 {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %d-%d of %d", p.offset+1, end, len(p.tasks))))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete  x: done/undo"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
