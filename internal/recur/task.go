package recur

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusInProgress, StatusCompleted:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

type Pattern string

const (
	PatternOnce    Pattern = "once"
	PatternDaily   Pattern = "daily"
	PatternWeekly  Pattern = "weekly"
	PatternMonthly Pattern = "monthly"
)

func ParsePattern(s string) (Pattern, error) {
	switch p := Pattern(strings.ToLower(strings.TrimSpace(s))); p {
	case PatternOnce, PatternDaily, PatternWeekly, PatternMonthly:
		return p, nil
	case "":
		return PatternOnce, nil
	}
	return "", fmt.Errorf("unknown recurrence pattern %q", s)
}

type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Recurrence describes how a task repeats from its anchor (due) date.
type Recurrence struct {
	Pattern  Pattern  `json:"pattern"`
	WeekDays []string `json:"weekDays,omitempty"`
	EndDate  *Date    `json:"endDate,omitempty"`
}

// Repeats reports whether r describes more than a single occurrence.
func (r *Recurrence) Repeats() bool {
	return r != nil && r.Pattern != PatternOnce && r.Pattern != ""
}

func (r *Recurrence) clone() *Recurrence {
	if r == nil {
		return nil
	}
	c := &Recurrence{Pattern: r.Pattern}
	if r.WeekDays != nil {
		c.WeekDays = append([]string(nil), r.WeekDays...)
	}
	if r.EndDate != nil {
		end := *r.EndDate
		c.EndDate = &end
	}
	return c
}

type Task struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description,omitempty"`
	DueDate         Date        `json:"dueDate"`
	EstimateMinutes int         `json:"estimatedDuration,omitempty"`
	Status          Status      `json:"status"`
	Tags            []Tag       `json:"tags"`
	Recurrence      *Recurrence `json:"recurrence,omitempty"`
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	c := t
	if t.Tags != nil {
		c.Tags = append([]Tag(nil), t.Tags...)
	}
	c.Recurrence = t.Recurrence.clone()
	return c
}

func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

// DailyProgress is the completion record for one calendar day.
type DailyProgress struct {
	Date           Date    `json:"date"`
	TasksCompleted int     `json:"tasksCompleted"`
	TasksPlanned   int     `json:"tasksPlanned"`
	Completion     float64 `json:"completion"`
}

type StreakData struct {
	CurrentStreak      int   `json:"currentStreak"`
	LongestStreak      int   `json:"longestStreak"`
	LastCompletionDate *Date `json:"lastCompletionDate,omitempty"`
}

var weekdayNames = [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// WeekdayName returns the lowercase English name used in Recurrence.WeekDays.
func WeekdayName(w time.Weekday) string {
	return weekdayNames[w]
}

// NormalizeWeekDays lowercases names, accepts three-letter abbreviations,
// drops duplicates and keeps first-seen order.
func NormalizeWeekDays(days []string) ([]string, error) {
	seen := make(map[string]bool, len(days))
	var out []string
	for _, raw := range days {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		full := ""
		for _, wd := range weekdayNames {
			if name == wd || (len(name) == 3 && strings.HasPrefix(wd, name)) {
				full = wd
				break
			}
		}
		if full == "" {
			return nil, fmt.Errorf("unknown weekday %q", raw)
		}
		if !seen[full] {
			seen[full] = true
			out = append(out, full)
		}
	}
	return out, nil
}
