package store

import (
	"context"
	"strings"
	"time"

	"github.com/sadopc/streakr/internal/recur"
)

// Backend persists per-user documents. One implementation is picked at
// startup; callers never know which.
type Backend interface {
	Load(ctx context.Context, userID string) (*Snapshot, error)
	Save(ctx context.Context, userID string, snap Snapshot, fields Field) error
	Close() error
}

// Snapshot is the flat per-user document.
type Snapshot struct {
	Tasks     []recur.Task          `json:"tasks"`
	Progress  []recur.DailyProgress `json:"progress"`
	Streak    recur.StreakData      `json:"streak"`
	Tags      []recur.Tag           `json:"tags"`
	Bookmarks []Bookmark            `json:"bookmarks"`
}

// Task returns the task with id and its index, or -1.
func (s *Snapshot) Task(id string) (recur.Task, int) {
	for i, t := range s.Tasks {
		if t.ID == id {
			return t, i
		}
	}
	return recur.Task{}, -1
}

type Bookmark struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// Field selects parts of a Snapshot for a partial save.
type Field uint8

const (
	FieldTasks Field = 1 << iota
	FieldProgress
	FieldStreak
	FieldTags
	FieldBookmarks

	FieldAll = FieldTasks | FieldProgress | FieldStreak | FieldTags | FieldBookmarks
)

var fieldNames = []struct {
	f    Field
	name string
}{
	{FieldTasks, "tasks"},
	{FieldProgress, "progress"},
	{FieldStreak, "streak"},
	{FieldTags, "tags"},
	{FieldBookmarks, "bookmarks"},
}

func (f Field) Has(o Field) bool {
	return f&o != 0
}

// Names lists the document keys selected by f.
func (f Field) Names() []string {
	var out []string
	for _, fn := range fieldNames {
		if f.Has(fn.f) {
			out = append(out, fn.name)
		}
	}
	return out
}

func (f Field) String() string {
	if f == 0 {
		return "none"
	}
	return strings.Join(f.Names(), ",")
}
