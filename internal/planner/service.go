// Package planner drives the recurrence engine from user actions and the
// daily rollover, and persists the results through a store.Backend.
package planner

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sadopc/streakr/internal/recur"
	"github.com/sadopc/streakr/internal/store"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrTitleRequired     = errors.New("title is required")
	ErrInvalidRecurrence = errors.New("invalid recurrence")
	ErrInvalidEstimate   = errors.New("estimate must not be negative")
	ErrInvalidURL        = errors.New("url must be an absolute http or https address")
	ErrTagExists         = errors.New("tag already exists")
)

// DefaultTagColor is used for tags created implicitly from task input.
const DefaultTagColor = "#7D56F4"

// TaskInput is the editable part of a task.
type TaskInput struct {
	Title           string
	Description     string
	DueDate         recur.Date // zero means today
	EstimateMinutes int
	Pattern         string
	WeekDays        []string
	EndDate         *recur.Date
	Tags            []string // tag names, created when missing
}

type Service struct {
	mu      sync.Mutex
	backend store.Backend
	clock   recur.Clock
	userID  string
	log     *logrus.Entry
	newID   func() string
	now     func() time.Time

	lastRollover recur.Date
}

type Option func(*Service)

func WithClock(c recur.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithLogger(l *logrus.Entry) Option {
	return func(s *Service) { s.log = l }
}

// WithIDs replaces the id generator.
func WithIDs(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

func New(backend store.Backend, userID string, opts ...Option) *Service {
	s := &Service{
		backend: backend,
		clock:   recur.SystemClock{},
		userID:  userID,
		log:     logrus.NewEntry(logrus.StandardLogger()),
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithFields(logrus.Fields{"component": "planner", "user": userID})
	return s
}

func (s *Service) UserID() string { return s.userID }

func (s *Service) Today() recur.Date {
	return s.clock.Today()
}

func (s *Service) Snapshot(ctx context.Context) (*store.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Service) load(ctx context.Context) (*store.Snapshot, error) {
	snap, err := s.backend.Load(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.userID, err)
	}
	return snap, nil
}

func (s *Service) save(ctx context.Context, snap *store.Snapshot, fields store.Field) error {
	if err := s.backend.Save(ctx, s.userID, *snap, fields); err != nil {
		return fmt.Errorf("save %s: %w", fields, err)
	}
	return nil
}

// DueToday lists the tasks that count toward today's plan, open ones first.
func (s *Service) DueToday(ctx context.Context) ([]recur.Task, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	today := s.Today()

	var due []recur.Task
	for _, t := range snap.Tasks {
		if recur.PlannedOn(t, today) {
			due = append(due, t)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		ci, cj := due[i].Completed(), due[j].Completed()
		if ci != cj {
			return !ci
		}
		return strings.ToLower(due[i].Title) < strings.ToLower(due[j].Title)
	})
	return due, nil
}

// ============================================================
// Tasks
// ============================================================

func (s *Service) CreateTask(ctx context.Context, in TaskInput) (recur.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return recur.Task{}, err
	}
	task := recur.Task{ID: s.newID(), Status: recur.StatusPending}
	fields, err := s.apply(&task, in, snap)
	if err != nil {
		return recur.Task{}, err
	}
	snap.Tasks = append(snap.Tasks, task)

	if err := s.save(ctx, snap, fields|store.FieldTasks); err != nil {
		return recur.Task{}, err
	}
	s.log.WithFields(logrus.Fields{
		"task":    task.ID,
		"due":     task.DueDate.String(),
		"pattern": patternOf(task),
	}).Info("task created")
	return task, nil
}

// UpdateTask replaces the editable fields of a task. Status and id are kept.
func (s *Service) UpdateTask(ctx context.Context, id string, in TaskInput) (recur.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return recur.Task{}, err
	}
	task, i := snap.Task(id)
	if i < 0 {
		return recur.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	fields, err := s.apply(&task, in, snap)
	if err != nil {
		return recur.Task{}, err
	}
	snap.Tasks[i] = task

	if err := s.save(ctx, snap, fields|store.FieldTasks); err != nil {
		return recur.Task{}, err
	}
	s.log.WithField("task", id).Info("task updated")
	return task, nil
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	_, i := snap.Task(id)
	if i < 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	snap.Tasks = append(snap.Tasks[:i:i], snap.Tasks[i+1:]...)

	if err := s.save(ctx, snap, store.FieldTasks); err != nil {
		return err
	}
	s.log.WithField("task", id).Info("task deleted")
	return nil
}

// apply validates in and writes it onto task. It returns the extra fields
// that changed, FieldTags when new tags had to be created.
func (s *Service) apply(task *recur.Task, in TaskInput, snap *store.Snapshot) (store.Field, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return 0, ErrTitleRequired
	}
	if in.EstimateMinutes < 0 {
		return 0, ErrInvalidEstimate
	}
	due := in.DueDate
	if due.IsZero() {
		due = s.Today()
	}
	rec, err := buildRecurrence(in, due)
	if err != nil {
		return 0, err
	}
	tags, created := s.resolveTags(in.Tags, snap)

	task.Title = title
	task.Description = strings.TrimSpace(in.Description)
	task.DueDate = due
	task.EstimateMinutes = in.EstimateMinutes
	task.Recurrence = rec
	task.Tags = tags

	if created {
		return store.FieldTags, nil
	}
	return 0, nil
}

func buildRecurrence(in TaskInput, due recur.Date) (*recur.Recurrence, error) {
	pattern, err := recur.ParsePattern(in.Pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecurrence, err)
	}
	if pattern == recur.PatternOnce {
		return nil, nil
	}

	r := &recur.Recurrence{Pattern: pattern}
	if pattern == recur.PatternWeekly {
		days, err := recur.NormalizeWeekDays(in.WeekDays)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRecurrence, err)
		}
		if len(days) == 0 {
			return nil, fmt.Errorf("%w: weekly tasks need at least one weekday", ErrInvalidRecurrence)
		}
		r.WeekDays = days
	}
	if in.EndDate != nil && !in.EndDate.IsZero() {
		if in.EndDate.Before(due) {
			return nil, fmt.Errorf("%w: end date %s is before due date %s", ErrInvalidRecurrence, in.EndDate, due)
		}
		end := *in.EndDate
		r.EndDate = &end
	}
	return r, nil
}

// resolveTags maps names to existing tags, creating the missing ones.
func (s *Service) resolveTags(names []string, snap *store.Snapshot) ([]recur.Tag, bool) {
	var out []recur.Tag
	created := false
	seen := make(map[string]bool)
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true

		tag, ok := findTag(snap.Tags, name)
		if !ok {
			tag = recur.Tag{ID: s.newID(), Name: name, Color: DefaultTagColor}
			snap.Tags = append(snap.Tags, tag)
			created = true
		}
		out = append(out, tag)
	}
	return out, created
}

func findTag(tags []recur.Tag, name string) (recur.Tag, bool) {
	for _, t := range tags {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return recur.Tag{}, false
}

func patternOf(t recur.Task) string {
	if t.Recurrence == nil {
		return string(recur.PatternOnce)
	}
	return string(t.Recurrence.Pattern)
}

// ============================================================
// Status, progress and streak
// ============================================================

// SetStatus changes a task's status. Completing a repeating task appends
// its next cycle. Today's progress and the streak are recomputed either way.
func (s *Service) SetStatus(ctx context.Context, id string, status recur.Status) (recur.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return recur.Task{}, err
	}
	task, i := snap.Task(id)
	if i < 0 {
		return recur.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	today := s.Today()
	prev := task.Status
	task.Status = status
	snap.Tasks[i] = task

	forked := false
	if status == recur.StatusCompleted && prev != recur.StatusCompleted {
		n := len(snap.Tasks)
		snap.Tasks = recur.OnRecurringTaskCompleted(task, snap.Tasks, today, s.newID)
		forked = len(snap.Tasks) > n
		task = recur.CompleteOn(task, today)
		snap.Tasks[i] = task
	}
	snap.Progress = recur.RecordProgress(snap.Progress, snap.Tasks, today)
	snap.Streak = recur.UpdateStreak(snap.Progress, snap.Streak, today)

	if err := s.save(ctx, snap, store.FieldTasks|store.FieldProgress|store.FieldStreak); err != nil {
		return recur.Task{}, err
	}
	s.log.WithFields(logrus.Fields{
		"task":   id,
		"from":   string(prev),
		"to":     string(status),
		"forked": forked,
		"streak": snap.Streak.CurrentStreak,
	}).Info("task status changed")
	return task, nil
}

// Rollover records today's progress and lets the streak expire when a day
// was missed. It is run at the configured rollover time and at startup.
func (s *Service) Rollover(ctx context.Context) (recur.StreakData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return recur.StreakData{}, err
	}
	today := s.Today()
	before := snap.Streak.CurrentStreak
	snap.Progress = recur.RecordProgress(snap.Progress, snap.Tasks, today)
	snap.Streak = recur.UpdateStreak(snap.Progress, snap.Streak, today)

	if err := s.save(ctx, snap, store.FieldProgress|store.FieldStreak); err != nil {
		return recur.StreakData{}, err
	}
	s.lastRollover = today
	entry := s.log.WithFields(logrus.Fields{
		"day":    today.String(),
		"streak": snap.Streak.CurrentStreak,
	})
	if before > 0 && snap.Streak.CurrentStreak == 0 {
		entry.Warn("streak broken")
	} else {
		entry.Info("rollover")
	}
	return snap.Streak, nil
}

// CatchUp runs Rollover unless it already ran today. It covers a machine
// that slept through the scheduled time.
func (s *Service) CatchUp(ctx context.Context) (bool, error) {
	s.mu.Lock()
	done := s.lastRollover.Equal(s.Today())
	s.mu.Unlock()
	if done {
		return false, nil
	}
	if _, err := s.Rollover(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) Calendar(ctx context.Context, from, to recur.Date) ([]recur.DayActivity, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return recur.Activity(snap.Progress, from, to), nil
}

// ============================================================
// Tags
// ============================================================

func (s *Service) CreateTag(ctx context.Context, name, color string) (recur.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return recur.Tag{}, ErrTitleRequired
	}
	snap, err := s.load(ctx)
	if err != nil {
		return recur.Tag{}, err
	}
	if _, ok := findTag(snap.Tags, name); ok {
		return recur.Tag{}, fmt.Errorf("tag %q: %w", name, ErrTagExists)
	}
	if color == "" {
		color = DefaultTagColor
	}
	tag := recur.Tag{ID: s.newID(), Name: name, Color: color}
	snap.Tags = append(snap.Tags, tag)

	if err := s.save(ctx, snap, store.FieldTags); err != nil {
		return recur.Tag{}, err
	}
	s.log.WithField("tag", name).Info("tag created")
	return tag, nil
}

// ============================================================
// Bookmarks
// ============================================================

func (s *Service) CreateBookmark(ctx context.Context, title, rawURL string) (store.Bookmark, error) {
	u, err := parseBookmarkURL(rawURL)
	if err != nil {
		return store.Bookmark{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = u.Host
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return store.Bookmark{}, err
	}
	b := store.Bookmark{ID: s.newID(), Title: title, URL: u.String(), CreatedAt: s.now().UTC()}
	snap.Bookmarks = append(snap.Bookmarks, b)

	if err := s.save(ctx, snap, store.FieldBookmarks); err != nil {
		return store.Bookmark{}, err
	}
	s.log.WithField("bookmark", b.URL).Info("bookmark created")
	return b, nil
}

func parseBookmarkURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return u, nil
}

func (s *Service) DeleteBookmark(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i, b := range snap.Bookmarks {
		if b.ID != id {
			continue
		}
		snap.Bookmarks = append(snap.Bookmarks[:i:i], snap.Bookmarks[i+1:]...)
		if err := s.save(ctx, snap, store.FieldBookmarks); err != nil {
			return err
		}
		s.log.WithField("bookmark", b.URL).Info("bookmark deleted")
		return nil
	}
	return fmt.Errorf("bookmark %s: %w", id, ErrNotFound)
}
