package recur

import (
	"testing"
	"time"
)

func weekly(due string, days ...string) Task {
	return Task{
		ID:         "w",
		Title:      "Weekly",
		DueDate:    MustParseDate(due),
		Status:     StatusPending,
		Recurrence: &Recurrence{Pattern: PatternWeekly, WeekDays: days},
	}
}

func withPattern(due string, p Pattern) Task {
	return Task{
		ID:         "t",
		Title:      "Task",
		DueDate:    MustParseDate(due),
		Status:     StatusPending,
		Recurrence: &Recurrence{Pattern: p},
	}
}

// ============================================================
// IsDueToday
// ============================================================

func TestIsDueTodayDirectMatch(t *testing.T) {
	task := Task{DueDate: MustParseDate("2024-03-10")}
	if !IsDueToday(task, MustParseDate("2024-03-10")) {
		t.Fatal("task due today should be due")
	}
	if IsDueToday(task, MustParseDate("2024-03-11")) {
		t.Fatal("one-off task should not be due the next day")
	}

	// direct match wins even for a weekly task on an unlisted day
	w := weekly("2024-03-10", "monday")
	if !IsDueToday(w, MustParseDate("2024-03-10")) {
		t.Fatal("direct match should ignore recurrence")
	}
}

func TestIsDueTodayOnceIgnored(t *testing.T) {
	task := withPattern("2024-03-10", PatternOnce)
	if IsDueToday(task, MustParseDate("2024-03-11")) {
		t.Fatal("once should behave like no recurrence")
	}
}

func TestIsDueTodayBeforeAnchor(t *testing.T) {
	task := withPattern("2024-03-10", PatternDaily)
	if IsDueToday(task, MustParseDate("2024-03-09")) {
		t.Fatal("recurrence cannot start before its anchor date")
	}
}

func TestIsDueTodayDaily(t *testing.T) {
	task := withPattern("2024-01-01", PatternDaily)
	for d := MustParseDate("2024-01-01"); d.Before(MustParseDate("2024-04-01")); d = d.AddDays(1) {
		if !IsDueToday(task, d) {
			t.Fatalf("daily task should be due on %s", d)
		}
	}
}

func TestIsDueTodayWeekly(t *testing.T) {
	task := weekly("2024-01-01", "monday", "Wednesday", "friday")
	want := map[time.Weekday]bool{time.Monday: true, time.Wednesday: true, time.Friday: true}

	for d := MustParseDate("2024-01-02"); d.Before(MustParseDate("2024-02-15")); d = d.AddDays(1) {
		got := IsDueToday(task, d)
		if got != want[d.Weekday()] {
			t.Errorf("IsDueToday(%s, %s) = %v", d, d.Weekday(), got)
		}
	}
}

func TestIsDueTodayWeeklyEmptySet(t *testing.T) {
	task := weekly("2024-01-01")
	for d := MustParseDate("2024-01-02"); d.Before(MustParseDate("2024-01-10")); d = d.AddDays(1) {
		if IsDueToday(task, d) {
			t.Fatalf("weekly task without days should never be due (got %s)", d)
		}
	}
}

func TestIsDueTodayMonthly(t *testing.T) {
	task := withPattern("2024-01-15", PatternMonthly)
	tests := []struct {
		day  string
		want bool
	}{
		{"2024-02-15", true},
		{"2024-02-14", false},
		{"2024-03-15", true},
		{"2025-01-15", true},
		{"2024-03-16", false},
	}
	for _, tt := range tests {
		if got := IsDueToday(task, MustParseDate(tt.day)); got != tt.want {
			t.Errorf("IsDueToday(monthly 15th, %s) = %v, want %v", tt.day, got, tt.want)
		}
	}
}

func TestIsDueTodayMonthlyClampsToMonthEnd(t *testing.T) {
	task := withPattern("2024-01-31", PatternMonthly)
	tests := []struct {
		day  string
		want bool
	}{
		{"2024-02-29", true},
		{"2024-02-28", false},
		{"2024-03-31", true},
		{"2024-03-30", false},
		{"2024-04-30", true},
		{"2024-04-29", false},
		{"2025-02-28", true},
	}
	for _, tt := range tests {
		if got := IsDueToday(task, MustParseDate(tt.day)); got != tt.want {
			t.Errorf("IsDueToday(monthly 31st, %s) = %v, want %v", tt.day, got, tt.want)
		}
	}
}

func TestIsDueTodayUnknownPattern(t *testing.T) {
	task := withPattern("2024-01-01", Pattern("yearly"))
	if IsDueToday(task, MustParseDate("2024-01-02")) {
		t.Fatal("unknown pattern should never be due")
	}
}

// ============================================================
// NextOccurrence
// ============================================================

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name string
		task Task
		want string
	}{
		{"no recurrence", Task{DueDate: MustParseDate("2024-01-31")}, "2024-01-31"},
		{"once", withPattern("2024-01-31", PatternOnce), "2024-01-31"},
		{"daily month rollover", withPattern("2024-01-31", PatternDaily), "2024-02-01"},
		{"daily year rollover", withPattern("2024-12-31", PatternDaily), "2025-01-01"},
		{"weekly fixed stride", weekly("2024-01-03", "monday"), "2024-01-10"},
		{"monthly", withPattern("2024-01-15", PatternMonthly), "2024-02-15"},
		{"monthly clamp leap", withPattern("2024-01-31", PatternMonthly), "2024-02-29"},
		{"monthly clamp non-leap", withPattern("2023-01-31", PatternMonthly), "2023-02-28"},
		{"unknown", withPattern("2024-01-31", Pattern("hourly")), "2024-01-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextOccurrence(tt.task); got.String() != tt.want {
				t.Fatalf("NextOccurrence = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNextOccurrenceAfter(t *testing.T) {
	tests := []struct {
		name string
		task Task
		day  string
		want string
	}{
		{"anchor today", withPattern("2024-03-10", PatternDaily), "2024-03-10", "2024-03-11"},
		{"anchor ahead", withPattern("2024-03-12", PatternDaily), "2024-03-10", "2024-03-13"},
		{"daily overdue", withPattern("2024-03-07", PatternDaily), "2024-03-10", "2024-03-11"},
		{"weekly overdue", weekly("2024-03-04", "monday"), "2024-03-13", "2024-03-18"},
		{"weekly overdue on due day", weekly("2024-03-04", "monday"), "2024-03-11", "2024-03-18"},
		{"monthly keeps anchor day", withPattern("2024-01-31", PatternMonthly), "2024-03-05", "2024-03-31"},
		{"once", withPattern("2024-01-31", PatternOnce), "2024-03-10", "2024-01-31"},
		{"unknown", withPattern("2024-01-31", Pattern("hourly")), "2024-03-10", "2024-01-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrenceAfter(tt.task, MustParseDate(tt.day))
			if got.String() != tt.want {
				t.Fatalf("NextOccurrenceAfter = %s, want %s", got, tt.want)
			}
		})
	}
}

// ============================================================
// OnRecurringTaskCompleted
// ============================================================

func seqID() func() string {
	n := 0
	return func() string {
		n++
		return "next-" + string(rune('0'+n))
	}
}

func TestForkWeeklyAppendsNextOccurrence(t *testing.T) {
	task := weekly("2024-01-01", "monday")
	task.Description = "gym"
	task.EstimateMinutes = 45
	task.Tags = []Tag{{ID: "h", Name: "health", Color: "#2ECC71"}}
	task.Status = StatusCompleted
	other := Task{ID: "o", DueDate: MustParseDate("2024-01-01")}
	all := []Task{task, other}

	out := OnRecurringTaskCompleted(task, all, MustParseDate("2024-01-01"), seqID())
	if len(out) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(out))
	}
	if out[0].ID != "w" || out[0].Status != StatusCompleted {
		t.Fatal("completed record should stay in place")
	}

	next := out[2]
	if next.ID == task.ID || next.ID != "next-1" {
		t.Fatalf("new task should get a fresh id, got %q", next.ID)
	}
	if next.DueDate.String() != "2024-01-08" {
		t.Fatalf("next due = %s, want 2024-01-08", next.DueDate)
	}
	if next.Status != StatusPending {
		t.Fatalf("next status = %s", next.Status)
	}
	if next.Title != task.Title || next.Description != "gym" || next.EstimateMinutes != 45 {
		t.Fatalf("fields not carried over: %+v", next)
	}
	if len(next.Tags) != 1 || next.Tags[0].Name != "health" {
		t.Fatalf("tags not carried over: %+v", next.Tags)
	}
	if next.Recurrence == nil || next.Recurrence.Pattern != PatternWeekly {
		t.Fatal("recurrence not carried over")
	}
}

func TestForkDeepCopies(t *testing.T) {
	end := MustParseDate("2024-12-31")
	task := weekly("2024-01-01", "monday")
	task.Recurrence.EndDate = &end
	task.Tags = []Tag{{ID: "a", Name: "a"}}
	all := []Task{task}

	out := OnRecurringTaskCompleted(task, all, MustParseDate("2024-01-01"), nil)
	next := out[1]
	next.Recurrence.WeekDays[0] = "friday"
	*next.Recurrence.EndDate = MustParseDate("2030-01-01")
	next.Tags[0].Name = "changed"

	if all[0].Recurrence.WeekDays[0] != "monday" {
		t.Fatal("week days aliased")
	}
	if all[0].Recurrence.EndDate.String() != "2024-12-31" {
		t.Fatal("end date aliased")
	}
	if all[0].Tags[0].Name != "a" {
		t.Fatal("tags aliased")
	}
	if next.ID == "" {
		t.Fatal("default id generator should produce an id")
	}
}

func TestForkDoesNotMutateInput(t *testing.T) {
	task := withPattern("2024-01-01", PatternDaily)
	all := make([]Task, 1, 10) // spare capacity must not be written through
	all[0] = task

	out := OnRecurringTaskCompleted(task, all, MustParseDate("2024-01-01"), seqID())
	if len(all) != 1 {
		t.Fatal("input length changed")
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(out))
	}
	if all[:2][1].ID == out[1].ID {
		t.Fatal("fork wrote into the caller's backing array")
	}
}

func TestForkEndDatePassed(t *testing.T) {
	end := MustParseDate("2024-01-31")
	task := weekly("2024-01-29", "monday")
	task.Recurrence.EndDate = &end
	all := []Task{task}

	out := OnRecurringTaskCompleted(task, all, MustParseDate("2024-02-01"), seqID())
	if len(out) != 1 {
		t.Fatalf("no occurrence should be created after end date, got %d tasks", len(out))
	}

	// end date itself is inclusive
	out = OnRecurringTaskCompleted(task, all, end, seqID())
	if len(out) != 2 {
		t.Fatalf("completing on the end date should still fork, got %d tasks", len(out))
	}
}

func TestForkNonRecurring(t *testing.T) {
	for _, task := range []Task{
		{ID: "plain", DueDate: MustParseDate("2024-01-01")},
		withPattern("2024-01-01", PatternOnce),
	} {
		out := OnRecurringTaskCompleted(task, []Task{task}, MustParseDate("2024-01-01"), seqID())
		if len(out) != 1 {
			t.Fatalf("%s: non-recurring task should not fork", task.ID)
		}
	}
}

func TestForkMonthlyClamp(t *testing.T) {
	task := withPattern("2024-01-31", PatternMonthly)
	out := OnRecurringTaskCompleted(task, []Task{task}, MustParseDate("2024-01-31"), seqID())
	if got := out[1].DueDate.String(); got != "2024-02-29" {
		t.Fatalf("next monthly due = %s, want 2024-02-29", got)
	}
}

func TestForkOverdueAnchorSkipsPastCycles(t *testing.T) {
	task := withPattern("2024-03-07", PatternDaily)
	task.Status = StatusCompleted
	out := OnRecurringTaskCompleted(task, []Task{task}, MustParseDate("2024-03-10"), seqID())
	if len(out) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(out))
	}
	if got := out[1].DueDate.String(); got != "2024-03-11" {
		t.Fatalf("next due = %s, want 2024-03-11", got)
	}
}

func TestForkSkipsExistingOpenCycle(t *testing.T) {
	task := withPattern("2024-03-10", PatternDaily)
	open := task.Clone()
	open.ID = "open"
	open.DueDate = MustParseDate("2024-03-11")
	all := []Task{task, open}

	out := OnRecurringTaskCompleted(task, all, MustParseDate("2024-03-10"), seqID())
	if len(out) != 2 {
		t.Fatalf("open cycle already exists, got %d tasks", len(out))
	}

	// a finished record on that day does not block the fork
	all[1].Status = StatusCompleted
	out = OnRecurringTaskCompleted(task, all, MustParseDate("2024-03-10"), seqID())
	if len(out) != 3 {
		t.Fatalf("expected a new cycle, got %d tasks", len(out))
	}

	// neither does a different series with the same date
	all[1].Status = StatusPending
	all[1].Title = "Other"
	out = OnRecurringTaskCompleted(task, all, MustParseDate("2024-03-10"), seqID())
	if len(out) != 3 {
		t.Fatalf("unrelated task should not block the fork, got %d tasks", len(out))
	}
}

func TestCompleteOn(t *testing.T) {
	today := MustParseDate("2024-03-10")
	tests := []struct {
		name string
		task Task
		want string
	}{
		{"overdue daily moves to today", withPattern("2024-03-07", PatternDaily), "2024-03-10"},
		{"due today stays", withPattern("2024-03-10", PatternDaily), "2024-03-10"},
		{"overdue weekly not due today stays", weekly("2024-03-04", "monday"), "2024-03-04"},
		{"overdue one-off stays", Task{ID: "p", DueDate: MustParseDate("2024-03-07")}, "2024-03-07"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompleteOn(tt.task, today)
			if !got.Completed() {
				t.Fatal("task should be completed")
			}
			if got.DueDate.String() != tt.want {
				t.Fatalf("due = %s, want %s", got.DueDate, tt.want)
			}
		})
	}
}

// ============================================================
// UpdateStreak
// ============================================================

func datePtr(s string) *Date {
	d := MustParseDate(s)
	return &d
}

func progressFor(day string, completed, planned int) []DailyProgress {
	p := DailyProgress{Date: MustParseDate(day), TasksCompleted: completed, TasksPlanned: planned}
	if planned > 0 {
		p.Completion = float64(completed) / float64(planned)
	}
	return []DailyProgress{p}
}

func streakEqual(a, b StreakData) bool {
	if a.CurrentStreak != b.CurrentStreak || a.LongestStreak != b.LongestStreak {
		return false
	}
	if (a.LastCompletionDate == nil) != (b.LastCompletionDate == nil) {
		return false
	}
	return a.LastCompletionDate == nil || a.LastCompletionDate.Equal(*b.LastCompletionDate)
}

func TestUpdateStreak(t *testing.T) {
	const today = "2024-05-10"
	tests := []struct {
		name     string
		progress []DailyProgress
		prev     StreakData
		want     StreakData
	}{
		{
			name:     "first qualifying day",
			progress: progressFor(today, 3, 3),
			prev:     StreakData{},
			want:     StreakData{1, 1, datePtr(today)},
		},
		{
			name:     "continues from yesterday",
			progress: progressFor(today, 2, 2),
			prev:     StreakData{5, 5, datePtr("2024-05-09")},
			want:     StreakData{6, 6, datePtr(today)},
		},
		{
			name:     "continues below longest",
			progress: progressFor(today, 1, 1),
			prev:     StreakData{2, 9, datePtr("2024-05-09")},
			want:     StreakData{3, 9, datePtr(today)},
		},
		{
			name:     "broken after gap with no entry",
			progress: nil,
			prev:     StreakData{6, 6, datePtr("2024-05-07")},
			want:     StreakData{0, 6, nil},
		},
		{
			name:     "partial day after gap also breaks",
			progress: progressFor(today, 1, 2),
			prev:     StreakData{4, 7, datePtr("2024-05-01")},
			want:     StreakData{0, 7, nil},
		},
		{
			name:     "miss within grace window keeps streak",
			progress: progressFor(today, 1, 2),
			prev:     StreakData{4, 4, datePtr("2024-05-09")},
			want:     StreakData{4, 4, datePtr("2024-05-09")},
		},
		{
			name:     "no history stays empty",
			progress: nil,
			prev:     StreakData{},
			want:     StreakData{},
		},
		{
			name:     "nothing planned does not qualify",
			progress: progressFor(today, 0, 0),
			prev:     StreakData{1, 1, datePtr("2024-05-09")},
			want:     StreakData{1, 1, datePtr("2024-05-09")},
		},
		{
			name:     "already counted today",
			progress: progressFor(today, 2, 2),
			prev:     StreakData{3, 6, datePtr(today)},
			want:     StreakData{3, 6, datePtr(today)},
		},
		{
			name:     "qualifying after a reset keeps longest",
			progress: progressFor(today, 1, 1),
			prev:     StreakData{0, 6, datePtr("2024-05-01")},
			want:     StreakData{1, 6, datePtr(today)},
		},
		{
			name:     "qualifying with stale last completion continues",
			progress: progressFor(today, 1, 1),
			prev:     StreakData{5, 5, datePtr("2024-05-07")},
			want:     StreakData{6, 6, datePtr(today)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpdateStreak(tt.progress, tt.prev, MustParseDate(today))
			if !streakEqual(got, tt.want) {
				t.Fatalf("UpdateStreak = %+v (last %v), want %+v (last %v)",
					got, got.LastCompletionDate, tt.want, tt.want.LastCompletionDate)
			}
		})
	}
}

func TestUpdateStreakIdempotent(t *testing.T) {
	today := MustParseDate("2024-05-10")
	progress := progressFor("2024-05-10", 4, 4)
	s := UpdateStreak(progress, StreakData{5, 5, datePtr("2024-05-09")}, today)
	for i := 0; i < 3; i++ {
		s = UpdateStreak(progress, s, today)
	}
	if s.CurrentStreak != 6 || s.LongestStreak != 6 {
		t.Fatalf("repeated updates double counted: %+v", s)
	}
}

func TestUpdateStreakDoesNotAliasPrev(t *testing.T) {
	prev := StreakData{4, 4, datePtr("2024-05-09")}
	got := UpdateStreak(nil, prev, MustParseDate("2024-05-10"))
	*got.LastCompletionDate = MustParseDate("2000-01-01")
	if prev.LastCompletionDate.String() != "2024-05-09" {
		t.Fatal("result shares LastCompletionDate with prev")
	}
}

// ============================================================
// RecordProgress
// ============================================================

func TestRecordProgress(t *testing.T) {
	day := MustParseDate("2024-01-03")
	tasks := []Task{
		{ID: "a", DueDate: day, Status: StatusCompleted},
		{ID: "b", DueDate: day, Status: StatusPending},
		{ID: "c", DueDate: MustParseDate("2024-01-04"), Status: StatusPending},
		withPattern("2024-01-01", PatternDaily),
	}
	// completed daily record from an earlier cycle does not count again
	old := withPattern("2024-01-02", PatternDaily)
	old.ID = "old"
	old.Status = StatusCompleted
	tasks = append(tasks, old)

	out := RecordProgress(nil, tasks, day)
	if len(out) != 1 {
		t.Fatalf("expected one entry, got %d", len(out))
	}
	p := out[0]
	if p.TasksPlanned != 3 || p.TasksCompleted != 1 {
		t.Fatalf("planned/completed = %d/%d, want 3/1", p.TasksPlanned, p.TasksCompleted)
	}
	if p.Completion < 0.333 || p.Completion > 0.334 {
		t.Fatalf("completion = %f", p.Completion)
	}
}

func TestRecordProgressReplacesEntry(t *testing.T) {
	day := MustParseDate("2024-01-03")
	prior := []DailyProgress{
		{Date: MustParseDate("2024-01-02"), TasksCompleted: 1, TasksPlanned: 1, Completion: 1},
		{Date: day, TasksCompleted: 0, TasksPlanned: 2},
	}
	tasks := []Task{
		{ID: "a", DueDate: day, Status: StatusCompleted},
		{ID: "b", DueDate: day, Status: StatusCompleted},
	}
	out := RecordProgress(prior, tasks, day)
	if len(out) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(out))
	}
	if out[1].Completion != 1 || out[1].TasksCompleted != 2 {
		t.Fatalf("entry not replaced: %+v", out[1])
	}
	if prior[1].TasksCompleted != 0 {
		t.Fatal("input slice was mutated")
	}
}

func TestRecordProgressNeverDeletes(t *testing.T) {
	day := MustParseDate("2024-01-03")
	prior := []DailyProgress{{Date: day, TasksCompleted: 1, TasksPlanned: 1, Completion: 1}}

	// every task removed: entry stays, zeroed
	out := RecordProgress(prior, nil, day)
	if len(out) != 1 {
		t.Fatalf("entry removed: %+v", out)
	}
	if out[0].TasksPlanned != 0 || out[0].Completion != 0 {
		t.Fatalf("entry not recomputed: %+v", out[0])
	}

	// nothing planned and no entry: nothing appended
	if out := RecordProgress(nil, nil, day); len(out) != 0 {
		t.Fatalf("unexpected entry: %+v", out)
	}
}

// ============================================================
// Activity calendar
// ============================================================

func TestActivity(t *testing.T) {
	progress := []DailyProgress{
		{Date: MustParseDate("2024-01-01"), TasksPlanned: 2, TasksCompleted: 2, Completion: 1},
		{Date: MustParseDate("2024-01-03"), TasksPlanned: 4, TasksCompleted: 1, Completion: 0.25},
		{Date: MustParseDate("2024-01-04"), TasksPlanned: 2, TasksCompleted: 1, Completion: 0.5},
		{Date: MustParseDate("2024-01-05"), TasksPlanned: 4, TasksCompleted: 3, Completion: 0.75},
	}
	days := Activity(progress, MustParseDate("2024-01-01"), MustParseDate("2024-01-05"))
	if len(days) != 5 {
		t.Fatalf("expected 5 days, got %d", len(days))
	}
	wantLevels := []int{4, 0, 1, 2, 3}
	for i, want := range wantLevels {
		if days[i].Level != want {
			t.Errorf("day %s level = %d, want %d", days[i].Date, days[i].Level, want)
		}
	}
	if days[1].Planned != 0 {
		t.Fatal("missing day should have nothing planned")
	}

	if Activity(progress, MustParseDate("2024-01-05"), MustParseDate("2024-01-01")) != nil {
		t.Fatal("reversed range should be empty")
	}
}

// ============================================================
// Parsing helpers
// ============================================================

func TestNormalizeWeekDays(t *testing.T) {
	got, err := NormalizeWeekDays([]string{"Monday", " wed ", "monday", "", "FRI"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"monday", "wednesday", "friday"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	if _, err := NormalizeWeekDays([]string{"someday"}); err == nil {
		t.Fatal("expected error for unknown weekday")
	}
}

func TestParsePatternAndStatus(t *testing.T) {
	if p, err := ParsePattern("Weekly"); err != nil || p != PatternWeekly {
		t.Fatalf("ParsePattern(Weekly) = %q, %v", p, err)
	}
	if p, err := ParsePattern(""); err != nil || p != PatternOnce {
		t.Fatalf("empty pattern should be once, got %q, %v", p, err)
	}
	if _, err := ParsePattern("yearly"); err == nil {
		t.Fatal("expected error for yearly")
	}
	if s, err := ParseStatus("In-Progress"); err != nil || s != StatusInProgress {
		t.Fatalf("ParseStatus = %q, %v", s, err)
	}
	if _, err := ParseStatus("done"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestWeekdayName(t *testing.T) {
	if WeekdayName(time.Sunday) != "sunday" || WeekdayName(time.Saturday) != "saturday" {
		t.Fatal("weekday names out of order")
	}
}
