package recur

// Lookup returns the progress entry recorded for day.
func Lookup(progress []DailyProgress, day Date) (DailyProgress, bool) {
	for _, p := range progress {
		if p.Date.Equal(day) {
			return p, true
		}
	}
	return DailyProgress{}, false
}

// PlannedOn reports whether task counts toward day's plan. Completed records
// anchored before day belong to an earlier cycle and are skipped even though
// their recurrence still matches.
func PlannedOn(task Task, day Date) bool {
	if !IsDueToday(task, day) {
		return false
	}
	return !(task.Completed() && task.DueDate.Before(day))
}

// RecordProgress recomputes day's entry from tasks. The entry is replaced if
// present and appended otherwise, but only once something is planned.
// Entries are never removed.
func RecordProgress(progress []DailyProgress, tasks []Task, day Date) []DailyProgress {
	var planned, done int
	for _, t := range tasks {
		if !PlannedOn(t, day) {
			continue
		}
		planned++
		if t.Completed() {
			done++
		}
	}

	entry := DailyProgress{Date: day, TasksPlanned: planned, TasksCompleted: done}
	if planned > 0 {
		entry.Completion = float64(done) / float64(planned)
	}

	out := make([]DailyProgress, len(progress), len(progress)+1)
	copy(out, progress)
	for i := range out {
		if out[i].Date.Equal(day) {
			out[i] = entry
			return out
		}
	}
	if planned == 0 {
		return out
	}
	return append(out, entry)
}
