package recur

import "github.com/google/uuid"

// OnRecurringTaskCompleted returns all with the next cycle of task appended.
// The completed record is left in place. The new cycle is the first one
// after today, so an overdue anchor does not leave a cycle that is already
// due. Nothing is appended when the task does not repeat, its end date is
// already behind today, or an open record for that cycle already exists.
// newID may be nil, in which case a random UUID is used.
func OnRecurringTaskCompleted(task Task, all []Task, today Date, newID func() string) []Task {
	out := make([]Task, len(all), len(all)+1)
	copy(out, all)

	r := task.Recurrence
	if !r.Repeats() {
		return out
	}
	if r.EndDate != nil && today.After(*r.EndDate) {
		return out
	}
	due := NextOccurrenceAfter(task, today)
	if hasOpenCycle(all, task, due) {
		return out
	}
	if newID == nil {
		newID = uuid.NewString
	}

	next := task.Clone()
	next.ID = newID()
	next.DueDate = due
	next.Status = StatusPending
	return append(out, next)
}

// hasOpenCycle reports whether all already holds an unfinished record of
// task's series due on due.
func hasOpenCycle(all []Task, task Task, due Date) bool {
	for _, t := range all {
		if t.ID == task.ID || t.Completed() || !t.DueDate.Equal(due) {
			continue
		}
		if t.Title == task.Title && t.Recurrence.Repeats() && t.Recurrence.Pattern == task.Recurrence.Pattern {
			return true
		}
	}
	return false
}

// CompleteOn marks task completed on today. A repeating record that is
// overdue but also due today moves to today, so the completion counts
// toward today's plan rather than a past cycle.
func CompleteOn(task Task, today Date) Task {
	task.Status = StatusCompleted
	if task.Recurrence.Repeats() && task.DueDate.Before(today) && IsDueToday(task, today) {
		task.DueDate = today
	}
	return task
}
