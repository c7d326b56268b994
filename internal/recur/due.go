package recur

import "strings"

// IsDueToday reports whether task should show up on the given day.
//
// A direct match on DueDate always counts. Otherwise a repeating task is due
// on or after its anchor date according to its pattern. Monthly tasks whose
// anchor day does not exist in the month (31st in April) fall on the last day
// of that month.
func IsDueToday(task Task, today Date) bool {
	if task.DueDate.Equal(today) {
		return true
	}
	r := task.Recurrence
	if !r.Repeats() {
		return false
	}
	if today.Before(task.DueDate) {
		return false
	}

	switch r.Pattern {
	case PatternDaily:
		return true
	case PatternWeekly:
		return hasWeekday(r.WeekDays, WeekdayName(today.Weekday()))
	case PatternMonthly:
		anchor := task.DueDate.Day
		if today.Day == anchor {
			return true
		}
		return anchor > DaysInMonth(today.Year, today.Month) && today.IsLastOfMonth()
	}
	return false
}

func hasWeekday(days []string, name string) bool {
	for _, d := range days {
		if strings.EqualFold(strings.TrimSpace(d), name) {
			return true
		}
	}
	return false
}

// NextOccurrence returns the due date of the cycle after task's. Weekly is
// a fixed seven-day stride, not the next listed weekday.
func NextOccurrence(task Task) Date {
	return occurrence(task, 1)
}

// NextOccurrenceAfter returns the first cycle of task that falls after day.
// It matches NextOccurrence unless the anchor has fallen behind day.
func NextOccurrenceAfter(task Task, day Date) Date {
	next := occurrence(task, 1)
	for n := 2; next.After(task.DueDate) && !next.After(day); n++ {
		next = occurrence(task, n)
	}
	return next
}

// occurrence steps n cycles from the anchor. Monthly steps are taken from
// the anchor each time so a clamped month does not pull later ones back.
func occurrence(task Task, n int) Date {
	r := task.Recurrence
	if !r.Repeats() {
		return task.DueDate
	}
	switch r.Pattern {
	case PatternDaily:
		return task.DueDate.AddDays(n)
	case PatternWeekly:
		return task.DueDate.AddDays(7 * n)
	case PatternMonthly:
		return task.DueDate.AddMonths(n)
	}
	return task.DueDate
}
