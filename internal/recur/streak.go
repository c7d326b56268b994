package recur

// UpdateStreak folds today's progress into prev.
//
// A day qualifies only when every planned task was completed. A miss does
// not reset the streak until a whole day has passed without a qualifying
// completion. A qualifying day extends the streak whenever a previous
// completion is on record and starts it at 1 otherwise. Calling it again after today was already counted returns prev
// unchanged.
func UpdateStreak(progress []DailyProgress, prev StreakData, today Date) StreakData {
	last := prev.LastCompletionDate
	if last != nil && last.Equal(today) {
		return prev
	}
	yesterday := today.AddDays(-1)

	entry, ok := Lookup(progress, today)
	if !ok || entry.Completion != 1 {
		if last != nil && last.Before(yesterday) {
			return StreakData{LongestStreak: prev.LongestStreak}
		}
		return copyStreak(prev)
	}

	current := 1
	if last != nil {
		current = prev.CurrentStreak + 1
	}
	longest := prev.LongestStreak
	if current > longest {
		longest = current
	}
	d := today
	return StreakData{
		CurrentStreak:      current,
		LongestStreak:      longest,
		LastCompletionDate: &d,
	}
}

func copyStreak(s StreakData) StreakData {
	if s.LastCompletionDate != nil {
		d := *s.LastCompletionDate
		s.LastCompletionDate = &d
	}
	return s
}
