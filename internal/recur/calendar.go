package recur

// DayActivity is one cell of the activity calendar.
type DayActivity struct {
	Date       Date
	Planned    int
	Completion float64
	Level      int // 0 (nothing) .. 4 (all planned tasks done)
}

// Activity lays out progress over the inclusive range [from, to]. Days with
// no entry are level 0.
func Activity(progress []DailyProgress, from, to Date) []DayActivity {
	if to.Before(from) {
		return nil
	}
	byDate := make(map[Date]DailyProgress, len(progress))
	for _, p := range progress {
		byDate[p.Date] = p
	}

	var out []DayActivity
	for d := from; !d.After(to); d = d.AddDays(1) {
		p := byDate[d]
		out = append(out, DayActivity{
			Date:       d,
			Planned:    p.TasksPlanned,
			Completion: p.Completion,
			Level:      activityLevel(p),
		})
	}
	return out
}

func activityLevel(p DailyProgress) int {
	switch {
	case p.TasksPlanned == 0 || p.Completion <= 0:
		return 0
	case p.Completion >= 1:
		return 4
	case p.Completion >= 0.66:
		return 3
	case p.Completion >= 0.33:
		return 2
	}
	return 1
}
