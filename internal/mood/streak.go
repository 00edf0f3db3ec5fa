package mood

import "time"

// Streaks returns the current and the longest run of consecutive logging
// days. Adjacent entries continue a run only when their calendar days are
// exactly one apart, so two entries on the same day break the run.
//
// The current streak counts only when the newest entry is from today or
// yesterday relative to now.
func Streaks(entries []Entry, now time.Time) (current, longest int) {
	if len(entries) == 0 {
		return 0, 0
	}
	loc := now.Location()
	days := make([]int, len(entries))
	for i, e := range entries {
		days[i] = dayNumber(e.CreatedAt, loc)
	}

	if dayNumber(now, loc)-days[len(days)-1] <= 1 {
		current = 1
		for i := len(days) - 1; i > 0; i-- {
			if days[i]-days[i-1] != 1 {
				break
			}
			current++
		}
	}

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		if days[i]-days[i-1] == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return current, longest
}

// dayNumber counts civil days since the Unix epoch for t as seen in loc.
func dayNumber(t time.Time, loc *time.Location) int {
	y, m, d := t.In(loc).Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
