package activity

import "time"

const lastMillisecond = 999 * int(time.Millisecond)

// Window closed interval [Start, End]
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains Start <= t <= End
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// WeekOf the Sunday 00:00:00.000 to Saturday 23:59:59.999 week holding ref, in ref's location
func WeekOf(ref time.Time) Window {
	y, m, d := ref.Date()
	d -= int(ref.Weekday())
	loc := ref.Location()
	return Window{
		Start: time.Date(y, m, d, 0, 0, 0, 0, loc),
		End:   time.Date(y, m, d+6, 23, 59, 59, lastMillisecond, loc),
	}
}

// DayWindow the calendar day holding ref, in ref's location
func DayWindow(ref time.Time) Window {
	y, m, d := ref.Date()
	loc := ref.Location()
	return Window{
		Start: time.Date(y, m, d, 0, 0, 0, 0, loc),
		End:   time.Date(y, m, d, 23, 59, 59, lastMillisecond, loc),
	}
}

// MonthWindow first day 00:00:00.000 to last day 23:59:59.999 of month
func MonthWindow(year int, month time.Month, loc *time.Location) Window {
	return Window{
		Start: time.Date(year, month, 1, 0, 0, 0, 0, loc),
		End:   time.Date(year, month+1, 0, 23, 59, 59, lastMillisecond, loc),
	}
}
