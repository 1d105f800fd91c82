package nutrition

import "time"

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekBounds returns the Monday and Sunday of the calendar week containing ref.
func WeekBounds(ref time.Time) (monday, sunday time.Time) {
	day := DateOf(ref)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	monday = day.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}

// PreviousWeekBounds returns the Monday and Sunday of the week before ref's.
func PreviousWeekBounds(ref time.Time) (monday, sunday time.Time) {
	thisMonday, _ := WeekBounds(ref)
	monday = thisMonday.AddDate(0, 0, -7)
	return monday, monday.AddDate(0, 0, 6)
}

func withinDates(t, from, to time.Time) bool {
	d := DateOf(t)
	return !d.Before(from) && !d.After(to)
}
