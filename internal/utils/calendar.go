package utils

import (
	"time"
)

// DayStart returns local midnight of the calendar day containing t.
func DayStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DayRange returns [midnight, next midnight) for the day containing t.
func DayRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := DayStart(t, loc)
	return start, start.AddDate(0, 0, 1)
}

// AtClock places the wall-clock time of clock on the calendar day of day.
func AtClock(day time.Time, clock time.Time, loc *time.Location) time.Time {
	d := day.In(loc)
	c := clock.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DayStart(a, loc).Equal(DayStart(b, loc))
}

// WeekRange returns Monday 00:00 through the following Monday 00:00.
func WeekRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := DayStart(t, loc)
	offset := (int(start.Weekday()) + 6) % 7
	start = start.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

// MonthRange returns the first of the month through the first of the next month.
func MonthRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// DaysBetween counts calendar days in [start, end).
func DaysBetween(start, end time.Time, loc *time.Location) int {
	count := 0
	for d := DayStart(start, loc); d.Before(end); d = d.AddDate(0, 0, 1) {
		count++
	}
	return count
}
