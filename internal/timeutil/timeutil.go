package timeutil

import "time"

// DayLayout is the stored date format for timesheet rows.
const DayLayout = "2006-01-02"

func ParseDay(value string) (time.Time, error) {
	return time.Parse(DayLayout, value)
}

func FormatDay(value time.Time) string {
	return value.Format(DayLayout)
}

func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
