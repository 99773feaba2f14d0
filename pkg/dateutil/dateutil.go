package dateutil

import "time"

// DayFormat is the calendar-day layout used for check-in bookkeeping.
// Comparing two day strings compares calendar days, not instants.
const DayFormat = "2006-01-02"

func Day(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

func Today() string {
	return Day(time.Now())
}

func Yesterday() string {
	return Day(time.Now().AddDate(0, 0, -1))
}

func IsYesterday(day string) bool {
	return day == Yesterday()
}

func IsToday(day string) bool {
	return day == Today()
}
