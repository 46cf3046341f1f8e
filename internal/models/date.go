package models

import "time"

const dateLayout = "2006-01-02"

// Date truncates t to a civil date at UTC midnight
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a civil date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Date(t), nil
}

// AddMonths adds n calendar months to a date, clamping to the last day of the
// target month (Jan 31 + 1 month = Feb 28/29)
func AddMonths(t time.Time, n int) time.Time {
	t = Date(t)
	y, m, d := t.Date()

	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}

	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)).Hours() / 24)
}
