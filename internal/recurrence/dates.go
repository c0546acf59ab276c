// Package recurrence holds the pure scheduling math: expanding a recurrence
// definition into calendar dates and diffing a stored series against an
// edited definition. Nothing in here touches the database.
package recurrence

import (
	"time"

	"finance-scheduler-backend/internal/models"
)

// stepOf returns the calendar step for one period. Unknown periodicities
// fall back to monthly; callers validate at the API boundary, this default
// only guards stored rows with bad data.
func stepOf(p models.Periodicity) (months, days int) {
	switch p {
	case models.Daily:
		return 0, 1
	case models.Weekly:
		return 0, 7
	case models.Biweekly:
		return 0, 14
	case models.Monthly:
		return 1, 0
	case models.Bimonthly:
		return 2, 0
	case models.Quarterly:
		return 3, 0
	case models.Semiannual:
		return 6, 0
	case models.Annual:
		return 12, 0
	default:
		return 1, 0
	}
}

// Next returns the date one period after d.
func Next(d time.Time, p models.Periodicity) time.Time {
	months, days := stepOf(p)
	return d.AddDate(0, months, days)
}

// Nth returns the date n whole periods after start. Nth(start, p, 0) is
// start itself.
func Nth(start time.Time, p models.Periodicity, n int) time.Time {
	months, days := stepOf(p)
	return start.AddDate(0, n*months, n*days)
}

// Sequence returns every date of the series from start to end inclusive,
// in ascending order. Month-based steps are computed as start plus i whole
// calendar months, so the day-of-month is preserved wherever the target
// month has it (time.AddDate normalization applies otherwise). Identical
// inputs always produce identical output.
func Sequence(start, end time.Time, p models.Periodicity) []time.Time {
	if end.Before(start) {
		return nil
	}
	var dates []time.Time
	for i := 0; ; i++ {
		d := Nth(start, p, i)
		if d.After(end) {
			break
		}
		dates = append(dates, d)
	}
	return dates
}

// DateKey collapses a timestamp to its calendar day, for set membership
// checks between generated and stored dates.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Day normalizes a timestamp to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
