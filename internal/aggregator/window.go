package aggregator

import "time"

// WindowFunc decides whether a week-start timestamp (epoch seconds)
// falls inside the reporting window.
type WindowFunc func(weekStart int64) bool

// ExactWeek returns a window matching exactly the week whose start is
// the given boundary, compared on Unix seconds.
func ExactWeek(boundary time.Time) WindowFunc {
	target := boundary.Unix()
	return func(weekStart int64) bool {
		return weekStart == target
	}
}

// LastCompletedWeek returns a window for the most recent Saturday
// midnight in loc strictly before now's date. The boundary is computed
// explicitly so report behavior does not depend on the wall clock's
// position within the day.
func LastCompletedWeek(now time.Time, loc *time.Location) WindowFunc {
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	// Sunday backs up one day, Saturday a full week.
	daysBack := int(today.Weekday()) + 1
	saturday := today.AddDate(0, 0, -daysBack)
	return ExactWeek(saturday)
}
