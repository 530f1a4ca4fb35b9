package domain

import "time"

// Clock fixes the run's notion of time once at pipeline start so repeated
// analysis within one run is repeatable. EOY is the 31st of December of
// the current year; QuarterOffset is the number of days since the first
// day of the current calendar quarter.
type Clock struct {
	Today         time.Time
	EOY           time.Time
	QuarterOffset int
}

// NewClock derives a run clock from now.
func NewClock(now time.Time) Clock {
	qmonth := ((int(now.Month())-1)/3)*3 + 1
	qstart := time.Date(now.Year(), time.Month(qmonth), 1, 0, 0, 0, 0, now.Location())
	return Clock{
		Today:         now,
		EOY:           time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location()),
		QuarterOffset: daysBetween(qstart, now),
	}
}

// Age computes age in years as whole 365-day blocks. This matches the
// upstream product's arithmetic, which does not special-case leap years.
func (c Clock) Age(dob time.Time) int {
	return daysBetween(dob, c.Today) / 365
}

// AgeEOY computes age at end of year, with the same arithmetic as Age.
func (c Clock) AgeEOY(dob time.Time) int {
	return daysBetween(dob, c.EOY) / 365
}

// DaysSince returns whole days from t to Today. Negative when t is in
// the future.
func (c Clock) DaysSince(t time.Time) int {
	return daysBetween(t, c.Today)
}

// DaysUntil returns whole days from Today to t. Negative when t has
// passed.
func (c Clock) DaysUntil(t time.Time) int {
	return daysBetween(c.Today, t)
}

// NewStarter reports whether a joining date falls inside the grace
// window ending today.
func (c Clock) NewStarter(joined time.Time, graceDays int) bool {
	return daysBetween(joined, c.Today) < graceDays
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
