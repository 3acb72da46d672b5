package domain

import "time"

// LookbackYears is the length of the trailing window in which any closed
// violation downgrades a system to AMBER.
const LookbackYears = 3

// DateOf truncates t to midnight UTC of its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LookbackStart returns the earliest end date that still falls inside the
// trailing window for asOf. The boundary date itself is inside the window.
func LookbackStart(asOf time.Time) time.Time {
	return DateOf(asOf).AddDate(-LookbackYears, 0, 0)
}
