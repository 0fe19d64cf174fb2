// Package progress derives the spaced-review schedule and monthly reports
// from ledger timestamps. Everything here is pure; queries live in
// database/userwords.
package progress

import "time"

// ReviewOffsets are the ages in whole days at which an unmastered word is
// surfaced again.
var ReviewOffsets = []int{0, 1, 2, 4, 7, 15, 30, 90, 180, 240, 365}

// Window is a half-open UTC time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayWindows returns one day-long window per review offset, counted back
// from the UTC calendar day of now.
func DayWindows(now time.Time) []Window {
	today := StartOfDay(now)
	windows := make([]Window, 0, len(ReviewOffsets))
	for _, offset := range ReviewOffsets {
		start := today.AddDate(0, 0, -offset)
		windows = append(windows, Window{Start: start, End: start.AddDate(0, 0, 1)})
	}
	return windows
}

// DueForReview reports whether a word added at addedAt is scheduled on the
// day containing now.
func DueForReview(addedAt, now time.Time) bool {
	for _, w := range DayWindows(now) {
		if w.Contains(addedAt.UTC()) {
			return true
		}
	}
	return false
}
