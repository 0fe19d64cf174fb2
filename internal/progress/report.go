package progress

import (
	"errors"
	"time"
)

const (
	// LabelLayout renders "Mar 2024".
	LabelLayout = "Jan 2006"
	// KeyLayout matches the SQL month bucket ("2024-03").
	KeyLayout = "2006-01"
)

var ErrInvalidMonths = errors.New("months must be a positive integer")

// Month identifies one calendar month of a report.
type Month struct {
	Label string
	Key   string
	Start time.Time
}

// MonthlyReport holds three parallel sequences, oldest month first.
type MonthlyReport struct {
	Months        []string `json:"monthsArr"`
	WordsAdded    []int64  `json:"arrOfWords"`
	WordsMastered []int64  `json:"arrOfMastered"`
}

// StartOfMonth truncates t to the first instant of its UTC month.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthLabels lists the monthsBack months ending with the month of
// reference, oldest first.
func MonthLabels(reference time.Time, monthsBack int) ([]Month, error) {
	if monthsBack <= 0 {
		return nil, ErrInvalidMonths
	}
	current := StartOfMonth(reference)
	months := make([]Month, monthsBack)
	for i := 0; i < monthsBack; i++ {
		start := current.AddDate(0, i-(monthsBack-1), 0)
		months[i] = Month{
			Label: start.Format(LabelLayout),
			Key:   start.Format(KeyLayout),
			Start: start,
		}
	}
	return months, nil
}

// BuildMonthlyReport places per-month counts keyed by KeyLayout onto the
// given months. Keys outside the range are ignored; missing months are zero.
func BuildMonthlyReport(months []Month, added, mastered map[string]int64) MonthlyReport {
	report := MonthlyReport{
		Months:        make([]string, len(months)),
		WordsAdded:    make([]int64, len(months)),
		WordsMastered: make([]int64, len(months)),
	}
	for i, m := range months {
		report.Months[i] = m.Label
		report.WordsAdded[i] = added[m.Key]
		report.WordsMastered[i] = mastered[m.Key]
	}
	return report
}
