package grid

import (
	"time"

	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/errors"
)

// Supported day counts.
const (
	DailyView  = 1
	WeeklyView = 7
)

// Day is one column of the horizontal axis.
type Day struct {
	Index int           `json:"index"`
	Date  calendar.Date `json:"date"`
}

// Weekday returns the day of the week of the column's date.
func (d Day) Weekday() time.Weekday { return d.Date.Weekday() }

// GenerateDays returns dayCount columns anchored at ref. A weekly axis is
// normalized to the Monday of ref's week; a daily axis uses ref as-is.
func GenerateDays(ref calendar.Date, dayCount int) ([]Day, error) {
	var first calendar.Date
	switch dayCount {
	case DailyView:
		first = ref
	case WeeklyView:
		first = WeekStart(ref)
	default:
		return nil, errors.Configuration("day count %d not supported (want 1 or 7)", dayCount)
	}

	days := make([]Day, dayCount)
	for i := range days {
		days[i] = Day{Index: i, Date: first.AddDays(i)}
	}
	return days, nil
}

// WeekStart returns the Monday on or before d.
func WeekStart(d calendar.Date) calendar.Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// dayIndex returns the column whose date equals d, or -1.
func dayIndex(days []Day, d calendar.Date) int {
	for _, day := range days {
		if day.Date == d {
			return day.Index
		}
	}
	return -1
}
