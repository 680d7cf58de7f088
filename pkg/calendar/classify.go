package calendar

import (
	"slices"
	"strings"
)

// holidayIDMarker appears in Google's public holiday calendar IDs, e.g.
// "en.usa#holiday@group.v.calendar.google.com".
const holidayIDMarker = "#holiday@"

// Classifier assigns categories to events. The zero value classifies on
// source kinds and explicit markers only; use [DefaultClassifier] for the
// usual practice keyword.
type Classifier struct {
	PracticeKeywords  []string // case-insensitive title substrings
	PracticeCalendars []string // calendar IDs owned by the practice system
	HolidayCalendars  []string // calendar IDs of holiday feeds
	PracticeKinds     []string
	ExternalKinds     []string
	HolidayKinds      []string
}

// DefaultClassifier returns a classifier with the standard source kinds and
// the "Appointment" title keyword.
func DefaultClassifier() Classifier {
	return Classifier{
		PracticeKeywords: []string{"Appointment"},
		PracticeKinds:    []string{KindSimplePractice, KindPractice},
		ExternalKinds:    []string{KindGoogle, KindOutlook, KindApple, KindICS, KindExternal},
		HolidayKinds:     []string{KindHoliday, "holidays"},
	}
}

// Classify returns the category of ev. It is total and has no side effects.
func (c Classifier) Classify(ev Event) Category {
	kind := strings.ToLower(strings.TrimSpace(ev.Source.Kind))

	switch {
	case ev.Source.Holiday, containsFold(c.HolidayKinds, kind), c.isHolidayCalendar(ev.Source.CalendarID):
		return Holiday
	case containsFold(c.PracticeKinds, kind), ev.Source.CalendarID != "" && slices.Contains(c.PracticeCalendars, ev.Source.CalendarID), c.hasPracticeKeyword(ev.Title):
		return PracticeAppointment
	case containsFold(c.ExternalKinds, kind):
		return ExternalCalendar
	default:
		return Manual
	}
}

// ClassifyAll classifies events in order.
func (c Classifier) ClassifyAll(events []Event) []Category {
	out := make([]Category, len(events))
	for i, ev := range events {
		out[i] = c.Classify(ev)
	}
	return out
}

func (c Classifier) isHolidayCalendar(id string) bool {
	if id == "" {
		return false
	}
	return strings.Contains(id, holidayIDMarker) || slices.Contains(c.HolidayCalendars, id)
}

func (c Classifier) hasPracticeKeyword(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range c.PracticeKeywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	if s == "" {
		return false
	}
	return slices.ContainsFunc(list, func(v string) bool { return strings.EqualFold(v, s) })
}
