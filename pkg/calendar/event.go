package calendar

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Source kinds recognized by [DefaultClassifier]. Sources may use any string;
// these are the ones the bundled event sources emit.
const (
	KindSimplePractice = "simplepractice"
	KindPractice       = "practice"
	KindGoogle         = "google"
	KindOutlook        = "outlook"
	KindApple          = "apple"
	KindICS            = "ics"
	KindExternal       = "external"
	KindHoliday        = "holiday"
	KindManual         = "manual"
)

// eventNamespace seeds deterministic IDs for events that arrive without one.
var eventNamespace = uuid.MustParse("5b8e2a43-6f0d-4c61-9a52-1d6f3a7c9e10")

// SourceHint describes where an event came from.
type SourceHint struct {
	Kind       string `json:"kind,omitempty"`       // e.g. "simplepractice", "google"
	CalendarID string `json:"calendarId,omitempty"` // provider calendar identifier
	Holiday    bool   `json:"holiday,omitempty"`    // explicit holiday marker
}

// Event is a single calendar entry. The interval is [Start, End).
type Event struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Start  time.Time  `json:"startTime"`
	End    time.Time  `json:"endTime"`
	Source SourceHint `json:"source"`
	Notes  []string   `json:"notes,omitempty"`
	AllDay bool       `json:"allDay,omitempty"`
}

// Duration returns End-Start, which may be zero or negative for
// degenerate input.
func (e Event) Duration() time.Duration { return e.End.Sub(e.Start) }

// TimeRange formats the event's interval as "HH:MM-HH:MM" in loc.
func (e Event) TimeRange(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf("%s-%s", e.Start.In(loc).Format("15:04"), e.End.In(loc).Format("15:04"))
}

// StableID returns e.ID, or a deterministic name-based UUID derived from the
// title, interval, and source when the ID is empty.
func (e Event) StableID() string {
	if e.ID != "" {
		return e.ID
	}
	name := fmt.Sprintf("%s|%d|%d|%s|%s", e.Title, e.Start.UnixNano(), e.End.UnixNano(), e.Source.Kind, e.Source.CalendarID)
	return uuid.NewSHA1(eventNamespace, []byte(name)).String()
}

// WithIDs returns a copy of events in which every empty ID has been replaced
// by [Event.StableID]. The input slice is not modified.
func WithIDs(events []Event) []Event {
	out := make([]Event, len(events))
	for i, ev := range events {
		ev.ID = ev.StableID()
		out[i] = ev
	}
	return out
}
