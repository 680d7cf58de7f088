package grid

import (
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/timegrid/pkg/calendar"
)

// OutOfRangePolicy selects what happens to an event that starts before the
// first visible slot.
type OutOfRangePolicy int

const (
	// PolicyDrop excludes any event whose start is outside the window.
	PolicyDrop OutOfRangePolicy = iota
	// PolicyClampStart clamps an early start to slot 0 when the event still
	// ends inside the window. Events starting after the window are dropped
	// under both policies.
	PolicyClampStart
)

func (p OutOfRangePolicy) String() string {
	if p == PolicyClampStart {
		return "clamp"
	}
	return "drop"
}

// ParseOutOfRangePolicy accepts "drop" or "clamp". The empty string is
// [PolicyDrop].
func ParseOutOfRangePolicy(s string) (OutOfRangePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop":
		return PolicyDrop, nil
	case "clamp", "clamp-start":
		return PolicyClampStart, nil
	}
	return PolicyDrop, fmt.Errorf("unknown out-of-range policy %q", s)
}

// Reason explains why an event was not placed on the grid.
type Reason int

const (
	// ReasonOffAxis means the event's start date is not one of the columns.
	ReasonOffAxis Reason = iota
	// ReasonBeforeRange means the event starts before the first slot.
	ReasonBeforeRange
	// ReasonAfterRange means the event starts at or after the end of the last slot.
	ReasonAfterRange
	// ReasonAllDay means the event has no time of day.
	ReasonAllDay
)

var reasonNames = [...]string{
	ReasonOffAxis:     "off-axis",
	ReasonBeforeRange: "before-range",
	ReasonAfterRange:  "after-range",
	ReasonAllDay:      "all-day",
}

func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return fmt.Sprintf("reason(%d)", int(r))
	}
	return reasonNames[r]
}

// MarshalText encodes r by name.
func (r Reason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// Exclusion records an event that could not be placed.
type Exclusion struct {
	EventIndex int    `json:"eventIndex"`
	EventID    string `json:"eventId,omitempty"`
	Title      string `json:"title,omitempty"`
	Reason     Reason `json:"reason"`
}

// Position is an event's place on the grid. EndSlot is the slot index the
// event ends in, so a 07:00-08:00 event on a 06:00 axis spans slots 2..4
// and occupies rows 2 and 3.
//
// EndSlot never leaves the grid. An event that runs past the last slot gets
// EndSlot = slotCount-1 and OpenEnd set, and then occupies the last row as
// well: 23:00-24:00 on a grid ending at 23:30 spans 34..35 and covers rows
// 34 and 35.
type Position struct {
	EventIndex int  `json:"eventIndex"` // index into the mapped event slice
	DayIndex   int  `json:"dayIndex"`
	StartSlot  int  `json:"startSlot"`
	EndSlot    int  `json:"endSlot"`
	OpenEnd    bool `json:"openEnd,omitempty"`
	Lane       int  `json:"lane"`
	LaneCount  int  `json:"laneCount"`
}

// Span returns the number of rows the event occupies, at least one.
func (p Position) Span() int {
	n := p.EndSlot - p.StartSlot
	if p.OpenEnd {
		n++
	}
	return max(1, n)
}

// End returns the exclusive end of the occupied interval.
func (p Position) End() int { return p.StartSlot + p.Span() }

// Overlaps reports whether p and o share a day and their occupied
// intervals intersect.
func (p Position) Overlaps(o Position) bool {
	return p.DayIndex == o.DayIndex && p.StartSlot < o.End() && o.StartSlot < p.End()
}

// Mapper places events on a grid.
type Mapper struct {
	// Location is the display time zone. Nil means UTC.
	Location *time.Location
	// Policy selects the treatment of events starting before the window.
	Policy OutOfRangePolicy
}

// Map returns the position of ev, or false when it is not visible.
func (m Mapper) Map(ev calendar.Event, days []Day, slots []Slot) (Position, bool) {
	p, _, ok := m.place(ev, days, slots)
	return p, ok
}

// MapAll maps every event. Positions carry the index of their event in
// events; exclusions are returned in input order. Lanes are not assigned.
func (m Mapper) MapAll(events []calendar.Event, days []Day, slots []Slot) ([]Position, []Exclusion) {
	positions := make([]Position, 0, len(events))
	var excluded []Exclusion
	for i, ev := range events {
		p, reason, ok := m.place(ev, days, slots)
		if !ok {
			excluded = append(excluded, Exclusion{EventIndex: i, EventID: ev.ID, Title: ev.Title, Reason: reason})
			continue
		}
		p.EventIndex = i
		positions = append(positions, p)
	}
	return positions, excluded
}

func (m Mapper) location() *time.Location {
	if m.Location == nil {
		return time.UTC
	}
	return m.Location
}

func (m Mapper) place(ev calendar.Event, days []Day, slots []Slot) (Position, Reason, bool) {
	loc := m.location()
	start := ev.Start.In(loc)
	day := calendar.DateOf(start)

	idx := dayIndex(days, day)
	if idx < 0 {
		return Position{}, ReasonOffAxis, false
	}
	if ev.AllDay {
		return Position{}, ReasonAllDay, false
	}
	if len(slots) == 0 {
		return Position{}, ReasonAfterRange, false
	}

	step := slotStep(slots)
	origin := slots[0].Minutes()
	slotCount := len(slots)

	startMin := wallMinutes(day, start) - origin
	endMin := wallMinutes(day, ev.End.In(loc)) - origin

	startSlot := floorDiv(startMin, step)
	endSlot := floorDiv(endMin, step)

	if startSlot >= slotCount {
		return Position{}, ReasonAfterRange, false
	}
	if startSlot < 0 {
		if m.Policy != PolicyClampStart || endMin <= 0 {
			return Position{}, ReasonBeforeRange, false
		}
		startSlot = 0
	}

	openEnd := endSlot >= slotCount
	if openEnd {
		endSlot = slotCount - 1
	}
	if endSlot < startSlot {
		endSlot = startSlot
	}

	return Position{DayIndex: idx, StartSlot: startSlot, EndSlot: endSlot, OpenEnd: openEnd}, 0, true
}

// wallMinutes returns the wall-clock minutes of t counted from midnight of
// day. Times on later dates keep counting past 1440 so that an event ending
// after midnight maps past the window instead of wrapping.
func wallMinutes(day calendar.Date, t time.Time) int {
	d := calendar.DateOf(t)
	offsetDays := int(d.In(time.UTC).Sub(day.In(time.UTC)).Hours() / 24)
	return offsetDays*24*60 + t.Hour()*60 + t.Minute()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
