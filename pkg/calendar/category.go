package calendar

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category is the styling class of an event.
type Category int

const (
	// Manual covers events that match no other rule.
	Manual Category = iota
	// PracticeAppointment is a client session from the practice system.
	PracticeAppointment
	// ExternalCalendar is an event synced from an external calendar feed.
	ExternalCalendar
	// Holiday is an entry from a holiday calendar.
	Holiday
)

var categoryNames = [...]string{
	Manual:              "manual",
	PracticeAppointment: "practice",
	ExternalCalendar:    "external",
	Holiday:             "holiday",
}

// Categories lists every category in declaration order.
func Categories() []Category {
	return []Category{Manual, PracticeAppointment, ExternalCalendar, Holiday}
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory is the inverse of [Category.String]. Matching is
// case-insensitive.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range categoryNames {
		if name == s {
			return Category(i), nil
		}
	}
	return Manual, fmt.Errorf("unknown category %q", s)
}

// MarshalJSON encodes c by name.
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a category name.
func (c *Category) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
