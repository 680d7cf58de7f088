package grid

import (
	"fmt"

	"github.com/matzehuels/timegrid/pkg/errors"
)

// DefaultSlotMinutes is the standard slot granularity.
const DefaultSlotMinutes = 30

// Slot is one row of the vertical time axis.
type Slot struct {
	Index        int  `json:"index"`
	Hour         int  `json:"hour"`
	Minute       int  `json:"minute"`
	HourBoundary bool `json:"hourBoundary"` // slot starts on the hour
}

// Minutes returns the slot's start as minutes since midnight.
func (s Slot) Minutes() int { return s.Hour*60 + s.Minute }

// Label formats the slot start as HH:MM.
func (s Slot) Label() string { return SlotLabel(s) }

// SlotLabel formats a slot start as HH:MM.
func SlotLabel(s Slot) string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

// GenerateSlots returns the 30-minute slots from startHour:00 through
// endHour:30. It fails with a configuration error when either hour is
// outside [0,23] or endHour < startHour.
func GenerateSlots(startHour, endHour int) ([]Slot, error) {
	return GenerateSlotsStep(startHour, endHour, DefaultSlotMinutes)
}

// GenerateSlotsStep is [GenerateSlots] with a custom granularity. The last
// slot starts at endHour:(60-slotMinutes). slotMinutes must divide 60.
func GenerateSlotsStep(startHour, endHour, slotMinutes int) ([]Slot, error) {
	if err := errors.ValidateHourRange(startHour, endHour); err != nil {
		return nil, err
	}
	if err := ValidateSlotMinutes(slotMinutes); err != nil {
		return nil, err
	}

	perHour := 60 / slotMinutes
	slots := make([]Slot, 0, (endHour-startHour+1)*perHour)
	for h := startHour; h <= endHour; h++ {
		for m := 0; m < 60; m += slotMinutes {
			slots = append(slots, Slot{
				Index:        len(slots),
				Hour:         h,
				Minute:       m,
				HourBoundary: m == 0,
			})
		}
	}
	return slots, nil
}

// ValidateSlotMinutes checks that n is a positive divisor of 60 no smaller
// than five minutes.
func ValidateSlotMinutes(n int) error {
	if n < 5 || n > 60 || 60%n != 0 {
		return errors.Configuration("slot minutes %d must divide 60 (5, 10, 15, 20, 30 or 60)", n)
	}
	return nil
}

// slotStep infers the granularity of slots, falling back to the default
// for single-slot axes.
func slotStep(slots []Slot) int {
	if len(slots) < 2 {
		return DefaultSlotMinutes
	}
	return slots[1].Minutes() - slots[0].Minutes()
}
