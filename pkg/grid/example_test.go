package grid_test

import (
	"fmt"
	"time"

	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/grid"
)

func ExampleGenerateSlots() {
	slots, _ := grid.GenerateSlots(6, 23)
	fmt.Println("Slots:", len(slots))
	fmt.Println("First:", slots[0].Label())
	fmt.Println("Last:", slots[len(slots)-1].Label())
	// Output:
	// Slots: 36
	// First: 06:00
	// Last: 23:30
}

func ExampleGenerateDays() {
	// A weekly axis always starts on Monday.
	wednesday := calendar.NewDate(2025, time.July, 16)
	days, _ := grid.GenerateDays(wednesday, grid.WeeklyView)
	fmt.Println(days[0].Date, days[0].Weekday())
	fmt.Println(days[6].Date, days[6].Weekday())
	// Output:
	// 2025-07-14 Monday
	// 2025-07-20 Sunday
}

func ExampleMapper_Map() {
	slots, _ := grid.GenerateSlots(6, 23)
	days, _ := grid.GenerateDays(calendar.NewDate(2025, time.July, 14), grid.WeeklyView)

	ev := calendar.Event{
		Title: "Appointment",
		Start: time.Date(2025, 7, 14, 7, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 7, 14, 8, 0, 0, 0, time.UTC),
	}
	p, ok := grid.Mapper{}.Map(ev, days, slots)
	fmt.Println(ok, p.DayIndex, p.StartSlot, p.EndSlot)
	// Output:
	// true 0 2 4
}

func ExampleAssignLanes() {
	lanes := grid.AssignLanes([]grid.Position{
		{EventIndex: 0, StartSlot: 0, EndSlot: 4},
		{EventIndex: 1, StartSlot: 2, EndSlot: 6},
		{EventIndex: 2, StartSlot: 5, EndSlot: 8},
	})
	for _, p := range lanes {
		fmt.Printf("event %d: lane %d of %d\n", p.EventIndex, p.Lane, p.LaneCount)
	}
	// Output:
	// event 0: lane 0 of 2
	// event 1: lane 1 of 2
	// event 2: lane 0 of 2
}
