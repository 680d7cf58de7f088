package grid

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/errors"
)

var monday = calendar.NewDate(2025, time.July, 14)

func at(d calendar.Date, hour, minute int) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, time.UTC)
}

func TestGenerateSlots(t *testing.T) {
	slots, err := GenerateSlots(6, 23)
	if err != nil {
		t.Fatalf("GenerateSlots() error = %v", err)
	}
	if len(slots) != 36 {
		t.Fatalf("len(slots) = %d, want 36", len(slots))
	}
	if got := slots[0].Label(); got != "06:00" {
		t.Errorf("first slot = %s, want 06:00", got)
	}
	if got := slots[35].Label(); got != "23:30" {
		t.Errorf("last slot = %s, want 23:30", got)
	}
	for i, s := range slots {
		if s.Index != i {
			t.Errorf("slots[%d].Index = %d", i, s.Index)
		}
		if s.HourBoundary != (s.Minute == 0) {
			t.Errorf("slots[%d].HourBoundary = %v for minute %d", i, s.HourBoundary, s.Minute)
		}
		if i > 0 && s.Minutes() <= slots[i-1].Minutes() {
			t.Errorf("slots not strictly increasing at %d", i)
		}
	}

	again, _ := GenerateSlots(6, 23)
	if !reflect.DeepEqual(slots, again) {
		t.Error("GenerateSlots() is not deterministic")
	}
}

func TestGenerateSlotsErrors(t *testing.T) {
	tests := []struct {
		start, end, step int
	}{
		{9, 8, 30},
		{-1, 8, 30},
		{6, 24, 30},
		{6, 23, 0},
		{6, 23, 7},
		{6, 23, 90},
	}
	for _, tt := range tests {
		_, err := GenerateSlotsStep(tt.start, tt.end, tt.step)
		if !errors.IsConfiguration(err) {
			t.Errorf("GenerateSlotsStep(%d, %d, %d) error = %v, want configuration error", tt.start, tt.end, tt.step, err)
		}
	}
}

func TestGenerateSlotsStep(t *testing.T) {
	tests := []struct {
		step      int
		wantCount int
		wantLast  string
	}{
		{15, 72, "23:45"},
		{30, 36, "23:30"},
		{60, 18, "23:00"},
	}
	for _, tt := range tests {
		slots, err := GenerateSlotsStep(6, 23, tt.step)
		if err != nil {
			t.Fatalf("step %d: %v", tt.step, err)
		}
		if len(slots) != tt.wantCount {
			t.Errorf("step %d: len = %d, want %d", tt.step, len(slots), tt.wantCount)
		}
		if got := slots[len(slots)-1].Label(); got != tt.wantLast {
			t.Errorf("step %d: last = %s, want %s", tt.step, got, tt.wantLast)
		}
	}
}

func TestGenerateDays(t *testing.T) {
	wednesday := calendar.NewDate(2025, time.July, 16)

	week, err := GenerateDays(wednesday, WeeklyView)
	if err != nil {
		t.Fatal(err)
	}
	if len(week) != 7 {
		t.Fatalf("len(week) = %d, want 7", len(week))
	}
	if week[0].Date != monday || week[0].Weekday() != time.Monday {
		t.Errorf("week[0] = %v, want Monday %v", week[0].Date, monday)
	}
	if week[6].Weekday() != time.Sunday {
		t.Errorf("week[6] = %v, want Sunday", week[6].Weekday())
	}

	sunday := calendar.NewDate(2025, time.July, 20)
	if got := WeekStart(sunday); got != monday {
		t.Errorf("WeekStart(Sunday) = %v, want %v", got, monday)
	}
	if got := WeekStart(monday); got != monday {
		t.Errorf("WeekStart(Monday) = %v", got)
	}

	day, err := GenerateDays(wednesday, DailyView)
	if err != nil {
		t.Fatal(err)
	}
	if len(day) != 1 || day[0].Date != wednesday {
		t.Errorf("daily axis = %v, want [%v]", day, wednesday)
	}

	if _, err := GenerateDays(wednesday, 5); !errors.IsConfiguration(err) {
		t.Errorf("GenerateDays(5) error = %v, want configuration error", err)
	}
}

func TestMap(t *testing.T) {
	slots, _ := GenerateSlots(6, 23)
	days, _ := GenerateDays(monday, WeeklyView)
	tuesday := monday.AddDays(1)

	tests := []struct {
		name       string
		start, end time.Time
		want       Position
		ok         bool
	}{
		{"concrete", at(monday, 7, 0), at(monday, 8, 0), Position{DayIndex: 0, StartSlot: 2, EndSlot: 4}, true},
		{"trailing clamp", at(monday, 22, 45), at(tuesday, 0, 30), Position{DayIndex: 0, StartSlot: 33, EndSlot: 35, OpenEnd: true}, true},
		{"ends at grid end", at(monday, 23, 0), at(tuesday, 0, 0), Position{DayIndex: 0, StartSlot: 34, EndSlot: 35, OpenEnd: true}, true},
		{"ends in last slot", at(monday, 23, 0), at(monday, 23, 30), Position{DayIndex: 0, StartSlot: 34, EndSlot: 35}, true},
		{"mid-slot start floors", at(tuesday, 9, 15), at(tuesday, 9, 50), Position{DayIndex: 1, StartSlot: 6, EndSlot: 7}, true},
		{"zero duration", at(monday, 10, 0), at(monday, 10, 0), Position{DayIndex: 0, StartSlot: 8, EndSlot: 8}, true},
		{"negative duration", at(monday, 10, 0), at(monday, 9, 0), Position{DayIndex: 0, StartSlot: 8, EndSlot: 8}, true},
		{"last slot", at(monday, 23, 30), at(monday, 23, 59), Position{DayIndex: 0, StartSlot: 35, EndSlot: 35}, true},
		{"before range", at(monday, 4, 0), at(monday, 5, 30), Position{}, false},
		{"early start late end", at(monday, 5, 0), at(monday, 7, 0), Position{}, false},
		{"start just before midnight", at(tuesday, 0, 0).Add(-time.Minute), at(tuesday, 1, 0), Position{DayIndex: 0, StartSlot: 35, EndSlot: 35, OpenEnd: true}, true},
		{"off axis", at(monday.AddDays(7), 9, 0), at(monday.AddDays(7), 10, 0), Position{}, false},
	}

	m := Mapper{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.Map(calendar.Event{Start: tt.start, End: tt.end}, days, slots)
			if ok != tt.ok {
				t.Fatalf("Map() ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("Map() = %+v, want %+v", got, tt.want)
			}
			if ok && (got.StartSlot < 0 || got.StartSlot > got.EndSlot || got.EndSlot >= len(slots)) {
				t.Errorf("Map() = %+v violates slot bounds", got)
			}
		})
	}
}

func TestPositionSpan(t *testing.T) {
	tests := []struct {
		name string
		p    Position
		span int
	}{
		{"two rows", Position{StartSlot: 2, EndSlot: 4}, 2},
		{"degenerate", Position{StartSlot: 8, EndSlot: 8}, 1},
		{"open end covers last row", Position{StartSlot: 34, EndSlot: 35, OpenEnd: true}, 2},
		{"open end from last row", Position{StartSlot: 35, EndSlot: 35, OpenEnd: true}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Span(); got != tt.span {
				t.Errorf("Span() = %d, want %d", got, tt.span)
			}
			if got := tt.p.End(); got != tt.p.StartSlot+tt.span {
				t.Errorf("End() = %d", got)
			}
		})
	}
}

func TestMapAllReportsExclusions(t *testing.T) {
	slots, _ := GenerateSlots(6, 23)
	days, _ := GenerateDays(monday, DailyView)

	events := []calendar.Event{
		{ID: "early", Start: at(monday, 5, 0), End: at(monday, 5, 30)},
		{ID: "ok", Start: at(monday, 7, 0), End: at(monday, 8, 0)},
		{ID: "other-day", Start: at(monday.AddDays(1), 7, 0), End: at(monday.AddDays(1), 8, 0)},
		{ID: "allday", Start: at(monday, 0, 0), End: at(monday.AddDays(1), 0, 0), AllDay: true},
	}

	positions, excluded := Mapper{}.MapAll(events, days, slots)
	if len(positions) != 1 || positions[0].EventIndex != 1 {
		t.Fatalf("positions = %+v, want only event 1", positions)
	}

	want := []Exclusion{
		{EventIndex: 0, EventID: "early", Reason: ReasonBeforeRange},
		{EventIndex: 2, EventID: "other-day", Reason: ReasonOffAxis},
		{EventIndex: 3, EventID: "allday", Reason: ReasonAllDay},
	}
	if !reflect.DeepEqual(excluded, want) {
		t.Errorf("excluded = %+v, want %+v", excluded, want)
	}
}

func TestMapAfterRangeOnSameDay(t *testing.T) {
	slots, _ := GenerateSlots(6, 20)
	days, _ := GenerateDays(monday, DailyView)
	_, excluded := Mapper{}.MapAll([]calendar.Event{{Start: at(monday, 21, 0), End: at(monday, 22, 0)}}, days, slots)
	if len(excluded) != 1 || excluded[0].Reason != ReasonAfterRange {
		t.Errorf("excluded = %+v, want after-range", excluded)
	}
}

func TestMapClampStartPolicy(t *testing.T) {
	slots, _ := GenerateSlots(6, 23)
	days, _ := GenerateDays(monday, DailyView)
	m := Mapper{Policy: PolicyClampStart}

	got, ok := m.Map(calendar.Event{Start: at(monday, 5, 0), End: at(monday, 7, 0)}, days, slots)
	if !ok || got.StartSlot != 0 || got.EndSlot != 2 {
		t.Errorf("Map() = %+v, %v, want slots 0..2", got, ok)
	}
	if _, ok := m.Map(calendar.Event{Start: at(monday, 4, 0), End: at(monday, 6, 0)}, days, slots); ok {
		t.Error("event ending at window start must still be dropped")
	}
}

func TestMapLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	slots, _ := GenerateSlots(6, 23)
	days, _ := GenerateDays(monday, DailyView)

	// 11:00 UTC is 07:00 EDT.
	ev := calendar.Event{Start: at(monday, 11, 0), End: at(monday, 12, 0)}
	got, ok := Mapper{Location: ny}.Map(ev, days, slots)
	if !ok || got.StartSlot != 2 || got.EndSlot != 4 {
		t.Errorf("Map() in New York = %+v, %v", got, ok)
	}
}

func TestAssignLanes(t *testing.T) {
	in := []Position{
		{EventIndex: 0, StartSlot: 0, EndSlot: 4},
		{EventIndex: 1, StartSlot: 2, EndSlot: 6},
		{EventIndex: 2, StartSlot: 5, EndSlot: 8},
	}
	got := AssignLanes(in)

	wantLane := map[int]int{0: 0, 1: 1, 2: 0}
	for _, p := range got {
		if p.Lane != wantLane[p.EventIndex] {
			t.Errorf("event %d lane = %d, want %d", p.EventIndex, p.Lane, wantLane[p.EventIndex])
		}
		if p.LaneCount != 2 {
			t.Errorf("event %d laneCount = %d, want 2", p.EventIndex, p.LaneCount)
		}
	}
	if in[1].Lane != 0 || in[1].LaneCount != 0 {
		t.Error("AssignLanes() mutated its input")
	}
}

func TestAssignLanesTies(t *testing.T) {
	// Shorter event first on equal starts; degenerate events occupy one slot.
	got := AssignLanes([]Position{
		{EventIndex: 0, StartSlot: 4, EndSlot: 8},
		{EventIndex: 1, StartSlot: 4, EndSlot: 5},
		{EventIndex: 2, StartSlot: 5, EndSlot: 5},
	})
	order := []int{got[0].EventIndex, got[1].EventIndex, got[2].EventIndex}
	if !reflect.DeepEqual(order, []int{1, 0, 2}) {
		t.Errorf("order = %v, want [1 0 2]", order)
	}
	lanes := map[int]int{}
	for _, p := range got {
		lanes[p.EventIndex] = p.Lane
	}
	if lanes[1] != 0 || lanes[0] != 1 || lanes[2] != 0 {
		t.Errorf("lanes = %v", lanes)
	}
}

func TestResolveLanesCluster(t *testing.T) {
	in := []Position{
		{EventIndex: 0, DayIndex: 0, StartSlot: 0, EndSlot: 4},
		{EventIndex: 1, DayIndex: 0, StartSlot: 2, EndSlot: 6},
		{EventIndex: 2, DayIndex: 0, StartSlot: 10, EndSlot: 12},
		{EventIndex: 3, DayIndex: 1, StartSlot: 0, EndSlot: 2},
	}

	day := ResolveLanes(in, LaneScopeDay)
	cluster := ResolveLanes(in, LaneScopeCluster)

	count := func(ps []Position, idx int) int {
		for _, p := range ps {
			if p.EventIndex == idx {
				return p.LaneCount
			}
		}
		return -1
	}
	if count(day, 2) != 2 {
		t.Errorf("day scope: isolated event laneCount = %d, want 2", count(day, 2))
	}
	if count(cluster, 2) != 1 || count(cluster, 0) != 2 {
		t.Errorf("cluster scope: counts = %d, %d, want 1, 2", count(cluster, 2), count(cluster, 0))
	}
	if count(day, 3) != 1 {
		t.Errorf("other day laneCount = %d, want 1", count(day, 3))
	}

	for i := 1; i < len(day); i++ {
		a, b := day[i-1], day[i]
		if a.DayIndex > b.DayIndex || (a.DayIndex == b.DayIndex && a.Lane > b.Lane) {
			t.Errorf("ResolveLanes() not ordered by day, lane at %d", i)
		}
	}
}

func TestResolveLanesNoCollisions(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		var in []Position
		for i := 0; i < 30; i++ {
			start := r.Intn(36)
			in = append(in, Position{
				EventIndex: i,
				DayIndex:   r.Intn(7),
				StartSlot:  start,
				EndSlot:    min(35, start+r.Intn(6)),
			})
		}

		for _, scope := range []LaneScope{LaneScopeDay, LaneScopeCluster} {
			out := ResolveLanes(in, scope)
			if len(out) != len(in) {
				t.Fatalf("trial %d: lost positions", trial)
			}
			for i := range out {
				if out[i].Lane >= out[i].LaneCount {
					t.Errorf("trial %d %v: lane %d >= laneCount %d", trial, scope, out[i].Lane, out[i].LaneCount)
				}
				for j := i + 1; j < len(out); j++ {
					if out[i].Overlaps(out[j]) && out[i].Lane == out[j].Lane {
						t.Fatalf("trial %d %v: events %d and %d overlap in lane %d",
							trial, scope, out[i].EventIndex, out[j].EventIndex, out[i].Lane)
					}
				}
			}
		}
	}
}

func TestParsePolicies(t *testing.T) {
	for _, s := range []string{"", "drop", "clamp", "DAY", "cluster"} {
		_, perr := ParseOutOfRangePolicy(s)
		_, serr := ParseLaneScope(s)
		if perr != nil && serr != nil {
			t.Errorf("%q parsed by neither", s)
		}
	}
	if _, err := ParseLaneScope("week"); err == nil {
		t.Error("ParseLaneScope(week) = nil error")
	}
	if got := fmt.Sprint(PolicyClampStart, LaneScopeCluster, ReasonOffAxis); got != "clamp cluster off-axis" {
		t.Errorf("String() = %q", got)
	}
}
