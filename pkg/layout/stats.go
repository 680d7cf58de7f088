package layout

import (
	"fmt"
	"math"

	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/grid"
)

// DayStats summarizes one day column over the visible window.
type DayStats struct {
	Date             calendar.Date `json:"date"`
	Events           int           `json:"events"`
	Appointments     int           `json:"appointments"`
	ScheduledMinutes int           `json:"scheduledMinutes"`
	AvailableMinutes int           `json:"availableMinutes"`
	FreePercent      float64       `json:"freePercent"`
}

// Summary formats the day as one line, e.g.
// "3 appointments | 4.5h scheduled | 12.5h available | 74% free".
func (s DayStats) Summary() string {
	noun := "appointments"
	if s.Appointments == 1 {
		noun = "appointment"
	}
	return fmt.Sprintf("%d %s | %s scheduled | %s available | %.0f%% free",
		s.Appointments, noun, hours(s.ScheduledMinutes), hours(s.AvailableMinutes), s.FreePercent)
}

func hours(minutes int) string {
	return fmt.Sprintf("%.1fh", float64(minutes)/60)
}

// computeStats counts occupied slots per day. Overlapping events are
// counted once, so scheduled time never exceeds the window.
func computeStats(days []grid.Day, slots []grid.Slot, placements []Placement) []DayStats {
	step := grid.DefaultSlotMinutes
	if len(slots) > 1 {
		step = slots[1].Minutes() - slots[0].Minutes()
	}
	window := len(slots) * step

	stats := make([]DayStats, len(days))
	occupied := make([][]bool, len(days))
	for i, d := range days {
		stats[i].Date = d.Date
		occupied[i] = make([]bool, len(slots))
	}

	for _, p := range placements {
		if p.DayIndex < 0 || p.DayIndex >= len(days) {
			continue
		}
		st := &stats[p.DayIndex]
		st.Events++
		if p.Category == calendar.PracticeAppointment {
			st.Appointments++
		}
		for s := p.StartSlot; s < p.End() && s < len(slots); s++ {
			occupied[p.DayIndex][s] = true
		}
	}

	for i := range stats {
		busy := 0
		for _, o := range occupied[i] {
			if o {
				busy++
			}
		}
		stats[i].ScheduledMinutes = busy * step
		stats[i].AvailableMinutes = window - stats[i].ScheduledMinutes
		if window > 0 {
			stats[i].FreePercent = math.Round(float64(stats[i].AvailableMinutes)/float64(window)*1000) / 10
		}
	}
	return stats
}
