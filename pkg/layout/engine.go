package layout

import (
	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/grid"
)

// Compute runs the full engine for one page: it validates cfg, builds the
// slot and day axes, classifies and maps every event, resolves lanes,
// fits the reference design to the page, and composes the result.
//
// The only error is a configuration error. Events that cannot be placed
// are listed in [Resolved.Excluded]; all-day events on a visible day are
// shown as header notes instead. opts are passed to [Compose].
//
// A ScaleOverride larger than the page fit is clamped to it, so the grid
// plus margins never exceeds the page.
func Compute(events []calendar.Event, cfg Config, ref calendar.Date, dayCount int, opts ...ComposeOption) (Resolved, error) {
	if err := cfg.Validate(); err != nil {
		return Resolved{}, err
	}
	slots, err := grid.GenerateSlotsStep(cfg.StartHour, cfg.EndHour, cfg.SlotMinutes)
	if err != nil {
		return Resolved{}, err
	}
	days, err := grid.GenerateDays(ref, dayCount)
	if err != nil {
		return Resolved{}, err
	}

	mapper := grid.Mapper{Location: cfg.location(), Policy: cfg.OutOfRange}
	positions, exclusions := mapper.MapAll(events, days, slots)
	positions = grid.ResolveLanes(positions, cfg.LaneScope)

	classifier := cfg.classifier()
	placements := make([]Placement, len(positions))
	for i, p := range positions {
		ev := events[p.EventIndex]
		placements[i] = Placement{Position: p, Event: ev, Category: classifier.Classify(ev)}
	}

	notes := make(map[int][]string)
	var excluded []grid.Exclusion
	for _, ex := range exclusions {
		if ex.Reason != grid.ReasonAllDay {
			excluded = append(excluded, ex)
			continue
		}
		day := calendar.DateOf(events[ex.EventIndex].Start.In(cfg.location()))
		for _, d := range days {
			if d.Date == day {
				notes[d.Index] = append(notes[d.Index], events[ex.EventIndex].Title)
			}
		}
	}

	scale := ComputeScale(cfg.Reference(dayCount, len(slots)), cfg.Target())
	if cfg.ScaleOverride > 0 {
		scale = FixedScale(min(cfg.ScaleOverride, scale.Factor))
	}

	l := Compose(slots, days, placements, cfg, scale, append([]ComposeOption{WithDayNotes(notes)}, opts...)...)
	l.Excluded = excluded
	return l, nil
}
