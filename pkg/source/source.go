// Package source loads calendar events for a time window.
//
// A [Source] is anything that can list the events overlapping a [Window].
// Three implementations ship with timegrid:
//
//   - [JSONFile]: a JSON array of event records, the export format of the
//     practice dashboard
//   - [ICS]: an iCalendar file or subscribed URL, with RRULE, RDATE, EXDATE
//     and RECURRENCE-ID expanded inside the window
//   - [Mongo]: a MongoDB collection of event records
//
// [Merge] queries several sources concurrently and concatenates their
// events in source order.
package source

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/timegrid/pkg/calendar"
)

// Source lists the events overlapping a window.
type Source interface {
	Events(ctx context.Context, w Window) ([]calendar.Event, error)
}

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// DaysWindow returns the window covering dayCount whole days from ref in loc.
func DaysWindow(ref calendar.Date, dayCount int, loc *time.Location) Window {
	return Window{Start: ref.In(loc), End: ref.AddDays(dayCount).In(loc)}
}

// Overlaps reports whether [start, end) intersects w. A zero-length event
// overlaps when its start lies inside w.
func (w Window) Overlaps(start, end time.Time) bool {
	if !start.Before(w.End) {
		return false
	}
	return end.After(w.Start) || !start.Before(w.Start)
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

// Filter returns the events of evs that overlap w, in order.
func Filter(evs []calendar.Event, w Window) []calendar.Event {
	out := make([]calendar.Event, 0, len(evs))
	for _, ev := range evs {
		if w.Overlaps(ev.Start, ev.End) {
			out = append(out, ev)
		}
	}
	return out
}

// SortByStart orders events by start, then end, then ID. The sort is stable.
func SortByStart(evs []calendar.Event) {
	slices.SortStableFunc(evs, func(a, b calendar.Event) int {
		return cmp.Or(a.Start.Compare(b.Start), a.End.Compare(b.End), cmp.Compare(a.ID, b.ID))
	})
}

// Static is a fixed in-memory event list.
type Static []calendar.Event

func (s Static) Events(_ context.Context, w Window) ([]calendar.Event, error) {
	return Filter(s, w), nil
}

// Named attaches a name to a source for error messages and logs.
type Named struct {
	Name string
	Source
}

// Merge queries every source concurrently and returns their events in
// source order. The first error cancels the remaining queries.
func Merge(ctx context.Context, w Window, sources ...Named) ([]calendar.Event, error) {
	results := make([][]calendar.Event, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range sources {
		g.Go(func() error {
			evs, err := s.Events(ctx, w)
			if err != nil {
				return fmt.Errorf("source %s: %w", s.Name, err)
			}
			results[i] = evs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.Concat(results...), nil
}
