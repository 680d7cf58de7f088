package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/grid"
	"github.com/matzehuels/timegrid/pkg/layout"
	"github.com/matzehuels/timegrid/pkg/source"
)

// PageSpec names one page of a view before its layout is computed.
type PageSpec struct {
	Name     string
	Date     calendar.Date
	DayCount int
}

// PageName names the page a planner link leads to, e.g. "week-2025-07-14"
// or "day-2025-07-16".
func PageName(kind layout.LinkKind, date calendar.Date) string {
	return string(kind) + "-" + date.String()
}

// PlanPages lists the pages of view anchored at date. Weekly pages start on
// the Monday of date's week.
func PlanPages(view string, date calendar.Date) ([]PageSpec, error) {
	monday := grid.WeekStart(date)
	week := PageSpec{Name: PageName(layout.LinkWeek, monday), Date: monday, DayCount: grid.WeeklyView}

	switch view {
	case ViewDay:
		return []PageSpec{{Name: PageName(layout.LinkDay, date), Date: date, DayCount: grid.DailyView}}, nil
	case ViewWeek:
		return []PageSpec{week}, nil
	case ViewPlanner:
		pages := []PageSpec{week}
		for i := range grid.WeeklyView {
			d := monday.AddDays(i)
			pages = append(pages, PageSpec{Name: PageName(layout.LinkDay, d), Date: d, DayCount: grid.DailyView})
		}
		return pages, nil
	default:
		return nil, ValidateView(view)
	}
}

// Window returns the time range a view covers in loc.
func Window(view string, date calendar.Date, loc *time.Location) (source.Window, error) {
	pages, err := PlanPages(view, date)
	if err != nil {
		return source.Window{}, err
	}
	start, end := pages[0].Date, pages[0].Date.AddDays(pages[0].DayCount)
	for _, p := range pages[1:] {
		if p.Date.Before(start) {
			start = p.Date
		}
		if e := p.Date.AddDays(p.DayCount); end.Before(e) {
			end = e
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	return source.Window{Start: start.In(loc), End: end.In(loc)}, nil
}

// ComputeLayouts computes every page of the view concurrently. The first
// configuration error aborts the batch. Planner pages carry navigation
// links to each other.
//
// Each page only sees the events that start on one of its dates, so a
// planner's day pages do not report the rest of the week as off-axis.
// Events on none of the pages go to the first page. Event indexes in the
// returned layouts refer to events.
func ComputeLayouts(ctx context.Context, events []calendar.Event, opts Options) ([]Page, error) {
	specs, err := PlanPages(opts.View, opts.Date)
	if err != nil {
		return nil, err
	}
	subsets := partition(events, specs, opts.Layout.Location)
	var composeOpts []layout.ComposeOption
	if opts.View == ViewPlanner {
		composeOpts = append(composeOpts, layout.WithNavigation())
	}

	pages := make([]Page, len(specs))
	g, ctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			idx := subsets[i]
			subset := make([]calendar.Event, len(idx))
			for j, k := range idx {
				subset[j] = events[k]
			}
			l, err := layout.Compute(subset, opts.Layout, spec.Date, spec.DayCount, composeOpts...)
			if err != nil {
				return fmt.Errorf("%s: %w", spec.Name, err)
			}
			for j := range l.Events {
				l.Events[j].Position.EventIndex = idx[l.Events[j].Position.EventIndex]
			}
			for j := range l.Excluded {
				l.Excluded[j].EventIndex = idx[l.Excluded[j].EventIndex]
			}
			pages[i] = Page{Name: spec.Name, Date: l.FirstDate(), Layout: l}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

// partition returns, per page, the indexes of the events starting on one
// of its dates in loc, in input order.
func partition(events []calendar.Event, specs []PageSpec, loc *time.Location) [][]int {
	if loc == nil {
		loc = time.UTC
	}
	out := make([][]int, len(specs))
	for i, ev := range events {
		day := calendar.DateOf(ev.Start.In(loc))
		placed := false
		for p, spec := range specs {
			if !day.Before(spec.Date) && day.Before(spec.Date.AddDays(spec.DayCount)) {
				out[p] = append(out[p], i)
				placed = true
			}
		}
		if !placed && len(specs) > 0 {
			out[0] = append(out[0], i)
		}
	}
	return out
}
