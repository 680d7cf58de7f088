package grid

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// LaneScope selects which events share a LaneCount.
type LaneScope int

const (
	// LaneScopeDay gives every event on a day the day's total lane count.
	LaneScopeDay LaneScope = iota
	// LaneScopeCluster gives each connected group of overlapping events its
	// own lane count, so an isolated event keeps the full column width.
	LaneScopeCluster
)

func (s LaneScope) String() string {
	if s == LaneScopeCluster {
		return "cluster"
	}
	return "day"
}

// ParseLaneScope accepts "day" or "cluster". The empty string is
// [LaneScopeDay].
func ParseLaneScope(s string) (LaneScope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "day":
		return LaneScopeDay, nil
	case "cluster":
		return LaneScopeCluster, nil
	}
	return LaneScopeDay, fmt.Errorf("unknown lane scope %q", s)
}

// AssignLanes assigns lanes to positions that all belong to one day column
// and sets LaneCount on each to the number of lanes used. The result is a
// new slice sorted by start slot, end slot, then event index; the input is
// not modified.
func AssignLanes(positions []Position) []Position {
	return assignLanes(positions, LaneScopeDay)
}

// ResolveLanes groups positions by day, assigns lanes within each day, and
// returns them ordered by day, lane, then start slot.
func ResolveLanes(positions []Position, scope LaneScope) []Position {
	byDay := make(map[int][]Position)
	for _, p := range positions {
		byDay[p.DayIndex] = append(byDay[p.DayIndex], p)
	}

	out := make([]Position, 0, len(positions))
	for _, day := range slices.Sorted(maps.Keys(byDay)) {
		out = append(out, assignLanes(byDay[day], scope)...)
	}

	slices.SortStableFunc(out, func(a, b Position) int {
		return cmp.Or(
			cmp.Compare(a.DayIndex, b.DayIndex),
			cmp.Compare(a.Lane, b.Lane),
			cmp.Compare(a.StartSlot, b.StartSlot),
			cmp.Compare(a.EventIndex, b.EventIndex),
		)
	})
	return out
}

func assignLanes(positions []Position, scope LaneScope) []Position {
	sorted := slices.Clone(positions)
	slices.SortStableFunc(sorted, func(a, b Position) int {
		return cmp.Or(
			cmp.Compare(a.StartSlot, b.StartSlot),
			cmp.Compare(a.EndSlot, b.EndSlot),
			cmp.Compare(a.EventIndex, b.EventIndex),
		)
	})

	var laneEnds []int
	clusterStart := 0 // index into sorted of the current cluster's first member
	clusterEnd := 0   // furthest occupied end seen in the current cluster
	clusterLanes := 0

	closeCluster := func(upto int) {
		for i := clusterStart; i < upto; i++ {
			sorted[i].LaneCount = clusterLanes
		}
	}

	for i := range sorted {
		p := &sorted[i]

		if scope == LaneScopeCluster && i > 0 && p.StartSlot >= clusterEnd {
			closeCluster(i)
			clusterStart, clusterLanes = i, 0
		}

		lane := -1
		for l, end := range laneEnds {
			if end <= p.StartSlot {
				lane = l
				break
			}
		}
		if lane < 0 {
			lane = len(laneEnds)
			laneEnds = append(laneEnds, 0)
		}
		laneEnds[lane] = p.End()
		p.Lane = lane

		clusterEnd = max(clusterEnd, p.End())
		clusterLanes = max(clusterLanes, lane+1)
	}

	if scope == LaneScopeCluster {
		closeCluster(len(sorted))
		return sorted
	}
	for i := range sorted {
		sorted[i].LaneCount = len(laneEnds)
	}
	return sorted
}
