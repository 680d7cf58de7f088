// Package grid builds the axes of a time grid and places events on it.
//
// # Axes
//
// The vertical axis is a sequence of [Slot] values produced by
// [GenerateSlots]: one slot per 30 minutes from startHour:00 through
// endHour:30 inclusive, so the default 06:00–23:30 window has 36 slots.
// [GenerateSlotsStep] accepts other granularities that divide an hour.
//
// The horizontal axis is a sequence of [Day] columns produced by
// [GenerateDays]. A weekly axis (7 columns) always starts on the Monday of
// the reference date's week; a daily axis has exactly one column.
//
// # Mapping
//
// [Mapper.Map] converts an event's [start, end) interval into a [Position]:
// a day index plus start and end slot indices. The rules are:
//
//   - an event whose start date is not on the axis is excluded
//   - an event whose start is before the first slot or at/after the end of
//     the last slot is excluded (see [OutOfRangePolicy] for the alternative)
//   - an end past the last slot is clamped to the last slot index
//   - an end at or before the start collapses to a one-slot block
//
// Exclusions are never errors. [Mapper.MapAll] returns them alongside the
// positions so callers can report "N events could not be placed".
//
// # Lanes
//
// Events that overlap in time on the same day are placed side by side.
// [AssignLanes] runs greedy first-fit interval colouring over one day's
// positions after sorting them by start then end slot; a lane is reused as
// soon as the previous occupant's end is at or before the next start.
// [ResolveLanes] applies it to every day column. Every position on a day
// shares the same LaneCount so column widths divide evenly, unless
// [LaneScopeCluster] is selected, in which case only events in the same
// overlap cluster share a count.
//
// All functions in this package are pure and safe for concurrent use.
package grid
