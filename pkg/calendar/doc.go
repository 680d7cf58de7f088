// Package calendar defines the event model consumed by the time-grid layout
// engine and the classifier that assigns each event its source category.
//
// # Events
//
// An [Event] is read-only input owned by the caller. It carries a title, a
// [start, end) interval, and a [SourceHint] describing where the event came
// from (practice system, external calendar feed, holiday calendar, or
// manual entry). The engine never mutates or persists events.
//
// # Dates
//
// [Date] is a location-free civil date. Day columns are keyed by Date so
// that comparisons never depend on the time zone a timestamp happens to
// carry; convert with [DateOf] in the display location first.
//
// # Classification
//
// [Classifier.Classify] maps an event to exactly one [Category]. Rules are
// evaluated in a fixed order and the first match wins:
//
//  1. Holiday marker, holiday source kind, or holiday calendar ID
//  2. Practice source kind, practice calendar ID, or a title keyword
//  3. External calendar source kind
//  4. Otherwise [Manual]
//
// The category drives styling only; geometry never branches on it.
//
//	c := calendar.DefaultClassifier()
//	cat := c.Classify(calendar.Event{Title: "Appointment - J. Doe"})
//	// cat == calendar.PracticeAppointment
package calendar
