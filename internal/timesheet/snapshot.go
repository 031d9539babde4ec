// Package timesheet models the target timesheet period: its valid dates,
// project/task catalog, and already-recorded entries.
package timesheet

// EntryKind discriminates the two shapes an existing timesheet entry can take.
type EntryKind int

const (
	// KindInterval marks an entry recorded as a start/end wall-clock pair.
	KindInterval EntryKind = iota

	// KindDuration marks an entry recorded as an hour total with no times.
	KindDuration
)

// ExistingEntry is one entry already recorded on the timesheet. Entries come
// in two shapes: interval (start/end) and duration (hours only). Kind tells
// which of the two field sets is meaningful.
type ExistingEntry struct {
	ProjectID string
	TaskID    string

	Kind  EntryKind
	Start string
	End   string
	Hours float64
}

// Project is a catalog project with its task names keyed by task id.
type Project struct {
	Name  string
	Tasks map[string]string
}

// Snapshot is a read-only picture of the timesheet period at pipeline start.
// The pipeline never mutates or refreshes it mid-run.
type Snapshot struct {
	// ValidDates holds the period's recordable dates as YYYY-MM-DD keys.
	ValidDates map[string]struct{}

	// Catalog maps project id to its name and task catalog. All ids are
	// string-coerced at parse time; sources may send them as numbers.
	Catalog map[string]Project

	// Existing maps YYYY-MM-DD to the entries already recorded on that date.
	Existing map[string][]ExistingEntry
}

// HasDate reports whether date is inside the timesheet period.
func (s *Snapshot) HasDate(date string) bool {
	_, ok := s.ValidDates[date]

	return ok
}

// ProjectByID looks up a catalog project by its string-coerced id.
func (s *Snapshot) ProjectByID(id string) (Project, bool) {
	p, ok := s.Catalog[id]

	return p, ok
}

// EntriesOn returns the entries already recorded on date. The returned slice
// is shared with the snapshot and must not be mutated.
func (s *Snapshot) EntriesOn(date string) []ExistingEntry {
	return s.Existing[date]
}
