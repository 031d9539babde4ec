package importer

import (
	"fmt"

	"github.com/worklog-tools/worklog/internal/timesheet"
)

// Status is the import-readiness classification of one aggregate entry.
type Status int

const (
	// StatusInvalid blocks submission of the entry: the date is outside the
	// period or the project/task is unknown to the catalog.
	StatusInvalid Status = iota

	// StatusWarning permits submission but flags that the date already has
	// entries for the same project/task.
	StatusWarning

	// StatusReady permits submission with no caveats.
	StatusReady
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusInvalid:
		return "Invalid"
	case StatusWarning:
		return "Warning"
	case StatusReady:
		return "Ready"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Reason strings surfaced per entry.
const (
	reasonDateOutsidePeriod = "Date outside timesheet period"
	reasonDuplicateEntries  = "Date already has entries for this project/task"
	reasonReady             = "Ready"
)

// Classification is the outcome for one aggregate entry. Reasons is never
// empty: it carries every invalid-tier message that fired, the single
// duplicate warning, or ["Ready"].
type Classification struct {
	Status  Status
	Reasons []string
}

// Classify evaluates one aggregate entry against the snapshot.
//
// Tiers run in strict precedence. The invalid tier collects every failure it
// finds (date range, unknown project, unknown task — the task check needs
// the project to resolve first). If anything in it fired, warnings are
// skipped: they are meaningless against unknown entities. The warning tier
// stops at the first existing entry whose (project, task) pair matches
// exactly; a no-task entry matches only other no-task entries. Only an entry
// that clears both tiers is Ready.
func Classify(entry AggregateEntry, snap *timesheet.Snapshot) Classification {
	var reasons []string

	if !snap.HasDate(entry.Date) {
		reasons = append(reasons, reasonDateOutsidePeriod)
	}

	project, projectKnown := snap.ProjectByID(entry.ProjectID)
	if !projectKnown {
		reasons = append(reasons, fmt.Sprintf("Unknown project ID %s", entry.ProjectID))
	}

	if projectKnown && entry.TaskID != "" {
		_, taskKnown := project.Tasks[entry.TaskID]
		if !taskKnown {
			reasons = append(reasons, fmt.Sprintf("Unknown task ID %s for project %s", entry.TaskID, project.Name))
		}
	}

	if len(reasons) > 0 {
		return Classification{Status: StatusInvalid, Reasons: reasons}
	}

	for _, existing := range snap.EntriesOn(entry.Date) {
		if existing.ProjectID == entry.ProjectID && existing.TaskID == entry.TaskID {
			return Classification{Status: StatusWarning, Reasons: []string{reasonDuplicateEntries}}
		}
	}

	return Classification{Status: StatusReady, Reasons: []string{reasonReady}}
}
