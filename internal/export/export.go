// Package export converts Clockify time entries into the import payload the
// pipeline consumes: local-time intervals, mapped project/task identifiers,
// back-to-back merging, and same-day overlap detection.
package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/worklog-tools/worklog/internal/clockify"
	"github.com/worklog-tools/worklog/internal/mapping"
)

// clockLayout renders wall-clock times the way the payload expects them.
const clockLayout = "15:04"

// dateLayout renders calendar dates the way the payload expects them.
const dateLayout = "2006-01-02"

// payloadSource identifies the origin system in exported metadata.
const payloadSource = "clockify"

// noteSeparator joins the notes of merged back-to-back entries.
const noteSeparator = "; "

// Entry is a single export row: one local-time interval with mapped
// identifiers. An empty TaskID serializes as null, the payload's marker for
// a record without a task.
type Entry struct {
	Date      string
	Start     string
	End       string
	Note      string
	ProjectID string
	TaskID    string
}

// MarshalJSON emits the wire shape, rendering an empty task id as null.
func (e Entry) MarshalJSON() ([]byte, error) {
	var taskID any
	if e.TaskID != "" {
		taskID = e.TaskID
	}

	data, err := json.Marshal(struct {
		Date      string `json:"date"`
		Start     string `json:"start"`
		End       string `json:"end"`
		Note      string `json:"note"`
		ProjectID string `json:"projectId"`
		TaskID    any    `json:"taskId"`
	}{
		Date:      e.Date,
		Start:     e.Start,
		End:       e.End,
		Note:      e.Note,
		ProjectID: e.ProjectID,
		TaskID:    taskID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal export entry: %w", err)
	}

	return data, nil
}

// Result is the outcome of one export build.
type Result struct {
	Entries  []Entry
	Warnings []string
	Unmapped []string
	Skipped  int
}

// Build converts raw Clockify entries into export entries. Running timers
// are skipped, unmapped project/task pairs are collected rather than failing
// the build, back-to-back same-project/task entries merge, and same-day
// overlaps produce warnings.
func Build(
	entries []clockify.TimeEntry,
	projectNames map[string]string,
	taskNames map[string]string,
	cfg *mapping.Config,
	loc *time.Location,
) (Result, error) {
	var result Result

	converted := make([]Entry, 0, len(entries))

	for _, entry := range entries {
		if entry.Running() {
			result.Skipped++

			continue
		}

		projectName := projectNames[entry.ProjectID]
		if projectName == "" {
			label := entry.Description
			if label == "" {
				label = entry.ID
			}

			result.Unmapped = append(result.Unmapped, "(no project) - "+label)

			continue
		}

		taskName := ""
		if entry.TaskID != "" {
			taskName = taskNames[entry.TaskID]
		}

		mapped, ok := cfg.Find(projectName, taskName)
		if !ok {
			key := projectName
			if taskName != "" {
				key = projectName + ":" + taskName
			}

			result.Unmapped = append(result.Unmapped, key)

			continue
		}

		start, err := entry.LocalStart(loc)
		if err != nil {
			return Result{}, fmt.Errorf("entry %s: %w", entry.ID, err)
		}

		end, hasEnd, err := entry.LocalEnd(loc)
		if err != nil {
			return Result{}, fmt.Errorf("entry %s: %w", entry.ID, err)
		}

		if !hasEnd {
			result.Skipped++

			continue
		}

		converted = append(converted, Entry{
			Date:      start.Format(dateLayout),
			Start:     start.Format(clockLayout),
			End:       end.Format(clockLayout),
			Note:      entry.Description,
			ProjectID: mapped.TimesheetProjectID,
			TaskID:    mapped.TimesheetTaskID,
		})
	}

	sort.SliceStable(converted, func(i, j int) bool {
		if converted[i].Date != converted[j].Date {
			return converted[i].Date < converted[j].Date
		}

		return converted[i].Start < converted[j].Start
	})

	merged := mergeAdjacent(converted)

	result.Warnings = detectOverlaps(merged)
	result.Entries = merged

	return result, nil
}

// mergeAdjacent merges entries that are back-to-back with the same project
// and task, extending the end time and joining notes.
func mergeAdjacent(entries []Entry) []Entry {
	if len(entries) == 0 {
		return nil
	}

	merged := []Entry{entries[0]}

	for _, entry := range entries[1:] {
		prev := &merged[len(merged)-1]

		if prev.Date == entry.Date && prev.End == entry.Start &&
			prev.ProjectID == entry.ProjectID && prev.TaskID == entry.TaskID {
			prev.End = entry.End
			prev.Note = joinNotes(prev.Note, entry.Note)

			continue
		}

		merged = append(merged, entry)
	}

	return merged
}

func joinNotes(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + noteSeparator + b
	}
}

// detectOverlaps reports every pair of same-day entries whose intervals
// overlap. HH:MM strings compare correctly as text.
func detectOverlaps(entries []Entry) []string {
	var warnings []string

	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i], entries[j]
			if a.Date != b.Date {
				continue
			}

			if a.Start < b.End && b.Start < a.End {
				warnings = append(warnings, fmt.Sprintf(
					"Overlap on %s: %s-%s and %s-%s", a.Date, a.Start, a.End, b.Start, b.End))
			}
		}
	}

	return warnings
}

// Metadata describes one exported batch.
type Metadata struct {
	BatchID    string    `json:"batchId"`
	ExportedAt time.Time `json:"exportedAt"`
	Source     string    `json:"source"`
	DateRange  DateRange `json:"dateRange"`
}

// DateRange is the inclusive export window.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Payload is the full export document; its entries section is exactly what
// the import pipeline parses.
type Payload struct {
	Metadata Metadata `json:"metadata"`
	Entries  []Entry  `json:"entries"`
}

// NewPayload wraps a build result in the export document with a fresh batch
// id.
func NewPayload(result Result, from, to time.Time) Payload {
	return Payload{
		Metadata: Metadata{
			BatchID:    uuid.NewString(),
			ExportedAt: time.Now().UTC(),
			Source:     payloadSource,
			DateRange: DateRange{
				From: from.Format(dateLayout),
				To:   to.Format(dateLayout),
			},
		},
		Entries: result.Entries,
	}
}
