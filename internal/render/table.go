// Package render produces the human-facing views of a classified batch: the
// review table, the JSON dump, and the daily-hours chart.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/worklog-tools/worklog/internal/importer"
	"github.com/worklog-tools/worklog/internal/timesheet"
)

const reasonSeparator = "; "

// statusPainters maps each classification status to its terminal color.
var statusPainters = map[importer.Status]*color.Color{
	importer.StatusReady:   color.New(color.FgGreen),
	importer.StatusWarning: color.New(color.FgYellow),
	importer.StatusInvalid: color.New(color.FgRed),
}

// ReviewTable writes the classified batch as a table, one row per aggregate
// entry, followed by a status summary line.
func ReviewTable(w io.Writer, entries []importer.ClassifiedEntry, snap *timesheet.Snapshot) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Date", "Project", "Task", "Hours", "Sources", "Status", "Reasons"})

	counts := make(map[importer.Status]int)

	for _, entry := range entries {
		counts[entry.Status]++

		tbl.AppendRow(table.Row{
			entry.Date,
			projectLabel(snap, entry.ProjectID),
			taskLabel(snap, entry.ProjectID, entry.TaskID),
			fmt.Sprintf("%.2f", entry.TotalHours),
			strings.Join(entry.Sources, ", "),
			paintStatus(entry.Status),
			strings.Join(entry.Reasons, reasonSeparator),
		})
	}

	tbl.Render()

	fmt.Fprintln(w, summaryLine(len(entries), counts))
}

func summaryLine(total int, counts map[importer.Status]int) string {
	return fmt.Sprintf("%s: %d ready, %d warnings, %d invalid",
		english.Plural(total, "entry", "entries"),
		counts[importer.StatusReady],
		counts[importer.StatusWarning],
		counts[importer.StatusInvalid])
}

func paintStatus(status importer.Status) string {
	painter, ok := statusPainters[status]
	if !ok {
		return status.String()
	}

	return painter.Sprint(status.String())
}

// projectLabel resolves a project id to its catalog name, falling back to
// the raw id for unknown projects.
func projectLabel(snap *timesheet.Snapshot, projectID string) string {
	if project, ok := snap.ProjectByID(projectID); ok {
		return project.Name
	}

	return projectID
}

// taskLabel resolves a task id within its project. A record without a task
// renders as "-".
func taskLabel(snap *timesheet.Snapshot, projectID, taskID string) string {
	if taskID == "" {
		return "-"
	}

	if project, ok := snap.ProjectByID(projectID); ok {
		if name, ok := project.Tasks[taskID]; ok {
			return name
		}
	}

	return taskID
}

// reviewRow is the JSON shape of one classified entry.
type reviewRow struct {
	Date      string   `json:"date"`
	ProjectID string   `json:"projectId"`
	TaskID    *string  `json:"taskId"`
	Hours     float64  `json:"hours"`
	Sources   []string `json:"sources"`
	Status    string   `json:"status"`
	Reasons   []string `json:"reasons"`
}

// ReviewJSON writes the classified batch as an indented JSON array.
func ReviewJSON(w io.Writer, entries []importer.ClassifiedEntry) error {
	rows := make([]reviewRow, 0, len(entries))

	for _, entry := range entries {
		var taskID *string
		if entry.TaskID != "" {
			id := entry.TaskID
			taskID = &id
		}

		rows = append(rows, reviewRow{
			Date:      entry.Date,
			ProjectID: entry.ProjectID,
			TaskID:    taskID,
			Hours:     entry.TotalHours,
			Sources:   entry.Sources,
			Status:    entry.Status.String(),
			Reasons:   entry.Reasons,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode review: %w", err)
	}

	return nil
}
