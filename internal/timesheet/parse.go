package timesheet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// ParseSnapshot decodes the timesheet JSON embedded in the host page into a
// Snapshot. The host serializes empty "byId" collections as [] and populated
// ones as {}, so those fields are handled shape-by-shape.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var doc timesheetData

	err := json.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("decode timesheet data: %w", err)
	}

	snap := &Snapshot{
		ValidDates: make(map[string]struct{}, len(doc.ValidDates)),
		Catalog:    make(map[string]Project),
		Existing:   make(map[string][]ExistingEntry),
	}

	for _, d := range doc.ValidDates {
		snap.ValidDates[d] = struct{}{}
	}

	projects, err := decodeByID[projectData](doc.ProjectsWithTasks.ByID)
	if err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}

	for _, p := range projects {
		tasks, taskErr := decodeByID[taskData](p.Tasks.ByID)
		if taskErr != nil {
			return nil, fmt.Errorf("decode tasks for project %s: %w", p.ID, taskErr)
		}

		catalog := Project{Name: p.Name, Tasks: make(map[string]string, len(tasks))}
		for _, t := range tasks {
			catalog.Tasks[string(t.ID)] = t.Name
		}

		snap.Catalog[string(p.ID)] = catalog
	}

	for date, day := range doc.DailyDetails {
		entries := make([]ExistingEntry, 0, len(day.Entries))

		for _, e := range day.Entries {
			entries = append(entries, e.toExisting())
		}

		snap.Existing[date] = entries
	}

	return snap, nil
}

// Projects returns the catalog sorted by project name, for menu rendering.
func (s *Snapshot) Projects() []CatalogProject {
	out := make([]CatalogProject, 0, len(s.Catalog))

	for id, p := range s.Catalog {
		cp := CatalogProject{ID: id, Name: p.Name}

		for taskID, name := range p.Tasks {
			cp.Tasks = append(cp.Tasks, CatalogTask{ID: taskID, Name: name})
		}

		sort.Slice(cp.Tasks, func(i, j int) bool { return cp.Tasks[i].Name < cp.Tasks[j].Name })
		out = append(out, cp)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// CatalogProject is a catalog project flattened for display.
type CatalogProject struct {
	ID    string
	Name  string
	Tasks []CatalogTask
}

// CatalogTask is a catalog task flattened for display.
type CatalogTask struct {
	ID   string
	Name string
}

// CanonicalID rewrites an integral numeric literal in exponent or decimal
// form (1e2, 1.0) to plain digits, so the same id always compares equal no
// matter how it was serialized. Literals already in digit form pass through
// untouched, which keeps ids beyond float precision intact. Anything else is
// returned as is.
func CanonicalID(lit string) string {
	if isDigits(lit) {
		return lit
	}

	f, err := strconv.ParseFloat(lit, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) >= 1<<53 {
		return lit
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isDigits(lit string) bool {
	start := 0
	if len(lit) > 0 && lit[0] == '-' {
		start = 1
	}

	if start == len(lit) {
		return false
	}

	for i := start; i < len(lit); i++ {
		if lit[i] < '0' || lit[i] > '9' {
			return false
		}
	}

	return true
}

// flexID accepts string, number, or null identifiers and normalizes them to
// their string form. Numbers keep their literal text, so large ids survive.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*f = ""

		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string

		err := json.Unmarshal(data, &s)
		if err != nil {
			return fmt.Errorf("decode id: %w", err)
		}

		*f = flexID(s)

		return nil
	}

	*f = flexID(CanonicalID(string(data)))

	return nil
}

type timesheetData struct {
	ValidDates        []string           `json:"validDates"`
	ProjectsWithTasks byIDContainer      `json:"projectsWithTasks"`
	DailyDetails      map[string]dayData `json:"dailyDetails"`
}

type byIDContainer struct {
	ByID json.RawMessage `json:"byId"`
}

type projectData struct {
	ID    flexID        `json:"id"`
	Name  string        `json:"name"`
	Tasks byIDContainer `json:"tasks"`
}

type taskData struct {
	ID   flexID `json:"id"`
	Name string `json:"name"`
}

type dayData struct {
	Entries []entryData `json:"entries"`
}

type entryData struct {
	ProjectID flexID   `json:"projectId"`
	TaskID    flexID   `json:"taskId"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Hours     *float64 `json:"hours"`
}

func (e entryData) toExisting() ExistingEntry {
	out := ExistingEntry{
		ProjectID: string(e.ProjectID),
		TaskID:    string(e.TaskID),
	}

	// Duration-only entries carry hours and no times.
	if e.Hours != nil && e.Start == "" {
		out.Kind = KindDuration
		out.Hours = *e.Hours

		return out
	}

	out.Kind = KindInterval
	out.Start = e.Start
	out.End = e.End

	return out
}

// decodeByID handles the []-when-empty, {}-when-populated byId encoding.
func decodeByID[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)

	if len(raw) == 0 || raw[0] == '[' {
		return nil, nil
	}

	var m map[string]T

	err := json.Unmarshal(raw, &m)
	if err != nil {
		return nil, fmt.Errorf("decode byId map: %w", err)
	}

	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}

	return out, nil
}
