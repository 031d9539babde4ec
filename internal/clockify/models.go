// Package clockify implements a minimal Clockify REST API client: current
// user, workspaces, projects, tasks, and paginated time-entry retrieval.
package clockify

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// User is the authenticated Clockify user.
type User struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	DefaultWorkspace string       `json:"defaultWorkspace"`
	Settings         UserSettings `json:"settings"`
}

// UserSettings carries the subset of user preferences the exporter needs.
type UserSettings struct {
	TimeZone string `json:"timeZone"`
}

// Workspace is a Clockify workspace.
type Workspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Project is a Clockify project.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	WorkspaceID string `json:"workspaceId"`
	Archived    bool   `json:"archived"`
}

// Task is a Clockify task within a project.
type Task struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"projectId"`
}

// TimeInterval is the raw start/end/duration block of a time entry. End is
// empty while the timer is still running.
type TimeInterval struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration string `json:"duration"`
}

// TimeEntry is one recorded (or running) Clockify time entry.
type TimeEntry struct {
	ID           string       `json:"id"`
	Description  string       `json:"description"`
	UserID       string       `json:"userId"`
	Billable     bool         `json:"billable"`
	ProjectID    string       `json:"projectId"`
	TaskID       string       `json:"taskId"`
	WorkspaceID  string       `json:"workspaceId"`
	TimeInterval TimeInterval `json:"timeInterval"`
}

// Running reports whether the entry's timer is still running.
func (e TimeEntry) Running() bool {
	return e.TimeInterval.End == ""
}

// StartTime parses the UTC start instant of the entry.
func (e TimeEntry) StartTime() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, e.TimeInterval.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse entry start: %w", err)
	}

	return t, nil
}

// EndTime parses the UTC end instant. Running entries return ok=false.
func (e TimeEntry) EndTime() (time.Time, bool, error) {
	if e.Running() {
		return time.Time{}, false, nil
	}

	t, err := time.Parse(time.RFC3339, e.TimeInterval.End)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse entry end: %w", err)
	}

	return t, true, nil
}

// DurationHours parses the entry's ISO 8601 duration into hours. Malformed
// or empty durations count as zero, matching how the source reports them.
func (e TimeEntry) DurationHours() float64 {
	return ParseISODuration(e.TimeInterval.Duration)
}

// isoDurationPattern matches the PT#H#M#S durations Clockify emits.
var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?$`)

const (
	minutesPerHour = 60
	secondsPerHour = 3600
)

// ParseISODuration converts an ISO 8601 duration string to hours.
func ParseISODuration(s string) float64 {
	if s == "" {
		return 0
	}

	match := isoDurationPattern.FindStringSubmatch(s)
	if match == nil {
		return 0
	}

	var hours float64

	if match[1] != "" {
		h, _ := strconv.ParseFloat(match[1], 64)
		hours += h
	}

	if match[2] != "" {
		m, _ := strconv.ParseFloat(match[2], 64)
		hours += m / minutesPerHour
	}

	if match[3] != "" {
		sec, _ := strconv.ParseFloat(match[3], 64)
		hours += sec / secondsPerHour
	}

	return hours
}

// RoundToMinute rounds an instant to the nearest wall-clock minute.
func RoundToMinute(t time.Time) time.Time {
	return t.Round(time.Minute)
}

// LocalStart returns the entry's start converted to loc, rounded to the
// nearest minute.
func (e TimeEntry) LocalStart(loc *time.Location) (time.Time, error) {
	start, err := e.StartTime()
	if err != nil {
		return time.Time{}, err
	}

	return RoundToMinute(start.In(loc)), nil
}

// LocalEnd returns the entry's end converted to loc, rounded to the nearest
// minute. Running entries return ok=false.
func (e TimeEntry) LocalEnd(loc *time.Location) (time.Time, bool, error) {
	end, ok, err := e.EndTime()
	if err != nil || !ok {
		return time.Time{}, ok, err
	}

	return RoundToMinute(end.In(loc)), true, nil
}
