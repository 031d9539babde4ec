package importer

// AggregateEntry is the merged daily total for one (date, project, task)
// key. TotalHours is the sum of every contributing interval's duration;
// Sources keeps one "start-end" token per contributing interval in
// first-seen order.
type AggregateEntry struct {
	Date       string
	ProjectID  string
	TaskID     string
	TotalHours float64
	Sources    []string
}

// groupKey is the exact grouping triple. An empty TaskID is a stable key of
// its own: no-task records group together and never merge with real tasks.
type groupKey struct {
	date      string
	projectID string
	taskID    string
}

// Aggregate merges raw intervals into one entry per (date, project, task)
// key. Durations sum; identical repeated intervals sum too, since an export
// may legitimately split one window across causes. Output order is the
// first-seen order of each key.
func Aggregate(intervals []RawInterval) []AggregateEntry {
	type bucket struct {
		minutes int
		sources []string
	}

	buckets := make(map[groupKey]*bucket, len(intervals))
	order := make([]groupKey, 0, len(intervals))

	for _, iv := range intervals {
		key := groupKey{date: iv.Date, projectID: iv.ProjectID, taskID: iv.TaskID}

		b, seen := buckets[key]
		if !seen {
			b = &bucket{}
			buckets[key] = b
			order = append(order, key)
		}

		b.minutes += iv.Duration()
		b.sources = append(b.sources, FormatClock(iv.Start)+"-"+FormatClock(iv.End))
	}

	entries := make([]AggregateEntry, 0, len(order))

	for _, key := range order {
		b := buckets[key]
		entries = append(entries, AggregateEntry{
			Date:       key.date,
			ProjectID:  key.projectID,
			TaskID:     key.taskID,
			TotalHours: float64(b.minutes) / minutesPerHour,
			Sources:    b.sources,
		})
	}

	return entries
}
