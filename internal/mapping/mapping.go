// Package mapping maintains the Clockify-to-timesheet project/task mapping.
// Pairs are keyed by Clockify project and task name; a project-only mapping
// acts as the fallback for any task under that project.
package mapping

import (
	"fmt"

	"github.com/worklog-tools/worklog/internal/storage"
)

// mappingFile is the YAML file name under the config directory.
const mappingFile = "mapping.yaml"

// Entry maps one Clockify project/task pair to timesheet identifiers. An
// empty ClockifyTask makes the entry a project-wide fallback; an empty
// TimesheetTaskID submits entries without a task.
type Entry struct {
	ClockifyProject    string `yaml:"clockify_project"`
	ClockifyTask       string `yaml:"clockify_task,omitempty"`
	TimesheetProjectID string `yaml:"timesheet_project_id"`
	TimesheetTaskID    string `yaml:"timesheet_task_id,omitempty"`
}

type mappingDoc struct {
	Mappings []Entry `yaml:"mappings"`
}

// Config is the loaded mapping list, persisted after every change.
type Config struct {
	store   *storage.Manager
	entries []Entry
}

// Load reads the mapping file from the store. A missing file yields an
// empty config.
func Load(store *storage.Manager) (*Config, error) {
	var doc mappingDoc

	_, err := store.LoadYAML(mappingFile, &doc)
	if err != nil {
		return nil, fmt.Errorf("load mapping: %w", err)
	}

	return &Config{store: store, entries: doc.Mappings}, nil
}

// Find resolves a Clockify project/task pair. An exact pair match wins;
// otherwise a project-only entry serves as fallback.
func (c *Config) Find(project, task string) (Entry, bool) {
	for _, e := range c.entries {
		if e.ClockifyProject == project && e.ClockifyTask == task {
			return e, true
		}
	}

	if task != "" {
		for _, e := range c.entries {
			if e.ClockifyProject == project && e.ClockifyTask == "" {
				return e, true
			}
		}
	}

	return Entry{}, false
}

// Add inserts or replaces the mapping for the entry's pair and persists the
// list.
func (c *Config) Add(entry Entry) error {
	kept := c.entries[:0]

	for _, e := range c.entries {
		if e.ClockifyProject == entry.ClockifyProject && e.ClockifyTask == entry.ClockifyTask {
			continue
		}

		kept = append(kept, e)
	}

	c.entries = append(kept, entry)

	err := c.store.SaveYAML(mappingFile, mappingDoc{Mappings: c.entries})
	if err != nil {
		return fmt.Errorf("save mapping: %w", err)
	}

	return nil
}

// Entries returns a copy of all mapping entries.
func (c *Config) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)

	return out
}
