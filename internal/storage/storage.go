// Package storage persists tool state (credentials config, project/task
// mapping, last-export marker) as YAML files in the user config directory.
// The import pipeline itself stays stateless; only tool-level state lives
// here.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// appDirName is the directory under the user config dir holding all state.
const appDirName = "worklog"

// stateFile holds cross-run tool state such as the last export time.
const stateFile = "state.yaml"

// dirPerm is the permission for created config directories.
const dirPerm = 0o755

// filePerm is the permission for written state files.
const filePerm = 0o600

// Manager reads and writes the YAML files of one config directory.
type Manager struct {
	dir string
}

// NewManager opens (and creates if needed) the config directory. An empty
// dir selects the platform default, e.g. ~/.config/worklog.
func NewManager(dir string) (*Manager, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve user config dir: %w", err)
		}

		dir = filepath.Join(base, appDirName)
	}

	err := os.MkdirAll(dir, dirPerm)
	if err != nil {
		return nil, fmt.Errorf("create config dir %s: %w", dir, err)
	}

	return &Manager{dir: dir}, nil
}

// Dir returns the managed config directory path.
func (m *Manager) Dir() string {
	return m.dir
}

// LoadYAML reads the named YAML file into v. A missing file is not an
// error; found reports whether the file existed.
func (m *Manager) LoadYAML(name string, v any) (found bool, err error) {
	data, readErr := os.ReadFile(filepath.Join(m.dir, name))
	if readErr != nil {
		if errors.Is(readErr, os.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("read %s: %w", name, readErr)
	}

	unmarshalErr := yaml.Unmarshal(data, v)
	if unmarshalErr != nil {
		return false, fmt.Errorf("parse %s: %w", name, unmarshalErr)
	}

	return true, nil
}

// SaveYAML writes v to the named YAML file, replacing any previous content.
func (m *Manager) SaveYAML(name string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	err = os.WriteFile(filepath.Join(m.dir, name), data, filePerm)
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	return nil
}

// State is the cross-run tool state.
type State struct {
	LastExport time.Time `yaml:"last_export"`
}

// LoadState reads state.yaml, returning a zero state when none exists yet.
func (m *Manager) LoadState() (State, error) {
	var state State

	_, err := m.LoadYAML(stateFile, &state)
	if err != nil {
		return State{}, err
	}

	return state, nil
}

// SaveState writes state.yaml.
func (m *Manager) SaveState(state State) error {
	return m.SaveYAML(stateFile, state)
}
