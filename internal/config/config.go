// Package config loads worklog settings from file, environment, and
// defaults.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Default values applied when the config file and environment are silent.
const (
	// DefaultTimezone resolves export times in the machine's local zone.
	DefaultTimezone = "Local"

	// DefaultIncludeWarnings keeps warning entries out of submissions unless
	// explicitly requested.
	DefaultIncludeWarnings = false
)

// Sentinel errors for configuration validation.
var (
	// ErrMissingAPIKey indicates no Clockify API key is configured.
	ErrMissingAPIKey = errors.New("clockify.api_key is required")
	// ErrMissingBaseURL indicates no timesheet base URL is configured.
	ErrMissingBaseURL = errors.New("timesheet.base_url is required")
	// ErrMissingSession indicates no timesheet session cookie is configured.
	ErrMissingSession = errors.New("timesheet.session is required")
	// ErrMissingEmployeeID indicates no employee id is configured.
	ErrMissingEmployeeID = errors.New("timesheet.employee_id is required")
)

// Config is the top-level configuration struct for worklog.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Clockify  ClockifyConfig  `mapstructure:"clockify"`
	Timesheet TimesheetConfig `mapstructure:"timesheet"`
	Export    ExportConfig    `mapstructure:"export"`
	Import    ImportConfig    `mapstructure:"import"`
}

// ClockifyConfig holds Clockify API access settings.
type ClockifyConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Workspace string `mapstructure:"workspace"`
}

// TimesheetConfig holds timesheet host access settings.
type TimesheetConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	Session    string `mapstructure:"session"`
	EmployeeID string `mapstructure:"employee_id"`
}

// ExportConfig holds export build settings.
type ExportConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// ImportConfig holds import defaults.
type ImportConfig struct {
	IncludeWarnings bool `mapstructure:"include_warnings"`
}

// Validate checks settings that must be well-formed regardless of which
// command runs. Presence of credentials is checked per command via the
// Require methods.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

// Location resolves the configured export timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Export.Timezone)
	if err != nil {
		return nil, fmt.Errorf("export.timezone: %w", err)
	}

	return loc, nil
}

// RequireClockify verifies Clockify access is configured.
func (c *Config) RequireClockify() error {
	if c.Clockify.APIKey == "" {
		return ErrMissingAPIKey
	}

	return nil
}

// RequireTimesheet verifies timesheet host access is configured.
func (c *Config) RequireTimesheet() error {
	switch {
	case c.Timesheet.BaseURL == "":
		return ErrMissingBaseURL
	case c.Timesheet.Session == "":
		return ErrMissingSession
	case c.Timesheet.EmployeeID == "":
		return ErrMissingEmployeeID
	default:
		return nil
	}
}
