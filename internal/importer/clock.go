package importer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// minutesPerHour is the wall-clock minute/hour conversion factor.
const minutesPerHour = 60

// hoursPerDay bounds the hour component of a wall-clock time.
const hoursPerDay = 24

// ErrBadClock indicates a time-of-day string that is not valid HH:MM.
var ErrBadClock = errors.New("invalid time of day")

// ParseClock converts an HH:MM wall-clock string to minutes since midnight.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}

	hours, hourErr := strconv.Atoi(hh)
	if hourErr != nil || hours < 0 || hours >= hoursPerDay {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}

	minutes, minErr := strconv.Atoi(mm)
	if minErr != nil || minutes < 0 || minutes >= minutesPerHour {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}

	return hours*minutesPerHour + minutes, nil
}

// FormatClock renders minutes since midnight as an HH:MM string.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/minutesPerHour, minutes%minutesPerHour)
}
