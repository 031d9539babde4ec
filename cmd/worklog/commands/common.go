// Package commands implements CLI command handlers for worklog.
package commands

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// prompt prints a label and reads one trimmed line of input.
func prompt(reader *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// promptIndex reads a 1-based menu selection, returning the 0-based index.
// An out-of-range or non-numeric answer asks again until the reader ends.
func promptIndex(reader *bufio.Reader, w io.Writer, label string, max int) (int, error) {
	for {
		answer, err := prompt(reader, w, label)
		if err != nil {
			return 0, err
		}

		n, convErr := strconv.Atoi(answer)
		if convErr == nil && n >= 1 && n <= max {
			return n - 1, nil
		}

		fmt.Fprintf(w, "Enter a number between 1 and %d.\n", max)
	}
}

// confirm asks a yes/no question; anything but y/yes declines.
func confirm(reader *bufio.Reader, w io.Writer, label string) (bool, error) {
	answer, err := prompt(reader, w, label)
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
