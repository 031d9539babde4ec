// Package version exposes build-time version information.
package version

import "fmt"

// Set at build time via -ldflags.
var (
	// Version is the semantic version of the binary.
	Version = "dev"

	// Commit is the git commit the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// String renders the full version line.
func String() string {
	return fmt.Sprintf("worklog %s (commit: %s, built: %s)", Version, Commit, Date)
}
