// Package bamboohr handles the timesheet host: extracting the embedded
// timesheet state and security token from its page, and submitting selected
// entries in bulk. It sits outside the import pipeline, consuming its
// output.
package bamboohr

import (
	"errors"
	"regexp"
)

// Sentinel extraction errors.
var (
	// ErrNoTimesheetData indicates the page carries no embedded timesheet JSON.
	ErrNoTimesheetData = errors.New("timesheet data not found in page")

	// ErrNoSecurityToken indicates the page carries no CSRF token.
	ErrNoSecurityToken = errors.New("security token not found in page")
)

// timesheetDataPattern locates the JSON document the host embeds for its own
// timesheet UI.
var timesheetDataPattern = regexp.MustCompile(
	`(?s)<script[^>]+id="js-timesheet-data"[^>]*>(.*?)</script>`)

// csrfTokenPattern locates the session security token assignment.
var csrfTokenPattern = regexp.MustCompile(`CSRF_TOKEN\s*=\s*["']([^"']+)["']`)

// PageState is the host page state the submission boundary needs: the raw
// embedded timesheet JSON and the security token for write calls.
type PageState struct {
	TimesheetJSON []byte
	SecurityToken string
}

// ExtractPageState pulls the embedded timesheet JSON and CSRF token out of
// the timesheet page HTML.
func ExtractPageState(page []byte) (PageState, error) {
	dataMatch := timesheetDataPattern.FindSubmatch(page)
	if dataMatch == nil {
		return PageState{}, ErrNoTimesheetData
	}

	tokenMatch := csrfTokenPattern.FindSubmatch(page)
	if tokenMatch == nil {
		return PageState{}, ErrNoSecurityToken
	}

	return PageState{
		TimesheetJSON: dataMatch[1],
		SecurityToken: string(tokenMatch[1]),
	}, nil
}
