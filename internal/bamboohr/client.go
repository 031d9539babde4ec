package bamboohr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/worklog-tools/worklog/internal/importer"
	"github.com/worklog-tools/worklog/internal/timesheet"
)

// timesheetPath is the page that embeds the timesheet state.
const timesheetPath = "/employees/timesheet/"

// submitPath accepts bulk hour records.
const submitPath = "/timesheet/hour/entries"

// sessionCookieName carries the authenticated host session.
const sessionCookieName = "PHPSESSID"

// tokenHeader carries the security token on write calls.
const tokenHeader = "X-CSRF-Token"

// requestTimeout bounds every host call.
const requestTimeout = 30 * time.Second

// ErrSubmissionInFlight is returned when a Submit is started while another
// one is still outstanding.
var ErrSubmissionInFlight = errors.New("submission already in flight")

// Record is one submitted hour entry in the host's bulk format. Tracking ids
// are assigned sequentially within a submission.
type Record struct {
	TrackingID int     `json:"trackingId"`
	EmployeeID string  `json:"employeeId"`
	Date       string  `json:"date"`
	Hours      float64 `json:"hours"`
	ProjectID  string  `json:"projectId"`
	TaskID     *string `json:"taskId"`
	Note       string  `json:"note"`
}

// BuildRecords converts selected entries into submission records, assigning
// tracking ids starting at 1. The note lists the source intervals the record
// was aggregated from.
func BuildRecords(employeeID string, entries []importer.ClassifiedEntry) []Record {
	records := make([]Record, 0, len(entries))

	for i, entry := range entries {
		var taskID *string
		if entry.TaskID != "" {
			id := entry.TaskID
			taskID = &id
		}

		records = append(records, Record{
			TrackingID: i + 1,
			EmployeeID: employeeID,
			Date:       entry.Date,
			Hours:      entry.TotalHours,
			ProjectID:  entry.ProjectID,
			TaskID:     taskID,
			Note:       noteFromSources(entry.Sources),
		})
	}

	return records
}

func noteFromSources(sources []string) string {
	note := ""

	for i, s := range sources {
		if i > 0 {
			note += ", "
		}

		note += s
	}

	return note
}

// SubmitResult reports the outcome of one bulk submission.
type SubmitResult struct {
	RunID    string
	Accepted int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client talks to the timesheet host using an authenticated session cookie.
// A single Client allows one submission at a time; reads are unrestricted.
type Client struct {
	baseURL  string
	session  string
	http     *http.Client
	logger   *slog.Logger
	inFlight atomic.Bool
}

// NewClient creates a host client for the given base URL and session cookie
// value.
func NewClient(baseURL, session string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		session: session,
		http:    &http.Client{Timeout: requestTimeout},
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchPageState downloads the timesheet page and extracts its embedded
// state.
func (c *Client) FetchPageState(ctx context.Context) (PageState, error) {
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+timesheetPath, nil)
	if reqErr != nil {
		return PageState{}, fmt.Errorf("build page request: %w", reqErr)
	}

	body, err := c.send(req)
	if err != nil {
		return PageState{}, err
	}

	state, extractErr := ExtractPageState(body)
	if extractErr != nil {
		return PageState{}, fmt.Errorf("extract page state: %w", extractErr)
	}

	return state, nil
}

// Snapshot fetches the page and parses its embedded timesheet JSON, returning
// the snapshot together with the security token for a later submission.
func (c *Client) Snapshot(ctx context.Context) (*timesheet.Snapshot, string, error) {
	state, err := c.FetchPageState(ctx)
	if err != nil {
		return nil, "", err
	}

	snap, parseErr := timesheet.ParseSnapshot(state.TimesheetJSON)
	if parseErr != nil {
		return nil, "", fmt.Errorf("parse timesheet state: %w", parseErr)
	}

	return snap, state.SecurityToken, nil
}

// Submit posts the records in one bulk call authenticated by the page token.
// Only one submission may be outstanding per client; a concurrent call
// returns ErrSubmissionInFlight. Cancelling the context aborts the in-flight
// request. Failed submissions are never retried.
func (c *Client) Submit(ctx context.Context, token string, records []Record) (SubmitResult, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return SubmitResult{}, ErrSubmissionInFlight
	}
	defer c.inFlight.Store(false)

	runID := uuid.NewString()

	payload, marshalErr := json.Marshal(struct {
		Hours []Record `json:"hours"`
	}{Hours: records})
	if marshalErr != nil {
		return SubmitResult{}, fmt.Errorf("marshal submission: %w", marshalErr)
	}

	req, reqErr := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+submitPath, bytes.NewReader(payload))
	if reqErr != nil {
		return SubmitResult{}, fmt.Errorf("build submission request: %w", reqErr)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(tokenHeader, token)

	c.logger.Info("submitting records",
		slog.String("run_id", runID),
		slog.Int("count", len(records)))

	_, err := c.send(req)
	if err != nil {
		return SubmitResult{}, err
	}

	return SubmitResult{RunID: runID, Accepted: len(records)}, nil
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: c.session})

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, fmt.Errorf("read response: %w", readErr)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%s %s: unexpected status %d: %s",
			req.Method, req.URL.Path, resp.StatusCode, truncate(body))
	}

	return body, nil
}

// truncate limits error bodies to a readable length.
func truncate(body []byte) string {
	const limit = 200

	if len(body) <= limit {
		return string(body)
	}

	return string(body[:limit]) + "..."
}
