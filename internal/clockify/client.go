package clockify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// defaultBaseURL is the public Clockify REST endpoint.
const defaultBaseURL = "https://api.clockify.me/api/v1"

// pageSize is the page size used for all paginated listings.
const pageSize = 50

// retryDelay is the pause before the single retry on server/network errors.
const retryDelay = 2 * time.Second

// requestTimeout bounds each HTTP request.
const requestTimeout = 30 * time.Second

// Client talks to the Clockify API. Every failing request is retried once
// after retryDelay when the failure is a 5xx response or a transport error;
// nothing else is retried.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
	sleep   func(context.Context, time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the structured logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient builds a Clockify client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: requestTimeout},
		logger:  slog.Default(),
		sleep:   sleepCtx,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CurrentUser fetches the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var user User

	err := c.getJSON(ctx, "/user", nil, &user)
	if err != nil {
		return User{}, err
	}

	return user, nil
}

// Workspaces lists the workspaces the user can access.
func (c *Client) Workspaces(ctx context.Context) ([]Workspace, error) {
	var workspaces []Workspace

	err := c.getJSON(ctx, "/workspaces", nil, &workspaces)
	if err != nil {
		return nil, err
	}

	return workspaces, nil
}

// Projects lists all projects in a workspace, following pagination.
func (c *Client) Projects(ctx context.Context, workspaceID string) ([]Project, error) {
	return paginate[Project](ctx, c, fmt.Sprintf("/workspaces/%s/projects", workspaceID), nil)
}

// Tasks lists all tasks of a project, following pagination.
func (c *Client) Tasks(ctx context.Context, workspaceID, projectID string) ([]Task, error) {
	return paginate[Task](ctx, c, fmt.Sprintf("/workspaces/%s/projects/%s/tasks", workspaceID, projectID), nil)
}

// TimeEntries lists a user's time entries between start and end, following
// pagination. Instants are sent as UTC RFC3339.
func (c *Client) TimeEntries(ctx context.Context, workspaceID, userID string, start, end time.Time) ([]TimeEntry, error) {
	params := url.Values{}
	params.Set("start", start.UTC().Format(time.RFC3339))
	params.Set("end", end.UTC().Format(time.RFC3339))

	path := fmt.Sprintf("/workspaces/%s/user/%s/time-entries", workspaceID, userID)

	return paginate[TimeEntry](ctx, c, path, params)
}

// paginate fetches every page of a listing until a short page arrives.
func paginate[T any](ctx context.Context, c *Client, path string, params url.Values) ([]T, error) {
	var all []T

	for page := 1; ; page++ {
		pageParams := url.Values{}
		for k, vs := range params {
			pageParams[k] = vs
		}

		pageParams.Set("page", strconv.Itoa(page))
		pageParams.Set("page-size", strconv.Itoa(pageSize))

		var items []T

		err := c.getJSON(ctx, path, pageParams, &items)
		if err != nil {
			return nil, err
		}

		if len(items) == 0 {
			break
		}

		all = append(all, items...)

		if len(items) < pageSize {
			break
		}
	}

	return all, nil
}

// getJSON performs a GET with the retry-once policy and decodes the body.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	resp, err := c.do(ctx, path, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return fmt.Errorf("clockify: GET %s: status %d: %s", path, resp.StatusCode, body)
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("clockify: decode %s response: %w", path, err)
	}

	return nil
}

func (c *Client) do(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	resp, err := c.send(ctx, path, params)
	if err == nil && resp.StatusCode < http.StatusInternalServerError {
		return resp, nil
	}

	if err == nil {
		resp.Body.Close()
		c.logger.Warn("clockify server error, retrying once", "path", path, "status", resp.StatusCode)
	} else {
		c.logger.Warn("clockify network error, retrying once", "path", path, "error", err)
	}

	sleepErr := c.sleep(ctx, retryDelay)
	if sleepErr != nil {
		return nil, sleepErr
	}

	resp, err = c.send(ctx, path, params)
	if err != nil {
		return nil, fmt.Errorf("clockify: GET %s: %w", path, err)
	}

	return resp, nil
}

func (c *Client) send(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("clockify: build request: %w", err)
	}

	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	return c.http.Do(req) //nolint:wrapcheck // wrapped by callers with path context.
}
