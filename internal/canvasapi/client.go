// Package canvasapi is a read-only Canvas LMS client covering the endpoints
// the reports need: the module tree (ordering catalog), assignments,
// enrollments, submissions, and page bodies. All list endpoints paginate via
// the Link response header.
package canvasapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"courselens/internal/catalog"
)

// HTTPDoer abstracts the HTTP client for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to one Canvas instance with a personal access token.
type Client struct {
	baseURL string
	token   string
	httpc   HTTPDoer
}

// New constructs a client. A nil doer uses a default 30s-timeout client.
func New(baseURL, token string, doer HTTPDoer) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   token,
		httpc:   doer,
	}
}

// StatusError reports a non-2xx Canvas response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("canvas returned %d: %s", e.Code, e.Body)
}

func (c *Client) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build canvas request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("canvas request failed: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		_ = resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return resp, nil
}

// getAll fetches every page of a list endpoint, following rel="next" links.
// Query params apply to the first request only; next links carry their own.
func (c *Client) getAll(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error) {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var out []json.RawMessage
	for target != "" {
		resp, err := c.get(ctx, target)
		if err != nil {
			return nil, err
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read canvas response: %w", err)
		}

		items, err := splitPayload(body)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)

		target = nextLink(resp.Header.Get("Link"))
	}
	return out, nil
}

func splitPayload(body []byte) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decode canvas response: %w", err)
		}
		return items, nil
	}
	return []json.RawMessage{json.RawMessage(body)}, nil
}

// nextLink extracts the rel="next" target from a Link header, or "".
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		seg := strings.TrimSpace(part)
		if !strings.Contains(strings.ToLower(seg), `rel="next"`) {
			continue
		}
		urlPart := strings.TrimSpace(strings.SplitN(seg, ";", 2)[0])
		return strings.Trim(urlPart, "<>")
	}
	return ""
}

func decodeEach[T any](raw []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raw))
	for _, msg := range raw {
		var item T
		if err := json.Unmarshal(msg, &item); err != nil {
			return nil, fmt.Errorf("decode canvas record: %w", err)
		}
		out = append(out, item)
	}
	return out, nil
}

// ListModules returns the course module tree with items included, preserving
// the natural item order Canvas reports.
func (c *Client) ListModules(ctx context.Context, courseID int64) ([]catalog.Module, error) {
	params := url.Values{"per_page": {"100"}, "include[]": {"items"}}
	raw, err := c.getAll(ctx, fmt.Sprintf("/api/v1/courses/%d/modules", courseID), params)
	if err != nil {
		return nil, err
	}
	return decodeEach[catalog.Module](raw)
}

// ListAssignments returns the course assignments with grading metadata.
func (c *Client) ListAssignments(ctx context.Context, courseID int64) ([]Assignment, error) {
	params := url.Values{
		"per_page":  {"100"},
		"include[]": {"submission_types", "grading_type"},
	}
	raw, err := c.getAll(ctx, fmt.Sprintf("/api/v1/courses/%d/assignments", courseID), params)
	if err != nil {
		return nil, err
	}
	return decodeEach[Assignment](raw)
}

// ListStudentEnrollments returns active student enrollments with grades.
func (c *Client) ListStudentEnrollments(ctx context.Context, courseID int64) ([]Enrollment, error) {
	params := url.Values{
		"per_page":  {"100"},
		"type[]":    {"StudentEnrollment"},
		"state[]":   {"active"},
		"include[]": {"grades", "user"},
	}
	raw, err := c.getAll(ctx, fmt.Sprintf("/api/v1/courses/%d/enrollments", courseID), params)
	if err != nil {
		return nil, err
	}
	return decodeEach[Enrollment](raw)
}

// ListSubmissions returns every student submission for the course.
func (c *Client) ListSubmissions(ctx context.Context, courseID int64) ([]Submission, error) {
	params := url.Values{"per_page": {"100"}, "student_ids[]": {"all"}}
	raw, err := c.getAll(ctx, fmt.Sprintf("/api/v1/courses/%d/students/submissions", courseID), params)
	if err != nil {
		return nil, err
	}
	return decodeEach[Submission](raw)
}

// PageBody fetches one wiki page's HTML body.
func (c *Client) PageBody(ctx context.Context, courseID int64, pageURL string) (string, error) {
	target := fmt.Sprintf("%s/api/v1/courses/%d/pages/%s", c.baseURL, courseID, url.PathEscape(pageURL))
	resp, err := c.get(ctx, target)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var page struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return "", fmt.Errorf("decode canvas page: %w", err)
	}
	return page.Body, nil
}

// StudentCount counts distinct users among active student enrollments.
func (c *Client) StudentCount(ctx context.Context, courseID int64) (int, error) {
	params := url.Values{
		"per_page": {"100"},
		"type[]":   {"StudentEnrollment"},
		"state[]":  {"active"},
	}
	raw, err := c.getAll(ctx, fmt.Sprintf("/api/v1/courses/%d/enrollments", courseID), params)
	if err != nil {
		return 0, err
	}
	enrollments, err := decodeEach[Enrollment](raw)
	if err != nil {
		return 0, err
	}
	users := make(map[int64]struct{}, len(enrollments))
	for _, e := range enrollments {
		if e.UserID != 0 {
			users[e.UserID] = struct{}{}
		}
	}
	return len(users), nil
}

// BuildOrder fetches the module tree and flattens it into the ordered
// catalog, resolving page bodies for embed scanning. Page fetch failures
// degrade to plain page rows.
func (c *Client) BuildOrder(ctx context.Context, courseID int64) ([]catalog.Item, error) {
	modules, err := c.ListModules(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return catalog.BuildOrder(modules, func(pageURL string) (string, error) {
		return c.PageBody(ctx, courseID, pageURL)
	}), nil
}
