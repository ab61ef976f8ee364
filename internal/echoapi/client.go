// Package echoapi is a read-only Echo360 analytics client. Echo deployments
// differ in how they envelope list payloads and key their analytics fields,
// so the client extracts items from several known envelope keys and probes
// field-name variants when building the engagement table.
package echoapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HTTPDoer abstracts the HTTP client for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to one Echo360 instance with a bearer token.
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

// StatusError reports a non-2xx Echo360 response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("echo360 returned %d: %s", e.Code, e.Body)
}

// Record is one loosely-typed analytics record.
type Record map[string]any

func (c *Client) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build echo360 request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("echo360 request failed: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		_ = resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return resp, nil
}

// getAll fetches every page of an analytics endpoint, following rel="next"
// links. Query params apply to the first request only.
func (c *Client) getAll(ctx context.Context, target string, params url.Values) ([]Record, error) {
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var out []Record
	for target != "" {
		resp, err := c.get(ctx, target)
		if err != nil {
			return nil, err
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read echo360 response: %w", err)
		}

		items, err := extractItems(body)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)

		target = nextLink(resp.Header.Get("Link"))
	}
	return out, nil
}

// envelopeKeys are the wrapper fields Echo360 deployments use for list
// payloads, probed in order.
var envelopeKeys = []string{"results", "data", "items", "analytics", "content", "rows"}

// extractItems unwraps a payload into records: a bare array is taken as-is,
// an object is unwrapped through the first envelope key holding an array,
// and an object with no envelope is treated as a single record.
func extractItems(body []byte) ([]Record, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode echo360 response: %w", err)
	}

	switch v := payload.(type) {
	case []any:
		return recordsFrom(v), nil
	case map[string]any:
		for _, key := range envelopeKeys {
			if inner, ok := v[key].([]any); ok {
				return recordsFrom(inner), nil
			}
		}
		return []Record{Record(v)}, nil
	default:
		return nil, nil
	}
}

func recordsFrom(items []any) []Record {
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if rec, ok := item.(map[string]any); ok {
			out = append(out, Record(rec))
		}
	}
	return out
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

// fetchWithFallback tries the sections form of an analytics endpoint first
// and retries the courses form when the section resource does not exist.
func (c *Client) fetchWithFallback(ctx context.Context, build func(resource string) string) ([]Record, error) {
	params := url.Values{"per_page": {"100"}}
	records, err := c.getAll(ctx, build("sections"), params)
	if err == nil {
		return records, nil
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusNotFound {
		return nil, err
	}
	return c.getAll(ctx, build("courses"), params)
}

// MediaSummaries returns per-media aggregate analytics for a section.
func (c *Client) MediaSummaries(ctx context.Context, sectionID string) ([]Record, error) {
	return c.fetchWithFallback(ctx, func(resource string) string {
		return fmt.Sprintf("%s/api/v1/%s/%s/analytics/media", c.baseURL, resource, url.PathEscape(sectionID))
	})
}

// ViewerEngagement returns per-viewer view records for a section.
func (c *Client) ViewerEngagement(ctx context.Context, sectionID string) ([]Record, error) {
	return c.fetchWithFallback(ctx, func(resource string) string {
		return fmt.Sprintf("%s/api/v1/%s/%s/analytics/viewers", c.baseURL, resource, url.PathEscape(sectionID))
	})
}

// str returns the first non-empty string among the record's keys.
func (r Record) str(keys ...string) string {
	for _, key := range keys {
		if s, ok := r[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// num returns the first present numeric or numeric-string value among the
// record's keys, rendered as a plain decimal string.
func (r Record) num(keys ...string) string {
	for _, key := range keys {
		switch v := r[key].(type) {
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case string:
			if v != "" {
				return v
			}
		}
	}
	return ""
}

// sub returns a nested record, or an empty one when absent.
func (r Record) sub(key string) Record {
	if m, ok := r[key].(map[string]any); ok {
		return Record(m)
	}
	return Record{}
}
