// Package scmapi talks to the Swim Club Manager REST API.
package scmapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ColinRobbins/scm-helper/internal/core"
	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

// Version identifies this tool in the User-Agent header.
const Version = "1.0.0"

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.swimclubmanager.co.uk"

const defaultTimeout = 30 * time.Second

// Client implements core.Transport over HTTP.
type Client struct {
	base   string
	key    string
	agent  string
	client *http.Client
}

// Option adjusts a Client.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint, for tests.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.base = base }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// New builds a client authenticating with the given API key. The club
// name goes into the User-Agent so the operator is identifiable
// upstream.
func New(key, club string, opts ...Option) *Client {
	c := &Client{
		base:   DefaultBaseURL,
		key:    key,
		agent:  fmt.Sprintf("SCM-Helper-v%s %s", Version, club),
		client: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Read fetches one page of a resource. A 404 maps to core.ErrNotFound.
// Some resources answer with a single object rather than a page; those
// come back as a one-element slice.
func (c *Client) Read(ctx context.Context, resource string, page int) ([]domain.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/"+resource, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", resource, err)
	}
	req.Header.Set("User-Agent", c.agent)
	req.Header.Set("Authorization-Token", c.key)
	req.Header.Set("Page", strconv.Itoa(page))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s page %d: %w", resource, page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, core.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("get %s page %d: %s", resource, page, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s page %d: %w", resource, page, err)
	}
	return decodeRecords(body)
}

func decodeRecords(body []byte) ([]domain.Record, error) {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	switch v := payload.(type) {
	case []any:
		recs := make([]domain.Record, 0, len(v))
		for _, item := range v {
			rec, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("decode response: unexpected element %T", item)
			}
			recs = append(recs, domain.Record(rec))
		}
		return recs, nil
	case map[string]any:
		return []domain.Record{domain.Record(v)}, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("decode response: unexpected payload %T", payload)
	}
}

// Write sends a record to a resource: POST to create, PUT to update.
func (c *Client) Write(ctx context.Context, resource string, rec domain.Record, create bool) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", resource, err)
	}

	method := http.MethodPut
	if create {
		method = http.MethodPost
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+"/"+resource, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request for %s: %w", resource, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.agent)
	req.Header.Set("Authorization-Token", c.key)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, resource, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return core.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: %s", method, resource, resp.Status)
	}
	return nil
}
