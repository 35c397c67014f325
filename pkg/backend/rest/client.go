// Package rest is the hubz REST API client.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tableflip.dev/hubz/pkg/backend"
	"tableflip.dev/hubz/pkg/item"
)

// Client talks to the hubz API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client, which has a 30 second timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New returns a client for baseURL, for example "https://hubz.example/api".
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the wrapped response shape. Bare JSON bodies are accepted too.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("hubz api: status %d", e.Status)
	}
	return fmt.Sprintf("hubz api: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == backend.ErrNotFound && e.Status == http.StatusNotFound
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return decode(data, out)
}

func decode(data []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && env.Success != nil {
		if !*env.Success {
			return &APIError{Status: http.StatusOK, Message: env.Error}
		}
		data = env.Data
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeEach decodes list elements one at a time. Elements that do not decode,
// or that check rejects, are left out.
func decodeEach[T any](raw []json.RawMessage, kind string, check func(T) error) []T {
	out := make([]T, 0, len(raw))
	for i, r := range raw {
		var v T
		err := json.Unmarshal(r, &v)
		if err == nil && check != nil {
			err = check(v)
		}
		if err != nil {
			slog.Debug("skipping malformed item", "kind", kind, "index", i, "err", err)
			continue
		}
		out = append(out, v)
	}
	return out
}

func errorMessage(data []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(data))
}

// ListEvents returns the events between from and to.
func (c *Client) ListEvents(ctx context.Context, from, to time.Time) ([]item.Event, error) {
	q := url.Values{}
	if !from.IsZero() {
		q.Set("from", from.UTC().Format(time.RFC3339))
	}
	if !to.IsZero() {
		q.Set("to", to.UTC().Format(time.RFC3339))
	}
	var raw []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/events", q, nil, &raw); err != nil {
		return nil, err
	}
	return decodeEach(raw, "event", func(e item.Event) error {
		if e.StartTime.IsZero() {
			return errors.New("missing startTime")
		}
		return nil
	}), nil
}

// CreateEvent stores e and returns it with its server id.
func (c *Client) CreateEvent(ctx context.Context, e item.Event) (item.Event, error) {
	var created item.Event
	if err := c.do(ctx, http.MethodPost, "/events", nil, e, &created); err != nil {
		return item.Event{}, err
	}
	if created.ID == "" {
		return item.Event{}, errors.New("hubz api: created event has no id")
	}
	return created, nil
}

// DeleteEvent removes the event with id.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/events/"+url.PathEscape(id), nil, nil, nil)
}

// ListTasks returns every task of the user.
func (c *Client) ListTasks(ctx context.Context) ([]item.Task, error) {
	var raw []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeEach[item.Task](raw, "task", nil), nil
}

// CreateTask stores t and returns it with its server id.
func (c *Client) CreateTask(ctx context.Context, t item.Task) (item.Task, error) {
	var created item.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, t, &created); err != nil {
		return item.Task{}, err
	}
	if created.ID == "" {
		return item.Task{}, errors.New("hubz api: created task has no id")
	}
	return created, nil
}

// DeleteTask removes the task with id.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil, nil)
}

var _ backend.Backend = (*Client)(nil)
