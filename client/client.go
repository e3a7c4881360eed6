// Package client is the Go consumer of the task API: it wraps the HTTP
// surface, unwraps the response envelope and converts failures into errors
// carrying the server-provided message.
package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valyala/fasthttp"

	"github.com/tasklite/backend/api/transport"
	"github.com/tasklite/backend/domain"
)

const fallbackMessage = "an unexpected error occurred"

// APIError is a non-success response surfaced by the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to a task API server. There are no retries and no timeout
// handling beyond what the transport (or the caller's context deadline)
// provides: failures propagate directly.
type Client struct {
	baseURL string
	http    *fasthttp.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying fasthttp client, e.g. one with
// a custom Dial for in-memory test listeners.
func WithHTTPClient(httpClient *fasthttp.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// New creates a client for the API rooted at baseURL, e.g. "http://127.0.0.1:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &fasthttp.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetAll fetches the full task collection.
func (c *Client) GetAll(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, fasthttp.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// GetByID fetches a single task.
func (c *Client) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, fasthttp.MethodGet, "/api/tasks/"+id, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Create creates a task on the server and returns the authoritative record.
func (c *Client) Create(ctx context.Context, payload domain.CreateTaskPayload) (*domain.Task, error) {
	req := transport.CreateTaskRequest{Title: &payload.Title}
	if payload.Priority != "" {
		priority := string(payload.Priority)
		req.Priority = &priority
	}

	var task domain.Task
	if err := c.do(ctx, fasthttp.MethodPost, "/api/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update applies a partial update and returns the authoritative record.
func (c *Client) Update(ctx context.Context, id string, payload domain.UpdateTaskPayload) (*domain.Task, error) {
	req := transport.UpdateTaskRequest{
		Title:     payload.Title,
		Completed: payload.Completed,
	}
	if payload.Priority != nil {
		priority := string(*payload.Priority)
		req.Priority = &priority
	}

	var task domain.Task
	if err := c.do(ctx, fasthttp.MethodPatch, "/api/tasks/"+id, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes a single task.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, fasthttp.MethodDelete, "/api/tasks/"+id, nil, nil)
}

// DeleteAll clears the collection.
func (c *Client) DeleteAll(ctx context.Context) error {
	return c.do(ctx, fasthttp.MethodDelete, "/api/tasks", nil, nil)
}

// envelope mirrors transport.Envelope with a deferred data payload.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		req.SetBodyRaw(raw)
	}

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.Do(req, resp)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return &APIError{Status: resp.StatusCode(), Message: fallbackMessage}
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 || !env.Success {
		message := env.Error
		if message == "" {
			message = fallbackMessage
		}
		return &APIError{Status: status, Message: message}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &APIError{Status: status, Message: fallbackMessage}
		}
	}
	return nil
}
