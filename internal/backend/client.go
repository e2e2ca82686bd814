// Package backend is the REST client for the listing backend: step saves,
// photo uploads and listing deletion.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/rentr/internal/listing"
	"github.com/mark3labs/rentr/internal/logger"
	jsonschemav6 "github.com/santhosh-tekuri/jsonschema/v6"
)

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 4 << 10

// StatusError is a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Code, http.StatusText(e.Code), body)
}

// Retryable reports whether resending the request may succeed: server
// errors, timeouts and throttling.
func (e *StatusError) Retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusRequestTimeout || e.Code == http.StatusTooManyRequests
}

// Client talks to the listing backend. It implements listing.Persister and
// listing.Uploader.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest sends one request. body, if non-nil, is sent as JSON. A non-2xx
// status is returned as *StatusError; a 2xx body is decoded into out when
// out is non-nil.
func (c *Client) doRequest(ctx context.Context, actor listing.Actor, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor.Token != "" {
		req.Header.Set("Authorization", "Bearer "+actor.Token)
	}

	logger.Debug("%s %s request_id=%s", method, path, requestID)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("%s %s failed: %v", method, path, err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logger.Error("%s %s returned %d request_id=%s", method, path, resp.StatusCode, requestID)
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(data)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// StepBody builds the JSON body a step save sends: the slice fields, the
// actor identity and, when known, the property id. The body is checked
// against the endpoint's request contract.
func StepBody(actor listing.Actor, step listing.Step, propertyID string, slice any) ([]byte, error) {
	endpoint := step.Endpoint()
	if endpoint == "" {
		return nil, fmt.Errorf("step %s is not saved on its own", step)
	}
	raw, err := json.Marshal(slice)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", step, err)
	}
	fields := make(map[string]any)
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%s is not a JSON object: %w", step, err)
	}
	fields["userId"] = actor.UserID
	fields["username"] = actor.Username
	fields["fullName"] = actor.FullName
	fields["role"] = actor.Role
	if propertyID != "" {
		fields["property"] = propertyID
	}
	return encodeChecked(endpoint, fields)
}

// encodeChecked marshals v and validates the result against the contract.
func encodeChecked(endpoint string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	doc, err := jsonschemav6.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	if err := checkContract(endpoint, doc); err != nil {
		logger.Error("Contract check failed for %s: %v", endpoint, err)
		return nil, err
	}
	return body, nil
}
