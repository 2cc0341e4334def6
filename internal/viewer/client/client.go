// Package client calls the metadata HTTP API on behalf of the viewer.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResponseBytes bounds decoded responses.
const maxResponseBytes = 8 << 20

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status      int
	Code        string
	Description string
}

// Error returns the message the viewer shows: the server description when
// present, otherwise the error code.
func (e *APIError) Error() string {
	switch {
	case e.Description != "":
		return e.Description
	case e.Code != "":
		return e.Code
	default:
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
}

// Client talks to one API base URL.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a Client for baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", baseURL)
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
		userAgent: "dicomview",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type extractRequest struct {
	Path   string   `json:"path"`
	Fields []string `json:"fields,omitempty"`
}

// FetchMetadata requests the attributes of the document at path. A nil
// fields list requests every attribute.
func (c *Client) FetchMetadata(ctx context.Context, path string, fields []string) (map[string]string, error) {
	body, err := json.Marshal(extractRequest{Path: path, Fields: fields})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	var out map[string]string
	if err := c.do(ctx, http.MethodPost, "/api/dicom-metadata", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CommonFields returns the attribute names shown by default.
func (c *Client) CommonFields(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/api/common-fields", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Fields returns every attribute name the server can resolve.
func (c *Client) Fields(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/api/fields", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Health returns the server health message.
func (c *Client) Health(ctx context.Context) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, maxResponseBytes)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		if json.NewDecoder(limited).Decode(&envelope) == nil {
			apiErr.Code = envelope.Error
			apiErr.Description = envelope.ErrorDescription
		}
		return apiErr
	}
	if err := json.NewDecoder(limited).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
