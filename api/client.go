// Package api is the client for the news datastore's REST surface.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"newsweb/model"
)

const defaultBaseURL = "http://localhost:3000"

// Client provides access to the datastore.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the datastore base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a datastore client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestError is a non-2xx response from the datastore.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	body := e.Body
	if body == "" {
		body = http.StatusText(e.Status)
	}
	return fmt.Sprintf("API %d: %s", e.Status, body)
}

// IsNotFound reports whether err is a 404 from the datastore.
func IsNotFound(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Status == http.StatusNotFound
}

// do issues a request and decodes the JSON response into out, unless out is
// nil. Responses are never served from cache.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &RequestError{Status: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ListUsers returns all users.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListNews returns all news items.
func (c *Client) ListNews(ctx context.Context) ([]model.NewsItem, error) {
	var items []model.NewsItem
	if err := c.do(ctx, http.MethodGet, "/news", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetNews returns a single news item.
func (c *Client) GetNews(ctx context.Context, id model.ID) (*model.NewsItem, error) {
	var item model.NewsItem
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/news/%d", id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateNewsPayload is the body of a news creation. The id is assigned by the
// backend.
type CreateNewsPayload struct {
	Title    string          `json:"title"`
	Body     string          `json:"body"`
	AuthorID model.ID        `json:"author_id"`
	Comments []model.Comment `json:"comments"`
}

// CreateNews creates a news item and returns the stored representation.
func (c *Client) CreateNews(ctx context.Context, payload CreateNewsPayload) (*model.NewsItem, error) {
	if payload.Comments == nil {
		payload.Comments = []model.Comment{}
	}
	var item model.NewsItem
	if err := c.do(ctx, http.MethodPost, "/news", payload, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// NewsPatch is a partial news update. Only non-nil fields are sent.
type NewsPatch struct {
	Title    *string          `json:"title,omitempty"`
	Body     *string          `json:"body,omitempty"`
	Comments *[]model.Comment `json:"comments,omitempty"`
}

// PatchNews applies a partial update and returns the updated item.
func (c *Client) PatchNews(ctx context.Context, id model.ID, patch NewsPatch) (*model.NewsItem, error) {
	var item model.NewsItem
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/news/%d", id), patch, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteNews deletes a news item.
func (c *Client) DeleteNews(ctx context.Context, id model.ID) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/news/%d", id), nil, nil)
}
