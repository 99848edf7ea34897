package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/model"
)

const defaultTimeout = 30 * time.Second

// HTTPClient implements Repository against a mem0-style REST API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// HTTPOption is a functional option for HTTPClient
type HTTPOption func(*HTTPClient)

// WithTimeout overrides the per-call timeout for store requests
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client (mainly for tests)
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// NewHTTPClient creates a Repository backed by the remote memory service
func NewHTTPClient(baseURL, apiKey string, opts ...HTTPOption) (*HTTPClient, error) {
	if baseURL == "" {
		return nil, goerr.New("store base URL is required")
	}
	if apiKey == "" {
		return nil, goerr.New("store API key is required")
	}

	c := &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) Add(ctx context.Context, input AddInput) (any, error) {
	body := map[string]any{
		"messages": input.Messages,
		"user_id":  input.UserKey,
		"metadata": input.Metadata,
	}

	var raw any
	if err := c.call(ctx, http.MethodPost, "/v1/memories/", body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *HTTPClient) Search(ctx context.Context, input SearchInput) ([]any, error) {
	var raw any

	if strings.TrimSpace(input.Query) == "" {
		// Recent-memory sample via the list endpoint; the search endpoint
		// rejects empty queries.
		path := "/v1/memories/?user_id=" + url.QueryEscape(input.UserKey)
		if input.Limit > 0 {
			path += "&limit=" + strconv.Itoa(input.Limit)
		}
		if err := c.call(ctx, http.MethodGet, path, nil, &raw); err != nil {
			return nil, err
		}
	} else {
		body := map[string]any{
			"query":   input.Query,
			"user_id": input.UserKey,
		}
		if input.Limit > 0 {
			body["limit"] = input.Limit
		}
		if err := c.call(ctx, http.MethodPost, "/v1/memories/search/", body, &raw); err != nil {
			return nil, err
		}
	}

	// The search endpoint has returned both a bare array and an object with
	// a "results" array across service versions.
	switch v := raw.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if results, ok := v["results"].([]any); ok {
			return results, nil
		}
	}
	if raw == nil {
		return nil, nil
	}
	return []any{raw}, nil
}

func (c *HTTPClient) Get(ctx context.Context, userKey string, id model.MemoryID) (any, error) {
	path := "/v1/memories/" + url.PathEscape(string(id)) + "/?user_id=" + url.QueryEscape(userKey)

	var raw any
	if err := c.call(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *HTTPClient) Delete(ctx context.Context, userKey string, id model.MemoryID) error {
	path := "/v1/memories/" + url.PathEscape(string(id)) + "/?user_id=" + url.QueryEscape(userKey)
	return c.call(ctx, http.MethodDelete, path, nil, nil)
}

// call sends one request to the store and decodes the JSON response into out.
// Timeouts are reported as model.ErrStoreTimeout, other transport failures as
// model.ErrStoreUnavailable, and 404 as model.ErrMemoryNotFound.
func (c *HTTPClient) call(ctx context.Context, method, path string, body any, out *any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal request body")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return goerr.Wrap(err, "failed to create request", goerr.V("path", path))
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return goerr.Wrap(model.ErrStoreTimeout, "store call timed out",
				goerr.V("method", method), goerr.V("path", path))
		}
		return goerr.Wrap(model.ErrStoreUnavailable, "store call failed",
			goerr.V("method", method), goerr.V("path", path), goerr.V("cause", err.Error()))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return goerr.Wrap(model.ErrMemoryNotFound, "store returned 404", goerr.V("path", path))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return goerr.Wrap(model.ErrStoreUnavailable, "store returned error",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(respBody)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			*out = nil
			return nil
		}
		return goerr.Wrap(model.ErrStoreUnavailable, "failed to decode store response",
			goerr.V("path", path))
	}
	return nil
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
