// Package apiclient is the REST client used by every resource service.
// Requests pass through an explicit chain of interceptors before reaching
// the transport; any non-2xx answer comes back as *domain.HTTPError.
package apiclient

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

	"github.com/simp-lee/partsweb/internal/domain"
)

// DefaultTimeout bounds a single round trip when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps how much of a response body is read into memory.
const maxBodySize = 10 << 20

// Handler performs one HTTP exchange.
type Handler func(*http.Request) (*http.Response, error)

// Interceptor wraps a Handler with cross-cutting behavior.
type Interceptor func(next Handler) Handler

// Chain composes interceptors so that the first one is the outermost.
func Chain(interceptors ...Interceptor) Interceptor {
	return func(next Handler) Handler {
		h := next
		for i := len(interceptors) - 1; i >= 0; i-- {
			if interceptors[i] != nil {
				h = interceptors[i](h)
			}
		}
		return h
	}
}

// Options configures a Client.
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Headers      map[string]string
	Interceptors []Interceptor
}

// Client sends JSON requests to a single REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
	handler    Handler
}

// New validates opts and builds a Client.
func New(opts Options) (*Client, error) {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", base)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: httpClient,
		headers: map[string]string{
			"Accept": "application/json",
		},
	}
	for k, v := range opts.Headers {
		c.headers[k] = v
	}
	c.handler = Chain(opts.Interceptors...)(c.roundTrip)
	return c, nil
}

// BaseURL returns the base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL joins the base URL, path and optional id into a request URL.
// The id is path-escaped; path is used as given.
func (c *Client) URL(path, id string) string {
	u := c.baseURL + "/" + strings.Trim(path, "/")
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

// Do sends one request and decodes a JSON answer into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path, id string, query url.Values, body, out any) error {
	target := c.URL(path, id)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s body: %w", method, target, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, target, err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.handler(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", method, target, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, target, err)
	}
	return nil
}

// roundTrip is the innermost handler. It buffers the body so interceptors can
// inspect it and turns non-2xx answers into *domain.HTTPError.
func (c *Client) roundTrip(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.HTTPError{
			Method: req.Method,
			URL:    req.URL.String(),
			Err:    err,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &domain.HTTPError{
			Method: req.Method,
			URL:    req.URL.String(),
			Err:    fmt.Errorf("read response body: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.HTTPError{
			Method:     req.Method,
			URL:        req.URL.String(),
			Status:     resp.StatusCode,
			StatusText: statusText(resp),
			Body:       raw,
		}
	}

	resp.Body = io.NopCloser(bytes.NewReader(raw))
	return resp, nil
}

// statusText returns the reason phrase sent by the server, falling back to
// the standard text for the code.
func statusText(resp *http.Response) string {
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode))); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// Get reads path (or path/id when id is non-empty) and decodes the answer as T.
func Get[T any](ctx context.Context, c *Client, path, id string, query url.Values) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodGet, path, id, query, nil, &out)
	return out, err
}

// GetPaginated reads one page of path, sending the present params as query
// parameters, and checks the envelope before returning it.
func GetPaginated[T any](ctx context.Context, c *Client, path string, params domain.PaginationParams) (*domain.PageResponse[T], error) {
	var page domain.PageResponse[T]
	if err := c.Do(ctx, http.MethodGet, path, "", params.Query(), nil, &page); err != nil {
		return nil, err
	}
	if page.Content == nil {
		page.Content = []T{}
	}
	if err := page.Validate(); err != nil {
		return nil, fmt.Errorf("GET %s: malformed page: %w", c.URL(path, ""), err)
	}
	return &page, nil
}

// Post creates a resource under path and decodes the answer as T.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPost, path, "", nil, body, &out)
	return out, err
}

// Put replaces path/id and decodes the answer as T.
func Put[T any](ctx context.Context, c *Client, path, id string, body any) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPut, path, id, nil, body, &out)
	return out, err
}

// Delete removes path/id.
func Delete(ctx context.Context, c *Client, path, id string) error {
	return c.Do(ctx, http.MethodDelete, path, id, nil, nil, nil)
}

// Path joins escaped segments into a resource path, e.g.
// Path("parts", id, "compatibilities").
func Path(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		if s == "" {
			continue
		}
		escaped = append(escaped, url.PathEscape(s))
	}
	return strings.Join(escaped, "/")
}
