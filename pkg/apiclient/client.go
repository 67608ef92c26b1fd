// Package apiclient is the Go rendering of the frontend's API connector: a
// single configured HTTP client that every frontend call goes through.
package apiclient

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"os"

	"github.com/go-resty/resty/v2"
)

// BaseURLEnv names the environment variable holding the backend base URL.
const BaseURLEnv = "STUDYHUB_API_BASE_URL"

// Client wraps a resty client configured once with the backend base URL,
// credential-bearing requests and a JSON content-type default.
type Client struct {
	rc *resty.Client
}

// New creates a connector for the given base URL. Cookies are retained
// between requests so credentialed sessions work like the browser client.
func New(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)

	rc := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetCookieJar(jar)

	return &Client{rc: rc}
}

// NewFromEnv creates a connector using the base URL from the environment.
func NewFromEnv() *Client {
	return New(os.Getenv(BaseURLEnv))
}

// SetAuthToken attaches a bearer token to all subsequent requests.
func (c *Client) SetAuthToken(token string) {
	c.rc.SetAuthToken(token)
}

// Request performs a request with the given method, path, optional JSON body,
// extra headers and query parameters. No retries, no interceptors.
func (c *Client) Request(ctx context.Context, method, path string, body interface{}, headers map[string]string, query map[string]string) (*resty.Response, error) {
	req := c.rc.R().SetContext(ctx)

	if body != nil {
		req.SetBody(body)
	}
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	return req.Execute(method, path)
}

// Get is a convenience wrapper for GET requests.
func (c *Client) Get(ctx context.Context, path string, query map[string]string) (*resty.Response, error) {
	return c.Request(ctx, http.MethodGet, path, nil, nil, query)
}

// Post is a convenience wrapper for POST requests with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*resty.Response, error) {
	return c.Request(ctx, http.MethodPost, path, body, nil, nil)
}
