package integrations

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sduenas/perceval-mozilla/pkg/httputil"
)

// Client provides shared HTTP functionality for registry API clients.
// It dispatches GET requests, applies default headers, and recovers from
// connection loss according to its retry policy. Bodies are returned as
// raw text; callers decode what they need.
type Client struct {
	http    *http.Client
	policy  httputil.Policy
	headers map[string]string
	logger  *log.Logger
}

// NewClient creates a Client with the given retry policy and default
// headers. Headers are applied to every request made through this client;
// pass nil if none are needed. A nil logger falls back to log.Default()
// and a nil httpClient to [NewHTTPClient].
func NewClient(httpClient *http.Client, policy httputil.Policy, headers map[string]string, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	if logger == nil {
		logger = log.Default()
	}
	c := &Client{
		http:    httpClient,
		policy:  policy,
		headers: headers,
		logger:  logger,
	}
	if c.policy.OnRetry == nil {
		c.policy.OnRetry = func(attempt int, wait time.Duration, err error) {
			logger.Warn("connection lost, sleeping before retrying",
				"attempt", attempt, "sleep", wait, "error", err)
		}
	}
	return c
}

// GetText performs a GET request against rawURL with optional query
// parameters and returns the response body as a string.
//
// Connection-level failures are retried under the client's policy. A non-2xx
// response is never retried: the body is logged and the call fails with a
// [httputil.StatusError] carrying it.
func (c *Client) GetText(ctx context.Context, rawURL string, params url.Values) (string, error) {
	var body string
	err := c.policy.Do(ctx, func() error {
		b, err := c.doRequest(ctx, rawURL, params)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	return body, err
}

func (c *Client) doRequest(ctx context.Context, rawURL string, params url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	if len(params) > 0 {
		req.URL.RawQuery = params.Encode()
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrConnection, err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrConnection, err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		serr := &httputil.StatusError{
			StatusCode: resp.StatusCode,
			URL:        req.URL.String(),
			Body:       string(data),
		}
		c.logger.Error("HTTP error response", "status", resp.StatusCode,
			"url", req.URL.String(), "body", serr.Body)
		return "", serr
	}
	return string(data), nil
}
