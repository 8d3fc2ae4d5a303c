// Package transport is the single choke point for every call the client makes
// to the marketplace backend. Outgoing requests and incoming responses flow
// through an ordered middleware pipeline; bearer attachment, logging, metrics,
// and the refresh-and-retry protocol are all named stages on that pipeline.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Client issues JSON requests against a base URL, running every call through
// the registered request and response stages.
type Client struct {
	baseURL        *url.URL
	httpClient     *http.Client
	requestStages  []RequestStage
	responseStages []ResponseStage
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (primarily for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRequestStages appends stages to the request pipeline.
func WithRequestStages(stages ...RequestStage) Option {
	return func(c *Client) {
		c.requestStages = append(c.requestStages, stages...)
	}
}

// WithResponseStages appends stages to the response pipeline.
func WithResponseStages(stages ...ResponseStage) Option {
	return func(c *Client) {
		c.responseStages = append(c.responseStages, stages...)
	}
}

// New creates a Client for the given base URL.
func New(baseURL string, options ...Option) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "[transport New] invalid base URL")
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: http.DefaultClient,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// AddRequestStages appends stages after construction. Used for stages that
// need a reference back to the Client, such as the refresh stage.
func (c *Client) AddRequestStages(stages ...RequestStage) {
	c.requestStages = append(c.requestStages, stages...)
}

// AddResponseStages appends stages after construction.
func (c *Client) AddResponseStages(stages ...ResponseStage) {
	c.responseStages = append(c.responseStages, stages...)
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() *url.URL {
	return c.baseURL
}

// Resolve joins a relative API path onto the base URL.
func (c *Client) Resolve(path string) string {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return c.baseURL.String() + path
	}
	return c.baseURL.ResolveReference(ref).String()
}

// Get issues a GET request and decodes a 2xx JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body and decodes a 2xx response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body and decodes a 2xx response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do issues a request through the full pipeline. A nil body sends no payload;
// anything else is JSON-encoded. On a 2xx response the body is decoded into
// out (when out is non-nil). Any other status is returned as an *APIError,
// unmodified, for the caller to present.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	res, err := c.execute(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "[Client Do] read response")
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decodeAPIError(res, payload)
	}

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrap(err, "[Client Do] decode response")
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "[Client newRequest] encode body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Resolve(path), reader)
	if err != nil {
		return nil, errors.Wrap(err, "[Client newRequest] build request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// execute runs the request through the request stages, sends it, and runs the
// result through the response stages. The refresh stage replays retried
// requests back through execute, so a retry re-enters the full pipeline and
// picks up the freshly minted bearer token.
func (c *Client) execute(req *http.Request) (*http.Response, error) {
	var err error
	for _, stage := range c.requestStages {
		req, err = stage.ProcessRequest(req)
		if err != nil {
			return nil, err
		}
	}

	res, err := c.httpClient.Do(req)

	for _, stage := range c.responseStages {
		res, err = stage.ProcessResponse(req, res, err)
	}
	return res, err
}
