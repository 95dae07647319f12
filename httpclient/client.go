package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type (
	// RequestHook runs before a request is sent and may mutate it. A non-nil
	// error aborts the dispatch.
	RequestHook func(req *http.Request) error

	// ResponseHook runs on every successful (2xx) response.
	ResponseHook func(resp *http.Response) error

	// ErrorHook runs when the transport fails or the response status is not
	// 2xx. `resp` is nil on transport failure. The returned error replaces
	// the original; returning it unchanged re-raises it.
	ErrorHook func(resp *http.Response, err error) error

	// Client is a thin JSON client over net/http with registration points for
	// request/response interception, shared by everything that talks to the
	// academic API.
	Client struct {
		baseURL   string
		http      *http.Client
		reqHooks  []RequestHook
		respHooks []ResponseHook
		errHooks  []ErrorHook
	}
)

// APIError is returned for any response with a non-2xx status code.
type APIError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s", e.Status)
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// OnRequest registers a hook to run before every outgoing request, in
// registration order.
func (c *Client) OnRequest(h RequestHook) {
	c.reqHooks = append(c.reqHooks, h)
}

// OnResponse registers a success hook and an error hook. Either may be nil.
func (c *Client) OnResponse(h ResponseHook, eh ErrorHook) {
	if h != nil {
		c.respHooks = append(c.respHooks, h)
	}
	if eh != nil {
		c.errHooks = append(c.errHooks, eh)
	}
}

// NewRequest builds a request against the client's base URL; a non-nil body
// is JSON-encoded.
func (c *Client) NewRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request body")
		}
		buf = bytes.NewReader(data)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Do dispatches the request through the hook chains. Non-2xx responses are
// surfaced as *APIError (after the error hooks have run); the response body
// is consumed in that case.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	for _, h := range c.reqHooks {
		if err := h(req); err != nil {
			return nil, errors.Wrap(err, "request hook")
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.raise(nil, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		apiErr := &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: body}
		return resp, c.raise(resp, apiErr)
	}

	for _, h := range c.respHooks {
		if hErr := h(resp); hErr != nil {
			resp.Body.Close()
			return resp, hErr
		}
	}
	return resp, nil
}

// GetJSON GETs `path` and decodes the response body into `out`.
func (c *Client) GetJSON(ctx context.Context, path string, out interface{}) error {
	req, err := c.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

// PostJSON POSTs `in` to `path` and decodes the response body into `out`
// (skipped when `out` is nil).
func (c *Client) PostJSON(ctx context.Context, path string, in, out interface{}) error {
	req, err := c.NewRequest(ctx, http.MethodPost, path, in)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decoding response body")
	}
	return nil
}

func (c *Client) raise(resp *http.Response, err error) error {
	for _, h := range c.errHooks {
		err = h(resp, err)
	}
	return err
}
