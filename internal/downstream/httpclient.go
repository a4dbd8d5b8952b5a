package downstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/baechuer/real-time-ressys/services/admin-console/internal/logger"
	"github.com/baechuer/real-time-ressys/services/admin-console/middleware"
	"github.com/go-chi/render"
)

type ClientConfig struct {
	// BaseURL is the backend API root, e.g. http://localhost:8080/api
	BaseURL string
	// ReadTimeout is used for GET requests
	ReadTimeout time.Duration
	// WriteTimeout is used for POST, PUT, PATCH, DELETE requests
	WriteTimeout time.Duration
	// Transport is wrapped with trace propagation. Nil means http.DefaultTransport.
	Transport http.RoundTripper
}

func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:      baseURL,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Client is the one way the console talks to the backend:
// 1. Joins paths onto the fixed base URL
// 2. Injects X-Request-ID from context
// 3. Enforces timeouts based on HTTP method (read vs write)
// 4. Turns every non-2xx status into a *StatusError, for mutations too
type Client struct {
	baseURL    string
	baseClient *http.Client
	config     ClientConfig
}

func NewClient(config ClientConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		baseClient: &http.Client{
			// per-request timeouts, see Do
			Timeout:   0,
			Transport: &middleware.TracingTransport{Base: config.Transport},
		},
		config: config,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Do executes req with the request id and the method-based timeout.
// The timeout covers reading the body; it is released when the body is closed.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	reqID := middleware.GetRequestID(ctx)
	if reqID != "" {
		req.Header.Set(middleware.HeaderXRequestID, reqID)
	}

	timeout := c.config.ReadTimeout
	if isWriteMethod(req.Method) {
		timeout = c.config.WriteTimeout
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	req = req.WithContext(ctx)

	log := logger.Log.With().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("request_id", reqID).
		Logger()

	start := time.Now()
	resp, err := c.baseClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		cancel()
		observe(req.Method, "error", duration)
		log.Warn().
			Err(err).
			Dur("duration", duration).
			Msg("backend_request_failed")
		return nil, c.mapError(err)
	}

	observe(req.Method, statusClass(resp.StatusCode), duration)
	log.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		Msg("backend_request_completed")

	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// mapError converts low-level errors to domain errors. A canceled caller
// context is returned as is; the caller went away, the backend did not.
func (c *Client) mapError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	// connection refused, DNS errors, etc.
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.send(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.send(ctx, http.MethodDelete, path, nil, "", out)
}

func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) PutJSON(ctx context.Context, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPut, path, body, out)
}

// PostForm sends an urlencoded body; the backend reads some create
// endpoints from form values rather than JSON.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	return c.send(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s body: %w", path, err)
	}
	return c.send(ctx, method, path, bytes.NewReader(b), "application/json", out)
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return &CallError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(method, path, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := render.DecodeJSON(resp.Body, out); err != nil {
		return &CallError{Method: method, Path: path, Err: fmt.Errorf("%w: %v", ErrDecode, err)}
	}
	return nil
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// isWriteMethod returns true for HTTP methods that modify state
func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
