//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/oshokin/protonup/internal/version"
)

const (
	// DefaultCallTimeout bounds short metadata requests such as feed lookups.
	DefaultCallTimeout = 30 * time.Second

	// maxMetadataSize caps the body read by Fetch.
	maxMetadataSize = 8 << 20
)

var (
	// ErrBadHTTPStatus is returned when the server answers with a non-2xx status.
	ErrBadHTTPStatus = errors.New("unexpected http status")
	// errURLRequired is returned when a request URL is missing.
	errURLRequired = errors.New("url must be provided")
)

// StatusError carries the status of a failed HTTP response.
type StatusError struct {
	// URL is the requested address.
	URL string
	// StatusCode is the numeric HTTP status.
	StatusCode int
	// Status is the status line reported by the server.
	Status string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s, %s: %s", e.URL, e.Status, ErrBadHTTPStatus)
}

// Is makes errors.Is(err, ErrBadHTTPStatus) succeed.
func (e *StatusError) Is(target error) bool {
	return target == ErrBadHTTPStatus
}

// Client wraps an *http.Client with a user agent and a metadata call timeout.
type Client struct {
	// http is the underlying transport client.
	http *http.Client
	// userAgent is sent with every request.
	userAgent string
	// callTimeout is the default timeout for Fetch calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for metadata calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// NewClient builds a client with sensible transport timeouts.
func NewClient(opts ...Option) *Client {
	client := &Client{
		http:        &http.Client{Transport: NewTransport()},
		userAgent:   UserAgent(),
		callTimeout: DefaultCallTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// NewTransport returns a transport with connection-level timeouts only,
// so large downloads are not cut off by an overall deadline.
func NewTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          8,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   15 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// UserAgent identifies protonup to remote servers.
func UserAgent() string {
	return fmt.Sprintf("protonup/%s (%s/%s)", version.Short(), runtime.GOOS, runtime.GOARCH)
}

// Open issues a GET and returns the response with an unread body.
// The caller must close the body. Non-2xx statuses are returned as *StatusError.
func (c *Client) Open(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	if rawURL == "" {
		return nil, errURLRequired
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent)

	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	response, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		_ = response.Body.Close()

		return nil, &StatusError{
			URL:        rawURL,
			StatusCode: response.StatusCode,
			Status:     response.Status,
		}
	}

	return response, nil
}

// Fetch downloads a small document within the call timeout.
func (c *Client) Fetch(ctx context.Context, rawURL, accept string) ([]byte, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.Open(callCtx, rawURL, accept)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	return io.ReadAll(io.LimitReader(response.Body, maxMetadataSize))
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
