// Package client provides the HTTP client shared by all upstream checkers.
//
// A Client is owned by a single worker and issues requests sequentially.
// It never retries: a failed request fails the check that issued it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/dnscache"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "findupdate"

	// MaxPageSize is the body limit applied to scraped pages.
	MaxPageSize = 10 * 1024 * 1024
)

// Client is an HTTP client for upstream APIs.
type Client struct {
	http      *http.Client
	userAgent string
	breakers  *Breakers
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithBreakers routes every request through per-host circuit breakers.
// The same Breakers value may be shared by clients of different workers.
func WithBreakers(b *Breakers) Option {
	return func(c *Client) {
		c.breakers = b
	}
}

// WithDNSCache makes the client resolve hosts through a shared DNS cache.
// The caller owns the resolver and is responsible for refreshing it.
func WithDNSCache(resolver *dnscache.Resolver) Option {
	return func(c *Client) {
		dialer := &net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}
		c.http.Transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				host, port, err := net.SplitHostPort(addr)
				if err != nil {
					return nil, err
				}
				ips, err := resolver.LookupHost(ctx, host)
				if err != nil {
					return nil, err
				}
				for _, ip := range ips {
					conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
					if err == nil {
						return conn, nil
					}
				}
				return nil, fmt.Errorf("failed to dial any resolved IP for %s", host)
			},
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   2,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
	}
}

// DefaultClient returns a client with a 30s timeout and no circuit breakers.
func DefaultClient() *Client {
	return NewClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithUserAgent returns a copy of the client sending ua by default.
func (c *Client) WithUserAgent(ua string) *Client {
	cp := *c
	cp.userAgent = ua
	return &cp
}

// Request describes a single upstream request.
type Request struct {
	Method string
	URL    string
	Header map[string]string
	Body   []byte
	// Limit rejects bodies larger than Limit bytes. Zero means unlimited.
	Limit int64
}

// Do performs req and returns the response body.
// Non-2xx responses are returned as *HTTPError.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	if c.breakers == nil {
		return c.do(ctx, req)
	}
	return c.breakers.call(req.URL, func() ([]byte, error) {
		return c.do(ctx, req)
	})
}

func (c *Client) do(ctx context.Context, r Request) ([]byte, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range r.Header {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{URL: r.URL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: r.URL, Body: string(snippet)}
	}

	if r.Limit <= 0 {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &TransportError{URL: r.URL, Err: err}
		}
		return data, nil
	}

	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil && n > r.Limit {
			return nil, &BodyTooLargeError{URL: r.URL, Size: n, Limit: r.Limit}
		}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, r.Limit+1))
	if err != nil {
		return nil, &TransportError{URL: r.URL, Err: err}
	}
	if int64(len(data)) > r.Limit {
		return nil, &BodyTooLargeError{URL: r.URL, Size: -1, Limit: r.Limit}
	}
	return data, nil
}

// GetBody performs a GET request and returns the body.
func (c *Client) GetBody(ctx context.Context, url string) ([]byte, error) {
	return c.Do(ctx, Request{URL: url})
}

// GetPage performs a GET request for a scraped page, rejecting bodies
// larger than MaxPageSize.
func (c *Client) GetPage(ctx context.Context, url string) ([]byte, error) {
	return c.Do(ctx, Request{URL: url, Limit: MaxPageSize})
}

// GetJSON performs a GET request and decodes the JSON response into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any, header map[string]string) error {
	body, err := c.Do(ctx, Request{URL: url, Header: withAccept(header)})
	if err != nil {
		return err
	}
	return decodeJSON(url, body, v)
}

// PostJSON sends payload as a JSON document and decodes the JSON response into v.
func (c *Client) PostJSON(ctx context.Context, url string, payload, v any, header map[string]string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	h := withAccept(header)
	h["Content-Type"] = "application/json"

	body, err := c.Do(ctx, Request{Method: http.MethodPost, URL: url, Header: h, Body: data})
	if err != nil {
		return err
	}
	return decodeJSON(url, body, v)
}

func withAccept(header map[string]string) map[string]string {
	h := map[string]string{"Accept": "application/json"}
	for k, v := range header {
		h[k] = v
	}
	return h
}

func decodeJSON(url string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &ProtocolError{Kind: MalformedResponse, URL: url, Err: err}
	}
	return nil
}

// IsFetchError reports whether err is a transport, status or size failure.
func IsFetchError(err error) bool {
	var (
		httpErr  *HTTPError
		tooLarge *BodyTooLargeError
		tErr     *TransportError
	)
	return errors.As(err, &httpErr) || errors.As(err, &tooLarge) ||
		errors.As(err, &tErr) || errors.Is(err, ErrCircuitOpen)
}
