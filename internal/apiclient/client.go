// internal/apiclient/client.go
//
// HTTP client for the vocabulary backend.
// Responsibilities:
//   - Keep the session cookies (cookie jar) and echo the CSRF cookie in
//     X-CSRF-TOKEN on mutating requests.
//   - On a 401, refresh the session once (POST /user/refresh with the
//     csrf_refresh_token cookie) and retry the original request once.
//     Concurrent 401s share a single refresh call.
//   - Throttle outgoing requests with a token bucket.
//   - Turn non-2xx responses into *Error with the backend's detail message.
//
// Notes:
//   - Nothing is retried except the single refresh-and-retry above.
//   - A failed refresh surfaces the original 401.

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Cookie and header names shared with the backend.
const (
	CSRFHeader        = "X-CSRF-TOKEN"
	CSRFAccessCookie  = "csrf_access_token"
	CSRFRefreshCookie = "csrf_refresh_token"
)

const pathRefresh = "/user/refresh"

// csrfKind selects which CSRF cookie a request echoes.
type csrfKind int

const (
	csrfAccess csrfKind = iota
	csrfRefresh
)

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	flight  singleflight.Group
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. A cookie jar is added
// when the client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRateLimit allows rps requests per second with the given burst.
// A non-positive rps disables throttling.
func WithRateLimit(rps, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = rps
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client for the backend at base, e.g. "http://127.0.0.1:8000".
func New(base string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("apiclient: base url must be http(s), got %q", base)
	}
	c := &Client{
		base: u,
		http: &http.Client{Timeout: 10 * time.Second},
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("apiclient: cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

// Cookie returns the value of the named session cookie, or "".
func (c *Client) Cookie(name string) string {
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// SessionCookies returns the cookies the client would send to the backend.
func (c *Client) SessionCookies() []*http.Cookie {
	return c.http.Jar.Cookies(c.base)
}

// RestoreSession puts previously saved cookies back into the jar.
func (c *Client) RestoreSession(cookies []*http.Cookie) {
	c.http.Jar.SetCookies(c.base, cookies)
}

// Refresh rotates the session tokens. Concurrent callers share one request.
func (c *Client) Refresh(ctx context.Context) error {
	_, err, shared := c.flight.Do("refresh", func() (any, error) {
		return nil, c.send(ctx, http.MethodPost, pathRefresh, nil, nil, csrfRefresh)
	})
	if shared {
		c.log.Debug().Msg("joined in-flight refresh")
	}
	return err
}

// do sends a request with the access CSRF cookie and handles the single
// refresh-and-retry on 401.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	return c.doWith(ctx, method, path, in, out, csrfAccess, true)
}

func (c *Client) doWith(ctx context.Context, method, path string, in, out any, kind csrfKind, retry bool) error {
	err := c.send(ctx, method, path, in, out, kind)
	if !retry || !IsUnauthorized(err) {
		return err
	}
	if rerr := c.Refresh(ctx); rerr != nil {
		c.log.Debug().Err(rerr).Str("path", path).Msg("refresh failed")
		return err
	}
	return c.send(ctx, method, path, in, out, kind)
}

// send performs exactly one HTTP exchange.
func (c *Client) send(ctx context.Context, method, path string, in, out any, kind csrfKind) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("apiclient: %s %s: %w", method, path, err)
		}
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("apiclient: encode %s body: %w", path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if mutating(method) {
		name := CSRFAccessCookie
		if kind == csrfRefresh {
			name = CSRFRefreshCookie
		}
		if v := c.Cookie(name); v != "" {
			req.Header.Set(CSRFHeader, v)
		}
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("apiclient: read %s response: %w", path, err)
	}
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", res.StatusCode).
		Dur("took", time.Since(start)).
		Msg("api call")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return errorFromBody(res.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("apiclient: decode %s response: %w", path, err)
	}
	return nil
}

func mutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}
