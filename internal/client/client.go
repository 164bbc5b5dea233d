// ABOUTME: HTTP client for the storefront commerce API
// ABOUTME: Attaches bearer credentials and applies the session-expiry policy in one place

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/markalston/storefront-cli/internal/notice"
)

// MsgSessionExpired is shown once when a protected call hits 401
const MsgSessionExpired = "Session expired. Please login again."

// Credentials supplies the bearer token and clears it on expiry.
// *session.Store satisfies it.
type Credentials interface {
	Hydrated() bool
	Token() string
	ExpireToken(ctx context.Context, token string) (bool, error)
}

// Client is the API client for the storefront backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      Credentials
	notifier   notice.Notifier
	redirect   func()
	timeout    time.Duration
	expiry     singleflight.Group
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCredentials sets the source of the bearer token
func WithCredentials(creds Credentials) Option {
	return func(c *Client) { c.creds = creds }
}

// WithNotifier sets where the session-expired notice goes
func WithNotifier(n notice.Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithLoginRedirect sets the action that sends the user back to login
func WithLoginRedirect(fn func()) Option {
	return func(c *Client) { c.redirect = fn }
}

// WithTimeout bounds every call, including reading the response body
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: NewTransport(nil),
		},
		notifier: notice.Discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// call describes one API request
type call struct {
	method    string
	path      string
	query     url.Values
	body      any
	protected bool
}

// do issues the request and decodes a 2xx body into out (when non-nil).
// Protected calls carry the bearer token and are refused until the session
// has been rehydrated; a 401 on them expires the session before
// ErrAuthExpired is returned.
func (c *Client) do(ctx context.Context, r call, out any) error {
	if r.protected && c.creds != nil && !c.creds.Hydrated() {
		return ErrNotHydrated
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var token string
	if r.protected && c.creds != nil {
		token = c.creds.Token()
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if r.protected && resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		c.expireSession(ctx, token)
		return ErrAuthExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid response from server: %w", err)
	}
	return nil
}

// expireSession clears token from the store and tells the user, at most once
// per token. singleflight collapses concurrent 401s for the same token; the
// store's compare-and-clear rejects any that arrive after the first finished.
func (c *Client) expireSession(ctx context.Context, token string) {
	if c.creds == nil || token == "" {
		return
	}
	c.expiry.Do(token, func() (any, error) {
		cleared, err := c.creds.ExpireToken(context.WithoutCancel(ctx), token)
		if err != nil {
			slog.Warn("Failed to clear persisted session", "error", err)
		}
		if !cleared {
			return nil, nil
		}
		slog.Info("Session expired", "base_url", c.baseURL)
		c.notifier.Notify(notice.Error, MsgSessionExpired)
		if c.redirect != nil {
			c.redirect()
		}
		return nil, nil
	})
}

// handleRequestError converts transport failures into a NetworkError
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	ne := &NetworkError{BaseURL: c.baseURL, Err: err}
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		ne.Canceled = true
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		ne.Timeout = true
	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			ne.Timeout = true
		}
	}
	return ne
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	se := &ServerError{Status: resp.StatusCode}

	var errResp errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return se
	}
	se.Message = messageText(errResp.Message)
	if se.Message == "" {
		se.Message = errResp.Error
	}
	return se
}

func messageText(v any) string {
	switch m := v.(type) {
	case string:
		return m
	case []any:
		parts := make([]string, 0, len(m))
		for _, p := range m {
			if s, ok := p.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}
