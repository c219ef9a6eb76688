// Package api is the iSpell backend client. It owns the access/refresh
// token lifecycle: every authenticated call transparently refreshes an
// expired access token (one coordinated refresh shared across concurrent
// callers) and retries the original request exactly once.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ispell/ispell/internal/creds"
)

// expirySkew is how close to its exp claim an access token is treated
// as already expired, so a refresh happens before the backend's 401.
const expirySkew = 10 * time.Second

// Client talks to the iSpell backend. Construct it with New; the zero
// value is not usable.
type Client struct {
	baseURL  string
	http     *http.Client
	creds    *creds.Store
	log      *zap.Logger
	onLogout func()
	refresh  singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithLogoutHandler registers the callback fired when an irrecoverable
// auth failure forces a logout. It runs after both credential scopes
// have been cleared.
func WithLogoutHandler(fn func()) Option {
	return func(c *Client) { c.onLogout = fn }
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, cs *creds.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		creds:   cs,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the backend's uniform response wrapper. code == 0 means
// success; anything else is a business error keyed for translation.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Do performs an authenticated JSON call. body is marshalled when
// non-nil; the envelope's data field is unmarshalled into out when
// out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, path, body, out, true)
}

// DoAnon performs an unauthenticated JSON call (login, register, ...).
func (c *Client) DoAnon(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, path, body, out, false)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, auth bool) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	token := ""
	if auth {
		var err error
		token, err = c.creds.AccessToken()
		if err != nil {
			return err
		}
		// Known-expired token: refresh up front instead of burning a
		// round trip on a guaranteed 401.
		if token != "" && tokenExpired(token, time.Now()) {
			refreshed, err := c.refreshToken(ctx)
			if err != nil {
				return err
			}
			token = refreshed
		}
	}

	resp, err := c.send(ctx, method, path, payload, token)
	if err != nil {
		return err
	}

	if auth && isAuthStatus(resp.StatusCode) {
		drain(resp)
		c.log.Debug("auth rejected, refreshing",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))

		newToken, err := c.refreshToken(ctx)
		if err != nil {
			return err
		}

		// Retry exactly once. A second 401/403 is terminal.
		resp, err = c.send(ctx, method, path, payload, newToken)
		if err != nil {
			return err
		}
		if isAuthStatus(resp.StatusCode) {
			drain(resp)
			return &Error{
				Code:       -1,
				Message:    "request rejected after token refresh",
				HTTPStatus: resp.StatusCode,
			}
		}
	}

	return decode(resp, out)
}

// send issues one HTTP round trip. token == "" sends no Authorization
// header.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// decode consumes the response body, enforcing the envelope convention.
func decode(resp *http.Response, out any) error {
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if env.Code != 0 {
		return &Error{Code: env.Code, Message: env.Message, HTTPStatus: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, env.Message)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

func isAuthStatus(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}

// tokenExpired reports whether the access token's exp claim has passed
// (within expirySkew). The signature is not verified; the backend is
// the authority and the 401 path remains the fallback for tokens this
// check cannot parse.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Before(now.Add(expirySkew))
}
