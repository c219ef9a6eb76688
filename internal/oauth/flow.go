// Package oauth implements provider sign-in for a terminal client.
// The web app's popup/postMessage handoff becomes an explicit inbound
// channel: a loopback HTTP listener that accepts exactly one callback
// message, validated against the trusted origin and a state nonce
// before it is dispatched as a typed result.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ispell/ispell/internal/api"
)

// ErrDenied is returned when the provider or the user rejected the
// sign-in attempt.
var ErrDenied = errors.New("oauth sign-in denied")

// message is the wire shape posted to the loopback callback by the
// backend's OAuth landing page.
type message struct {
	Type         string    `json:"type"`
	User         *api.User `json:"user,omitempty"`
	AccessToken  string    `json:"accessToken,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// Result is a completed provider sign-in.
type Result struct {
	User   api.User
	Tokens api.TokenPair
}

// Flow coordinates one provider sign-in.
type Flow struct {
	client        *api.Client
	log           *zap.Logger
	trustedOrigin string

	// openBrowser launches the user's browser; replaceable in tests.
	openBrowser func(url string) error
}

// NewFlow creates a Flow. trustedOrigin is the only Origin accepted on
// the callback request (empty Origin headers are allowed: same-machine
// redirects do not always carry one).
func NewFlow(client *api.Client, trustedOrigin string, log *zap.Logger) *Flow {
	if log == nil {
		log = zap.NewNop()
	}
	return &Flow{
		client:        client,
		log:           log,
		trustedOrigin: strings.TrimRight(trustedOrigin, "/"),
		openBrowser:   openBrowser,
	}
}

// Login runs the full provider sign-in: fetch the authorization URL,
// open the browser, await the loopback callback, and persist tokens
// per the remember choice. ctx bounds the whole wait.
func (f *Flow) Login(ctx context.Context, provider string, remember bool) (*Result, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen for callback: %w", err)
	}
	defer ln.Close()

	state := uuid.NewString()
	redirectURI := fmt.Sprintf("http://%s/callback", ln.Addr().String())

	authURL, err := f.client.OAuthURL(ctx, provider, redirectURI, state)
	if err != nil {
		return nil, err
	}

	results := make(chan result, 1)
	srv := &http.Server{Handler: f.handler(provider, state, results)}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	f.log.Info("opening browser for oauth sign-in", zap.String("provider", provider))
	if err := f.openBrowser(authURL); err != nil {
		return nil, fmt.Errorf("open browser: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-results:
		if r.err != nil {
			return nil, r.err
		}
		if err := f.client.StoreTokens(r.result.User, r.result.Tokens, remember); err != nil {
			return nil, err
		}
		return r.result, nil
	}
}

type result struct {
	result *Result
	err    error
}

// handler accepts the single callback POST. Requests failing origin or
// state validation are rejected without resolving the flow, so a
// spoofed message cannot race the real one.
func (f *Flow) handler(provider, state string, results chan<- result) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/callback" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}

		if origin := r.Header.Get("Origin"); origin != "" && strings.TrimRight(origin, "/") != f.trustedOrigin {
			f.log.Warn("oauth callback from untrusted origin", zap.String("origin", origin))
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if r.URL.Query().Get("state") != state {
			f.log.Warn("oauth callback with bad state nonce")
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var msg message
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		switch msg.Type {
		case provider + "-login-success":
			if msg.User == nil || msg.AccessToken == "" || msg.RefreshToken == "" {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "Signed in. You can close this tab and return to the terminal.")
			results <- result{result: &Result{
				User: *msg.User,
				Tokens: api.TokenPair{
					AccessToken:  msg.AccessToken,
					RefreshToken: msg.RefreshToken,
				},
			}}
		case provider + "-login-error":
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "Sign-in failed. You can close this tab.")
			results <- result{err: fmt.Errorf("%w: %s", ErrDenied, msg.Error)}
		default:
			http.Error(w, "bad request", http.StatusBadRequest)
		}
	})
}

// openBrowser launches the platform browser for url.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
