package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ispell/ispell/internal/api"
	"github.com/ispell/ispell/internal/creds"
)

type callbackTarget struct {
	redirectURI string
	state       string
}

// fakeBackend serves the OAuth URL endpoint and delivers the redirect
// URI and state nonce the flow registered.
func fakeBackend(t *testing.T) (*api.Client, *creds.Store, chan callbackTarget) {
	t.Helper()
	targets := make(chan callbackTarget, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/auth/") {
			http.NotFound(w, r)
			return
		}
		targets <- callbackTarget{
			redirectURI: r.URL.Query().Get("redirectUri"),
			state:       r.URL.Query().Get("state"),
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"data": map[string]string{"url": "https://provider.example/authorize"},
		})
	}))
	t.Cleanup(srv.Close)
	cs := creds.New(creds.NewMemory())
	return api.New(srv.URL, cs), cs, targets
}

func postCallback(t *testing.T, target callbackTarget, state, origin string, msg message) *http.Response {
	t.Helper()
	body, _ := json.Marshal(msg)
	u := fmt.Sprintf("%s?state=%s", target.redirectURI, url.QueryEscape(state))
	req, err := http.NewRequest(http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

type loginOutcome struct {
	res *Result
	err error
}

func TestLogin_SuccessStoresTokens(t *testing.T) {
	client, cs, targets := fakeBackend(t)
	flow := NewFlow(client, "https://api.ispell.app", nil)
	flow.openBrowser = func(string) error { return nil }

	done := make(chan loginOutcome, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		res, err := flow.Login(ctx, "github", true)
		done <- loginOutcome{res, err}
	}()

	target := <-targets
	resp := postCallback(t, target, target.state, "https://api.ispell.app", message{
		Type:         "github-login-success",
		User:         &api.User{ID: 9, Username: "ada"},
		AccessToken:  "acc",
		RefreshToken: "ref",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("callback status = %d, want 200", resp.StatusCode)
	}

	outcome := <-done
	if outcome.err != nil {
		t.Fatalf("Login: %v", outcome.err)
	}
	if outcome.res.User.Username != "ada" {
		t.Errorf("User = %+v", outcome.res.User)
	}

	// Tokens must land in the persistent scope (remember=true).
	c, scope, err := cs.Load()
	if err != nil {
		t.Fatal(err)
	}
	if scope != creds.ScopePersistent {
		t.Errorf("scope = %v, want ScopePersistent", scope)
	}
	if c.RefreshToken != "ref" {
		t.Errorf("RefreshToken = %q, want ref", c.RefreshToken)
	}
}

func TestLogin_ProviderErrorSurfaces(t *testing.T) {
	client, _, targets := fakeBackend(t)
	flow := NewFlow(client, "https://api.ispell.app", nil)
	flow.openBrowser = func(string) error { return nil }

	done := make(chan loginOutcome, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		res, err := flow.Login(ctx, "wechat", false)
		done <- loginOutcome{res, err}
	}()

	target := <-targets
	postCallback(t, target, target.state, "", message{
		Type:  "wechat-login-error",
		Error: "access_denied",
	})

	outcome := <-done
	if !errors.Is(outcome.err, ErrDenied) {
		t.Errorf("err = %v, want ErrDenied", outcome.err)
	}
}

func TestLogin_RejectsUntrustedOriginAndBadState(t *testing.T) {
	client, _, targets := fakeBackend(t)
	flow := NewFlow(client, "https://api.ispell.app", nil)
	flow.openBrowser = func(string) error { return nil }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan loginOutcome, 1)
	go func() {
		res, err := flow.Login(ctx, "github", false)
		done <- loginOutcome{res, err}
	}()

	target := <-targets
	okMsg := message{
		Type:         "github-login-success",
		User:         &api.User{ID: 1},
		AccessToken:  "a",
		RefreshToken: "r",
	}

	resp := postCallback(t, target, target.state, "https://evil.example", okMsg)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("untrusted origin status = %d, want 403", resp.StatusCode)
	}

	resp = postCallback(t, target, "wrong-state", "https://api.ispell.app", okMsg)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("bad state status = %d, want 403", resp.StatusCode)
	}

	// Neither spoofed message resolved the flow.
	select {
	case outcome := <-done:
		t.Fatalf("flow resolved unexpectedly: %v", outcome.err)
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	outcome := <-done
	if !errors.Is(outcome.err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", outcome.err)
	}
}
