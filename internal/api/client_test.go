package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ispell/ispell/internal/creds"
)

func writeEnvelope(w http.ResponseWriter, code int, message string, data any) {
	raw, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":    code,
		"message": message,
		"data":    json.RawMessage(raw),
	})
}

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *creds.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cs := creds.New(creds.NewMemory())
	return New(srv.URL, cs, opts...), cs
}

func loginAs(t *testing.T, cs *creds.Store, access, refresh string) {
	t.Helper()
	err := cs.SaveLogin(creds.Credentials{AccessToken: access, RefreshToken: refresh}, true)
	if err != nil {
		t.Fatal(err)
	}
}

func TestDo_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	client, cs := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(w, 0, "", map[string]string{"ok": "yes"})
	}))
	loginAs(t, cs, "tok-1", "ref-1")

	var out struct {
		OK string `json:"ok"`
	}
	if err := client.Do(context.Background(), "GET", "/user/profile", nil, &out); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want Bearer tok-1", gotAuth)
	}
	if out.OK != "yes" {
		t.Errorf("data = %q, want yes", out.OK)
	}
}

func TestDo_BusinessErrorIsTyped(t *testing.T) {
	client, cs := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 1002, "email already registered", nil)
	}))
	loginAs(t, cs, "tok", "ref")

	err := client.Do(context.Background(), "POST", "/user/profile", nil, nil)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *api.Error", err)
	}
	if apiErr.Code != 1002 {
		t.Errorf("Code = %d, want 1002", apiErr.Code)
	}
	if apiErr.HTTPStatus != http.StatusOK {
		t.Errorf("HTTPStatus = %d, want 200", apiErr.HTTPStatus)
	}
}

func TestDo_RefreshAndRetryOnce(t *testing.T) {
	var refreshCalls, apiCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeEnvelope(w, 0, "", map[string]string{"accessToken": "fresh"})
	})
	mux.HandleFunc("/words/today", func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeEnvelope(w, 0, "", []any{})
	})

	client, cs := newTestClient(t, mux)
	loginAs(t, cs, "stale", "ref")

	if err := client.Do(context.Background(), "GET", "/words/today", nil, nil); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if refreshCalls.Load() != 1 {
		t.Errorf("refresh calls = %d, want 1", refreshCalls.Load())
	}
	if apiCalls.Load() != 2 {
		t.Errorf("api calls = %d, want 2 (original + retry)", apiCalls.Load())
	}

	// The refreshed access token must be persisted, same scope as the
	// refresh token.
	tok, _ := cs.AccessToken()
	if tok != "fresh" {
		t.Errorf("stored access token = %q, want fresh", tok)
	}
	ref, _ := cs.RefreshToken()
	if ref != "ref" {
		t.Errorf("stored refresh token = %q, want ref (unchanged)", ref)
	}
}

func TestDo_NoSecondRetry(t *testing.T) {
	var refreshCalls, apiCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeEnvelope(w, 0, "", map[string]string{"accessToken": "fresh"})
	})
	mux.HandleFunc("/words/today", func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		w.WriteHeader(http.StatusForbidden) // rejects even the retried call
	})

	client, cs := newTestClient(t, mux)
	loginAs(t, cs, "stale", "ref")

	err := client.Do(context.Background(), "GET", "/words/today", nil, nil)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *api.Error", err)
	}
	if apiErr.HTTPStatus != http.StatusForbidden {
		t.Errorf("HTTPStatus = %d, want 403", apiErr.HTTPStatus)
	}
	if apiCalls.Load() != 2 {
		t.Errorf("api calls = %d, want exactly 2", apiCalls.Load())
	}
	if refreshCalls.Load() != 1 {
		t.Errorf("refresh calls = %d, want 1", refreshCalls.Load())
	}
}

func TestDo_SingleFlightRefresh(t *testing.T) {
	const callers = 8

	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		time.Sleep(100 * time.Millisecond) // let every caller pile up
		writeEnvelope(w, 0, "", map[string]string{"accessToken": "fresh"})
	})
	mux.HandleFunc("/user/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeEnvelope(w, 0, "", map[string]any{"id": 1})
	})

	client, cs := newTestClient(t, mux)
	loginAs(t, cs, "stale", "ref")

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = client.Do(context.Background(), "GET", "/user/profile", nil, nil)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d: %v", i, err)
		}
	}
	if refreshCalls.Load() != 1 {
		t.Errorf("refresh calls = %d, want 1 (single-flight)", refreshCalls.Load())
	}
}

func TestDo_RefreshFailureForcesLogout(t *testing.T) {
	const callers = 4

	var logouts atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token/refresh", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		writeEnvelope(w, 401, "refresh token revoked", nil)
	})
	mux.HandleFunc("/user/profile", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client, cs := newTestClient(t, mux, WithLogoutHandler(func() {
		logouts.Add(1)
	}))
	loginAs(t, cs, "stale", "ref")

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = client.Do(context.Background(), "GET", "/user/profile", nil, nil)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if !errors.Is(err, ErrSessionExpired) {
			t.Errorf("caller %d: err = %v, want ErrSessionExpired", i, err)
		}
	}
	if logouts.Load() != 1 {
		t.Errorf("logout callbacks = %d, want 1", logouts.Load())
	}

	// Both scopes must be empty.
	tok, _ := cs.AccessToken()
	if tok != "" {
		t.Errorf("access token = %q, want cleared", tok)
	}
}

func TestDo_MissingRefreshTokenForcesLogout(t *testing.T) {
	var loggedOut bool
	client, cs := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), WithLogoutHandler(func() { loggedOut = true }))

	// Access token present but no refresh token: session scope only
	// holds a stray access token, which Load treats as logged out, so
	// the call goes out unauthenticated and the 401 cannot be recovered.
	_ = cs.SaveLogin(creds.Credentials{AccessToken: "orphan"}, false)

	err := client.Do(context.Background(), "GET", "/user/profile", nil, nil)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if !loggedOut {
		t.Error("expected logout handler to fire")
	}
}

func TestLogin_PersistsTokensPerRememberChoice(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 0, "", map[string]any{
			"user":         map[string]any{"id": 7, "username": "ada"},
			"accessToken":  "acc",
			"refreshToken": "ref",
		})
	})

	for _, remember := range []bool{true, false} {
		t.Run(fmt.Sprintf("remember=%v", remember), func(t *testing.T) {
			client, cs := newTestClient(t, handler)
			result, err := client.Login(context.Background(), "a@b.c", "pw", remember)
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			if result.User.Username != "ada" {
				t.Errorf("Username = %q, want ada", result.User.Username)
			}

			c, scope, err := cs.Load()
			if err != nil {
				t.Fatal(err)
			}
			wantScope := creds.ScopeSession
			if remember {
				wantScope = creds.ScopePersistent
			}
			if scope != wantScope {
				t.Errorf("scope = %v, want %v", scope, wantScope)
			}
			if c.RefreshToken != "ref" {
				t.Errorf("RefreshToken = %q, want ref", c.RefreshToken)
			}

			user, err := client.CurrentUser()
			if err != nil {
				t.Fatal(err)
			}
			if user == nil || user.ID != 7 {
				t.Errorf("CurrentUser = %+v, want id 7", user)
			}
		})
	}
}

func TestCurrentUser_LoggedOut(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("CurrentUser must not hit the network")
	}))

	user, err := client.CurrentUser()
	if !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("err = %v, want ErrNotLoggedIn", err)
	}
	if user != nil {
		t.Errorf("user = %+v, want nil", user)
	}
}

func TestSendCode_ThrottledByLocalCountdown(t *testing.T) {
	var sends atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sends.Add(1)
		writeEnvelope(w, 0, "", nil)
	}))

	if err := client.SendCode(context.Background(), "a@b.c", "register"); err != nil {
		t.Fatalf("first SendCode: %v", err)
	}

	err := client.SendCode(context.Background(), "a@b.c", "register")
	var throttled *ErrResendThrottled
	if !errors.As(err, &throttled) {
		t.Fatalf("err = %v, want *ErrResendThrottled", err)
	}
	if throttled.Remaining <= 0 {
		t.Errorf("Remaining = %v, want > 0", throttled.Remaining)
	}
	if sends.Load() != 1 {
		t.Errorf("network sends = %d, want 1", sends.Load())
	}
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	signed := func(exp time.Time) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "1",
			"exp": exp.Unix(),
		})
		s, err := tok.SignedString([]byte("test-key"))
		if err != nil {
			t.Fatal(err)
		}
		return s
	}

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"expired an hour ago", signed(now.Add(-time.Hour)), true},
		{"expires within skew", signed(now.Add(5 * time.Second)), true},
		{"valid for an hour", signed(now.Add(time.Hour)), false},
		{"opaque token", "not-a-jwt", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tokenExpired(tt.token, now); got != tt.want {
				t.Errorf("tokenExpired = %v, want %v", got, tt.want)
			}
		})
	}
}
