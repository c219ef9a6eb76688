package creds

import (
	"testing"
	"time"
)

func testStore() *Store {
	return New(NewMemory())
}

func TestSaveLogin_RememberUsesPersistentScope(t *testing.T) {
	s := testStore()
	c := Credentials{AccessToken: "acc", RefreshToken: "ref", UserJSON: `{"id":1}`}

	if err := s.SaveLogin(c, true); err != nil {
		t.Fatalf("SaveLogin: %v", err)
	}

	got, scope, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if scope != ScopePersistent {
		t.Errorf("scope = %v, want ScopePersistent", scope)
	}
	if got != c {
		t.Errorf("Load = %+v, want %+v", got, c)
	}

	// Session scope must be empty.
	v, _ := s.session.Get(keyRefreshToken)
	if v != "" {
		t.Errorf("session scope refreshToken = %q, want empty", v)
	}
}

func TestSaveLogin_NoRememberUsesSessionScope(t *testing.T) {
	s := testStore()
	c := Credentials{AccessToken: "acc", RefreshToken: "ref"}

	if err := s.SaveLogin(c, false); err != nil {
		t.Fatalf("SaveLogin: %v", err)
	}

	_, scope, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if scope != ScopeSession {
		t.Errorf("scope = %v, want ScopeSession", scope)
	}

	v, _ := s.persistent.Get(keyRefreshToken)
	if v != "" {
		t.Errorf("persistent scope refreshToken = %q, want empty", v)
	}
}

func TestSaveLogin_SwitchingScopeClearsOldScope(t *testing.T) {
	s := testStore()
	if err := s.SaveLogin(Credentials{AccessToken: "a1", RefreshToken: "r1"}, true); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveLogin(Credentials{AccessToken: "a2", RefreshToken: "r2"}, false); err != nil {
		t.Fatal(err)
	}

	got, scope, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if scope != ScopeSession {
		t.Errorf("scope = %v, want ScopeSession", scope)
	}
	if got.RefreshToken != "r2" {
		t.Errorf("RefreshToken = %q, want r2", got.RefreshToken)
	}

	v, _ := s.persistent.Get(keyAccessToken)
	if v != "" {
		t.Errorf("persistent accessToken = %q, want empty after scope switch", v)
	}
}

func TestSetAccessToken_FollowsRefreshTokenScope(t *testing.T) {
	s := testStore()
	if err := s.SaveLogin(Credentials{AccessToken: "old", RefreshToken: "ref"}, true); err != nil {
		t.Fatal(err)
	}

	if err := s.SetAccessToken("new"); err != nil {
		t.Fatalf("SetAccessToken: %v", err)
	}

	got, scope, _ := s.Load()
	if scope != ScopePersistent {
		t.Errorf("scope = %v, want ScopePersistent", scope)
	}
	if got.AccessToken != "new" {
		t.Errorf("AccessToken = %q, want new", got.AccessToken)
	}
	if got.RefreshToken != "ref" {
		t.Errorf("RefreshToken = %q, want ref (unchanged)", got.RefreshToken)
	}
}

func TestSetAccessToken_LoggedOutErrors(t *testing.T) {
	s := testStore()
	if err := s.SetAccessToken("tok"); err == nil {
		t.Error("expected error when no scope holds a refresh token")
	}
}

func TestClear_WipesBothScopes(t *testing.T) {
	s := testStore()
	if err := s.SaveLogin(Credentials{AccessToken: "a", RefreshToken: "r", UserJSON: "u"}, true); err != nil {
		t.Fatal(err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	_, scope, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if scope != ScopeNone {
		t.Errorf("scope = %v, want ScopeNone", scope)
	}
}

func TestLoad_MixedScopesPersistentWins(t *testing.T) {
	s := testStore()
	// Corrupt state: both scopes populated.
	if err := writeScope(s.persistent, Credentials{AccessToken: "pa", RefreshToken: "pr"}); err != nil {
		t.Fatal(err)
	}
	if err := writeScope(s.session, Credentials{AccessToken: "sa", RefreshToken: "sr"}); err != nil {
		t.Fatal(err)
	}

	got, scope, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if scope != ScopePersistent {
		t.Errorf("scope = %v, want ScopePersistent", scope)
	}
	if got.RefreshToken != "pr" {
		t.Errorf("RefreshToken = %q, want pr", got.RefreshToken)
	}

	// Session scope must have been healed.
	v, _ := s.session.Get(keyRefreshToken)
	if v != "" {
		t.Errorf("session refreshToken = %q, want cleared", v)
	}
}

func TestResendCountdown(t *testing.T) {
	s := testStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	remaining, err := s.ResendRemaining(now)
	if err != nil {
		t.Fatalf("ResendRemaining: %v", err)
	}
	if remaining != 0 {
		t.Errorf("remaining = %v, want 0 before any send", remaining)
	}

	if err := s.SetResendDeadline(now.Add(60 * time.Second)); err != nil {
		t.Fatalf("SetResendDeadline: %v", err)
	}

	remaining, err = s.ResendRemaining(now)
	if err != nil {
		t.Fatalf("ResendRemaining: %v", err)
	}
	if remaining != 60*time.Second {
		t.Errorf("remaining = %v, want 60s", remaining)
	}

	remaining, _ = s.ResendRemaining(now.Add(2 * time.Minute))
	if remaining != 0 {
		t.Errorf("remaining = %v, want 0 after deadline", remaining)
	}
}

func TestCurrentBook(t *testing.T) {
	s := testStore()
	code, err := s.CurrentBook()
	if err != nil {
		t.Fatalf("CurrentBook: %v", err)
	}
	if code != "" {
		t.Errorf("CurrentBook = %q, want empty", code)
	}
	if err := s.SetCurrentBook("cet6"); err != nil {
		t.Fatalf("SetCurrentBook: %v", err)
	}
	code, _ = s.CurrentBook()
	if code != "cet6" {
		t.Errorf("CurrentBook = %q, want cet6", code)
	}
}
