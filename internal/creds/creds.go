// Package creds owns client-side credential storage. Tokens live in
// exactly one of two scopes: the persistent scope (SQLite-backed,
// survives restarts) when the user logged in with "remember me", or
// the session scope (in-memory, dies with the process) otherwise.
package creds

import (
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Backend is one key/value scope.
type Backend interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Keys used inside a scope.
const (
	keyAccessToken  = "accessToken"
	keyRefreshToken = "refreshToken"
	keyUser         = "user"
)

// Persistent-scope-only keys (unrelated to login state).
const (
	keyResendDeadline = "resendDeadline"
	keyCurrentBook    = "currentBook"
)

// Scope identifies which backend holds the live tokens.
type Scope int

const (
	ScopeNone Scope = iota
	ScopePersistent
	ScopeSession
)

// Credentials is the stored token pair plus the serialized user.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	UserJSON     string
}

// Store manages the two scopes and enforces their exclusivity.
type Store struct {
	mu         sync.Mutex
	persistent Backend
	session    Backend
}

// New creates a credential store over the given persistent backend.
// The session scope is always process-local memory.
func New(persistent Backend) *Store {
	return &Store{
		persistent: persistent,
		session:    NewMemory(),
	}
}

// SaveLogin stores the credentials in the scope selected by remember
// and clears the other scope, so at most one scope ever holds tokens.
func (s *Store) SaveLogin(c Credentials, remember bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, other := s.session, s.persistent
	if remember {
		target, other = s.persistent, s.session
	}

	if err := clearScope(other); err != nil {
		return err
	}
	return writeScope(target, c)
}

// Load returns the stored credentials and the scope holding them.
// The scope containing a refresh token is authoritative; if both
// scopes are populated (corrupted state), the persistent scope wins
// and the session scope is cleared.
func (s *Store) Load() (Credentials, Scope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pc, err := readScope(s.persistent)
	if err != nil {
		return Credentials{}, ScopeNone, err
	}
	sc, err := readScope(s.session)
	if err != nil {
		return Credentials{}, ScopeNone, err
	}

	switch {
	case pc.RefreshToken != "":
		if sc.RefreshToken != "" {
			if err := clearScope(s.session); err != nil {
				return Credentials{}, ScopeNone, err
			}
		}
		return pc, ScopePersistent, nil
	case sc.RefreshToken != "":
		return sc, ScopeSession, nil
	default:
		return Credentials{}, ScopeNone, nil
	}
}

// AccessToken returns the live access token, or "" when logged out.
func (s *Store) AccessToken() (string, error) {
	c, _, err := s.Load()
	return c.AccessToken, err
}

// RefreshToken returns the live refresh token, or "" when logged out.
func (s *Store) RefreshToken() (string, error) {
	c, _, err := s.Load()
	return c.RefreshToken, err
}

// SetAccessToken replaces the access token in whichever scope holds
// the refresh token. A refresh never changes the login-time scope choice.
func (s *Store) SetAccessToken(token string) error {
	_, scope, err := s.Load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch scope {
	case ScopePersistent:
		return s.persistent.Set(keyAccessToken, token)
	case ScopeSession:
		return s.session.Set(keyAccessToken, token)
	default:
		return fmt.Errorf("no scope holds a refresh token")
	}
}

// User returns the serialized user from the live scope.
func (s *Store) User() (string, error) {
	c, _, err := s.Load()
	return c.UserJSON, err
}

// SetUser replaces the serialized user in the live scope.
func (s *Store) SetUser(userJSON string) error {
	_, scope, err := s.Load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch scope {
	case ScopePersistent:
		return s.persistent.Set(keyUser, userJSON)
	case ScopeSession:
		return s.session.Set(keyUser, userJSON)
	default:
		return fmt.Errorf("no scope holds a refresh token")
	}
}

// Clear wipes tokens and user data from both scopes.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := clearScope(s.persistent); err != nil {
		return err
	}
	return clearScope(s.session)
}

// SetResendDeadline persists the time before which another
// verification code must not be requested.
func (s *Store) SetResendDeadline(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistent.Set(keyResendDeadline, strconv.FormatInt(t.Unix(), 10))
}

// ResendRemaining returns how long until another verification code may
// be requested. Zero means sending is allowed now.
func (s *Store) ResendRemaining(now time.Time) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.persistent.Get(keyResendDeadline)
	if err != nil || v == "" {
		return 0, err
	}
	unix, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		// Unreadable value: treat as expired rather than locking the user out.
		return 0, nil
	}
	deadline := time.Unix(unix, 0)
	if remaining := deadline.Sub(now); remaining > 0 {
		return remaining, nil
	}
	return 0, nil
}

// SetCurrentBook persists the active book's list code.
func (s *Store) SetCurrentBook(listCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistent.Set(keyCurrentBook, listCode)
}

// CurrentBook returns the active book's list code, or "" if none set.
func (s *Store) CurrentBook() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistent.Get(keyCurrentBook)
}

func readScope(b Backend) (Credentials, error) {
	access, err := b.Get(keyAccessToken)
	if err != nil {
		return Credentials{}, err
	}
	refresh, err := b.Get(keyRefreshToken)
	if err != nil {
		return Credentials{}, err
	}
	user, err := b.Get(keyUser)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{AccessToken: access, RefreshToken: refresh, UserJSON: user}, nil
}

func writeScope(b Backend, c Credentials) error {
	if err := b.Set(keyAccessToken, c.AccessToken); err != nil {
		return err
	}
	if err := b.Set(keyRefreshToken, c.RefreshToken); err != nil {
		return err
	}
	return b.Set(keyUser, c.UserJSON)
}

func clearScope(b Backend) error {
	for _, key := range []string{keyAccessToken, keyRefreshToken, keyUser} {
		if err := b.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
