package api

import (
	"errors"
	"fmt"
	"time"
)

// ErrSessionExpired is returned after the client has forced a logout:
// the refresh token was missing, rejected, or unreachable, and all
// stored credentials have been cleared.
var ErrSessionExpired = errors.New("session expired, please log in again")

// ErrNotLoggedIn indicates an authenticated call was attempted with no
// stored credentials at all.
var ErrNotLoggedIn = errors.New("not logged in")

// Error is a business error from the backend envelope: an HTTP-2xx
// response whose code field is non-zero. Code is stable across
// locales and is what the UI translates.
type Error struct {
	Code       int
	Message    string
	HTTPStatus int
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d: %s (http %d)", e.Code, e.Message, e.HTTPStatus)
}

// ErrResendThrottled indicates a verification code was requested before
// the locally persisted countdown expired.
type ErrResendThrottled struct {
	Remaining time.Duration
}

func (e *ErrResendThrottled) Error() string {
	return fmt.Sprintf("verification code already sent, retry in %s", e.Remaining.Round(time.Second))
}
