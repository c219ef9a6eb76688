// Package i18n localizes UI strings and backend business-error codes.
package i18n

import (
	"errors"

	"golang.org/x/text/language"

	"github.com/ispell/ispell/internal/api"
)

// supported lists the catalog locales in priority order; the first
// entry is the fallback when matching fails entirely.
var supported = []language.Tag{
	language.English,
	language.SimplifiedChinese,
}

var matcher = language.NewMatcher(supported)

// Catalog resolves message keys and API error codes for one locale.
type Catalog struct {
	messages map[string]string
	errCodes map[int]string
}

// NewCatalog picks the best-matching catalog for locale (a BCP 47 tag
// such as "en" or "zh-CN"). Unknown or malformed locales fall back to
// English.
func NewCatalog(locale string) *Catalog {
	tag, _ := language.Parse(locale)
	_, idx, _ := matcher.Match(tag)
	switch supported[idx] {
	case language.SimplifiedChinese:
		return &Catalog{messages: zhMessages, errCodes: zhErrCodes}
	default:
		return &Catalog{messages: enMessages, errCodes: enErrCodes}
	}
}

// T returns the localized message for key, or the key itself when the
// catalog has no entry. Missing entries showing the raw key in the UI
// are easier to spot than silently blank strings.
func (c *Catalog) T(key string) string {
	if msg, ok := c.messages[key]; ok {
		return msg
	}
	return key
}

// Error localizes err for display. Business errors with a known code
// get the catalog message; unknown codes keep the server's message.
// Sentinel auth errors get fixed translations.
func (c *Catalog) Error(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, api.ErrSessionExpired) {
		return c.T("error.session_expired")
	}
	if errors.Is(err, api.ErrNotLoggedIn) {
		return c.T("error.not_logged_in")
	}
	var throttled *api.ErrResendThrottled
	if errors.As(err, &throttled) {
		return c.T("error.resend_throttled")
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if msg, ok := c.errCodes[apiErr.Code]; ok {
			return msg
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	return err.Error()
}
