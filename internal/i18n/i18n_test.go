package i18n

import (
	"errors"
	"testing"
	"time"

	"github.com/ispell/ispell/internal/api"
)

func TestNewCatalogMatching(t *testing.T) {
	tests := []struct {
		locale string
		want   string
	}{
		{"en", "Start practice"},
		{"en-GB", "Start practice"},
		{"zh", "开始练习"},
		{"zh-CN", "开始练习"},
		{"zh-Hans", "开始练习"},
		{"fr", "Start practice"},     // unsupported -> English fallback
		{"not-a-tag", "Start practice"},
		{"", "Start practice"},
	}
	for _, tt := range tests {
		if got := NewCatalog(tt.locale).T("home.practice"); got != tt.want {
			t.Errorf("NewCatalog(%q).T(home.practice) = %q, want %q", tt.locale, got, tt.want)
		}
	}
}

func TestTMissingKeyReturnsKey(t *testing.T) {
	if got := NewCatalog("en").T("no.such.key"); got != "no.such.key" {
		t.Errorf("T = %q, want the key back", got)
	}
}

func TestErrorLocalization(t *testing.T) {
	en := NewCatalog("en")
	zh := NewCatalog("zh")

	tests := []struct {
		name string
		cat  *Catalog
		err  error
		want string
	}{
		{"known code en", en, &api.Error{Code: codeInvalidCredentials, Message: "bad creds"}, "Incorrect email or password."},
		{"known code zh", zh, &api.Error{Code: codeInvalidCredentials, Message: "bad creds"}, "邮箱或密码错误。"},
		{"unknown code keeps server message", en, &api.Error{Code: 99999, Message: "quota exceeded"}, "quota exceeded"},
		{"session expired", en, api.ErrSessionExpired, "Your session has expired. Please log in again."},
		{"wrapped session expired", zh, errors.Join(errors.New("fetch"), api.ErrSessionExpired), "登录已过期，请重新登录。"},
		{"not logged in", en, api.ErrNotLoggedIn, "You are not logged in."},
		{"resend throttled", en, &api.ErrResendThrottled{Remaining: 30 * time.Second}, "A code was already sent. Please wait before requesting another."},
		{"plain error passes through", en, errors.New("disk full"), "disk full"},
		{"nil", en, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cat.Error(tt.err); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
