package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// resendInterval is the client-side minimum gap between verification
// code requests for the same install.
const resendInterval = 60 * time.Second

// User is the authenticated account as the backend reports it.
type User struct {
	ID        int64    `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	AvatarURL string   `json:"avatarUrl,omitempty"`
	Bindings  []string `json:"bindings,omitempty"`
}

// TokenPair is the credential pair minted at login or OAuth exchange.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult is what the backend returns for a successful login,
// registration, or OAuth exchange.
type LoginResult struct {
	User User `json:"user"`
	TokenPair
}

// Login authenticates with email and password. remember selects the
// persistent credential scope; otherwise tokens die with the process.
func (c *Client) Login(ctx context.Context, email, password string, remember bool) (*LoginResult, error) {
	req := map[string]string{"email": email, "password": password}
	var result LoginResult
	if err := c.DoAnon(ctx, "POST", "/auth/login", req, &result); err != nil {
		return nil, err
	}
	if err := c.storeLogin(&result, remember); err != nil {
		return nil, err
	}
	return &result, nil
}

// RegisterInput is the payload for account creation. Code is the email
// verification code obtained through SendCode.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

// Register creates an account and logs it in.
func (c *Client) Register(ctx context.Context, in RegisterInput, remember bool) (*LoginResult, error) {
	var result LoginResult
	if err := c.DoAnon(ctx, "POST", "/auth/register", in, &result); err != nil {
		return nil, err
	}
	if err := c.storeLogin(&result, remember); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendCode requests a verification email. purpose is "register" or
// "reset". The locally persisted countdown is enforced before any
// network call; on success the countdown restarts.
func (c *Client) SendCode(ctx context.Context, email, purpose string) error {
	remaining, err := c.creds.ResendRemaining(time.Now())
	if err != nil {
		return err
	}
	if remaining > 0 {
		return &ErrResendThrottled{Remaining: remaining}
	}

	req := map[string]string{"email": email, "purpose": purpose}
	if err := c.DoAnon(ctx, "POST", "/auth/send-code", req, nil); err != nil {
		return err
	}
	return c.creds.SetResendDeadline(time.Now().Add(resendInterval))
}

// ResetPassword sets a new password using an emailed verification code.
func (c *Client) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	req := map[string]string{"email": email, "code": code, "newPassword": newPassword}
	return c.DoAnon(ctx, "POST", "/auth/reset-password", req, nil)
}

// ChangePassword replaces the password of the logged-in account.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	req := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	return c.Do(ctx, "POST", "/auth/change-password", req, nil)
}

// OAuthURL returns the provider's authorization URL for the given
// callback redirect and state nonce.
func (c *Client) OAuthURL(ctx context.Context, provider, redirectURI, state string) (string, error) {
	var result struct {
		URL string `json:"url"`
	}
	path := fmt.Sprintf("/auth/%s/url?redirectUri=%s&state=%s",
		url.PathEscape(provider), url.QueryEscape(redirectURI), url.QueryEscape(state))
	if err := c.DoAnon(ctx, "GET", path, nil, &result); err != nil {
		return "", err
	}
	return result.URL, nil
}

// UnbindProvider removes an OAuth binding from the account.
func (c *Client) UnbindProvider(ctx context.Context, provider string) error {
	return c.Do(ctx, "DELETE", "/auth/bindings/"+url.PathEscape(provider), nil, nil)
}

// DeleteAccount permanently removes the account, then clears local
// credentials.
func (c *Client) DeleteAccount(ctx context.Context, password string) error {
	req := map[string]string{"password": password}
	if err := c.Do(ctx, "DELETE", "/user/delete-account", req, nil); err != nil {
		return err
	}
	return c.creds.Clear()
}

// Logout discards local credentials. The backend keeps no client
// session beyond the tokens themselves.
func (c *Client) Logout() error {
	return c.creds.Clear()
}

// StoreTokens persists an externally obtained token pair (OAuth
// callback flow) exactly as a password login would.
func (c *Client) StoreTokens(user User, tokens TokenPair, remember bool) error {
	return c.storeLogin(&LoginResult{User: user, TokenPair: tokens}, remember)
}

// CurrentUser returns the locally stored user, or ErrNotLoggedIn when
// no credentials are stored.
func (c *Client) CurrentUser() (*User, error) {
	raw, err := c.creds.User()
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, ErrNotLoggedIn
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode stored user: %w", err)
	}
	return &u, nil
}

func (c *Client) storeLogin(result *LoginResult, remember bool) error {
	userJSON, err := json.Marshal(result.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return c.creds.SaveLogin(credentialsOf(result, string(userJSON)), remember)
}
