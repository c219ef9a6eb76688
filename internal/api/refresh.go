package api

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// refreshToken mints a new access token from the stored refresh token.
// Concurrent callers collapse into a single network call: everyone
// waits on the same in-flight refresh and receives its token or its
// error. Irrecoverable failure clears both credential scopes and fires
// the logout handler before the error is propagated.
func (c *Client) refreshToken(ctx context.Context) (string, error) {
	v, err, shared := c.refresh.Do("refresh", func() (any, error) {
		return c.doRefresh(ctx)
	})
	if err != nil {
		return "", err
	}
	if shared {
		c.log.Debug("joined in-flight token refresh")
	}
	return v.(string), nil
}

func (c *Client) doRefresh(ctx context.Context) (string, error) {
	refresh, err := c.creds.RefreshToken()
	if err != nil {
		return "", err
	}
	if refresh == "" {
		c.forceLogout("no refresh token stored")
		return "", ErrSessionExpired
	}

	req := map[string]string{"refreshToken": refresh}
	var result struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.DoAnon(ctx, "POST", "/auth/token/refresh", req, &result); err != nil {
		c.forceLogout("refresh rejected")
		return "", fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}
	if result.AccessToken == "" {
		c.forceLogout("refresh returned no token")
		return "", ErrSessionExpired
	}

	// Persist into whichever scope holds the refresh token, so the
	// login-time "remember me" choice is preserved.
	if err := c.creds.SetAccessToken(result.AccessToken); err != nil {
		return "", fmt.Errorf("store refreshed token: %w", err)
	}

	c.log.Info("access token refreshed")
	return result.AccessToken, nil
}

// forceLogout wipes credentials in both scopes and notifies the
// application. It never fails the caller's flow: the auth error that
// triggered it is what propagates.
func (c *Client) forceLogout(reason string) {
	c.log.Warn("forcing logout", zap.String("reason", reason))
	if err := c.creds.Clear(); err != nil {
		c.log.Error("clear credentials", zap.Error(err))
	}
	if c.onLogout != nil {
		c.onLogout()
	}
}
