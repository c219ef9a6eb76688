package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/ispell/ispell/internal/creds"
)

func credentialsOf(result *LoginResult, userJSON string) creds.Credentials {
	return creds.Credentials{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		UserJSON:     userJSON,
	}
}

// Profile fetches the account profile and refreshes the stored copy.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var u User
	if err := c.Do(ctx, "GET", "/user/profile", nil, &u); err != nil {
		return nil, err
	}
	if data, err := json.Marshal(u); err == nil {
		_ = c.creds.SetUser(string(data))
	}
	return &u, nil
}

// ProfileUpdate holds the editable profile fields.
type ProfileUpdate struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// UpdateProfile submits profile edits and returns the updated profile.
func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (*User, error) {
	var u User
	if err := c.Do(ctx, "POST", "/user/profile", in, &u); err != nil {
		return nil, err
	}
	if data, err := json.Marshal(u); err == nil {
		_ = c.creds.SetUser(string(data))
	}
	return &u, nil
}

// UploadAvatar posts an image as multipart form data and returns the
// new avatar URL. Multipart bodies are not replayed through the
// refresh-retry path; callers see the auth error and may retry.
func (c *Client) UploadAvatar(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("avatar", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read avatar: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finish form: %w", err)
	}

	token, err := c.creds.AccessToken()
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNotLoggedIn
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/user/avatar", &buf)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}

	var result struct {
		AvatarURL string `json:"avatarUrl"`
	}
	if err := decode(resp, &result); err != nil {
		return "", err
	}
	return result.AvatarURL, nil
}
