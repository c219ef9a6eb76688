package api

import "context"

// Settings are the server-side user preferences.
type Settings struct {
	DailyNew      int    `json:"dailyNew"`
	DailyReview   int    `json:"dailyReview"`
	Accent        string `json:"accent"`
	AutoPlayAudio bool   `json:"autoPlayAudio"`
	ShowPhonetic  bool   `json:"showPhonetic"`
}

// Settings fetches the user's server-side settings.
func (c *Client) Settings(ctx context.Context) (*Settings, error) {
	var s Settings
	if err := c.Do(ctx, "GET", "/settings", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSettings replaces the user's server-side settings.
func (c *Client) SaveSettings(ctx context.Context, s Settings) error {
	return c.Do(ctx, "PUT", "/settings", s, nil)
}

// SendFeedback submits a feedback message with optional contact info.
func (c *Client) SendFeedback(ctx context.Context, content, contact string) error {
	req := map[string]string{"content": content, "contact": contact}
	return c.Do(ctx, "POST", "/feedback", req, nil)
}
