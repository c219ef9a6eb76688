package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ispell/ispell/internal/vocab"
)

// BookHierarchy fetches the browsable book catalogue.
func (c *Client) BookHierarchy(ctx context.Context) ([]vocab.Category, error) {
	var categories []vocab.Category
	if err := c.Do(ctx, "GET", "/books/hierarchy", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// BookWords fetches the full word list of a book.
func (c *Client) BookWords(ctx context.Context, listCode string) ([]vocab.Word, error) {
	var words []vocab.Word
	path := "/books/" + url.PathEscape(listCode) + "/words"
	if err := c.Do(ctx, "GET", path, nil, &words); err != nil {
		return nil, err
	}
	return words, nil
}

// BookProgress fetches the backend-computed due counts for a book.
func (c *Client) BookProgress(ctx context.Context, listCode string) (*vocab.BookProgress, error) {
	var p vocab.BookProgress
	path := "/books/" + url.PathEscape(listCode) + "/progress"
	if err := c.Do(ctx, "GET", path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// TodayWords fetches the batch of words due for today's session. Each
// returned word carries a progressId and progressStatus.
func (c *Client) TodayWords(ctx context.Context, listCode string, dueNew, dueReview int) ([]vocab.Word, error) {
	var words []vocab.Word
	path := fmt.Sprintf("/words/today?listCode=%s&dueNew=%d&dueReview=%d",
		url.QueryEscape(listCode), dueNew, dueReview)
	if err := c.Do(ctx, "GET", path, nil, &words); err != nil {
		return nil, err
	}
	return words, nil
}

// UpdateProgress reports the recall quality (0-5) for one word's
// progress record. The backend owns the spaced-repetition schedule;
// the client only supplies the quality signal.
func (c *Client) UpdateProgress(ctx context.Context, progressID int64, quality int) error {
	req := map[string]int{"quality": quality}
	return c.Do(ctx, "PUT", fmt.Sprintf("/words/progress/%d", progressID), req, nil)
}
