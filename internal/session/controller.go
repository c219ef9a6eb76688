// Package session manages the in-memory state of one active practice
// pass: the ordered word queue, cursor, per-word mistake tracking,
// failed-word requeueing, and completion detection. Which words are
// due is the backend's decision; this package only orchestrates the
// batch it is given.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ispell/ispell/internal/store"
	"github.com/ispell/ispell/internal/vocab"
)

// reportTimeout bounds a fire-and-forget progress report. Reports
// outlive navigation but not the process by minutes.
const reportTimeout = 15 * time.Second

// Backend is the slice of the API client the controller needs.
type Backend interface {
	TodayWords(ctx context.Context, listCode string, dueNew, dueReview int) ([]vocab.Word, error)
	UpdateProgress(ctx context.Context, progressID int64, quality int) error
}

// HistoryRepo records finished sessions for the local stats view.
type HistoryRepo interface {
	AppendSessionEvent(ev store.SessionEvent) error
}

// Quota is the externally computed word budget for one session.
type Quota struct {
	New    int
	Review int
}

// Empty reports whether there is nothing to practice.
func (q Quota) Empty() bool {
	return q.New <= 0 && q.Review <= 0
}

// Controller drives one practice session. Navigation methods are
// invoked serially from the UI; progress reports run in background
// goroutines carrying their own progress identity and never mutate
// navigation state.
type Controller struct {
	backend Backend
	history HistoryRepo
	log     *zap.Logger

	// onEnd runs after a session is torn down, so the caller can
	// re-fetch book progress from the backend.
	onEnd func()

	state *State
}

// NewController creates a Controller. history and onEnd may be nil.
func NewController(backend Backend, history HistoryRepo, log *zap.Logger, onEnd func()) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		backend: backend,
		history: history,
		log:     log,
		onEnd:   onEnd,
		state:   &State{Phase: PhaseInactive},
	}
}

// Phase returns the current lifecycle stage.
func (c *Controller) Phase() Phase {
	return c.state.Phase
}

// State exposes the session state for rendering.
func (c *Controller) State() *State {
	return c.state
}

// Load fetches today's batch for listCode and activates the session.
// An empty quota or an empty batch is the normal "nothing due today"
// outcome: the session completes immediately, with no word fetch in
// the former case.
func (c *Controller) Load(ctx context.Context, listCode string, quota Quota) error {
	if quota.Empty() {
		c.state = &State{
			Phase:     PhaseComplete,
			SessionID: uuid.NewString(),
			ListCode:  listCode,
			StartTime: time.Now(),
		}
		return nil
	}

	batch, err := c.backend.TodayWords(ctx, listCode, quota.New, quota.Review)
	if err != nil {
		return err
	}

	sessionID := uuid.NewString()
	if len(batch) == 0 {
		c.state = &State{
			Phase:     PhaseComplete,
			SessionID: sessionID,
			ListCode:  listCode,
			StartTime: time.Now(),
		}
		return nil
	}

	c.state = newActiveState(sessionID, listCode, batch, time.Now())
	c.log.Info("session loaded",
		zap.String("sessionId", sessionID),
		zap.String("listCode", listCode),
		zap.Int("words", len(batch)))
	return nil
}

// Current returns the word under the cursor, or nil.
func (c *Controller) Current() *vocab.Word {
	return c.state.Current()
}

// Next flushes the current word's mistake flag and advances. At the
// end of a pass it requeues failed words or completes the session.
func (c *Controller) Next() {
	c.state.advance()
}

// Prev flushes the current word's mistake flag and steps back,
// clamped at the first word.
func (c *Controller) Prev() {
	c.state.retreat()
}

// RecordAttempt updates the accuracy counters.
func (c *Controller) RecordAttempt(correct bool) {
	c.state.recordAttempt(correct)
}

// MarkMistake flags the current word as missed this visit.
func (c *Controller) MarkMistake() {
	if c.state.Phase == PhaseActive {
		c.state.Mistake = true
	}
}

// ClearMistake resets the per-visit flag.
func (c *Controller) ClearMistake() {
	c.state.Mistake = false
}

// Accuracy returns the percentage of correct attempts (one decimal).
func (c *Controller) Accuracy() float64 {
	return c.state.accuracy()
}

// ReportProgress sends the recall quality for a word's progress record
// in the background. Failures are logged and never roll back local
// navigation; the backend's progress state is eventually consistent.
func (c *Controller) ReportProgress(progressID int64, quality int) {
	log := c.log
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		defer cancel()
		if err := c.backend.UpdateProgress(ctx, progressID, quality); err != nil {
			log.Warn("progress report failed",
				zap.Int64("progressId", progressID),
				zap.Error(err))
		}
	}()
}

// End tears the session down: records local history, resets to
// Inactive, and triggers the external progress refresh. In-flight
// progress reports are left to finish on their own.
func (c *Controller) End() {
	s := c.state
	if s.Phase != PhaseInactive && c.history != nil && s.TotalAttempts > 0 {
		ev := store.SessionEvent{
			SessionID: s.SessionID,
			ListCode:  s.ListCode,
			StartedAt: s.StartTime,
			DurationS: int(time.Since(s.StartTime).Seconds()),
			Words:     s.InitialLen,
			Attempts:  s.TotalAttempts,
			Correct:   s.CorrectAttempts,
			Accuracy:  s.accuracy(),
			Failed:    s.distinctFailed(),
		}
		if err := c.history.AppendSessionEvent(ev); err != nil {
			c.log.Warn("record session history", zap.Error(err))
		}
	}

	c.state = &State{Phase: PhaseInactive}
	if c.onEnd != nil {
		c.onEnd()
	}
}
