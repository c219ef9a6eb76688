package session

import (
	"math"
	"time"

	"github.com/ispell/ispell/internal/vocab"
)

// Phase is the session lifecycle stage. Transitions:
// Inactive -> Active (non-empty batch) -> ... -> Complete -> Inactive,
// or Inactive -> Complete directly when nothing is due.
type Phase int

const (
	PhaseInactive Phase = iota // no session loaded
	PhaseActive                // serving words
	PhaseComplete              // queue exhausted with no pending failures
)

// State is the runtime state of one practice session. Navigation and
// counter updates are pure in-memory transitions; all I/O lives in the
// Controller.
type State struct {
	// Phase is the current lifecycle stage.
	Phase Phase

	// SessionID identifies this session in local history.
	SessionID string

	// ListCode is the book the batch was drawn from.
	ListCode string

	// Queue is the ordered word sequence for the session. Failed words
	// are appended at the end of a pass, extending the queue in place.
	Queue []vocab.Word

	// Index is the current position. Invariant: 0 <= Index < len(Queue)
	// while Phase is Active.
	Index int

	// InitialLen is the queue length before any requeue, for progress display.
	InitialLen int

	// Mistake is the per-visit error flag for the current word, reset
	// on every navigation.
	Mistake bool

	// Failed is the per-pass requeue list, in first-failure order.
	Failed []vocab.Word

	// failedSeen guards Failed against duplicates within a pass,
	// keyed by progress identity.
	failedSeen map[int64]bool

	// TotalAttempts and CorrectAttempts feed the accuracy figure.
	TotalAttempts   int
	CorrectAttempts int

	// StartTime is the elapsed-time baseline, set when the batch loads.
	StartTime time.Time
}

// newActiveState builds the Active state for a freshly fetched batch.
func newActiveState(sessionID, listCode string, batch []vocab.Word, now time.Time) *State {
	return &State{
		Phase:      PhaseActive,
		SessionID:  sessionID,
		ListCode:   listCode,
		Queue:      batch,
		InitialLen: len(batch),
		failedSeen: make(map[int64]bool),
		StartTime:  now,
	}
}

// Current returns the word at the cursor, or nil outside an active pass.
func (s *State) Current() *vocab.Word {
	if s.Phase != PhaseActive || s.Index < 0 || s.Index >= len(s.Queue) {
		return nil
	}
	return &s.Queue[s.Index]
}

// flushMistake moves the current word into the failed list (once per
// pass) if its per-visit flag is set, then clears the flag.
func (s *State) flushMistake() {
	if !s.Mistake {
		return
	}
	s.Mistake = false

	w := s.Current()
	if w == nil {
		return
	}
	if s.failedSeen[w.ProgressID] {
		return
	}
	s.failedSeen[w.ProgressID] = true
	s.Failed = append(s.Failed, *w)
}

// advance moves the cursor forward. At the end of the queue it either
// starts a new pass over the failed words or completes the session.
func (s *State) advance() {
	if s.Phase != PhaseActive {
		return
	}
	s.flushMistake()

	if s.Index+1 < len(s.Queue) {
		s.Index++
		return
	}

	// End of pass.
	if len(s.Failed) > 0 {
		s.Queue = append(s.Queue, s.Failed...)
		s.Failed = nil
		s.failedSeen = make(map[int64]bool)
		s.Index++
		return
	}
	s.Phase = PhaseComplete
}

// retreat moves the cursor backward, clamped at zero.
func (s *State) retreat() {
	if s.Phase != PhaseActive {
		return
	}
	s.flushMistake()
	if s.Index > 0 {
		s.Index--
	}
}

// recordAttempt updates the accuracy counters.
func (s *State) recordAttempt(correct bool) {
	s.TotalAttempts++
	if correct {
		s.CorrectAttempts++
	}
}

// accuracy returns the percentage of correct attempts, rounded to one
// decimal place. Zero attempts yields 0.
func (s *State) accuracy() float64 {
	if s.TotalAttempts == 0 {
		return 0
	}
	pct := float64(s.CorrectAttempts) / float64(s.TotalAttempts) * 100
	return math.Round(pct*10) / 10
}

// distinctFailed counts the words ever requeued, once each: a word
// failed across several passes appears several times in the queue tail
// but is still one failed word.
func (s *State) distinctFailed() int {
	seen := make(map[int64]bool)
	for _, w := range s.Queue[min(s.InitialLen, len(s.Queue)):] {
		seen[w.ProgressID] = true
	}
	return len(seen)
}
