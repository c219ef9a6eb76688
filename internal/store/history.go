package store

import (
	"fmt"
	"time"
)

// SessionEvent records one completed (or abandoned) practice pass for
// the local stats view. The backend remains the source of truth for
// learning progress; this table only feeds the history display.
type SessionEvent struct {
	ID        int64     `db:"id"`
	SessionID string    `db:"session_id"`
	ListCode  string    `db:"list_code"`
	StartedAt time.Time `db:"started_at"`
	DurationS int       `db:"duration_s"`
	Words     int       `db:"words"`
	Attempts  int       `db:"attempts"`
	Correct   int       `db:"correct"`
	Accuracy  float64   `db:"accuracy"`
	Failed    int       `db:"failed"`
}

// AppendSessionEvent records a finished practice session.
func (s *Store) AppendSessionEvent(ev SessionEvent) error {
	_, err := s.db.NamedExec(`
		INSERT INTO session_events (session_id, list_code, started_at, duration_s, words, attempts, correct, accuracy, failed)
		VALUES (:session_id, :list_code, :started_at, :duration_s, :words, :attempts, :correct, :accuracy, :failed)`,
		ev,
	)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

// RecentSessions returns up to limit session events, newest first.
// limit <= 0 returns all.
func (s *Store) RecentSessions(limit int) ([]SessionEvent, error) {
	query := "SELECT * FROM session_events ORDER BY started_at DESC"
	var events []SessionEvent
	var err error
	if limit > 0 {
		err = s.db.Select(&events, query+" LIMIT ?", limit)
	} else {
		err = s.db.Select(&events, query)
	}
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	return events, nil
}
