package session

import "time"

// Summary holds the figures displayed when a session completes.
type Summary struct {
	Duration    time.Duration
	Words       int
	Attempts    int
	Correct     int
	Accuracy    float64
	FailedWords []string
}

// BuildSummary creates a Summary from the session state. FailedWords
// lists the distinct words that were ever requeued, in first-failure
// order.
func BuildSummary(s *State) *Summary {
	var failed []string
	seen := make(map[int64]bool)
	for _, w := range s.Queue[min(s.InitialLen, len(s.Queue)):] {
		if seen[w.ProgressID] {
			continue
		}
		seen[w.ProgressID] = true
		failed = append(failed, w.Text)
	}

	return &Summary{
		Duration:    time.Since(s.StartTime),
		Words:       s.InitialLen,
		Attempts:    s.TotalAttempts,
		Correct:     s.CorrectAttempts,
		Accuracy:    s.accuracy(),
		FailedWords: failed,
	}
}
