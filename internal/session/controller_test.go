package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ispell/ispell/internal/store"
	"github.com/ispell/ispell/internal/vocab"
)

// fakeBackend counts calls and serves a canned batch.
type fakeBackend struct {
	mu         sync.Mutex
	batch      []vocab.Word
	fetchErr   error
	fetchCalls int
	reports    []int64
	reportErr  error
	reported   chan struct{}
}

func (f *fakeBackend) TodayWords(ctx context.Context, listCode string, dueNew, dueReview int) ([]vocab.Word, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.batch, nil
}

func (f *fakeBackend) UpdateProgress(ctx context.Context, progressID int64, quality int) error {
	f.mu.Lock()
	f.reports = append(f.reports, progressID)
	err := f.reportErr
	f.mu.Unlock()
	if f.reported != nil {
		f.reported <- struct{}{}
	}
	return err
}

type fakeHistory struct {
	events []store.SessionEvent
}

func (f *fakeHistory) AppendSessionEvent(ev store.SessionEvent) error {
	f.events = append(f.events, ev)
	return nil
}

func testWords(n int) []vocab.Word {
	words := make([]vocab.Word, n)
	for i := range words {
		words[i] = vocab.Word{
			ID:         int64(i + 1),
			Text:       fmt.Sprintf("word%d", i+1),
			ProgressID: int64(100 + i),
		}
	}
	return words
}

func loadedController(t *testing.T, n int) (*Controller, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{batch: testWords(n)}
	c := NewController(backend, nil, nil, nil)
	if err := c.Load(context.Background(), "cet4", Quota{New: n, Review: 0}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c, backend
}

func TestLoad_NonEmptyBatchActivates(t *testing.T) {
	c, _ := loadedController(t, 3)

	if c.Phase() != PhaseActive {
		t.Fatalf("Phase = %v, want PhaseActive", c.Phase())
	}
	if got := c.Current(); got == nil || got.Text != "word1" {
		t.Errorf("Current = %+v, want word1", got)
	}
	if c.State().Index != 0 {
		t.Errorf("Index = %d, want 0", c.State().Index)
	}
	if c.Accuracy() != 0 {
		t.Errorf("Accuracy = %v, want 0", c.Accuracy())
	}
}

func TestLoad_EmptyQuotaCompletesWithoutFetch(t *testing.T) {
	backend := &fakeBackend{batch: testWords(5)}
	c := NewController(backend, nil, nil, nil)

	if err := c.Load(context.Background(), "cet4", Quota{}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Phase() != PhaseComplete {
		t.Errorf("Phase = %v, want PhaseComplete", c.Phase())
	}
	if backend.fetchCalls != 0 {
		t.Errorf("fetch calls = %d, want 0", backend.fetchCalls)
	}
}

func TestLoad_EmptyBatchCompletes(t *testing.T) {
	backend := &fakeBackend{}
	c := NewController(backend, nil, nil, nil)

	if err := c.Load(context.Background(), "cet4", Quota{New: 10}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Phase() != PhaseComplete {
		t.Errorf("Phase = %v, want PhaseComplete", c.Phase())
	}
	if backend.fetchCalls != 1 {
		t.Errorf("fetch calls = %d, want 1", backend.fetchCalls)
	}
}

func TestLoad_FetchErrorStaysInactive(t *testing.T) {
	backend := &fakeBackend{fetchErr: errors.New("boom")}
	c := NewController(backend, nil, nil, nil)

	if err := c.Load(context.Background(), "cet4", Quota{New: 10}); err == nil {
		t.Fatal("expected error")
	}
	if c.Phase() != PhaseInactive {
		t.Errorf("Phase = %v, want PhaseInactive", c.Phase())
	}
}

func TestNext_CleanPassCompletes(t *testing.T) {
	c, _ := loadedController(t, 3)

	c.Next()
	c.Next()
	if c.Phase() != PhaseActive {
		t.Fatalf("Phase = %v, want PhaseActive mid-pass", c.Phase())
	}
	c.Next()
	if c.Phase() != PhaseComplete {
		t.Errorf("Phase = %v, want PhaseComplete", c.Phase())
	}
}

func TestNext_MistakeRequeuesAtEndOfPass(t *testing.T) {
	c, _ := loadedController(t, 3)

	// Miss the first word, get the rest right.
	c.MarkMistake()
	c.Next()
	c.Next()
	c.Next()

	if c.Phase() != PhaseActive {
		t.Fatalf("Phase = %v, want PhaseActive (requeued pass)", c.Phase())
	}
	state := c.State()
	if len(state.Queue) != 4 {
		t.Fatalf("queue length = %d, want 4", len(state.Queue))
	}
	if got := c.Current(); got == nil || got.Text != "word1" {
		t.Errorf("Current = %+v, want requeued word1", got)
	}
	if len(state.Failed) != 0 {
		t.Errorf("failed list length = %d, want 0 after requeue", len(state.Failed))
	}

	// Clean requeued pass completes the session.
	c.Next()
	if c.Phase() != PhaseComplete {
		t.Errorf("Phase = %v, want PhaseComplete", c.Phase())
	}
}

func TestNext_MistakeOncePerPass(t *testing.T) {
	c, _ := loadedController(t, 3)

	// Visit word1 three times with a mistake each visit.
	c.MarkMistake()
	c.Next()
	c.Prev()
	c.MarkMistake()
	c.Next()
	c.Prev()
	c.MarkMistake()

	state := c.State()
	if len(state.Failed) != 1 {
		t.Errorf("failed list length = %d, want 1 (dedup per pass)", len(state.Failed))
	}
}

func TestNext_RequeueExtendsByExactlyFailedCount(t *testing.T) {
	c, _ := loadedController(t, 4)

	// Miss words 1 and 3.
	c.MarkMistake()
	c.Next() // -> 2
	c.Next() // -> 3
	c.MarkMistake()
	c.Next() // -> 4
	c.Next() // end of pass: requeue 2

	state := c.State()
	if len(state.Queue) != 6 {
		t.Fatalf("queue length = %d, want 6", len(state.Queue))
	}
	if state.Queue[4].Text != "word1" || state.Queue[5].Text != "word3" {
		t.Errorf("requeued tail = %s, %s; want word1, word3",
			state.Queue[4].Text, state.Queue[5].Text)
	}
}

func TestNext_FailedTwiceLoopsIntoThirdPass(t *testing.T) {
	c, _ := loadedController(t, 1)

	// Fail the only word in its original pass and in its requeued pass.
	c.MarkMistake()
	c.Next()
	if c.Phase() != PhaseActive {
		t.Fatal("expected second pass")
	}
	c.MarkMistake()
	c.Next()
	if c.Phase() != PhaseActive {
		t.Errorf("Phase = %v, want PhaseActive (word keeps looping)", c.Phase())
	}
	if got := len(c.State().Queue); got != 3 {
		t.Errorf("queue length = %d, want 3", got)
	}
}

func TestPrev_ClampsAtZero(t *testing.T) {
	c, _ := loadedController(t, 3)

	c.Prev()
	if c.State().Index != 0 {
		t.Errorf("Index = %d, want 0 after Prev at boundary", c.State().Index)
	}
	if c.Phase() != PhaseActive {
		t.Errorf("Phase = %v, want PhaseActive", c.Phase())
	}

	c.Next()
	c.Prev()
	if c.State().Index != 0 {
		t.Errorf("Index = %d, want 0", c.State().Index)
	}
}

func TestPrev_FlushesMistake(t *testing.T) {
	c, _ := loadedController(t, 3)

	c.Next()
	c.MarkMistake()
	c.Prev()

	state := c.State()
	if state.Mistake {
		t.Error("mistake flag should be cleared by navigation")
	}
	if len(state.Failed) != 1 || state.Failed[0].Text != "word2" {
		t.Errorf("failed = %+v, want [word2]", state.Failed)
	}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		total   int
		want    float64
	}{
		{"no attempts", 0, 0, 0},
		{"three of four", 3, 4, 75.0},
		{"two of three rounds", 2, 3, 66.7},
		{"perfect", 5, 5, 100.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := loadedController(t, 1)
			for i := 0; i < tt.total; i++ {
				c.RecordAttempt(i < tt.correct)
			}
			if got := c.Accuracy(); got != tt.want {
				t.Errorf("Accuracy = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReportProgress_FireAndForget(t *testing.T) {
	c, backend := loadedController(t, 2)
	backend.reported = make(chan struct{}, 2)
	backend.reportErr = errors.New("backend down")

	// A failing report must not disturb navigation.
	c.ReportProgress(100, 5)
	c.Next()
	<-backend.reported

	if c.Phase() != PhaseActive || c.State().Index != 1 {
		t.Errorf("navigation disturbed: phase=%v index=%d", c.Phase(), c.State().Index)
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if len(backend.reports) != 1 || backend.reports[0] != 100 {
		t.Errorf("reports = %v, want [100]", backend.reports)
	}
}

func TestEnd_RecordsHistoryAndResets(t *testing.T) {
	backend := &fakeBackend{batch: testWords(2)}
	history := &fakeHistory{}
	refreshed := false
	c := NewController(backend, history, nil, func() { refreshed = true })

	if err := c.Load(context.Background(), "ielts", Quota{New: 2}); err != nil {
		t.Fatal(err)
	}
	c.RecordAttempt(true)
	c.RecordAttempt(false)
	c.Next()
	c.Next()

	c.End()

	if c.Phase() != PhaseInactive {
		t.Errorf("Phase = %v, want PhaseInactive", c.Phase())
	}
	if !refreshed {
		t.Error("expected onEnd callback")
	}
	if len(history.events) != 1 {
		t.Fatalf("history events = %d, want 1", len(history.events))
	}
	ev := history.events[0]
	if ev.ListCode != "ielts" || ev.Attempts != 2 || ev.Correct != 1 || ev.Accuracy != 50.0 {
		t.Errorf("event = %+v", ev)
	}
}

func TestEnd_FailedCountDedupesAcrossPasses(t *testing.T) {
	backend := &fakeBackend{batch: testWords(1)}
	history := &fakeHistory{}
	c := NewController(backend, history, nil, nil)

	if err := c.Load(context.Background(), "cet4", Quota{New: 1}); err != nil {
		t.Fatal(err)
	}

	// Fail the only word in its original pass and in its requeued
	// pass: the queue tail holds it twice, the history counts it once,
	// matching the summary screen.
	c.RecordAttempt(false)
	c.MarkMistake()
	c.Next()
	c.RecordAttempt(false)
	c.MarkMistake()
	c.Next()

	c.End()

	if len(history.events) != 1 {
		t.Fatalf("history events = %d, want 1", len(history.events))
	}
	if got := history.events[0].Failed; got != 1 {
		t.Errorf("Failed = %d, want 1", got)
	}
}

func TestEnd_WithoutAttemptsSkipsHistory(t *testing.T) {
	backend := &fakeBackend{batch: testWords(2)}
	history := &fakeHistory{}
	c := NewController(backend, history, nil, nil)

	if err := c.Load(context.Background(), "cet4", Quota{New: 2}); err != nil {
		t.Fatal(err)
	}
	c.End()

	if len(history.events) != 0 {
		t.Errorf("history events = %d, want 0", len(history.events))
	}
}

func TestBuildSummary(t *testing.T) {
	c, _ := loadedController(t, 3)
	c.MarkMistake()
	c.RecordAttempt(false)
	c.RecordAttempt(true)
	c.Next()
	c.RecordAttempt(true)
	c.Next()
	c.RecordAttempt(true)
	c.Next() // requeue word1

	sum := BuildSummary(c.State())
	if sum.Words != 3 {
		t.Errorf("Words = %d, want 3", sum.Words)
	}
	if sum.Attempts != 4 || sum.Correct != 3 {
		t.Errorf("Attempts/Correct = %d/%d, want 4/3", sum.Attempts, sum.Correct)
	}
	if sum.Accuracy != 75.0 {
		t.Errorf("Accuracy = %v, want 75.0", sum.Accuracy)
	}
	if len(sum.FailedWords) != 1 || sum.FailedWords[0] != "word1" {
		t.Errorf("FailedWords = %v, want [word1]", sum.FailedWords)
	}
}
