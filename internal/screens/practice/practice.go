// Package practice implements the spelling drill screen.
package practice

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/ispell/ispell/internal/api"
	"github.com/ispell/ispell/internal/i18n"
	"github.com/ispell/ispell/internal/router"
	"github.com/ispell/ispell/internal/screen"
	"github.com/ispell/ispell/internal/session"
	"github.com/ispell/ispell/internal/ui/components"
	"github.com/ispell/ispell/internal/ui/layout"
	"github.com/ispell/ispell/internal/ui/theme"
	"github.com/ispell/ispell/internal/vocab"
)

const loadTimeout = 15 * time.Second

// maxTries is how many wrong attempts a word gets before it is
// revealed and requeued.
const maxTries = 2

// Recall quality grades reported to the backend scheduler.
const (
	qualityPerfect  = 5 // first try
	qualityHesitant = 3 // correct after a miss
	qualityFailed   = 1 // revealed
)

type loadedMsg struct{ err error }

type spokenMsg struct{ err error }

// Speaker is the slice of the TTS engine the screen needs. Nil speaker
// disables audio.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

type feedback int

const (
	feedbackNone feedback = iota
	feedbackCorrect
	feedbackWrong
	feedbackRevealed
)

// Deps carries the practice screen's collaborators.
type Deps struct {
	Client  *api.Client
	Ctrl    *session.Controller
	Catalog *i18n.Catalog
	Speaker Speaker
	// Accent selects which phonetic transcription to display.
	Accent string
	// Book and Plan drive the quota computation on load.
	Book string
	Plan vocab.Plan
	// SummaryFactory builds the screen shown when the session ends.
	SummaryFactory func(*session.Summary) screen.Screen
}

// PracticeScreen drives one spelling session.
type PracticeScreen struct {
	deps Deps

	input       components.TextInput
	tries       int
	fb          feedback
	quitConfirm bool
	loading     bool
	errMsg      string
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)

// New creates a PracticeScreen.
func New(deps Deps) *PracticeScreen {
	return &PracticeScreen{
		deps:    deps,
		input:   components.NewTextInput("type the word...", components.FilterLetters, 48),
		loading: true,
	}
}

func (p *PracticeScreen) Title() string {
	return "Practice"
}

func (p *PracticeScreen) Init() tea.Cmd {
	return tea.Batch(p.loadSession(), p.input.Init())
}

// loadSession fetches due counts, clamps them to the daily plan, and
// loads the word batch.
func (p *PracticeScreen) loadSession() tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		progress, err := deps.Client.BookProgress(ctx, deps.Book)
		if err != nil {
			return loadedMsg{err: err}
		}
		quota := session.ComputeQuota(deps.Plan, *progress)
		return loadedMsg{err: deps.Ctrl.Load(ctx, deps.Book, quota)}
	}
}

// speak pronounces the current word in the background.
func (p *PracticeScreen) speak() tea.Cmd {
	if p.deps.Speaker == nil {
		return nil
	}
	word := p.deps.Ctrl.Current()
	if word == nil {
		return nil
	}
	speaker := p.deps.Speaker
	text := word.Text
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return spokenMsg{err: speaker.Speak(ctx, text)}
	}
}

func (p *PracticeScreen) KeyHints() []layout.KeyHint {
	if p.quitConfirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	}
	if p.fb != feedbackNone {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Continue"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Check"},
		{Key: "Ctrl+R", Description: "Replay audio"},
		{Key: "Esc", Description: "End"},
	}
}

func (p *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		p.loading = false
		if msg.err != nil {
			p.errMsg = p.deps.Catalog.Error(msg.err)
			return p, nil
		}
		return p, p.speak()

	case spokenMsg:
		// Playback errors are non-fatal; the word card stays usable.
		return p, nil

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	if p.fb == feedbackNone && !p.quitConfirm && !p.loading {
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return p, cmd
	}
	return p, nil
}

func (p *PracticeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if p.errMsg != "" {
		return p, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if p.loading {
		return p, nil
	}

	if p.quitConfirm {
		switch key {
		case "y", "Y":
			p.quitConfirm = false
			return p, p.finish()
		case "n", "N", "esc":
			p.quitConfirm = false
		}
		return p, nil
	}

	if p.deps.Ctrl.Phase() == session.PhaseComplete {
		// "Nothing due" or a finished queue: any key leaves.
		return p, p.finish()
	}

	if p.fb != feedbackNone {
		if key == "enter" || key == " " {
			return p.dismissFeedback()
		}
		return p, nil
	}

	switch key {
	case "esc":
		p.quitConfirm = true
		return p, nil
	case "ctrl+r":
		return p, p.speak()
	case "enter":
		return p.check()
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// check grades the typed spelling against the current word.
func (p *PracticeScreen) check() (screen.Screen, tea.Cmd) {
	word := p.deps.Ctrl.Current()
	if word == nil {
		return p, nil
	}
	typed := strings.TrimSpace(p.input.Value())
	if typed == "" {
		return p, nil
	}

	if strings.EqualFold(typed, word.Text) {
		p.deps.Ctrl.RecordAttempt(true)
		p.fb = feedbackCorrect
		return p, nil
	}

	p.deps.Ctrl.RecordAttempt(false)
	p.deps.Ctrl.MarkMistake()
	p.tries++
	if p.tries >= maxTries {
		p.fb = feedbackRevealed
	} else {
		p.fb = feedbackWrong
	}
	return p, nil
}

// dismissFeedback advances past the feedback overlay: retry the word,
// or move to the next one and report recall quality.
func (p *PracticeScreen) dismissFeedback() (screen.Screen, tea.Cmd) {
	fb := p.fb
	p.fb = feedbackNone

	if fb == feedbackWrong {
		// Another try on the same word.
		p.input.Reset()
		return p, p.speak()
	}

	word := p.deps.Ctrl.Current()
	if word != nil {
		p.deps.Ctrl.ReportProgress(word.ProgressID, p.quality(fb))
	}

	p.tries = 0
	p.input.Reset()
	p.deps.Ctrl.Next()

	if p.deps.Ctrl.Phase() == session.PhaseComplete {
		return p, p.finish()
	}
	return p, p.speak()
}

func (p *PracticeScreen) quality(fb feedback) int {
	switch {
	case fb == feedbackRevealed:
		return qualityFailed
	case p.tries > 0:
		return qualityHesitant
	default:
		return qualityPerfect
	}
}

// finish tears the session down and swaps in the summary screen.
func (p *PracticeScreen) finish() tea.Cmd {
	summary := session.BuildSummary(p.deps.Ctrl.State())
	p.deps.Ctrl.End()
	summaryScreen := p.deps.SummaryFactory(summary)
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: summaryScreen}
	}
}

func (p *PracticeScreen) View(width, height int) string {
	if p.loading {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("Fetching today's words..."))
	}
	if p.errMsg != "" {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Incorrect.Render(p.errMsg))
	}
	if p.quitConfirm {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Body.Render("End this session? (y/n)"))
	}
	if p.deps.Ctrl.Phase() == session.PhaseComplete {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Correct.Render(p.deps.Catalog.T("practice.empty")))
	}

	word := p.deps.Ctrl.Current()
	if word == nil {
		return ""
	}

	cw := components.ContentWidth(width)
	state := p.deps.Ctrl.State()

	var rows []string
	rows = append(rows, p.renderWordCard(word))
	rows = append(rows, "")
	rows = append(rows, p.input.View())
	rows = append(rows, "")

	switch p.fb {
	case feedbackCorrect:
		rows = append(rows, theme.Correct.Render(p.deps.Catalog.T("practice.correct")))
	case feedbackWrong:
		rows = append(rows, theme.Incorrect.Render(p.deps.Catalog.T("practice.wrong")))
	case feedbackRevealed:
		rows = append(rows, theme.Incorrect.Render("✗ ")+theme.Body.Bold(true).Render(word.Text))
	default:
		rows = append(rows, "")
	}
	rows = append(rows, "")

	percent := float64(state.Index) / float64(len(state.Queue))
	bar := components.NewProgressBar("", percent, true, cw-8)
	rows = append(rows, bar.View())

	content := components.InfoCard(strings.Join(rows, "\n"), cw)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// renderWordCard shows everything except the spelling itself.
func (p *PracticeScreen) renderWordCard(word *vocab.Word) string {
	var rows []string

	phonetic := word.Phonetic
	if p.deps.Accent == "uk" && word.PhoneticUK != "" {
		phonetic = word.PhoneticUK
	}
	if phonetic != "" {
		rows = append(rows, theme.Phonetic.Render("/"+phonetic+"/"))
	}

	for i, def := range word.Definitions {
		if i >= 3 {
			break
		}
		line := def.Meaning
		if def.PartOfSpeech != "" {
			line = def.PartOfSpeech + ". " + def.Meaning
		}
		rows = append(rows, theme.Body.Render(line))
	}
	if len(word.Examples) > 0 {
		rows = append(rows, theme.Hint.Render(maskWord(word.Examples[0].Sentence, word.Text)))
	}
	if word.ProgressStatus == vocab.StatusReview {
		rows = append(rows, theme.Subtitle.Render("review"))
	}
	return strings.Join(rows, "\n")
}

// maskWord blanks occurrences of the answer inside an example sentence.
func maskWord(sentence, word string) string {
	if word == "" {
		return sentence
	}
	masked := strings.Repeat("_", len(word))
	lower := strings.ToLower(word)
	capitalized := strings.ToUpper(lower[:1]) + lower[1:]
	out := sentence
	for _, w := range []string{word, lower, capitalized} {
		out = strings.ReplaceAll(out, w, masked)
	}
	return out
}
