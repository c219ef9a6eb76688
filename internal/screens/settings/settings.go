// Package settings implements the preferences screen.
package settings

import (
	"context"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/ispell/ispell/internal/api"
	"github.com/ispell/ispell/internal/i18n"
	"github.com/ispell/ispell/internal/screen"
	"github.com/ispell/ispell/internal/ui/components"
	"github.com/ispell/ispell/internal/ui/layout"
	"github.com/ispell/ispell/internal/ui/theme"
)

const rpcTimeout = 10 * time.Second

// field indexes in tab order.
const (
	fieldDailyNew = iota
	fieldDailyReview
	fieldAccent
	fieldAutoPlay
	fieldSave
	fieldCount
)

var accents = []string{"us", "uk"}

type fetchedMsg struct {
	settings *api.Settings
	err      error
}

type savedMsg struct{ err error }

// SettingsScreen edits the server-side preferences and pushes the
// accepted values back to the caller.
type SettingsScreen struct {
	client  *api.Client
	catalog *i18n.Catalog
	// onSaved receives the accepted settings so the local config and
	// running speaker can follow.
	onSaved func(api.Settings)

	dailyNew    components.TextInput
	dailyReview components.TextInput
	accent      components.Picker
	autoPlay    bool
	focus       int
	loading     bool
	busy        bool
	status      string
	errMsg      string
}

var _ screen.Screen = (*SettingsScreen)(nil)
var _ screen.KeyHintProvider = (*SettingsScreen)(nil)

// New creates a SettingsScreen.
func New(client *api.Client, catalog *i18n.Catalog, onSaved func(api.Settings)) *SettingsScreen {
	s := &SettingsScreen{
		client:  client,
		catalog: catalog,
		onSaved: onSaved,
		loading: true,
	}
	s.dailyNew = components.NewTextInput("10", components.FilterDigits, 3)
	s.dailyReview = components.NewTextInput("30", components.FilterDigits, 3)
	s.accent = components.NewPicker(catalog.T("settings.accent"), accents, 0)
	return s
}

func (s *SettingsScreen) Title() string {
	return s.catalog.T("home.settings")
}

func (s *SettingsScreen) Init() tea.Cmd {
	client := s.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()
		st, err := client.Settings(ctx)
		return fetchedMsg{settings: st, err: err}
	}
}

func (s *SettingsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "←→", Description: "Change"},
		{Key: "Enter", Description: "Save"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case fetchedMsg:
		s.loading = false
		if msg.err != nil {
			s.errMsg = s.catalog.Error(msg.err)
			return s, nil
		}
		s.apply(*msg.settings)
		return s, nil

	case savedMsg:
		s.busy = false
		if msg.err != nil {
			s.errMsg = s.catalog.Error(msg.err)
			return s, nil
		}
		s.status = s.catalog.T("settings.saved")
		return s, nil

	case tea.KeyMsg:
		if s.loading || s.busy {
			return s, nil
		}
		switch msg.String() {
		case "tab", "down":
			s.setFocus((s.focus + 1) % fieldCount)
			return s, nil
		case "shift+tab", "up":
			s.setFocus((s.focus + fieldCount - 1) % fieldCount)
			return s, nil
		case "enter":
			if s.focus == fieldAutoPlay {
				s.autoPlay = !s.autoPlay
				return s, nil
			}
			return s, s.save()
		case " ":
			if s.focus == fieldAutoPlay {
				s.autoPlay = !s.autoPlay
				return s, nil
			}
		}
	}

	var cmd tea.Cmd
	switch s.focus {
	case fieldDailyNew:
		s.dailyNew, cmd = s.dailyNew.Update(msg)
	case fieldDailyReview:
		s.dailyReview, cmd = s.dailyReview.Update(msg)
	case fieldAccent:
		s.accent, cmd = s.accent.Update(msg)
	}
	return s, cmd
}

// apply seeds the form from fetched settings.
func (s *SettingsScreen) apply(st api.Settings) {
	s.dailyNew.SetValue(strconv.Itoa(st.DailyNew))
	s.dailyReview.SetValue(strconv.Itoa(st.DailyReview))
	for i, a := range accents {
		if a == st.Accent {
			s.accent.Selected = i
		}
	}
	s.autoPlay = st.AutoPlayAudio
	s.setFocus(fieldDailyNew)
}

func (s *SettingsScreen) setFocus(n int) {
	s.focus = n
	s.dailyNew.Model.Blur()
	s.dailyReview.Model.Blur()
	s.accent.Focused = false
	switch n {
	case fieldDailyNew:
		s.dailyNew.Model.Focus()
	case fieldDailyReview:
		s.dailyReview.Model.Focus()
	case fieldAccent:
		s.accent.Focused = true
	}
}

func (s *SettingsScreen) save() tea.Cmd {
	dailyNew, err := s.dailyNew.NumericValue()
	if err != nil || dailyNew < 0 {
		s.errMsg = "daily new must be a number"
		return nil
	}
	dailyReview, err := s.dailyReview.NumericValue()
	if err != nil || dailyReview < 0 {
		s.errMsg = "daily review must be a number"
		return nil
	}

	st := api.Settings{
		DailyNew:      dailyNew,
		DailyReview:   dailyReview,
		Accent:        s.accent.Value(),
		AutoPlayAudio: s.autoPlay,
		ShowPhonetic:  true,
	}

	s.busy = true
	s.errMsg = ""
	s.status = ""
	client := s.client
	onSaved := s.onSaved
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()
		if err := client.SaveSettings(ctx, st); err != nil {
			return savedMsg{err: err}
		}
		if onSaved != nil {
			onSaved(st)
		}
		return savedMsg{}
	}
}

func (s *SettingsScreen) View(width, height int) string {
	if s.loading {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("Loading settings..."))
	}

	cw := components.ContentWidth(width)

	var rows []string
	rows = append(rows, s.fieldLabel(s.catalog.T("settings.daily_new"), fieldDailyNew))
	rows = append(rows, s.dailyNew.View(), "")
	rows = append(rows, s.fieldLabel(s.catalog.T("settings.daily_review"), fieldDailyReview))
	rows = append(rows, s.dailyReview.View(), "")
	rows = append(rows, s.accent.View(), "")

	check := "[ ]"
	if s.autoPlay {
		check = "[x]"
	}
	autoLine := check + " Auto-play audio"
	if s.focus == fieldAutoPlay {
		rows = append(rows, theme.Selected.Render("▸ "+autoLine))
	} else {
		rows = append(rows, theme.Unselected.Render("  "+autoLine))
	}
	rows = append(rows, "")

	saveLabel := "Save"
	if s.busy {
		saveLabel = "Saving..."
	}
	rows = append(rows, components.MenuButton(saveLabel, s.focus == fieldSave, cw/2))

	if s.errMsg != "" {
		rows = append(rows, "", theme.Incorrect.Render(s.errMsg))
	}
	if s.status != "" {
		rows = append(rows, "", theme.Correct.Render(s.status))
	}

	content := components.InfoCard(strings.Join(rows, "\n"), cw)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (s *SettingsScreen) fieldLabel(label string, field int) string {
	if s.focus == field {
		return theme.Selected.Render(label)
	}
	return theme.Body.Render(label)
}
