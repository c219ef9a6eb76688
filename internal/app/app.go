// Package app wires the services together and runs the Bubble Tea
// program.
package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/ispell/ispell/internal/api"
	"github.com/ispell/ispell/internal/config"
	"github.com/ispell/ispell/internal/creds"
	"github.com/ispell/ispell/internal/i18n"
	"github.com/ispell/ispell/internal/router"
	"github.com/ispell/ispell/internal/screen"
	"github.com/ispell/ispell/internal/screens/books"
	"github.com/ispell/ispell/internal/screens/home"
	"github.com/ispell/ispell/internal/screens/login"
	"github.com/ispell/ispell/internal/screens/practice"
	"github.com/ispell/ispell/internal/screens/settings"
	"github.com/ispell/ispell/internal/screens/summary"
	"github.com/ispell/ispell/internal/session"
	"github.com/ispell/ispell/internal/store"
	"github.com/ispell/ispell/internal/tts"
	"github.com/ispell/ispell/internal/ui/layout"
	"github.com/ispell/ispell/internal/vocab"
)

// Options carries the services built by the command layer.
type Options struct {
	Config     config.Config
	ConfigPath string
	Log        *zap.Logger
	Store      *store.Store
	Creds      *creds.Store
	Client     *api.Client
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	opts    Options
	catalog *i18n.Catalog
	speaker *tts.Speaker
	router  *router.Router
	width   int
	height  int
}

// newAppModel builds the screen graph. The start screen is home when
// stored credentials exist, the login form otherwise.
func newAppModel(opts Options) *AppModel {
	m := &AppModel{
		opts:    opts,
		catalog: i18n.NewCatalog(opts.Config.Locale),
	}

	speaker, err := tts.New(opts.Config.TTSEngine, opts.Config.Accent, opts.Log)
	if err != nil {
		opts.Log.Warn("speech engine unavailable", zap.Error(err))
	} else {
		m.speaker = speaker
	}

	initial := screen.Screen(m.loginScreen())
	if u, err := opts.Client.CurrentUser(); err == nil && u != nil {
		initial = m.homeScreen()
	}
	m.router = router.New(initial)
	return m
}

func (m *AppModel) loginScreen() screen.Screen {
	return login.New(m.opts.Client, m.catalog, m.homeScreen)
}

func (m *AppModel) homeScreen() screen.Screen {
	return home.New(home.Deps{
		Client:          m.opts.Client,
		Catalog:         m.catalog,
		CurrentBook:     m.currentBook,
		PracticeFactory: m.practiceScreen,
		BooksFactory:    m.booksScreen,
		SettingsFactory: m.settingsScreen,
		LoginFactory:    m.loginScreen,
		Logout:          m.opts.Client.Logout,
	})
}

func (m *AppModel) practiceScreen() screen.Screen {
	ctrl := session.NewController(m.opts.Client, m.opts.Store, m.opts.Log, nil)
	var speaker practice.Speaker
	if m.speaker != nil {
		speaker = m.speaker
	}
	return practice.New(practice.Deps{
		Client:  m.opts.Client,
		Ctrl:    ctrl,
		Catalog: m.catalog,
		Speaker: speaker,
		Accent:  m.opts.Config.Accent,
		Book:    m.currentBook(),
		Plan: vocab.Plan{
			DailyNew:    m.opts.Config.DailyNew,
			DailyReview: m.opts.Config.DailyReview,
		},
		SummaryFactory: func(sum *session.Summary) screen.Screen {
			return summary.New(sum, m.catalog)
		},
	})
}

func (m *AppModel) booksScreen() screen.Screen {
	return books.New(m.opts.Client, m.catalog, m.currentBook(), m.opts.Creds.SetCurrentBook)
}

func (m *AppModel) settingsScreen() screen.Screen {
	return settings.New(m.opts.Client, m.catalog, m.applySettings)
}

func (m *AppModel) currentBook() string {
	book, err := m.opts.Creds.CurrentBook()
	if err != nil {
		m.opts.Log.Warn("read current book", zap.Error(err))
		return ""
	}
	return book
}

// applySettings mirrors accepted server settings into the local config
// file and rebuilds the speaker when the accent changed.
func (m *AppModel) applySettings(s api.Settings) {
	accentChanged := s.Accent != m.opts.Config.Accent

	m.opts.Config.Accent = s.Accent
	m.opts.Config.DailyNew = s.DailyNew
	m.opts.Config.DailyReview = s.DailyReview
	if m.opts.ConfigPath != "" {
		if err := config.Save(m.opts.ConfigPath, m.opts.Config); err != nil {
			m.opts.Log.Warn("save config", zap.Error(err))
		}
	}

	if accentChanged {
		speaker, err := tts.New(m.opts.Config.TTSEngine, s.Accent, m.opts.Log)
		if err == nil {
			m.speaker = speaker
		}
	}
}

func (m *AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				// Let screens with their own Esc handling (quit
				// confirmation, forms) see the key first.
				if _, ok := m.router.Active().(*practice.PracticeScreen); !ok {
					return m, func() tea.Msg { return router.PopScreenMsg{} }
				}
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m *AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.username(), m.currentBook(), m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	}
	if footerHints == nil {
		if m.router.Depth() > 1 {
			footerHints = []layout.KeyHint{
				{Key: "Esc", Description: "Back"},
				{Key: "Ctrl+C", Description: "Quit"},
			}
		} else {
			footerHints = []layout.KeyHint{
				{Key: "↑↓", Description: "Navigate"},
				{Key: "Enter", Description: "Select"},
				{Key: "Ctrl+C", Description: "Quit"},
			}
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

func (m *AppModel) username() string {
	u, err := m.opts.Client.CurrentUser()
	if err != nil || u == nil {
		return ""
	}
	return u.Username
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	p := tea.NewProgram(newAppModel(opts))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
