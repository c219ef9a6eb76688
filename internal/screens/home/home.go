// Package home implements the main menu screen.
package home

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/ispell/ispell/internal/api"
	"github.com/ispell/ispell/internal/i18n"
	"github.com/ispell/ispell/internal/router"
	"github.com/ispell/ispell/internal/screen"
	"github.com/ispell/ispell/internal/ui/components"
	"github.com/ispell/ispell/internal/ui/theme"
	"github.com/ispell/ispell/internal/vocab"
)

const fetchTimeout = 10 * time.Second

type progressMsg struct {
	progress *vocab.BookProgress
	err      error
}

// Deps bundles everything the home screen and the screens it spawns
// need. The factories break the import cycle between screens.
type Deps struct {
	Client          *api.Client
	Catalog         *i18n.Catalog
	CurrentBook     func() string
	PracticeFactory func() screen.Screen
	BooksFactory    func() screen.Screen
	SettingsFactory func() screen.Screen
	LoginFactory    func() screen.Screen
	Logout          func() error
}

// HomeScreen is the main menu of the application.
type HomeScreen struct {
	deps       Deps
	menu       components.Menu
	menuLabels []string
	progress   *vocab.BookProgress
	fetchErr   string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a HomeScreen.
func New(deps Deps) *HomeScreen {
	t := deps.Catalog.T
	menuLabels := []string{
		t("home.practice"),
		t("home.books"),
		t("home.settings"),
		t("home.logout"),
		t("home.quit"),
	}

	items := []components.MenuItem{
		{Label: menuLabels[0], Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: deps.PracticeFactory()}
			}
		}},
		{Label: menuLabels[1], Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: deps.BooksFactory()}
			}
		}},
		{Label: menuLabels[2], Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: deps.SettingsFactory()}
			}
		}},
		{Label: menuLabels[3], Action: func() tea.Cmd {
			_ = deps.Logout()
			return func() tea.Msg {
				return router.ReplaceScreenMsg{Screen: deps.LoginFactory()}
			}
		}},
		{Label: menuLabels[4], Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		deps:       deps,
		menu:       components.NewMenu(items),
		menuLabels: menuLabels,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.fetchProgress()
}

// fetchProgress loads today's due counts for the current book.
func (h *HomeScreen) fetchProgress() tea.Cmd {
	book := h.deps.CurrentBook()
	if book == "" {
		return nil
	}
	client := h.deps.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		p, err := client.BookProgress(ctx, book)
		return progressMsg{progress: p, err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		if msg.err != nil {
			h.fetchErr = h.deps.Catalog.Error(msg.err)
			return h, nil
		}
		h.progress = msg.progress
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, theme.Title.Render("i S p e l l"))

	sections = append(sections, h.renderDueCard(cw))

	var menuRows []string
	for i, label := range h.menuLabels {
		menuRows = append(menuRows, components.MenuButton(label, i == h.menu.Selected, cw-8))
	}
	sections = append(sections, strings.Join(menuRows, "\n"))

	content := strings.Join(sections, "\n\n")
	return components.CenterFrame(content, width, height)
}

func (h *HomeScreen) renderDueCard(cw int) string {
	if h.fetchErr != "" {
		return components.InfoCard(theme.Hint.Render(h.fetchErr), cw)
	}
	book := h.deps.CurrentBook()
	if book == "" {
		return components.InfoCard(theme.Hint.Render("No word book selected yet"), cw)
	}
	if h.progress == nil {
		return components.InfoCard(theme.Hint.Render("Loading "+book+"..."), cw)
	}
	line := fmt.Sprintf("%s   %s %d   %s %d   %s %d/%d",
		theme.Body.Bold(true).Render(book),
		theme.Subtitle.Render("new"), h.progress.DueNew,
		theme.Subtitle.Render("review"), h.progress.DueReview,
		theme.Subtitle.Render("learned"), h.progress.Learned, h.progress.Total,
	)
	return components.InfoCard(line, cw)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
