// Package login implements the sign-in screen.
package login

import (
	"context"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/ispell/ispell/internal/api"
	"github.com/ispell/ispell/internal/i18n"
	"github.com/ispell/ispell/internal/router"
	"github.com/ispell/ispell/internal/screen"
	"github.com/ispell/ispell/internal/ui/components"
	"github.com/ispell/ispell/internal/ui/layout"
	"github.com/ispell/ispell/internal/ui/theme"
)

const loginTimeout = 15 * time.Second

// field indexes in tab order.
const (
	fieldEmail = iota
	fieldPassword
	fieldRemember
	fieldSubmit
	fieldCount
)

type loginDoneMsg struct {
	res *api.LoginResult
	err error
}

// LoginScreen collects credentials and signs the user in.
type LoginScreen struct {
	client      *api.Client
	catalog     *i18n.Catalog
	homeFactory func() screen.Screen

	email    components.TextInput
	password components.TextInput
	remember bool
	focus    int
	busy     bool
	errMsg   string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen. homeFactory produces the screen shown
// after a successful sign-in.
func New(client *api.Client, catalog *i18n.Catalog, homeFactory func() screen.Screen) *LoginScreen {
	email := components.NewTextInput("you@example.com", components.FilterNone, 64)
	password := components.NewTextInput("password", components.FilterNone, 64)
	password.Model.EchoMode = textinput.EchoPassword
	password.Model.Blur()

	return &LoginScreen{
		client:      client,
		catalog:     catalog,
		homeFactory: homeFactory,
		email:       email,
		password:    password,
		remember:    true,
	}
}

func (l *LoginScreen) Title() string {
	return l.catalog.T("login.title")
}

func (l *LoginScreen) Init() tea.Cmd {
	return l.email.Init()
}

func (l *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Sign in"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (l *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		l.busy = false
		if msg.err != nil {
			l.errMsg = l.catalog.Error(msg.err)
			return l, nil
		}
		home := l.homeFactory()
		return l, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: home}
		}

	case tea.KeyMsg:
		if l.busy {
			return l, nil
		}
		switch msg.String() {
		case "tab", "down":
			return l, l.setFocus((l.focus + 1) % fieldCount)
		case "shift+tab", "up":
			return l, l.setFocus((l.focus + fieldCount - 1) % fieldCount)
		case "enter":
			if l.focus == fieldRemember {
				l.remember = !l.remember
				return l, nil
			}
			return l, l.submit()
		case " ":
			if l.focus == fieldRemember {
				l.remember = !l.remember
				return l, nil
			}
		}
	}

	var cmd tea.Cmd
	switch l.focus {
	case fieldEmail:
		l.email, cmd = l.email.Update(msg)
	case fieldPassword:
		l.password, cmd = l.password.Update(msg)
	}
	return l, cmd
}

func (l *LoginScreen) setFocus(n int) tea.Cmd {
	l.focus = n
	l.email.Model.Blur()
	l.password.Model.Blur()
	switch n {
	case fieldEmail:
		return l.email.Model.Focus()
	case fieldPassword:
		return l.password.Model.Focus()
	}
	return nil
}

func (l *LoginScreen) submit() tea.Cmd {
	email := strings.TrimSpace(l.email.Value())
	password := l.password.Value()
	if email == "" || password == "" {
		return nil
	}

	l.busy = true
	l.errMsg = ""
	client := l.client
	remember := l.remember
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
		defer cancel()
		res, err := client.Login(ctx, email, password, remember)
		return loginDoneMsg{res: res, err: err}
	}
}

func (l *LoginScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var rows []string
	rows = append(rows, theme.Title.Render(l.catalog.T("login.title")), "")

	rows = append(rows, l.fieldLabel(l.catalog.T("login.email"), fieldEmail))
	rows = append(rows, l.email.View(), "")
	rows = append(rows, l.fieldLabel(l.catalog.T("login.password"), fieldPassword))
	rows = append(rows, l.password.View(), "")

	check := "[ ]"
	if l.remember {
		check = "[x]"
	}
	rememberLine := check + " " + l.catalog.T("login.remember")
	if l.focus == fieldRemember {
		rows = append(rows, theme.Selected.Render("▸ "+rememberLine))
	} else {
		rows = append(rows, theme.Unselected.Render("  "+rememberLine))
	}
	rows = append(rows, "")

	submitLabel := l.catalog.T("login.submit")
	if l.busy {
		submitLabel = submitLabel + "..."
	}
	rows = append(rows, components.MenuButton(submitLabel, l.focus == fieldSubmit, cw/2))

	if l.errMsg != "" {
		rows = append(rows, "", theme.Incorrect.Render(l.errMsg))
	}

	content := components.InfoCard(strings.Join(rows, "\n"), cw)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (l *LoginScreen) fieldLabel(label string, field int) string {
	if l.focus == field {
		return theme.Selected.Render(label)
	}
	return theme.Body.Render(label)
}
