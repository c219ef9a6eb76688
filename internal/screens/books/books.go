// Package books implements the word-book browser screen.
package books

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/ispell/ispell/internal/api"
	"github.com/ispell/ispell/internal/i18n"
	"github.com/ispell/ispell/internal/router"
	"github.com/ispell/ispell/internal/screen"
	"github.com/ispell/ispell/internal/ui/layout"
	"github.com/ispell/ispell/internal/ui/theme"
	"github.com/ispell/ispell/internal/vocab"
)

const fetchTimeout = 10 * time.Second

type hierarchyMsg struct {
	categories []vocab.Category
	err        error
}

// row is one visible line: either a category heading or a selectable book.
type row struct {
	heading string
	book    *vocab.Book
}

// BooksScreen lists the book hierarchy and lets the user pick the
// active book.
type BooksScreen struct {
	client     *api.Client
	catalog    *i18n.Catalog
	selectBook func(listCode string) error

	rows     []row
	cursor   int
	current  string
	loading  bool
	errMsg   string
}

var _ screen.Screen = (*BooksScreen)(nil)
var _ screen.KeyHintProvider = (*BooksScreen)(nil)

// New creates a BooksScreen. current is the active book's list code;
// selectBook persists a new choice.
func New(client *api.Client, catalog *i18n.Catalog, current string, selectBook func(string) error) *BooksScreen {
	return &BooksScreen{
		client:     client,
		catalog:    catalog,
		selectBook: selectBook,
		current:    current,
		loading:    true,
	}
}

func (b *BooksScreen) Title() string {
	return b.catalog.T("home.books")
}

func (b *BooksScreen) Init() tea.Cmd {
	client := b.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		cats, err := client.BookHierarchy(ctx)
		return hierarchyMsg{categories: cats, err: err}
	}
}

func (b *BooksScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Choose book"},
		{Key: "Esc", Description: "Back"},
	}
}

func (b *BooksScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case hierarchyMsg:
		b.loading = false
		if msg.err != nil {
			b.errMsg = b.catalog.Error(msg.err)
			return b, nil
		}
		b.rows = flatten(msg.categories, 0)
		b.cursor = firstBook(b.rows)
		return b, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			for i := b.cursor - 1; i >= 0; i-- {
				if b.rows[i].book != nil {
					b.cursor = i
					break
				}
			}
		case "down", "j":
			for i := b.cursor + 1; i < len(b.rows); i++ {
				if b.rows[i].book != nil {
					b.cursor = i
					break
				}
			}
		case "enter":
			if b.cursor >= 0 && b.cursor < len(b.rows) && b.rows[b.cursor].book != nil {
				code := b.rows[b.cursor].book.ListCode
				if err := b.selectBook(code); err != nil {
					b.errMsg = err.Error()
					return b, nil
				}
				b.current = code
				return b, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}
	return b, nil
}

// flatten walks the category tree into display rows, indenting nested
// category names.
func flatten(cats []vocab.Category, depth int) []row {
	var rows []row
	indent := strings.Repeat("  ", depth)
	for _, c := range cats {
		rows = append(rows, row{heading: indent + c.Name})
		for i := range c.Books {
			rows = append(rows, row{book: &c.Books[i]})
		}
		rows = append(rows, flatten(c.Children, depth+1)...)
	}
	return rows
}

func firstBook(rows []row) int {
	for i, r := range rows {
		if r.book != nil {
			return i
		}
	}
	return 0
}

func (b *BooksScreen) View(width, height int) string {
	if b.loading {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("Loading books..."))
	}
	if b.errMsg != "" {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Incorrect.Render(b.errMsg))
	}

	// Window the rows around the cursor so long lists scroll.
	visible := height - 2
	if visible < 3 {
		visible = 3
	}
	start := 0
	if b.cursor >= visible {
		start = b.cursor - visible + 1
	}
	end := start + visible
	if end > len(b.rows) {
		end = len(b.rows)
	}

	var lines []string
	for i := start; i < end; i++ {
		r := b.rows[i]
		if r.book == nil {
			lines = append(lines, theme.Subtitle.Align(lipgloss.Left).Bold(true).Render(r.heading))
			continue
		}
		line := fmt.Sprintf("%-32s %5d words   %d learned", r.book.Name, r.book.WordCount, r.book.Learned)
		marker := "  "
		if r.book.ListCode == b.current {
			marker = "● "
		}
		if i == b.cursor {
			lines = append(lines, theme.Selected.Render("  ▸ "+marker+line))
		} else {
			lines = append(lines, theme.Unselected.Render("    "+marker+line))
		}
	}

	content := strings.Join(lines, "\n")
	return lipgloss.NewStyle().Padding(1, 4).Render(content)
}
