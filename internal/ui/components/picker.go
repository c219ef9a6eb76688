package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/ispell/ispell/internal/ui/theme"
)

// Picker is a horizontal option selector (left/right to change).
type Picker struct {
	Label    string
	Options  []string
	Selected int
	Focused  bool
}

// NewPicker creates a picker with the given options. initial indexes
// into options; out-of-range values snap to 0.
func NewPicker(label string, options []string, initial int) Picker {
	if initial < 0 || initial >= len(options) {
		initial = 0
	}
	return Picker{Label: label, Options: options, Selected: initial}
}

// Update handles left/right cycling while focused.
func (p Picker) Update(msg tea.Msg) (Picker, tea.Cmd) {
	if !p.Focused {
		return p, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch kmsg.String() {
	case "left", "h":
		if p.Selected > 0 {
			p.Selected--
		}
	case "right", "l":
		if p.Selected < len(p.Options)-1 {
			p.Selected++
		}
	}
	return p, nil
}

// Value returns the selected option text.
func (p Picker) Value() string {
	if p.Selected < 0 || p.Selected >= len(p.Options) {
		return ""
	}
	return p.Options[p.Selected]
}

// View renders the picker as "Label  ◂ option ▸".
func (p Picker) View() string {
	var b strings.Builder
	labelStyle := lipgloss.NewStyle().Foreground(theme.Text)
	if p.Focused {
		labelStyle = labelStyle.Bold(true).Foreground(theme.Primary)
	}
	b.WriteString(labelStyle.Render(p.Label))
	b.WriteString("  ")

	arrow := lipgloss.NewStyle().Foreground(theme.TextDim)
	value := lipgloss.NewStyle().Foreground(theme.Text)
	if p.Focused {
		arrow = arrow.Foreground(theme.Primary)
		value = value.Bold(true)
	}

	if p.Selected > 0 {
		b.WriteString(arrow.Render("◂ "))
	} else {
		b.WriteString("  ")
	}
	b.WriteString(value.Render(p.Value()))
	if p.Selected < len(p.Options)-1 {
		b.WriteString(arrow.Render(" ▸"))
	}
	return b.String()
}
