package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examiz/internal/ui/theme"
)

// MenuItem is one row. Disabled rows are shown dimmed and skipped by the
// cursor.
type MenuItem struct {
	Label    string
	Detail   string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list driven by ↑↓/jk and Enter.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu puts the cursor on the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.move(+1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// move steps the cursor to the next enabled item in direction dir. The
// cursor stays put at either end.
func (m *Menu) move(dir int) {
	for i := m.Selected + dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(+1)
	case "enter":
		if m.Selected < 0 || m.Selected >= len(m.Items) {
			break
		}
		if it := m.Items[m.Selected]; !it.Disabled && it.Action != nil {
			return m, it.Action()
		}
	}
	return m, nil
}

func (m Menu) View() string {
	lines := make([]string, len(m.Items))
	for i, it := range m.Items {
		style, cursor := lipgloss.NewStyle().Foreground(theme.Text), "    "
		if it.Disabled {
			style = style.Foreground(theme.TextDim)
		} else if i == m.Selected {
			style, cursor = style.Foreground(theme.Primary).Bold(true), "  ▸ "
		}
		line := style.Render(cursor + it.Label)
		if it.Detail != "" {
			line += "  " + theme.Hint.Render(it.Detail)
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n") + "\n"
}
