package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examiz/internal/ui/theme"
)

// Markers are the option labels, in display order.
var Markers = []string{"A", "B", "C", "D"}

// MultiChoice is an option picker for one question. It never knows the
// correct answer; it only tracks the cursor and the chosen marker.
type MultiChoice struct {
	Options  []string
	Cursor   int
	Chosen   string
	Disabled bool
}

// NewMultiChoice creates a picker over options with chosen preselected.
func NewMultiChoice(options []string, chosen string) MultiChoice {
	m := MultiChoice{Options: options, Chosen: strings.ToUpper(chosen)}
	if i := markerIndex(m.Chosen); i >= 0 && i < len(options) {
		m.Cursor = i
	}
	return m
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update moves the cursor with arrows and picks with Enter, Space or a
// marker key (a-d or 1-4).
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Disabled {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
	case "enter", "space", " ":
		m.Chosen = Markers[m.Cursor]
	default:
		if i := keyIndex(key); i >= 0 && i < len(m.Options) {
			m.Cursor = i
			m.Chosen = Markers[i]
		}
	}

	return m, nil
}

// View renders the options, highlighting the cursor and the choice.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		marker := Markers[i]
		prefix := "  "
		if i == m.Cursor && !m.Disabled {
			prefix = "▸ "
		}
		check := " "
		if marker == m.Chosen {
			check = "●"
		}

		line := fmt.Sprintf("%s%s %s)  %s", prefix, check, marker, opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case marker == m.Chosen:
			style = style.Foreground(theme.Secondary).Bold(true)
		case i == m.Cursor && !m.Disabled:
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func markerIndex(marker string) int {
	for i, mk := range Markers {
		if mk == marker {
			return i
		}
	}
	return -1
}

func keyIndex(key string) int {
	if len(key) != 1 {
		return -1
	}
	switch c := key[0]; {
	case c >= 'a' && c <= 'd':
		return int(c - 'a')
	case c >= '1' && c <= '4':
		return int(c - '1')
	}
	return -1
}
