package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// TextInput is the single-line answer box for short-answer questions.
// Model is exported so tests can type into it.
type TextInput struct {
	Model textinput.Model
}

// NewTextInput returns a focused input pre-filled with value, the answer
// saved so far. A charLimit of 0 keeps the bubbles default.
func NewTextInput(placeholder, value string, charLimit int) TextInput {
	m := textinput.New()
	m.Placeholder = placeholder
	if charLimit > 0 {
		m.CharLimit = charLimit
	}
	m.SetValue(value)
	m.Focus()
	return TextInput{Model: m}
}

func (t TextInput) Init() tea.Cmd { return t.Model.Focus() }

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextInput) View() string  { return t.Model.View() }
func (t TextInput) Value() string { return t.Model.Value() }
