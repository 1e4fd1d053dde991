package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func press(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestMultiChoice_MarkerKeys(t *testing.T) {
	m := NewMultiChoice([]string{"Mars", "Jupiter", "Venus", "Earth"}, "")

	m, _ = m.Update(press('b'))
	if m.Chosen != "B" || m.Cursor != 1 {
		t.Fatalf("expected B chosen at cursor 1, got %q at %d", m.Chosen, m.Cursor)
	}

	m, _ = m.Update(press('4'))
	if m.Chosen != "D" {
		t.Fatalf("expected D chosen, got %q", m.Chosen)
	}

	m, _ = m.Update(press('z'))
	if m.Chosen != "D" {
		t.Fatalf("unknown key should not change the choice, got %q", m.Chosen)
	}
}

func TestMultiChoice_Preselected(t *testing.T) {
	m := NewMultiChoice([]string{"True", "False"}, "b")
	if m.Chosen != "B" || m.Cursor != 1 {
		t.Fatalf("expected preselected B, got %q at %d", m.Chosen, m.Cursor)
	}

	// Two options only: C is out of range.
	m, _ = m.Update(press('c'))
	if m.Chosen != "B" {
		t.Fatalf("out of range marker should be ignored, got %q", m.Chosen)
	}
}

func TestMultiChoice_Disabled(t *testing.T) {
	m := NewMultiChoice([]string{"Mars", "Jupiter", "Venus", "Earth"}, "A")
	m.Disabled = true
	m, _ = m.Update(press('c'))
	if m.Chosen != "A" {
		t.Fatalf("disabled picker changed choice to %q", m.Chosen)
	}
	if !strings.Contains(m.View(), "Jupiter") {
		t.Error("view should still list options")
	}
}

func TestMenu_SkipsDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "Closed exam", Disabled: true},
		{Label: "Open exam"},
		{Label: "Quit"},
	})
	if m.Selected != 1 {
		t.Fatalf("expected first enabled item selected, got %d", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 1 {
		t.Fatalf("cursor should not land on a disabled item, got %d", m.Selected)
	}
}

func TestProgressBar(t *testing.T) {
	p := NewProgressBar("Answered", 3, 4, 40)
	if got := p.Fraction(); got != 0.75 {
		t.Errorf("expected 0.75, got %v", got)
	}
	if !strings.Contains(p.View(), "3/4") {
		t.Errorf("view missing count: %q", p.View())
	}
	if NewProgressBar("", 1, 0, 10).Fraction() != 0 {
		t.Error("empty total should render as zero")
	}
}
