package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examiz/internal/screens/welcome"
	"github.com/abhisek/examiz/internal/ui/theme"
)

const titleCompact = "E · X · A · M · I · Z"

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	// Leave room for frame border (2) + inner padding (4)
	return min(max(frameWidth-6, 20), 70)
}

func centered(cw int) lipgloss.Style {
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center)
}

func renderTitle(cw int, compact bool) string {
	if compact {
		style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		return centered(cw).Render(style.Render(titleCompact))
	}
	return centered(cw).Render(welcome.RenderBanner(cw))
}

func renderStatsBar(available, completed int, average float64, cw int) string {
	open := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	done := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)

	stats := fmt.Sprintf("%s   %s", open.Render(fmt.Sprintf("%d OPEN", available)), done.Render(fmt.Sprintf("%d DONE", completed)))
	if completed > 0 {
		stats += "   " + lipgloss.NewStyle().Foreground(theme.Text).Render(fmt.Sprintf("AVG %.1f%%", average))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

func renderMenu(menu string, cw int) string {
	return lipgloss.NewStyle().Width(cw).Render(menu)
}

func renderNote(text string, cw int) string {
	return centered(cw).Foreground(theme.TextDim).Render(text)
}

func renderError(text string, cw int) string {
	return centered(cw).Foreground(theme.Error).Render("Error: " + text)
}

// renderFrame wraps content in a border centered in the given area.
func renderFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
