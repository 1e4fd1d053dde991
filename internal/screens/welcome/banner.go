package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examiz/internal/ui/theme"
)

const bannerArt = ` ███████╗██╗  ██╗ █████╗ ███╗   ███╗██╗███████╗
 ██╔════╝╚██╗██╔╝██╔══██╗████╗ ████║██║╚══███╔╝
 █████╗   ╚███╔╝ ███████║██╔████╔██║██║  ███╔╝
 ██╔══╝   ██╔██╗ ██╔══██║██║╚██╔╝██║██║ ███╔╝
 ███████╗██╔╝ ██╗██║  ██║██║ ╚═╝ ██║██║███████╗
 ╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝     ╚═╝╚═╝╚══════╝`

// RenderBanner draws the block-letter logo, or spaced capitals when the
// terminal is too narrow for it.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	if width < lipgloss.Width(bannerArt)+4 {
		return style.Render("E X A M I Z")
	}
	return style.Render(bannerArt)
}
