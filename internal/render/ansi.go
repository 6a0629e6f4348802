package render

import (
	"strings"

	"warroom-cli/internal/model"

	"github.com/charmbracelet/glamour"
	xansi "github.com/charmbracelet/x/ansi"
)

// ANSI renders markdown for the terminal. Theme picks the glamour style;
// width 0 falls back to 80 columns. On renderer failure the raw markdown
// comes back so the report is never lost to a styling problem.
func ANSI(md string, width int, theme model.Theme) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	style := "dark"
	if theme == model.ThemeLight {
		style = "light"
	}
	// Avoid WithAutoStyle: it queries the terminal and can block under
	// pipes and test harnesses.
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n") + "\n"
}

// FitLine pads or cuts a styled line to an exact display width. ANSI
// escapes do not count toward the width; a cut line gets a reset so
// styling cannot bleed into the next row.
func FitLine(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if xansi.StringWidth(s) > width {
		return xansi.Cut(s, 0, width) + "\x1b[0m"
	}
	if pad := width - xansi.StringWidth(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
