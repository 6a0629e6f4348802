package tui

import (
	"os"
	"strconv"
	"strings"

	"warroom-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette helpers. The dashboard must stay readable on both light and dark
// terminal backgrounds, so every color is an AdaptiveColor and "faint" is
// only applied on dark backgrounds (faint on light terminals often becomes
// illegible).

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted    lipgloss.TerminalColor = ac("240", "243")
	colorAccent   lipgloss.TerminalColor = ac("27", "62")
	colorTitleFg  lipgloss.TerminalColor = ac("235", "252")
	colorTabOn    lipgloss.TerminalColor = ac("232", "255")
	colorTabOff   lipgloss.TerminalColor = ac("245", "243")
	colorDanger   lipgloss.TerminalColor = ac("160", "196")
	colorOK       lipgloss.TerminalColor = ac("28", "40")
	colorLikelyFg lipgloss.TerminalColor = ac("94", "220")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorTitleFg)
}

// applyColorProfilePreference sets Lip Gloss's color profile for the
// interactive dashboard. termenv.EnvColorProfile respects CLICOLOR, which
// suits piped CLI output but can accidentally strip a TUI; here only
// NO_COLOR is honored, otherwise the terminal's capabilities decide.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") {
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}

	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures Lip Gloss's background detection.
// Priority: WARROOM_TUI_THEME env, then the worksheet's own theme, then
// the COLORFGBG heuristic; terminals that report nothing keep lipgloss's
// own detection.
func applyThemePreference(theme model.Theme) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("WARROOM_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}

	if v := strings.TrimSpace(os.Getenv("WARROOM_TUI_DARKBG")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			lipgloss.SetHasDarkBackground(b)
			return
		}
	}

	switch theme {
	case model.ThemeDark:
		lipgloss.SetHasDarkBackground(true)
		return
	case model.ThemeLight:
		lipgloss.SetHasDarkBackground(false)
		return
	}

	// COLORFGBG is often "fg;bg"; bg 0-6 reads as a dark background.
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
