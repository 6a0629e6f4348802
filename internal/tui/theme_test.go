package tui

import (
	"testing"

	"warroom-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
)

func TestApplyThemePreference(t *testing.T) {
	oldBG := lipgloss.HasDarkBackground()
	t.Cleanup(func() { lipgloss.SetHasDarkBackground(oldBG) })

	t.Setenv("WARROOM_TUI_THEME", "")
	t.Setenv("WARROOM_TUI_DARKBG", "")
	t.Setenv("COLORFGBG", "")

	applyThemePreference(model.ThemeDark)
	if !lipgloss.HasDarkBackground() {
		t.Fatalf("worksheet dark theme did not set dark background")
	}

	applyThemePreference(model.ThemeLight)
	if lipgloss.HasDarkBackground() {
		t.Fatalf("worksheet light theme did not set light background")
	}

	// The env override wins over the worksheet theme.
	t.Setenv("WARROOM_TUI_THEME", "dark")
	applyThemePreference(model.ThemeLight)
	if !lipgloss.HasDarkBackground() {
		t.Fatalf("WARROOM_TUI_THEME=dark did not win over worksheet theme")
	}
}
