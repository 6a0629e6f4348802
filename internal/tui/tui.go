package tui

import (
	"warroom-cli/internal/model"
	"warroom-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// Run opens the interactive worksheet dashboard. It blocks until the user
// quits and saves any edits made along the way through the store.
func Run(s store.Store, st *model.State) error {
	applyColorProfilePreference()
	applyThemePreference(st.Appearance.Theme)
	m := newAppModel(s, st)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
