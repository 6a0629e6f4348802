package cli

import (
	"fmt"

	"warroom-cli/internal/model"
	"warroom-cli/internal/store"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

func newThemeCmd(app *App) *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "theme <light|dark|auto>",
		Short: "Set the worksheet color theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var theme model.Theme
			switch args[0] {
			case string(model.ThemeLight), string(model.ThemeDark):
				theme = model.ParseTheme(args[0])
			case "auto":
				// Probe the terminal once and persist the answer.
				theme = model.ThemeLight
				if termenv.HasDarkBackground() {
					theme = model.ThemeDark
				}
			default:
				return writeErr(cmd, fmt.Errorf("unknown theme %q (valid: light, dark, auto)", args[0]))
			}

			if global {
				cfg, err := store.LoadConfig()
				if err != nil {
					return writeErr(cmd, err)
				}
				cfg.Theme = string(theme)
				if err := store.SaveConfig(cfg); err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{"theme": theme, "scope": "global"},
				})
			}

			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			st.Appearance.Theme = theme
			saved, err := s.Save(cmd.Context(), st, "theme "+args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"theme":   theme,
					"scope":   "worksheet",
					"savedAt": saved.Meta.SavedAt,
				},
			})
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Set the default theme for new worksheets")
	return cmd
}
