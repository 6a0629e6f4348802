package cli

import (
	"fmt"

	"warroom-cli/internal/model"
	"warroom-cli/internal/render"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newRenderCmd(app *App) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print a styled one-screen worksheet summary",
		Long: `Render prints a compact terminal summary of the current worksheet:
problem, impact, likely cause, and progress counters. For the full
document use ` + "`warroom report`" + `.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			// AdaptiveColor needs to know which background the worksheet
			// was themed for; unset themes keep terminal detection.
			switch st.Appearance.Theme {
			case model.ThemeDark:
				lipgloss.SetHasDarkBackground(true)
			case model.ThemeLight:
				lipgloss.SetHasDarkBackground(false)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), render.Summary(st, width))
			return err
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "Clip width (0 = 80)")
	return cmd
}
