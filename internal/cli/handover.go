package cli

import (
	"fmt"
	"strings"

	"warroom-cli/internal/model"

	"github.com/spf13/cobra"
)

func newHandoverCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "handover",
		Short: "Shift-handover notes",
	}
	cmd.AddCommand(newHandoverSetCmd(app))
	cmd.AddCommand(newHandoverShowCmd(app))
	return cmd
}

func newHandoverSetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <section> <note>",
		Short: "Set one handover section (" + strings.Join(model.HandoverSections, "|") + ")",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			section := strings.TrimSpace(args[0])

			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !st.Handover.Set(section, args[1]) {
				return writeErr(cmd, fmt.Errorf("unknown handover section %q (one of: %s)", section, strings.Join(model.HandoverSections, ", ")))
			}

			saved, err := s.Save(cmd.Context(), st, "handover set "+section)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": saved.Handover,
			})
		},
	}
	return cmd
}

func newHandoverShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the handover notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": st.Handover})
		},
	}
	return cmd
}
