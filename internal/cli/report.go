package cli

import (
	"fmt"

	"warroom-cli/internal/render"

	"github.com/spf13/cobra"
)

func newReportCmd(app *App) *cobra.Command {
	var (
		raw   bool
		ansi  bool
		width int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the worksheet as an incident report",
		Long: `Report builds a markdown incident report from the worksheet: problem
statement, impact, is/is-not table, causes with findings, steps, actions,
comms, and handover notes. Empty sections are left out.`,
		Example: `  warroom report --raw > incident.md
  warroom report --ansi
  warroom report --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			md := render.Markdown(st)

			if ansi {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), render.ANSI(md, width, st.Appearance.Theme))
				return err
			}
			if raw {
				_, err := fmt.Fprint(cmd.OutOrStdout(), md)
				return err
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"worksheet": s.Name(),
					"markdown":  md,
				},
				"_hints": []string{"warroom report --raw", "warroom report --ansi"},
			})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print plain markdown (no JSON envelope)")
	cmd.Flags().BoolVar(&ansi, "ansi", false, "Render markdown with terminal styling")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width for --ansi (0 = 80)")
	return cmd
}
