package cli

import (
	"warroom-cli/internal/store"

	"github.com/spf13/cobra"
)

func newDoctorCmd(app *App) *cobra.Command {
	var fail bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check every worksheet under the data root for damage",
		Long: `Doctor scans the data root: the global config, each worksheet snapshot,
schema versions, history databases, and leftovers from interrupted saves.
Errors mean a worksheet will not load; warnings are recoverable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := store.RootDir(app.Dir)
			if err != nil {
				return writeErr(cmd, err)
			}

			report := store.Doctor(cmd.Context(), root)

			if err := writeOut(cmd, app, map[string]any{
				"data": report,
				"meta": map[string]any{
					"worksheets": len(report.Worksheets),
					"issues":     len(report.Issues),
					"hasErrors":  report.HasErrors(),
				},
				"_hints": []string{"warroom docs recovery"},
			}); err != nil {
				return err
			}

			if fail && report.HasErrors() {
				return store.ErrDoctorIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fail, "fail", false, "Exit non-zero when errors are found")
	return cmd
}
