package cli

import (
	"warroom-cli/internal/store"

	"github.com/spf13/cobra"
)

func newLsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List worksheets",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := store.RootDir(app.Dir)
			if err != nil {
				return writeErr(cmd, err)
			}
			infos, err := store.ListWorksheets(root)
			if err != nil {
				return writeErr(cmd, err)
			}

			current := app.Worksheet
			if current == "" {
				if cfg, err := store.LoadConfig(); err == nil {
					current = cfg.CurrentWorksheet
				}
			}

			return writeOut(cmd, app, map[string]any{
				"data": infos,
				"meta": map[string]any{
					"count":   len(infos),
					"current": current,
				},
			})
		},
	}
	return cmd
}
