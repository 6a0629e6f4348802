package cli

import (
	"warroom-cli/internal/store"

	"github.com/spf13/cobra"
)

func newUseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <worksheet>",
		Short: "Switch the current worksheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := store.RootDir(app.Dir)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := store.ForWorksheet(root, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !s.Exists() {
				return writeErr(cmd, errNotFound("worksheet", s.Name()))
			}

			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg.CurrentWorksheet = s.Name()
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"current": s.Name()},
			})
		},
	}
	return cmd
}
