package cli

import (
	"fmt"

	"warroom-cli/internal/docs"
	"warroom-cli/internal/model"
	"warroom-cli/internal/render"
	"warroom-cli/internal/store"

	"github.com/spf13/cobra"
)

func newDocsCmd(app *App) *cobra.Command {
	var raw bool
	var ansi bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Reference pages for worksheet workflows",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, map[string]any{
					"data":   map[string]any{"topics": docs.Topics()},
					"_hints": []string{"warroom docs worksheet", "warroom docs recovery --ansi"},
				})
			}

			body, ok := docs.Get(args[0])
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown docs topic %q (run `warroom docs` to list topics)", args[0]))
			}
			switch {
			case ansi:
				// Docs are not worksheet-bound; the global theme decides
				// the glamour style.
				theme := model.ThemeDark
				if cfg, err := store.LoadConfig(); err == nil && cfg.Theme != "" {
					theme = model.ParseTheme(cfg.Theme)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), render.ANSI(body, 0, theme))
				return err
			case raw:
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"topic": args[0], "markdown": body},
			})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown (no JSON envelope)")
	cmd.Flags().BoolVar(&ansi, "ansi", false, "Render markdown with terminal styling")
	return cmd
}
