package cli

import (
	"fmt"

	"warroom-cli/internal/templates"

	"github.com/spf13/cobra"
)

func newTemplatesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect and build worksheet templates",
	}
	cmd.AddCommand(newTemplatesListCmd(app))
	cmd.AddCommand(newTemplatesShowCmd(app))
	cmd.AddCommand(newTemplatesApplyCmd(app))
	cmd.AddCommand(newTemplatesBuildCmd(app))
	return cmd
}

func newTemplatesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := []map[string]any{}
			for _, t := range templates.Catalog() {
				rows = append(rows, map[string]any{
					"id":    t.ID,
					"name":  t.Name,
					"kind":  t.Kind,
					"modes": t.SupportedModes,
				})
			}
			return writeOut(cmd, app, map[string]any{
				"data": rows,
				"meta": map[string]any{"count": len(rows)},
			})
		},
	}
}

func newTemplatesShowCmd(app *App) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the worksheet a template would seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ok := templates.ParseMode(mode)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown mode %q (valid: %v)", mode, templates.Modes))
			}
			st := templates.Payload(args[0], m)
			if st == nil {
				if templates.Lookup(args[0]) == nil {
					return writeErr(cmd, errNotFound("template", args[0]))
				}
				return writeErr(cmd, fmt.Errorf("template %q does not support mode %q", args[0], mode))
			}
			return writeOut(cmd, app, map[string]any{
				"data": st,
				"meta": map[string]any{"template": args[0], "mode": string(m)},
			})
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(templates.ModeFull), "Projection mode (intake|is-is-not|dc|full)")
	return cmd
}

func newTemplatesApplyCmd(app *App) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "apply <id>",
		Short: "Replace the current worksheet with a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ok := templates.ParseMode(mode)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown mode %q (valid: %v)", mode, templates.Modes))
			}
			st := templates.Payload(args[0], m)
			if st == nil {
				if templates.Lookup(args[0]) == nil {
					return writeErr(cmd, errNotFound("template", args[0]))
				}
				return writeErr(cmd, fmt.Errorf("template %q does not support mode %q", args[0], mode))
			}

			prev, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			// The template wins everything except local appearance.
			st.Appearance = prev.Appearance

			saved, err := s.Save(cmd.Context(), st, "templates apply "+args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"worksheet": s.Name(),
					"template":  args[0],
					"mode":      string(m),
					"savedAt":   saved.Meta.SavedAt,
				},
				"_hints": []string{"warroom history list", "warroom history restore <revision>"},
			})
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(templates.ModeFull), "Projection mode (intake|is-is-not|dc|full)")
	return cmd
}

func newTemplatesBuildCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "build <src-dir>",
		Short: "Compile template sources into distributable JSON",
		Long: `Build reads every template source (*.yaml) under <src-dir>, normalizes the
embedded worksheet document, and writes one canonical JSON file per template
plus a manifest.json into the output directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return writeErr(cmd, fmt.Errorf("--out is required"))
			}
			results, err := templates.Build(cmd.Context(), args[0], out)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": results,
				"meta": map[string]any{"built": len(results), "out": out},
			})
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output directory for compiled templates")
	return cmd
}
