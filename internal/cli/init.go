package cli

import (
	"fmt"
	"time"

	"warroom-cli/internal/model"
	"warroom-cli/internal/store"
	"warroom-cli/internal/templates"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	var from string
	var mode string
	var oneLine string
	var use bool
	var force bool

	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Create a worksheet from a template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := store.RootDir(app.Dir)
			if err != nil {
				return writeErr(cmd, err)
			}

			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			if name == "" {
				name = store.SuggestWorksheetName(time.Now())
			}
			s, err := store.ForWorksheet(root, name)
			if err != nil {
				return writeErr(cmd, err)
			}
			if s.Exists() && !force {
				return writeErr(cmd, fmt.Errorf("worksheet %q already exists (use `warroom use %s` to switch to it, or --force to overwrite)", s.Name(), s.Name()))
			}

			m, ok := templates.ParseMode(mode)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown mode %q (one of %v)", mode, templates.Modes))
			}
			st := templates.Payload(from, m)
			if st == nil {
				if templates.Lookup(from) == nil {
					return writeErr(cmd, errNotFound("template", from))
				}
				return writeErr(cmd, fmt.Errorf("template %q does not support mode %q", from, m))
			}
			if oneLine != "" {
				st.Pre.OneLine = oneLine
			}

			cfg, err := store.LoadConfig()
			if err != nil {
				cfg = &store.GlobalConfig{}
			}
			if cfg.Theme != "" {
				st.Appearance.Theme = model.ParseTheme(cfg.Theme)
			}

			saved, err := s.Save(cmd.Context(), st, "init")
			if err != nil {
				return writeErr(cmd, err)
			}

			configChanged := false
			if _, changed := store.EnsureDeviceID(cfg); changed {
				configChanged = true
			}
			if use || cfg.CurrentWorksheet == "" {
				cfg.CurrentWorksheet = s.Name()
				configChanged = true
			}
			if configChanged {
				if err := store.SaveConfig(cfg); err != nil {
					return writeErr(cmd, err)
				}
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"worksheet": s.Name(),
					"dir":       s.Dir,
					"template":  from,
					"mode":      m,
					"current":   cfg.CurrentWorksheet == s.Name(),
					"savedAt":   saved.Meta.SavedAt,
				},
				"_hints": []string{
					"warroom set pre.oneLine \"...\"",
					"warroom show",
				},
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "blank", "Template id (see `warroom templates list`)")
	cmd.Flags().StringVar(&mode, "mode", string(templates.ModeFull), "Worksheet mode (intake|is-is-not|dc|full)")
	cmd.Flags().StringVar(&oneLine, "one-line", "", "Problem statement for the new worksheet")
	cmd.Flags().BoolVar(&use, "use", true, "Make the new worksheet current")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing worksheet")
	return cmd
}
