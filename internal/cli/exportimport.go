package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the worksheet snapshot as portable JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := currentStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := s.Export()
			if err != nil {
				return writeErr(cmd, err)
			}

			if out == "" || out == "-" {
				// The snapshot is the output; no envelope.
				_, err = cmd.OutOrStdout().Write(b)
				return err
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"worksheet": s.Name(),
					"file":      out,
					"bytes":     len(b),
				},
			})
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Write to a file instead of stdout")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the worksheet from a snapshot (any historical schema)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return writeErr(cmd, err)
			}

			s, err := currentStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			saved, err := s.Import(cmd.Context(), data, strings.TrimSpace(reason))
			if err != nil {
				return writeErr(cmd, fmt.Errorf("import into %q: %w", s.Name(), err))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"worksheet": s.Name(),
					"savedAt":   saved.Meta.SavedAt,
					"causes":    len(saved.Causes),
					"tableRows": len(saved.Table),
				},
			})
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "History reason (default: import)")
	return cmd
}
