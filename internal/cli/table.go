package cli

import (
	"fmt"
	"strconv"
	"strings"

	"warroom-cli/internal/model"

	"github.com/spf13/cobra"
)

func newTableCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Is/is-not comparison table",
	}
	cmd.AddCommand(newTableAddCmd(app))
	cmd.AddCommand(newTableListCmd(app))
	cmd.AddCommand(newTableRmCmd(app))
	cmd.AddCommand(newTableFocusCmd(app))
	return cmd
}

func newTableAddCmd(app *App) *cobra.Command {
	var is, isNot, distinction, change string

	cmd := &cobra.Command{
		Use:   "add <dimension>",
		Short: "Add a comparison row (what/where/when/extent/...)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dimension := strings.TrimSpace(args[0])
			if dimension == "" {
				return writeErr(cmd, errEmpty("dimension"))
			}

			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			row := model.TableRow{
				"dimension": dimension,
				"is":        is,
				"isNot":     isNot,
			}
			if distinction != "" {
				row["distinction"] = distinction
			}
			if change != "" {
				row["change"] = change
			}
			st.Table = append(st.Table, row)

			saved, err := s.Save(cmd.Context(), st, "table add "+dimension)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": row,
				"meta": map[string]any{"rows": len(saved.Table)},
			})
		},
	}

	cmd.Flags().StringVar(&is, "is", "", "What the problem IS")
	cmd.Flags().StringVar(&isNot, "not", "", "What it could be, but IS NOT")
	cmd.Flags().StringVar(&distinction, "distinction", "", "What is distinctive about the IS side")
	cmd.Flags().StringVar(&change, "change", "", "What changed around that distinction")
	return cmd
}

func newTableListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List comparison rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": st.Table,
				"meta": map[string]any{
					"rows":  len(st.Table),
					"focus": st.Ops.TableFocusMode,
				},
			})
		},
	}
	return cmd
}

func newTableRmCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <row>",
		Short: "Remove a row by number (1-based, as shown by `table list`)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil {
				return writeErr(cmd, fmt.Errorf("row must be a number: %q", args[0]))
			}

			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if n < 1 || n > len(st.Table) {
				return writeErr(cmd, fmt.Errorf("row %d out of range (table has %d rows)", n, len(st.Table)))
			}
			removed := st.Table[n-1]
			st.Table = append(st.Table[:n-1], st.Table[n:]...)

			saved, err := s.Save(cmd.Context(), st, fmt.Sprintf("table rm %d", n))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": removed,
				"meta": map[string]any{"rows": len(saved.Table)},
			})
		},
	}
	return cmd
}

func newTableFocusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "focus <mode|off>",
		Short: "Set the table focus mode (off to clear)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := strings.TrimSpace(args[0])
			if strings.EqualFold(mode, "off") {
				mode = ""
			}

			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			st.Ops.TableFocusMode = mode

			saved, err := s.Save(cmd.Context(), st, "table focus")
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"focus": saved.Ops.TableFocusMode},
			})
		},
	}
	return cmd
}
