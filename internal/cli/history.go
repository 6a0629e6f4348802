package cli

import (
	"fmt"

	"warroom-cli/internal/state"

	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse and restore saved revisions",
		Long: `Every save appends a revision to the worksheet's local history. History is
best effort: a worksheet whose history file is damaged still loads and saves
normally, it just stops accumulating revisions until repaired.`,
	}
	cmd.AddCommand(newHistoryListCmd(app))
	cmd.AddCommand(newHistoryShowCmd(app))
	cmd.AddCommand(newHistoryRestoreCmd(app))
	return cmd
}

func newHistoryListCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List revisions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := currentStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			revs, err := s.Revisions(cmd.Context(), limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": revs,
				"meta": map[string]any{"count": len(revs), "worksheet": s.Name()},
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Max revisions to list (0 = all)")
	return cmd
}

func newHistoryShowCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <revision>",
		Short: "Show the worksheet as of a revision",
		Long:  "Accepts a full revision id or any unambiguous prefix.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := currentStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			data, err := s.RevisionSnapshot(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if raw {
				_, err = cmd.OutOrStdout().Write(data)
				if err == nil && len(data) > 0 && data[len(data)-1] != '\n' {
					_, err = cmd.OutOrStdout().Write([]byte("\n"))
				}
				return err
			}
			st := state.DecodeSnapshot(data)
			if st == nil {
				return writeErr(cmd, fmt.Errorf("revision %s holds an unusable snapshot; use --raw to inspect it", args[0]))
			}
			return writeOut(cmd, app, map[string]any{
				"data": st,
				"meta": map[string]any{"revision": args[0]},
			})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the stored snapshot bytes unmodified")
	return cmd
}

func newHistoryRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <revision>",
		Short: "Restore the worksheet to a revision",
		Long: `Restore replaces the current worksheet with the revision's snapshot. The
restore itself is saved as a new revision, so the state you are replacing
stays reachable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := currentStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := s.RestoreRevision(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"worksheet": s.Name(),
					"revision":  args[0],
					"savedAt":   st.Meta.SavedAt,
				},
				"_hints": []string{"warroom history list", "warroom show"},
			})
		},
	}
}
