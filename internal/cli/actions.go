package cli

import (
	"strings"
	"time"

	"warroom-cli/internal/model"
	"warroom-cli/internal/state"

	"github.com/spf13/cobra"
)

func newActionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "Follow-up action items",
	}
	cmd.AddCommand(newActionsAddCmd(app))
	cmd.AddCommand(newActionsListCmd(app))
	cmd.AddCommand(newActionsDoneCmd(app, true))
	cmd.AddCommand(newActionsDoneCmd(app, false))
	cmd.AddCommand(newActionsRmCmd(app))
	cmd.AddCommand(newActionsAnalysisCmd(app))
	return cmd
}

// ensureActions materializes the action list. A worksheet that never used
// action items carries no container at all; the first touch creates it.
func ensureActions(st *model.State) *model.Actions {
	if st.Actions == nil {
		st.Actions = model.DefaultActions()
	}
	return st.Actions
}

func actionIndex(a *model.Actions, id string) (int, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1, errEmpty("action id")
	}
	var matches []int
	for i, it := range a.Items {
		if it.ID == id {
			return i, nil
		}
		if strings.HasPrefix(it.ID, id) {
			matches = append(matches, i)
		}
	}
	switch len(matches) {
	case 0:
		return -1, errNotFound("action", id)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, 0, len(matches))
		for _, i := range matches {
			ids = append(ids, a.Items[i].ID)
		}
		return -1, errAmbiguous("action", id, ids)
	}
}

func newActionsAddCmd(app *App) *cobra.Command {
	var owner, due, notes string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add an action item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(args[0])
			if title == "" {
				return writeErr(cmd, errEmpty("title"))
			}

			dueISO := ""
			if due != "" {
				ts, err := parseWhen(due, time.Now())
				if err != nil {
					return writeErr(cmd, err)
				}
				dueISO = ts.UTC().Format(time.RFC3339)
			}

			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			acts := ensureActions(st)
			item := model.Action{
				ID:         state.NewID("action"),
				AnalysisID: acts.AnalysisID,
				Title:      title,
				Owner:      owner,
				Due:        dueISO,
				Notes:      notes,
			}
			acts.Items = append(acts.Items, item)

			saved, err := s.Save(cmd.Context(), st, "actions add")
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": item,
				"meta": map[string]any{"actions": len(saved.Actions.Items)},
			})
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Who owns the follow-up")
	cmd.Flags().StringVar(&due, "due", "", "Due (accepts +2h, YYYY-MM-DD, RFC3339)")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	return cmd
}

func newActionsListCmd(app *App) *cobra.Command {
	var open bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List action items",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if st.Actions == nil {
				return writeOut(cmd, app, map[string]any{
					"data": []model.Action{},
					"meta": map[string]any{"actions": 0},
				})
			}

			items := st.Actions.Items
			if open {
				kept := make([]model.Action, 0, len(items))
				for _, it := range items {
					if !it.Done {
						kept = append(kept, it)
					}
				}
				items = kept
			}
			return writeOut(cmd, app, map[string]any{
				"data": items,
				"meta": map[string]any{
					"actions":    len(st.Actions.Items),
					"analysisId": st.Actions.AnalysisID,
				},
			})
		},
	}

	cmd.Flags().BoolVar(&open, "open", false, "Only items not done yet")
	return cmd
}

func newActionsDoneCmd(app *App, done bool) *cobra.Command {
	use, short := "done <action-id>", "Mark an action item done"
	if !done {
		use, short = "reopen <action-id>", "Mark an action item not done"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if st.Actions == nil {
				return writeErr(cmd, errNotFound("action", args[0]))
			}
			i, err := actionIndex(st.Actions, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			st.Actions.Items[i].Done = done

			reason := "actions done " + st.Actions.Items[i].ID
			if !done {
				reason = "actions reopen " + st.Actions.Items[i].ID
			}
			saved, err := s.Save(cmd.Context(), st, reason)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": saved.Actions.Items[i]})
		},
	}
	return cmd
}

func newActionsRmCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <action-id>",
		Short: "Remove an action item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if st.Actions == nil {
				return writeErr(cmd, errNotFound("action", args[0]))
			}
			i, err := actionIndex(st.Actions, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			removed := st.Actions.Items[i]
			st.Actions.Items = append(st.Actions.Items[:i], st.Actions.Items[i+1:]...)

			saved, err := s.Save(cmd.Context(), st, "actions rm "+removed.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": removed,
				"meta": map[string]any{"actions": len(saved.Actions.Items)},
			})
		},
	}
	return cmd
}

func newActionsAnalysisCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analysis <id>",
		Short: "Tie the action list to an analysis id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if id == "" {
				return writeErr(cmd, errEmpty("analysis id"))
			}

			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			acts := ensureActions(st)
			acts.AnalysisID = id
			for i := range acts.Items {
				acts.Items[i].AnalysisID = id
			}

			saved, err := s.Save(cmd.Context(), st, "actions analysis")
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"analysisId": saved.Actions.AnalysisID},
			})
		},
	}
	return cmd
}
