package cli

import (
	"strings"

	"warroom-cli/internal/model"
	"warroom-cli/internal/state"

	"github.com/spf13/cobra"
)

func newStepsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "steps",
		Short: "Next-steps checklist",
	}
	cmd.AddCommand(newStepsAddCmd(app))
	cmd.AddCommand(newStepsListCmd(app))
	cmd.AddCommand(newStepsCheckCmd(app, true))
	cmd.AddCommand(newStepsCheckCmd(app, false))
	cmd.AddCommand(newStepsRmCmd(app))
	return cmd
}

// stepIndex resolves a step by exact id or unique prefix.
func stepIndex(st *model.State, id string) (int, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1, errEmpty("step id")
	}
	var matches []int
	for i, s := range st.Steps.Items {
		if s.ID == id {
			return i, nil
		}
		if strings.HasPrefix(s.ID, id) {
			matches = append(matches, i)
		}
	}
	switch len(matches) {
	case 0:
		return -1, errNotFound("step", id)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, 0, len(matches))
		for _, i := range matches {
			ids = append(ids, st.Steps.Items[i].ID)
		}
		return -1, errAmbiguous("step", id, ids)
	}
}

func newStepsAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <label>",
		Short: "Add a checklist step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := strings.TrimSpace(args[0])
			if label == "" {
				return writeErr(cmd, errEmpty("label"))
			}

			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			step := model.Step{ID: state.NewID("step"), Label: label}
			st.Steps.Items = append(st.Steps.Items, step)

			saved, err := s.Save(cmd.Context(), st, "steps add")
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": step,
				"meta": map[string]any{"steps": len(saved.Steps.Items)},
			})
		},
	}
	return cmd
}

func newStepsListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List checklist steps",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			done := 0
			for _, s := range st.Steps.Items {
				if s.Checked {
					done++
				}
			}
			return writeOut(cmd, app, map[string]any{
				"data": st.Steps.Items,
				"meta": map[string]any{
					"steps": len(st.Steps.Items),
					"done":  done,
				},
			})
		},
	}
	return cmd
}

func newStepsCheckCmd(app *App, checked bool) *cobra.Command {
	use, short := "check <step-id>", "Mark a step done"
	if !checked {
		use, short = "uncheck <step-id>", "Mark a step not done"
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
			i, err := stepIndex(st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			st.Steps.Items[i].Checked = checked

			reason := "steps check " + st.Steps.Items[i].ID
			if !checked {
				reason = "steps uncheck " + st.Steps.Items[i].ID
			}
			saved, err := s.Save(cmd.Context(), st, reason)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": saved.Steps.Items[i]})
		},
	}
	return cmd
}

func newStepsRmCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <step-id>",
		Short: "Remove a step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			i, err := stepIndex(st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			removed := st.Steps.Items[i]
			st.Steps.Items = append(st.Steps.Items[:i], st.Steps.Items[i+1:]...)

			saved, err := s.Save(cmd.Context(), st, "steps rm "+removed.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": removed,
				"meta": map[string]any{"steps": len(saved.Steps.Items)},
			})
		},
	}
	return cmd
}
