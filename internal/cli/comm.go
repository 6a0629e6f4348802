package cli

import (
	"strings"
	"time"

	"warroom-cli/internal/model"

	"github.com/spf13/cobra"
)

func newCommCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comm",
		Short: "Communication log and update cadence",
	}
	cmd.AddCommand(newCommAddCmd(app))
	cmd.AddCommand(newCommListCmd(app))
	cmd.AddCommand(newCommCadenceCmd(app))
	cmd.AddCommand(newCommNextCmd(app))
	return cmd
}

func newCommAddCmd(app *App) *cobra.Command {
	var entryType string
	var at string

	cmd := &cobra.Command{
		Use:   "add <message>",
		Short: "Append a communication-log entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := strings.TrimSpace(args[0])
			if msg == "" {
				return writeErr(cmd, errEmpty("message"))
			}

			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			stamp := time.Now().UTC().Format(time.RFC3339)
			if at != "" {
				ts, err := parseWhen(at, time.Now())
				if err != nil {
					return writeErr(cmd, err)
				}
				stamp = ts.UTC().Format(time.RFC3339)
			}

			entry := model.CommEntry{At: stamp, Message: msg, Type: strings.TrimSpace(entryType)}
			st.Ops.CommLog = append(st.Ops.CommLog, entry)

			saved, err := s.Save(cmd.Context(), st, "comm add")
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": entry,
				"meta": map[string]any{"entries": len(saved.Ops.CommLog)},
			})
		},
	}

	cmd.Flags().StringVar(&entryType, "type", "", "Entry type (update|page|escalation|...)")
	cmd.Flags().StringVar(&at, "at", "", "Timestamp (default now; accepts +30m, HH:MM, RFC3339)")
	return cmd
}

func newCommListCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List communication-log entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			log := st.Ops.CommLog
			out := make([]model.CommEntry, 0, len(log))
			for i := len(log) - 1; i >= 0; i-- {
				out = append(out, log[i])
			}
			if limit > 0 && len(out) > limit {
				out = out[:limit]
			}

			return writeOut(cmd, app, map[string]any{
				"data": out,
				"meta": map[string]any{
					"total":       len(log),
					"cadence":     st.Ops.CommCadence,
					"nextDue":     st.Ops.CommNextDueISO,
					"nextDisplay": st.Ops.CommNextUpdateTime,
				},
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Max entries (0 = all)")
	return cmd
}

func newCommCadenceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cadence <minutes>",
		Short: "Set the update cadence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			st.Ops.CommCadence = strings.TrimSpace(args[0])

			saved, err := s.Save(cmd.Context(), st, "comm cadence")
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"cadence": saved.Ops.CommCadence,
					"savedAt": saved.Meta.SavedAt,
				},
			})
		},
	}
	return cmd
}

func newCommNextCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next <when>",
		Short: "Schedule the next stakeholder update (+30m, HH:MM, RFC3339)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := parseWhen(args[0], time.Now())
			if err != nil {
				return writeErr(cmd, err)
			}

			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			st.Ops.CommNextDueISO = ts.UTC().Format(time.RFC3339)
			st.Ops.CommNextUpdateTime = ts.Local().Format("15:04")

			saved, err := s.Save(cmd.Context(), st, "comm next")
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"nextDue":     saved.Ops.CommNextDueISO,
					"nextDisplay": saved.Ops.CommNextUpdateTime,
				},
			})
		},
	}
	return cmd
}
