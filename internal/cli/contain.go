package cli

import (
	"fmt"
	"strings"

	"warroom-cli/internal/model"

	"github.com/spf13/cobra"
)

func newContainCmd(app *App) *cobra.Command {
	var summary string

	cmd := &cobra.Command{
		Use:   "contain <status>",
		Short: "Set the containment status",
		Long: "Set the containment status. Statuses, in lifecycle order:\n  " +
			containStatusList(),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := model.ParseContainStatus(args[0])
			if status == model.ContainNone {
				return writeErr(cmd, fmt.Errorf("unknown containment status %q (one of: %s)", args[0], containStatusList()))
			}

			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			st.Ops.ContainStatus = status
			if cmd.Flags().Changed("summary") {
				st.Ops.ContainSummary = summary
			}

			saved, err := s.Save(cmd.Context(), st, "contain "+string(status))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"containStatus":  saved.Ops.ContainStatus,
					"containSummary": saved.Ops.ContainSummary,
					"savedAt":        saved.Meta.SavedAt,
				},
			})
		},
	}

	cmd.Flags().StringVar(&summary, "summary", "", "What was done to contain the impact")
	return cmd
}

func containStatusList() string {
	names := make([]string, 0, len(model.ContainStatuses))
	for _, s := range model.ContainStatuses {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
