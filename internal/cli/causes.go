package cli

import (
	"fmt"
	"strings"

	"warroom-cli/internal/model"
	"warroom-cli/internal/state"
	"warroom-cli/internal/store"

	"github.com/spf13/cobra"
)

func newCausesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "causes",
		Short: "Candidate root causes and their findings",
	}
	cmd.AddCommand(newCausesAddCmd(app))
	cmd.AddCommand(newCausesListCmd(app))
	cmd.AddCommand(newCausesShowCmd(app))
	cmd.AddCommand(newCausesSetCmd(app))
	cmd.AddCommand(newCausesRmCmd(app))
	cmd.AddCommand(newCausesFindingCmd(app))
	cmd.AddCommand(newCausesLikelyCmd(app))
	return cmd
}

// causeIndex resolves a cause by exact id or unique prefix.
func causeIndex(st *model.State, id string) (int, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1, errEmpty("cause id")
	}
	var matches []int
	for i, c := range st.Causes {
		if c.ID == id {
			return i, nil
		}
		if strings.HasPrefix(c.ID, id) {
			matches = append(matches, i)
		}
	}
	switch len(matches) {
	case 0:
		return -1, errNotFound("cause", id)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, 0, len(matches))
		for _, i := range matches {
			ids = append(ids, st.Causes[i].ID)
		}
		return -1, errAmbiguous("cause", id, ids)
	}
}

// saveCauses serializes the causes (pruning empty findings, assigning
// missing ids) and persists the worksheet.
func saveCauses(cmd *cobra.Command, s store.Store, st *model.State, reason string) (*model.State, error) {
	st.Causes = state.SerializeCauses(st.Causes, nil)
	return s.Save(cmd.Context(), st, reason)
}

func newCausesAddCmd(app *App) *cobra.Command {
	var accusation, impact, evidence, confidence string

	cmd := &cobra.Command{
		Use:   "add <suspect>",
		Short: "Add a candidate cause",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suspect := strings.TrimSpace(args[0])
			if suspect == "" {
				return writeErr(cmd, errEmpty("suspect"))
			}
			conf := model.ParseConfidence(confidence)
			if confidence != "" && conf == model.ConfidenceNone {
				return writeErr(cmd, fmt.Errorf("unknown confidence %q (low|medium|high)", confidence))
			}

			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			c := model.Cause{
				ID:         state.NewID("cause"),
				Suspect:    suspect,
				Accusation: accusation,
				Impact:     impact,
				Evidence:   evidence,
				Confidence: conf,
				Findings:   map[string]model.Finding{},
			}
			st.Causes = append(st.Causes, c)

			saved, err := saveCauses(cmd, s, st, "causes add")
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": c,
				"meta": map[string]any{"causes": len(saved.Causes)},
			})
		},
	}

	cmd.Flags().StringVar(&accusation, "accusation", "", "What the suspect is accused of doing")
	cmd.Flags().StringVar(&impact, "impact", "", "How that would produce the observed impact")
	cmd.Flags().StringVar(&evidence, "evidence", "", "Evidence collected so far")
	cmd.Flags().StringVar(&confidence, "confidence", "", "Confidence (low|medium|high)")
	return cmd
}

func newCausesListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List candidate causes",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": st.Causes,
				"meta": map[string]any{
					"causes":        len(st.Causes),
					"likelyCauseId": st.LikelyCauseID,
				},
			})
		},
	}
	return cmd
}

func newCausesShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one cause with its findings",
		Long:  "Accepts a full cause id or any unambiguous prefix. `warroom <cause-id>` is a shortcut for this command.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			i, err := causeIndex(st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			c := st.Causes[i]
			likely := st.LikelyCauseID != nil && *st.LikelyCauseID == c.ID
			return writeOut(cmd, app, map[string]any{
				"data": c,
				"meta": map[string]any{"likely": likely, "findings": len(c.Findings)},
			})
		},
	}
	return cmd
}

func newCausesSetCmd(app *App) *cobra.Command {
	var suspect, accusation, impact, evidence, summary, confidence string

	cmd := &cobra.Command{
		Use:   "set <cause-id>",
		Short: "Update fields of a cause (only the flags you pass change)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			i, err := causeIndex(st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			c := &st.Causes[i]
			if cmd.Flags().Changed("suspect") {
				c.Suspect = suspect
			}
			if cmd.Flags().Changed("accusation") {
				c.Accusation = accusation
			}
			if cmd.Flags().Changed("impact") {
				c.Impact = impact
			}
			if cmd.Flags().Changed("evidence") {
				c.Evidence = evidence
			}
			if cmd.Flags().Changed("summary") {
				c.SummaryText = summary
			}
			if cmd.Flags().Changed("confidence") {
				conf := model.ParseConfidence(confidence)
				if confidence != "" && conf == model.ConfidenceNone {
					return writeErr(cmd, fmt.Errorf("unknown confidence %q (low|medium|high)", confidence))
				}
				c.Confidence = conf
			}

			saved, err := saveCauses(cmd, s, st, "causes set "+c.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			j, err := causeIndex(saved, c.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": saved.Causes[j]})
		},
	}

	cmd.Flags().StringVar(&suspect, "suspect", "", "Suspected component")
	cmd.Flags().StringVar(&accusation, "accusation", "", "What the suspect is accused of doing")
	cmd.Flags().StringVar(&impact, "impact", "", "How that would produce the observed impact")
	cmd.Flags().StringVar(&evidence, "evidence", "", "Evidence collected so far")
	cmd.Flags().StringVar(&summary, "summary", "", "One-line summary")
	cmd.Flags().StringVar(&confidence, "confidence", "", "Confidence (low|medium|high, empty to clear)")
	return cmd
}

func newCausesRmCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <cause-id>",
		Short: "Remove a cause",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			i, err := causeIndex(st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			removed := st.Causes[i]
			st.Causes = append(st.Causes[:i], st.Causes[i+1:]...)
			if st.LikelyCauseID != nil && *st.LikelyCauseID == removed.ID {
				st.LikelyCauseID = nil
			}

			saved, err := saveCauses(cmd, s, st, "causes rm "+removed.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": removed,
				"meta": map[string]any{"causes": len(saved.Causes)},
			})
		},
	}
	return cmd
}

var findingModes = []string{"yes", "partial", "no", "assumption", "none"}

func newCausesFindingCmd(app *App) *cobra.Command {
	var mode, note string

	cmd := &cobra.Command{
		Use:   "finding <cause-id> <fact>",
		Short: "Record whether a cause explains a fact",
		Long: "Record whether a cause explains a fact (typically a table dimension).\n" +
			"A finding with mode none and no note is removed.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fact := strings.TrimSpace(args[1])
			if fact == "" {
				return writeErr(cmd, errEmpty("fact"))
			}

			token := strings.ToLower(strings.TrimSpace(mode))
			valid := false
			for _, m := range findingModes {
				if token == m {
					valid = true
					break
				}
			}
			if token == "" {
				token = "none"
				valid = true
			}
			if !valid {
				return writeErr(cmd, fmt.Errorf("unknown finding mode %q (one of: %s)", mode, strings.Join(findingModes, ", ")))
			}

			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			i, err := causeIndex(st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			c := &st.Causes[i]
			if c.Findings == nil {
				c.Findings = map[string]model.Finding{}
			}
			f := model.Finding{Mode: model.ParseFindingMode(token), Note: note}
			if f.Empty() {
				delete(c.Findings, fact)
			} else {
				c.Findings[fact] = f
			}

			saved, err := saveCauses(cmd, s, st, "causes finding "+c.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			j, err := causeIndex(saved, c.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"cause":    saved.Causes[j].ID,
					"fact":     fact,
					"findings": saved.Causes[j].Findings,
				},
			})
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Does the cause explain the fact? (yes|partial|no|assumption|none)")
	cmd.Flags().StringVar(&note, "note", "", "Supporting note")
	return cmd
}

func newCausesLikelyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "likely <cause-id|none>",
		Short: "Mark the most likely cause (none to clear)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			if strings.EqualFold(strings.TrimSpace(args[0]), "none") {
				st.LikelyCauseID = nil
			} else {
				i, err := causeIndex(st, args[0])
				if err != nil {
					return writeErr(cmd, err)
				}
				id := st.Causes[i].ID
				st.LikelyCauseID = &id
			}

			saved, err := saveCauses(cmd, s, st, "causes likely")
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"likelyCauseId": saved.LikelyCauseID},
			})
		},
	}
	return cmd
}
