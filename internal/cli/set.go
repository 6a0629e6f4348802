package cli

import (
	"fmt"
	"sort"
	"strings"

	"warroom-cli/internal/model"

	"github.com/spf13/cobra"
)

// textFields maps settable field paths onto the canonical state. The
// paths mirror the JSON shape so `show --format yaml` output reads back
// as valid field names.
var textFields = map[string]func(*model.State, string){
	"pre.oneLine":  func(st *model.State, v string) { st.Pre.OneLine = v },
	"pre.symptoms": func(st *model.State, v string) { st.Pre.Symptoms = v },
	"pre.affected": func(st *model.State, v string) { st.Pre.Affected = v },
	"pre.started":  func(st *model.State, v string) { st.Pre.Started = v },
	"pre.context":  func(st *model.State, v string) { st.Pre.Context = v },

	"impact.now":    func(st *model.State, v string) { st.Impact.Now = v },
	"impact.future": func(st *model.State, v string) { st.Impact.Future = v },
	"impact.time":   func(st *model.State, v string) { st.Impact.Time = v },

	"ops.bridge":         func(st *model.State, v string) { st.Ops.Bridge = v },
	"ops.owner":          func(st *model.State, v string) { st.Ops.Owner = v },
	"ops.severity":       func(st *model.State, v string) { st.Ops.Severity = v },
	"ops.containSummary": func(st *model.State, v string) { st.Ops.ContainSummary = v },
}

var flagFields = map[string]func(*model.State, bool){
	"ops.detectMonitoring": func(st *model.State, v bool) { st.Ops.DetectMonitoring = v },
	"ops.detectCustomer":   func(st *model.State, v bool) { st.Ops.DetectCustomer = v },
	"ops.detectInternal":   func(st *model.State, v bool) { st.Ops.DetectInternal = v },
	"ops.evidenceLogs":     func(st *model.State, v bool) { st.Ops.EvidenceLogs = v },
	"ops.evidenceMetrics":  func(st *model.State, v bool) { st.Ops.EvidenceMetrics = v },
	"ops.evidenceTraces":   func(st *model.State, v bool) { st.Ops.EvidenceTraces = v },
	"ops.evidenceDeploy":   func(st *model.State, v bool) { st.Ops.EvidenceDeploy = v },
	"ops.evidenceConfig":   func(st *model.State, v bool) { st.Ops.EvidenceConfig = v },
	"ops.evidenceVendor":   func(st *model.State, v bool) { st.Ops.EvidenceVendor = v },
}

func parseFlagWord(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "on", "1":
		return true, nil
	case "false", "no", "n", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid flag value %q (true/false, yes/no, on/off)", s)
	}
}

func settableFields() []string {
	names := make([]string, 0, len(textFields)+len(flagFields))
	for k := range textFields {
		names = append(names, k)
	}
	for k := range flagFields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func newSetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <field> <value>",
		Short: "Set one worksheet field",
		Long: "Set one worksheet field.\n\nText fields:\n  " +
			strings.Join(settableFields(), "\n  "),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, value := strings.TrimSpace(args[0]), args[1]

			st, s, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			if setText, ok := textFields[field]; ok {
				setText(st, value)
			} else if setFlag, ok := flagFields[field]; ok {
				b, err := parseFlagWord(value)
				if err != nil {
					return writeErr(cmd, err)
				}
				setFlag(st, b)
			} else {
				return writeErr(cmd, fmt.Errorf("unknown field %q (run `warroom set --help` for the list)", field))
			}

			saved, err := s.Save(cmd.Context(), st, "set "+field)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"field":   field,
					"value":   value,
					"savedAt": saved.Meta.SavedAt,
				},
			})
		},
	}
	return cmd
}
