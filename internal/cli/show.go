package cli

import (
	"fmt"
	"sort"
	"strings"

	"warroom-cli/internal/model"

	"github.com/spf13/cobra"
)

// showSections maps section names to accessor funcs so `show` and its
// error message stay in sync.
var showSections = map[string]func(*model.State) any{
	"meta":       func(st *model.State) any { return st.Meta },
	"pre":        func(st *model.State) any { return st.Pre },
	"impact":     func(st *model.State) any { return st.Impact },
	"ops":        func(st *model.State) any { return st.Ops },
	"table":      func(st *model.State) any { return st.Table },
	"causes":     func(st *model.State) any { return st.Causes },
	"steps":      func(st *model.State) any { return st.Steps },
	"actions":    func(st *model.State) any { return st.Actions },
	"handover":   func(st *model.State) any { return st.Handover },
	"appearance": func(st *model.State) any { return st.Appearance },
	"comm":       func(st *model.State) any { return st.Ops.CommLog },
}

func sortedSectionNames() []string {
	names := make([]string, 0, len(showSections))
	for k := range showSections {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func newShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [section]",
		Short: "Print the worksheet (or one section)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := loadState(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if len(args) == 0 {
				return writeOut(cmd, app, map[string]any{"data": st})
			}

			section := strings.ToLower(strings.TrimSpace(args[0]))
			get, ok := showSections[section]
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown section %q (one of: %s)", args[0], strings.Join(sortedSectionNames(), ", ")))
			}
			return writeOut(cmd, app, map[string]any{"data": get(st)})
		},
	}
	return cmd
}
