package templates

import (
	"strings"

	"warroom-cli/internal/model"
)

// Mode selects how much of a worksheet a template prefill exposes.
type Mode string

const (
	// ModeIntake is the first-responder view: preface, impact and ops only.
	ModeIntake Mode = "intake"
	// ModeIsIsNot adds the is/is-not comparison table.
	ModeIsIsNot Mode = "is-is-not"
	// ModeDC (distinctions and changes) adds candidate causes on top of the table.
	ModeDC Mode = "dc"
	// ModeFull exposes every section.
	ModeFull Mode = "full"
)

// Modes lists the recognized mode ids in escalation order.
var Modes = []Mode{ModeIntake, ModeIsIsNot, ModeDC, ModeFull}

func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := modeVisibility[m]; !ok {
		return "", false
	}
	return m, true
}

// visibility is one row of the static mode table: which sections a mode
// keeps. Everything not listed here (meta, pre, impact, ops) is always
// carried over.
type visibility struct {
	table   bool
	causes  bool
	steps   bool
	actions bool
}

var modeVisibility = map[Mode]visibility{
	ModeIntake:  {},
	ModeIsIsNot: {table: true},
	ModeDC:      {table: true, causes: true},
	ModeFull:    {table: true, causes: true, steps: true, actions: true},
}

// Project derives the mode-restricted view of a full worksheet. Hidden
// sections are replaced by their empty defaults rather than omitted, so
// the result is still a complete canonical state. The input is never
// mutated; the same backing template is projected repeatedly for
// different modes. Unknown modes yield nil.
func Project(st *model.State, mode Mode) *model.State {
	vis, ok := modeVisibility[mode]
	if !ok || st == nil {
		return nil
	}
	out := st.Clone()
	if !vis.table {
		out.Table = []model.TableRow{}
		out.Ops.TableFocusMode = ""
	}
	if !vis.causes {
		out.Causes = []model.Cause{}
		out.LikelyCauseID = nil
	}
	if !vis.steps {
		out.Steps = model.DefaultSteps()
	}
	if !vis.actions {
		out.Actions = model.DefaultActions()
	}
	return out
}
