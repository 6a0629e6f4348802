package model

// Section factories. Every call returns a fresh value so callers can never
// share (and accidentally mutate) a common default instance. Slices are
// allocated empty rather than nil so canonical snapshots marshal as [].

func DefaultState() *State {
	return &State{
		Meta:       Meta{},
		Pre:        Preface{},
		Impact:     Impact{},
		Ops:        DefaultOps(),
		Table:      []TableRow{},
		Causes:     []Cause{},
		Steps:      DefaultSteps(),
		Appearance: DefaultAppearance(),
		Handover:   Handover{},
	}
}

func DefaultOps() Ops {
	return Ops{CommLog: []CommEntry{}}
}

func DefaultSteps() Steps {
	return Steps{Items: []Step{}}
}

func DefaultActions() *Actions {
	return &Actions{Items: []Action{}}
}

func DefaultAppearance() Appearance {
	return Appearance{Theme: ThemeLight}
}

// Clone returns a deep copy of the state. Projection and the store rely on
// this so no two consumers ever hold references into the same working
// object.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s

	if s.Meta.SavedAt != nil {
		v := *s.Meta.SavedAt
		out.Meta.SavedAt = &v
	}
	if s.LikelyCauseID != nil {
		v := *s.LikelyCauseID
		out.LikelyCauseID = &v
	}

	out.Ops.CommLog = append([]CommEntry{}, s.Ops.CommLog...)

	out.Table = make([]TableRow, 0, len(s.Table))
	for _, row := range s.Table {
		out.Table = append(out.Table, CloneTableRow(row))
	}

	out.Causes = make([]Cause, 0, len(s.Causes))
	for _, c := range s.Causes {
		cc := c
		cc.Findings = make(map[string]Finding, len(c.Findings))
		for k, f := range c.Findings {
			cc.Findings[k] = f
		}
		out.Causes = append(out.Causes, cc)
	}

	out.Steps.Items = append([]Step{}, s.Steps.Items...)

	if s.Actions != nil {
		a := *s.Actions
		a.Items = append([]Action{}, s.Actions.Items...)
		out.Actions = &a
	}

	return &out
}

// CloneTableRow shallow-copies one opaque table row.
func CloneTableRow(row TableRow) TableRow {
	if row == nil {
		return TableRow{}
	}
	out := make(TableRow, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
