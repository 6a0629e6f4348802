// Package state turns raw worksheet snapshots into canonical model values.
//
// Everything a worksheet loads from disk, an import, or an old export goes
// through the same two-stage read pipeline: Migrate lifts the payload
// through the registered schema steps, then Normalize rebuilds the
// canonical shape field by field, tolerating every historical spelling and
// type sloppiness the browser app ever produced. The write side
// (SerializeCauses) is the inverse fixpoint: serializing what the pipeline
// produced changes nothing.
package state

import (
	"encoding/json"

	"warroom-cli/internal/model"
)

// Normalize rebuilds the canonical state from a raw payload. It never
// trusts the input shape: every field is re-read through its alias chain
// and re-coerced, whether or not a migration ran first. Non-object roots
// have nothing to salvage and yield nil.
func Normalize(raw any) *model.State {
	root := asMap(raw)
	if root == nil {
		return nil
	}

	st := model.DefaultState()
	meta := childMap(root, "meta")
	pre := childMap(root, "pre")
	impact := childMap(root, "impact")
	ops := childMap(root, "ops")
	appearance := childMap(root, "appearance")

	st.Meta.Version = SchemaVersion
	if v, ok := firstValue(ref(meta, "savedAt"), ref(root, "savedAt")); ok {
		if s, ok := v.(string); ok {
			st.Meta.SavedAt = &s
		}
	}

	st.Pre.OneLine = stringField(ref(pre, "oneLine"), ref(root, "oneLine"))
	st.Pre.Symptoms = stringField(ref(pre, "symptoms"), ref(root, "symptoms"))
	st.Pre.Affected = stringField(ref(pre, "affected"), ref(root, "affected"))
	st.Pre.Started = stringField(ref(pre, "started"), ref(root, "started"))
	st.Pre.Context = stringField(ref(pre, "context"), ref(root, "context"))

	st.Impact.Now = stringField(ref(impact, "now"), ref(root, "impactNow"))
	st.Impact.Future = stringField(ref(impact, "future"), ref(root, "impactFuture"))
	st.Impact.Time = stringField(ref(impact, "time"), ref(root, "impactTime"))

	st.Ops.Bridge = stringField(ref(ops, "bridge"), ref(root, "bridge"))
	st.Ops.Owner = stringField(ref(ops, "owner"), ref(root, "owner"))
	st.Ops.Severity = stringField(ref(ops, "severity"), ref(root, "severity"))
	st.Ops.ContainSummary = stringField(ref(ops, "containSummary"), ref(root, "containSummary"))

	st.Ops.CommCadence = stringField(ref(ops, "commCadence"), ref(root, "commCadence"))
	st.Ops.CommNextDueISO = stringField(ref(ops, "commNextDueIso"), ref(root, "commNextDueIso"))
	st.Ops.CommNextUpdateTime = stringField(ref(ops, "commNextUpdateTime"), ref(root, "commNextUpdateTime"))
	st.Ops.TableFocusMode = stringField(ref(ops, "tableFocusMode"), ref(root, "tableFocusMode"))

	st.Ops.DetectMonitoring = boolField(ref(ops, "detectMonitoring"), ref(root, "detectMonitoring"))
	st.Ops.DetectCustomer = boolField(ref(ops, "detectCustomer"), ref(root, "detectCustomer"))
	st.Ops.DetectInternal = boolField(ref(ops, "detectInternal"), ref(root, "detectInternal"))
	st.Ops.EvidenceLogs = boolField(ref(ops, "evidenceLogs"), ref(root, "evidenceLogs"))
	st.Ops.EvidenceMetrics = boolField(ref(ops, "evidenceMetrics"), ref(root, "evidenceMetrics"))
	st.Ops.EvidenceTraces = boolField(ref(ops, "evidenceTraces"), ref(root, "evidenceTraces"))
	st.Ops.EvidenceDeploy = boolField(ref(ops, "evidenceDeploy"), ref(root, "evidenceDeploy"))
	st.Ops.EvidenceConfig = boolField(ref(ops, "evidenceConfig"), ref(root, "evidenceConfig"))
	st.Ops.EvidenceVendor = boolField(ref(ops, "evidenceVendor"), ref(root, "evidenceVendor"))

	st.Ops.ContainStatus = model.ParseContainStatus(stringField(
		ref(ops, "containStatus"),
		ref(ops, "containmentStatus"),
		ref(ops, "containment"),
		ref(root, "containStatus"),
	))

	if v, ok := firstValue(ref(ops, "commLog"), ref(root, "commLog")); ok {
		st.Ops.CommLog = normalizeCommLog(v)
	}

	if v, ok := firstValue(ref(root, "table"), ref(root, "grid")); ok {
		st.Table = normalizeTable(v)
	}

	if v, ok := firstValue(ref(root, "causes"), ref(root, "possibleCauses")); ok {
		st.Causes = SerializeCauses(DeserializeCauses(v, nil), nil)
	}

	if v, ok := firstValue(ref(root, "likelyCauseId"), ref(root, "likelyCause")); ok {
		if s, ok := idText(v); ok {
			st.LikelyCauseID = &s
		}
	}

	st.Steps = normalizeSteps(root["steps"])

	// Presence of the key is the signal here, not its value: worksheets
	// that never opened the follow-ups panel have no actions key at all,
	// and stay that way through any number of load/save cycles.
	if v, ok := root["actions"]; ok {
		st.Actions = normalizeActions(v)
	}

	st.Appearance.Theme = model.ParseTheme(stringField(ref(appearance, "theme"), ref(root, "theme")))

	handover := childMap(root, "handover")
	for _, section := range model.HandoverSections {
		if s, ok := valueOf(handover, section).(string); ok {
			st.Handover.Set(section, s)
		}
	}

	return st
}

// normalizeSteps accepts both layouts the app has shipped: a bare array of
// items, and the current {items, drawerOpen} object.
func normalizeSteps(v any) model.Steps {
	out := model.DefaultSteps()
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case map[string]any:
		if arr, ok := firstValue(ref(t, "items"), ref(t, "steps")); ok {
			items, _ = arr.([]any)
		}
		out.DrawerOpen = boolField(ref(t, "drawerOpen"), ref(t, "open"))
	}
	for _, entry := range items {
		m := asMap(entry)
		if m == nil {
			continue
		}
		id, _ := idText(valueOf(m, "id"))
		if id == "" {
			id, _ = idText(valueOf(m, "stepId"))
		}
		if id == "" {
			continue
		}
		out.Items = append(out.Items, model.Step{
			ID:      id,
			Label:   stringField(ref(m, "label"), ref(m, "title")),
			Checked: boolField(ref(m, "checked"), ref(m, "done")),
		})
	}
	return out
}

// normalizeCommLog rebuilds the communication log. Bare strings and
// numbers were once appended directly; they become message-only entries.
// Object entries resolve the usual field aliases. Anything else is noise
// and is dropped.
func normalizeCommLog(v any) []model.CommEntry {
	out := []model.CommEntry{}
	arr, ok := v.([]any)
	if !ok {
		return out
	}
	for _, entry := range arr {
		if m := asMap(entry); m != nil {
			out = append(out, model.CommEntry{
				At:      stringField(ref(m, "at"), ref(m, "timestamp"), ref(m, "ts")),
				Message: stringField(ref(m, "message"), ref(m, "msg"), ref(m, "text")),
				Type:    stringField(ref(m, "type"), ref(m, "kind")),
			})
			continue
		}
		if s := noteText(entry); s != "" {
			out = append(out, model.CommEntry{Message: s})
		}
	}
	return out
}

// normalizeTable keeps object rows as-is and discards everything else.
// Row contents are deliberately not validated; the is/is-not grid has
// always been schemaless.
func normalizeTable(v any) []model.TableRow {
	out := []model.TableRow{}
	arr, ok := v.([]any)
	if !ok {
		return out
	}
	for _, entry := range arr {
		if m := asMap(entry); m != nil {
			out = append(out, model.CloneTableRow(m))
		}
	}
	return out
}

// Upgrade is the full read pipeline: schema migrations, then the
// structural rebuild. Every load path goes through here.
func Upgrade(raw any) *model.State {
	root := asMap(raw)
	if root == nil {
		return nil
	}
	return Normalize(Migrate(root))
}

// DecodeSnapshot parses a persisted or imported snapshot and upgrades it.
// Malformed JSON and non-object roots both come back nil: "nothing
// usable", which callers surface however fits their context.
func DecodeSnapshot(data []byte) *model.State {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	return Upgrade(raw)
}
