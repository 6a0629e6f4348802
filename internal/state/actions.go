package state

import (
	"strings"

	"warroom-cli/internal/model"
)

// NormalizeActionSnapshot coerces one raw follow-up item into canonical
// shape. Bare strings are shorthand for a titled, unowned, open item.
func NormalizeActionSnapshot(entry any) model.Action {
	switch t := entry.(type) {
	case string:
		return model.Action{Title: t}
	case map[string]any:
		return model.Action{
			ID:         stringField(ref(t, "id"), ref(t, "actionId")),
			AnalysisID: stringField(ref(t, "analysisId")),
			Title:      stringField(ref(t, "title"), ref(t, "label")),
			Owner:      stringField(ref(t, "owner"), ref(t, "assignee")),
			Due:        stringField(ref(t, "due"), ref(t, "dueIso")),
			Notes:      stringField(ref(t, "notes")),
			Done:       boolField(ref(t, "done"), ref(t, "checked")),
		}
	default:
		return model.Action{}
	}
}

// normalizeActions rebuilds the follow-up container. A bare array is read
// as the item list. The analysis id is resolved once, from the container
// first and then the items in order, and stamped onto everything so one
// list can never mix ids.
func normalizeActions(v any) *model.Actions {
	out := model.DefaultActions()
	var m map[string]any
	switch t := v.(type) {
	case []any:
		m = map[string]any{"items": t}
	case map[string]any:
		m = t
	}
	if items, ok := valueOf(m, "items").([]any); ok {
		for _, it := range items {
			out.Items = append(out.Items, NormalizeActionSnapshot(it))
		}
	}
	analysisID := stringField(ref(m, "analysisId"), ref(m, "id"))
	if strings.TrimSpace(analysisID) == "" {
		for _, it := range out.Items {
			if strings.TrimSpace(it.AnalysisID) != "" {
				analysisID = it.AnalysisID
				break
			}
			if strings.TrimSpace(it.ID) != "" {
				analysisID = it.ID
				break
			}
		}
	}
	out.AnalysisID = analysisID
	for i := range out.Items {
		out.Items[i].AnalysisID = analysisID
	}
	return out
}
