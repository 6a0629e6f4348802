package state

import (
	"strings"

	"warroom-cli/internal/model"
)

// NormalizeFinding coerces one raw cause-finding entry into the canonical
// {mode, note} pair. It is total: any input shape yields a well-formed
// value, and unusable shapes yield the empty finding.
//
// Shapes handled:
//   - bare string: the oldest snapshots stored a free-form note and the
//     test was implicitly confirming, so the mode becomes "yes"
//   - object: mode and note are read with the usual coercions, and the
//     retired explainIs/explainNot pair is folded into them
//   - anything else: empty finding
func NormalizeFinding(entry any) model.Finding {
	switch t := entry.(type) {
	case string:
		return model.Finding{Mode: model.FindingYes, Note: t}
	case map[string]any:
		f := model.Finding{Note: noteText(t["note"])}
		if s, ok := t["mode"].(string); ok {
			f.Mode = model.ParseFindingMode(s)
		}
		if legacy := joinExplain(t); legacy != "" {
			if f.Mode == model.FindingModeNone {
				f.Mode = model.FindingYes
			}
			if f.Note == "" {
				f.Note = legacy
			}
		}
		return f
	default:
		return model.Finding{}
	}
}

// joinExplain merges the retired explainIs/explainNot fields into a single
// note, one per line, skipping blanks.
func joinExplain(m map[string]any) string {
	parts := make([]string, 0, 2)
	for _, key := range []string{"explainIs", "explainNot"} {
		if s, ok := m[key].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, "\n")
}
