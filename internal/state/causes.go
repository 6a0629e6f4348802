package state

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"warroom-cli/internal/model"
)

// IDGen mints record ids for entries that arrive without one. Callers that
// need deterministic output (tests, fixtures) inject their own.
type IDGen func(prefix string) string

// NewID is the default generator: prefix, a random base36 run, and the
// current unix-millisecond clock in base36. Collisions would need the same
// random draw within the same millisecond.
func NewID(prefix string) string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return prefix + "-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	r := binary.BigEndian.Uint64(b[:])
	return prefix + "-" + strconv.FormatUint(r, 36) + "-" + strconv.FormatInt(time.Now().UnixMilli(), 36)
}

// SerializeCauses rewrites a cause list into its canonical persisted form:
// every record gets an id, text fields collapse to strings, confidence is
// kept only when it is a known level, and empty findings are pruned. The
// result marshals to exactly the shape DeserializeCauses accepts, so a
// round trip through the two is a fixpoint.
func SerializeCauses(causes []model.Cause, gen IDGen) []model.Cause {
	if gen == nil {
		gen = NewID
	}
	out := make([]model.Cause, 0, len(causes))
	for _, c := range causes {
		rec := model.Cause{
			ID:          c.ID,
			Suspect:     c.Suspect,
			Accusation:  c.Accusation,
			Impact:      c.Impact,
			SummaryText: c.SummaryText,
			Confidence:  model.ParseConfidence(string(c.Confidence)),
			Evidence:    c.Evidence,
			Findings:    map[string]model.Finding{},
			Editing:     c.Editing,
			TestingOpen: c.TestingOpen,
		}
		if strings.TrimSpace(rec.ID) == "" {
			rec.ID = gen("cause")
		}
		for key, f := range c.Findings {
			f.Mode = model.ParseFindingMode(string(f.Mode))
			if f.Empty() {
				continue
			}
			rec.Findings[key] = f
		}
		out = append(out, rec)
	}
	return out
}

// DeserializeCauses rebuilds a cause list from a raw snapshot value. Any
// non-array input yields an empty list; non-object entries are treated as
// empty records and still receive a generated id, so positions are
// preserved for callers that index into the list.
func DeserializeCauses(raw any, gen IDGen) []model.Cause {
	if gen == nil {
		gen = NewID
	}
	arr, ok := raw.([]any)
	if !ok {
		return []model.Cause{}
	}
	out := make([]model.Cause, 0, len(arr))
	for _, entry := range arr {
		m := asMap(entry)
		rec := model.Cause{
			Suspect:     coerceString(valueOf(m, "suspect")),
			Accusation:  coerceString(valueOf(m, "accusation")),
			Impact:      coerceString(valueOf(m, "impact")),
			SummaryText: coerceString(valueOf(m, "summaryText")),
			Evidence:    coerceString(valueOf(m, "evidence")),
			Findings:    map[string]model.Finding{},
			Editing:     toBool(valueOf(m, "editing")),
			TestingOpen: toBool(valueOf(m, "testingOpen")),
		}
		if s, ok := idText(valueOf(m, "id")); ok {
			rec.ID = s
		}
		if strings.TrimSpace(rec.ID) == "" {
			rec.ID = gen("cause")
		}
		if s, ok := valueOf(m, "confidence").(string); ok {
			rec.Confidence = model.ParseConfidence(s)
		}
		for key, fv := range asMap(valueOf(m, "findings")) {
			f := NormalizeFinding(fv)
			if f.Empty() {
				continue
			}
			rec.Findings[key] = f
		}
		out = append(out, rec)
	}
	return out
}

func valueOf(m map[string]any, key string) any {
	if m == nil {
		return nil
	}
	return m[key]
}
