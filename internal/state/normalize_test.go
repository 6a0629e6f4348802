package state

import (
	"encoding/json"
	"testing"

	"warroom-cli/internal/model"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeRejectsNonObjects(t *testing.T) {
	for _, raw := range []any{nil, "x", float64(1), true, []any{map[string]any{}}} {
		if got := Normalize(raw); got != nil {
			t.Fatalf("Normalize(%v) = %+v, want nil", raw, got)
		}
	}
}

// A canonical snapshot must pass through normalization unchanged: the
// pipeline runs on every load, so any drift here would corrupt worksheets
// that were already clean.
func TestNormalizeIsIdempotent(t *testing.T) {
	raw := decodeRaw(t, `{
		"meta": {"version": 1, "savedAt": "2026-08-10T09:30:00Z"},
		"pre": {"oneLine": "checkout 500s", "symptoms": "error rate 40%", "affected": "EU customers", "started": "09:02 UTC", "context": "deploy window"},
		"impact": {"now": "revenue loss", "future": "churn risk", "time": "worsening"},
		"ops": {
			"bridge": "#inc-checkout", "owner": "maya", "severity": "sev1", "containSummary": "rollback running",
			"commCadence": "30", "commNextDueIso": "2026-08-10T10:00:00Z", "commNextUpdateTime": "10:00", "tableFocusMode": "focus",
			"detectMonitoring": true, "detectCustomer": false, "detectInternal": true,
			"evidenceLogs": true, "evidenceMetrics": true, "evidenceTraces": false,
			"evidenceDeploy": true, "evidenceConfig": false, "evidenceVendor": false,
			"containStatus": "stabilized",
			"commLog": [{"at": "09:15", "message": "bridge opened", "type": "status"}, {"message": "plain entry"}]
		},
		"table": [{"dimension": "region", "is": "eu-west", "isNot": "us-east"}],
		"causes": [{
			"id": "c-1", "suspect": "cache cluster", "accusation": "evictions spiked", "impact": "latency",
			"summaryText": "cache cluster: evictions spiked", "confidence": "high", "evidence": "grafana",
			"findings": {"primary": {"mode": "yes", "note": "hit rate fell"}},
			"editing": false, "testingOpen": true
		}],
		"likelyCauseId": "c-1",
		"steps": {"items": [{"id": "s1", "label": "page db oncall", "checked": true}], "drawerOpen": false},
		"actions": {"analysisId": "a-1", "items": [{"id": "t1", "analysisId": "a-1", "title": "add alert", "owner": "sam", "due": "2026-08-12", "notes": "", "done": false}]},
		"appearance": {"theme": "dark"},
		"handover": {"summary": "s", "status": "st", "risks": "r", "nextSteps": "n", "contacts": "c"}
	}`)

	first := Normalize(raw)
	if first == nil {
		t.Fatalf("canonical payload did not normalize")
	}

	data, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var reread any
	if err := json.Unmarshal(data, &reread); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	second := Normalize(reread)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("normalization drifted (-first +second):\n%s", diff)
	}
}

func TestNormalizeFlatLegacyAliases(t *testing.T) {
	st := Normalize(decodeRaw(t, `{
		"oneLine": "db down", "symptoms": "timeouts",
		"impactNow": "orders failing", "impactFuture": "backlog", "impactTime": "1h",
		"bridge": "#war-room", "owner": "jo", "severity": "sev2",
		"detectMonitoring": "yes", "evidenceLogs": 1,
		"theme": "dark",
		"grid": [{"dimension": "service"}],
		"likelyCause": "c-3"
	}`))
	if st == nil {
		t.Fatalf("flat payload did not normalize")
	}
	if st.Pre.OneLine != "db down" || st.Pre.Symptoms != "timeouts" {
		t.Fatalf("preface aliases: %+v", st.Pre)
	}
	if st.Impact.Now != "orders failing" || st.Impact.Future != "backlog" || st.Impact.Time != "1h" {
		t.Fatalf("impact aliases: %+v", st.Impact)
	}
	if st.Ops.Bridge != "#war-room" || st.Ops.Owner != "jo" || st.Ops.Severity != "sev2" {
		t.Fatalf("ops aliases: %+v", st.Ops)
	}
	if !st.Ops.DetectMonitoring || !st.Ops.EvidenceLogs {
		t.Fatalf("flag coercion: %+v", st.Ops)
	}
	if st.Appearance.Theme != model.ThemeDark {
		t.Fatalf("theme = %q", st.Appearance.Theme)
	}
	if len(st.Table) != 1 || st.Table[0]["dimension"] != "service" {
		t.Fatalf("grid alias: %+v", st.Table)
	}
	if st.LikelyCauseID == nil || *st.LikelyCauseID != "c-3" {
		t.Fatalf("likelyCause alias: %v", st.LikelyCauseID)
	}
}

func TestNormalizeNestedValueWinsOverRootAlias(t *testing.T) {
	st := Normalize(decodeRaw(t, `{"pre": {"oneLine": "nested"}, "oneLine": "flat"}`))
	if st.Pre.OneLine != "nested" {
		t.Fatalf("oneLine = %q, want nested", st.Pre.OneLine)
	}

	// An explicit null defers to the alias, same as a missing key.
	st = Normalize(decodeRaw(t, `{"pre": {"oneLine": null}, "oneLine": "flat"}`))
	if st.Pre.OneLine != "flat" {
		t.Fatalf("oneLine = %q, want flat", st.Pre.OneLine)
	}
}

func TestNormalizeContainment(t *testing.T) {
	t.Run("legacy name remap", func(t *testing.T) {
		st := Normalize(decodeRaw(t, `{"ops":{"containmentStatus":"mitigation"}}`))
		if st.Ops.ContainStatus != model.ContainStabilized {
			t.Fatalf("containStatus = %q, want stabilized", st.Ops.ContainStatus)
		}
	})
	t.Run("unknown value normalizes to none", func(t *testing.T) {
		st := Normalize(decodeRaw(t, `{"ops":{"containStatus":"bogus"}}`))
		if st.Ops.ContainStatus != model.ContainNone {
			t.Fatalf("containStatus = %q, want empty", st.Ops.ContainStatus)
		}
	})
}

func TestNormalizeCommLog(t *testing.T) {
	st := Normalize(decodeRaw(t, `{"ops":{"commLog":[
		"plain string",
		42,
		{"timestamp": "09:15", "msg": "aliased entry", "kind": "update"},
		true,
		null
	]}}`))
	want := []model.CommEntry{
		{Message: "plain string"},
		{Message: "42"},
		{At: "09:15", Message: "aliased entry", Type: "update"},
	}
	if diff := cmp.Diff(want, st.Ops.CommLog); diff != "" {
		t.Fatalf("commLog mismatch (-want +got):\n%s", diff)
	}

	st = Normalize(decodeRaw(t, `{"ops":{"commLog":"not an array"}}`))
	if len(st.Ops.CommLog) != 0 {
		t.Fatalf("non-array commLog = %+v, want empty", st.Ops.CommLog)
	}
}

func TestNormalizeSteps(t *testing.T) {
	t.Run("bare array form", func(t *testing.T) {
		st := Normalize(decodeRaw(t, `{"steps":[{"id":"s1","label":"rollback"},{"label":"no id, dropped"}]}`))
		if len(st.Steps.Items) != 1 || st.Steps.Items[0].ID != "s1" {
			t.Fatalf("steps = %+v", st.Steps)
		}
	})
	t.Run("legacy object form", func(t *testing.T) {
		st := Normalize(decodeRaw(t, `{"steps":{"steps":[{"stepId":7,"title":"drain node","done":"yes"}],"open":true}}`))
		want := model.Steps{
			Items:      []model.Step{{ID: "7", Label: "drain node", Checked: true}},
			DrawerOpen: true,
		}
		if diff := cmp.Diff(want, st.Steps); diff != "" {
			t.Fatalf("steps mismatch (-want +got):\n%s", diff)
		}
	})
	t.Run("junk entries dropped", func(t *testing.T) {
		st := Normalize(decodeRaw(t, `{"steps":["x", 3, null, {"id":""}]}`))
		if len(st.Steps.Items) != 0 {
			t.Fatalf("steps = %+v, want none", st.Steps.Items)
		}
	})
}

func TestNormalizeActionsPresence(t *testing.T) {
	st := Normalize(decodeRaw(t, `{"meta":{"version":1}}`))
	if st.Actions != nil {
		t.Fatalf("actions materialized out of nothing: %+v", st.Actions)
	}

	st = Normalize(decodeRaw(t, `{"meta":{"version":1},"actions":{"items":[]}}`))
	if st.Actions == nil {
		t.Fatalf("explicit actions key was dropped")
	}
	if len(st.Actions.Items) != 0 || st.Actions.AnalysisID != "" {
		t.Fatalf("empty actions = %+v", st.Actions)
	}
}

func TestNormalizeActionsAnalysisID(t *testing.T) {
	t.Run("container id wins", func(t *testing.T) {
		st := Normalize(decodeRaw(t, `{"actions":{"id":"alpha","items":[{"id":"t1","analysisId":"beta"}]}}`))
		if st.Actions.AnalysisID != "alpha" {
			t.Fatalf("analysisId = %q, want alpha", st.Actions.AnalysisID)
		}
		if st.Actions.Items[0].AnalysisID != "alpha" {
			t.Fatalf("item analysisId = %q, want alpha", st.Actions.Items[0].AnalysisID)
		}
	})
	t.Run("falls back to first item", func(t *testing.T) {
		st := Normalize(decodeRaw(t, `{"actions":{"items":[{"title":"no ids"},{"analysisId":"gamma"},{"analysisId":"delta"}]}}`))
		if st.Actions.AnalysisID != "gamma" {
			t.Fatalf("analysisId = %q, want gamma", st.Actions.AnalysisID)
		}
		for i, it := range st.Actions.Items {
			if it.AnalysisID != "gamma" {
				t.Fatalf("item %d analysisId = %q, want gamma", i, it.AnalysisID)
			}
		}
	})
	t.Run("bare array becomes items", func(t *testing.T) {
		st := Normalize(decodeRaw(t, `{"actions":["call vendor"]}`))
		if len(st.Actions.Items) != 1 || st.Actions.Items[0].Title != "call vendor" {
			t.Fatalf("actions = %+v", st.Actions)
		}
	})
}

func TestNormalizeHandover(t *testing.T) {
	st := Normalize(decodeRaw(t, `{"handover":{"summary":"s","risks":42,"bogusSection":"dropped"}}`))
	want := model.Handover{Summary: "s"}
	if st.Handover != want {
		t.Fatalf("handover = %+v, want %+v", st.Handover, want)
	}
}

func TestNormalizeSavedAt(t *testing.T) {
	st := Normalize(decodeRaw(t, `{"savedAt":"2026-01-05T08:00:00Z"}`))
	if st.Meta.SavedAt == nil || *st.Meta.SavedAt != "2026-01-05T08:00:00Z" {
		t.Fatalf("root savedAt alias: %v", st.Meta.SavedAt)
	}
	st = Normalize(decodeRaw(t, `{"meta":{"savedAt":12345}}`))
	if st.Meta.SavedAt != nil {
		t.Fatalf("non-string savedAt kept: %v", *st.Meta.SavedAt)
	}
}

func TestNormalizeLikelyCauseID(t *testing.T) {
	st := Normalize(decodeRaw(t, `{"likelyCauseId":5}`))
	if st.LikelyCauseID == nil || *st.LikelyCauseID != "5" {
		t.Fatalf("numeric likelyCauseId: %v", st.LikelyCauseID)
	}
	st = Normalize(decodeRaw(t, `{"likelyCauseId":{"bogus":true}}`))
	if st.LikelyCauseID != nil {
		t.Fatalf("object likelyCauseId kept: %v", *st.LikelyCauseID)
	}
	st = Normalize(decodeRaw(t, `{}`))
	if st.LikelyCauseID != nil {
		t.Fatalf("likelyCauseId appeared from nowhere: %v", *st.LikelyCauseID)
	}
}

// The full read pipeline over a literal pre-v1 payload, end to end.
func TestUpgradeLegacyPayload(t *testing.T) {
	st := Upgrade(decodeRaw(t, `{
		"possibleCauses": [{"id": "c1", "suspect": "Cache", "findings": {"primary": {"explainIs": "Cache misses elevated"}}}],
		"commCadence": "hourly",
		"ops": {"containmentStatus": "mitigation"},
		"likelyCauseId": 5
	}`))
	if st == nil {
		t.Fatalf("legacy payload did not upgrade")
	}
	if st.Meta.Version != SchemaVersion {
		t.Fatalf("version = %d, want %d", st.Meta.Version, SchemaVersion)
	}
	if len(st.Causes) != 1 || st.Causes[0].ID != "c1" || st.Causes[0].Suspect != "Cache" {
		t.Fatalf("causes = %+v", st.Causes)
	}
	finding, ok := st.Causes[0].Findings["primary"]
	if !ok {
		t.Fatalf("primary finding lost: %+v", st.Causes[0].Findings)
	}
	if want := (model.Finding{Mode: model.FindingYes, Note: "Cache misses elevated"}); finding != want {
		t.Fatalf("finding = %+v, want %+v", finding, want)
	}
	if st.Ops.ContainStatus != model.ContainStabilized {
		t.Fatalf("containStatus = %q, want stabilized", st.Ops.ContainStatus)
	}
	if st.Ops.CommCadence != "hourly" {
		t.Fatalf("commCadence = %q, want hourly", st.Ops.CommCadence)
	}
	if st.LikelyCauseID == nil || *st.LikelyCauseID != "5" {
		t.Fatalf("likelyCauseId = %v, want \"5\"", st.LikelyCauseID)
	}
}

func TestUpgradeStillNormalizesWhenMigrationMissing(t *testing.T) {
	// meta.version -4 has no registered step; the structural pass must
	// still produce a canonical object rather than a partial one.
	st := Upgrade(decodeRaw(t, `{"meta":{"version":-4},"oneLine":"orphaned"}`))
	if st == nil {
		t.Fatalf("unmigratable version came back nil")
	}
	if st.Meta.Version != SchemaVersion {
		t.Fatalf("version = %d, want %d", st.Meta.Version, SchemaVersion)
	}
	if st.Pre.OneLine != "orphaned" {
		t.Fatalf("alias fallback skipped: %+v", st.Pre)
	}
}

func TestDecodeSnapshot(t *testing.T) {
	if st := DecodeSnapshot([]byte(`{`)); st != nil {
		t.Fatalf("malformed JSON produced state: %+v", st)
	}
	if st := DecodeSnapshot([]byte(`"just a string"`)); st != nil {
		t.Fatalf("non-object root produced state: %+v", st)
	}
	st := DecodeSnapshot([]byte(`{"oneLine":"ok"}`))
	if st == nil || st.Pre.OneLine != "ok" {
		t.Fatalf("valid snapshot did not decode: %+v", st)
	}
}
