package state

import (
	"strconv"
	"strings"
)

// SchemaVersion is the current snapshot schema. Bumping it requires
// registering a migration keyed at the previous version.
const SchemaVersion = 1

// migrations maps an originating schema version to the transform that
// lifts a raw root payload one step forward. A transform receives a
// private deep copy it may mutate freely, and must advance meta.version;
// one that fails to do so is cut off by the revisit guard in Migrate.
var migrations = map[int]func(map[string]any) map[string]any{
	0: migrateV0,
}

// Migrate walks a raw root payload forward one registered step at a time
// until it reaches SchemaVersion or no migration applies. The input map is
// never mutated; each step works on a fresh clone. Broken or adversarial
// version stamps (downgrades, loops, non-numeric values) terminate the
// walk rather than hang it.
func Migrate(root map[string]any) map[string]any {
	if root == nil {
		return nil
	}
	cur := VersionOf(root)
	seen := map[int]bool{cur: true}
	for cur < SchemaVersion {
		step, ok := migrations[cur]
		if !ok {
			break
		}
		root = step(cloneMap(root))
		cur = VersionOf(root)
		if seen[cur] {
			break
		}
		seen[cur] = true
	}
	return root
}

// VersionOf reads meta.version, tolerating the numeric strings some early
// exports carried. Anything unreadable counts as version 0.
func VersionOf(root map[string]any) int {
	v, ok := firstValue(ref(childMap(root, "meta"), "version"))
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return int(f)
		}
	}
	return 0
}

// migrateV0 lifts the original flat layout to schema 1: the comms and
// table-focus fields move under ops, possibleCauses becomes causes, and
// the two containment spellings collapse into ops.containStatus. Values
// already under ops win over their root-level duplicates.
func migrateV0(root map[string]any) map[string]any {
	ops := childMap(root, "ops")
	if ops == nil {
		ops = map[string]any{}
	}
	for _, key := range []string{"commCadence", "commNextDueIso", "commNextUpdateTime", "tableFocusMode", "commLog"} {
		v, present := root[key]
		if !present {
			continue
		}
		if cur, ok := ops[key]; !ok || cur == nil {
			ops[key] = v
		}
		delete(root, key)
	}
	root["ops"] = ops

	if cur, ok := root["causes"]; !ok || cur == nil {
		if pc, ok := root["possibleCauses"]; ok {
			root["causes"] = pc
			delete(root, "possibleCauses")
		}
	}

	if cur, ok := ops["containStatus"]; !ok || cur == nil {
		for _, key := range []string{"containmentStatus", "containment"} {
			if v, ok := ops[key]; ok && v != nil {
				ops["containStatus"] = v
				break
			}
		}
	}
	delete(ops, "containmentStatus")
	delete(ops, "containment")

	meta := childMap(root, "meta")
	if meta == nil {
		meta = map[string]any{}
	}
	meta["version"] = 1
	root["meta"] = meta
	return root
}

// cloneMap deep-copies a decoded JSON object. Scalars are immutable and
// copy by value; maps and arrays recurse.
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return t
	}
}
