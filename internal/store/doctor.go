package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"warroom-cli/internal/state"
)

// ErrDoctorIssuesFound signals a non-zero exit when doctor runs with --fail.
var ErrDoctorIssuesFound = errors.New("doctor found errors")

type DoctorIssueLevel string

const (
	DoctorIssueLevelError DoctorIssueLevel = "error"
	DoctorIssueLevelWarn  DoctorIssueLevel = "warn"
)

type DoctorIssue struct {
	Level   DoctorIssueLevel `json:"level"`
	Code    string           `json:"code"`
	Message string           `json:"message"`
	Path    string           `json:"path,omitempty"`

	Worksheet string `json:"worksheet,omitempty"`
}

type DoctorReport struct {
	// Worksheets is every worksheet directory the scan visited, sorted.
	Worksheets []string      `json:"worksheets"`
	Issues     []DoctorIssue `json:"issues"`
}

func (r DoctorReport) HasErrors() bool {
	for _, it := range r.Issues {
		if it.Level == DoctorIssueLevelError {
			return true
		}
	}
	return false
}

// Doctor inspects the global config and every worksheet under root and
// reports anything that would surprise a later command. It never repairs;
// findings are issues, not failures.
func Doctor(ctx context.Context, root string) DoctorReport {
	var issues []DoctorIssue

	currentWorksheet := ""
	if p, err := ConfigPath(); err == nil {
		if b, err := os.ReadFile(p); err == nil {
			var cfg GlobalConfig
			if err := json.Unmarshal(b, &cfg); err != nil {
				issues = append(issues, DoctorIssue{
					Level:   DoctorIssueLevelError,
					Code:    "config_invalid_json",
					Message: err.Error(),
					Path:    p,
				})
			} else {
				currentWorksheet = strings.TrimSpace(cfg.CurrentWorksheet)
			}
		}
	}

	wsRoot := filepath.Join(root, "worksheets")
	entries, err := os.ReadDir(wsRoot)
	if err != nil {
		if os.IsNotExist(err) {
			// Fresh install; nothing to inspect yet.
			return DoctorReport{Worksheets: []string{}, Issues: issuesOrEmpty(issues)}
		}
		issues = append(issues, DoctorIssue{
			Level:   DoctorIssueLevelError,
			Code:    "worksheets_read_failed",
			Message: err.Error(),
			Path:    wsRoot,
		})
		return DoctorReport{Worksheets: []string{}, Issues: issuesOrEmpty(issues)}
	}

	names := []string{}
	for _, ent := range entries {
		if ent.IsDir() {
			names = append(names, ent.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		st := Store{Dir: filepath.Join(wsRoot, name)}
		issues = append(issues, doctorWorksheet(ctx, name, st)...)
	}

	if currentWorksheet != "" {
		found := false
		for _, name := range names {
			if name == currentWorksheet {
				found = true
				break
			}
		}
		if !found {
			issues = append(issues, DoctorIssue{
				Level:     DoctorIssueLevelWarn,
				Code:      "current_worksheet_missing",
				Message:   fmt.Sprintf("config points at worksheet %q which does not exist under %s", currentWorksheet, wsRoot),
				Worksheet: currentWorksheet,
			})
		}
	}

	return DoctorReport{Worksheets: names, Issues: issuesOrEmpty(issues)}
}

func doctorWorksheet(ctx context.Context, name string, st Store) []DoctorIssue {
	var issues []DoctorIssue

	snapPath := st.SnapshotPath()
	b, err := os.ReadFile(snapPath)
	switch {
	case os.IsNotExist(err):
		code, level := "snapshot_missing", DoctorIssueLevelError
		if _, bakErr := os.Stat(snapPath + ".bak"); bakErr == nil {
			// A backup survives; import it to recover.
			code, level = "snapshot_missing_backup_present", DoctorIssueLevelWarn
		}
		issues = append(issues, DoctorIssue{
			Level:     level,
			Code:      code,
			Message:   "worksheet directory has no snapshot",
			Path:      snapPath,
			Worksheet: name,
		})
	case err != nil:
		issues = append(issues, DoctorIssue{
			Level:     DoctorIssueLevelError,
			Code:      "snapshot_read_failed",
			Message:   err.Error(),
			Path:      snapPath,
			Worksheet: name,
		})
	default:
		var raw any
		if jsonErr := json.Unmarshal(b, &raw); jsonErr != nil {
			issues = append(issues, DoctorIssue{
				Level:     DoctorIssueLevelError,
				Code:      "snapshot_invalid_json",
				Message:   jsonErr.Error(),
				Path:      snapPath,
				Worksheet: name,
			})
		} else if root, ok := raw.(map[string]any); !ok {
			issues = append(issues, DoctorIssue{
				Level:     DoctorIssueLevelError,
				Code:      "snapshot_not_object",
				Message:   "snapshot is valid JSON but not an object",
				Path:      snapPath,
				Worksheet: name,
			})
		} else if v := state.VersionOf(root); v > state.SchemaVersion {
			issues = append(issues, DoctorIssue{
				Level:     DoctorIssueLevelError,
				Code:      "snapshot_from_newer_version",
				Message:   fmt.Sprintf("snapshot schema version %d is newer than this build understands (%d)", v, state.SchemaVersion),
				Path:      snapPath,
				Worksheet: name,
			})
		} else {
			if v < state.SchemaVersion {
				issues = append(issues, DoctorIssue{
					Level:     DoctorIssueLevelWarn,
					Code:      "snapshot_outdated",
					Message:   fmt.Sprintf("snapshot schema version %d; migrates to %d on next save", v, state.SchemaVersion),
					Path:      snapPath,
					Worksheet: name,
				})
			}
			issues = append(issues, doctorContent(name, snapPath, root)...)
		}
	}

	if _, err := os.Stat(st.historyPath()); err == nil {
		db, openErr := st.openHistory(ctx)
		if openErr != nil {
			// History is best effort everywhere else too, so a broken db
			// is a warning rather than an error.
			issues = append(issues, DoctorIssue{
				Level:     DoctorIssueLevelWarn,
				Code:      "history_unusable",
				Message:   openErr.Error(),
				Path:      st.historyPath(),
				Worksheet: name,
			})
		} else {
			db.Close()
		}
	}

	if entries, err := os.ReadDir(st.Dir); err == nil {
		for _, ent := range entries {
			if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".tmp") {
				continue
			}
			issues = append(issues, DoctorIssue{
				Level:     DoctorIssueLevelWarn,
				Code:      "stale_temp_file",
				Message:   "leftover temp file from an interrupted save; safe to delete",
				Path:      filepath.Join(st.Dir, ent.Name()),
				Worksheet: name,
			})
		}
	}

	return issues
}

// doctorContent checks what the worksheet says, not how it is stored:
// marks that point nowhere and data the read pipeline will silently drop.
func doctorContent(name, path string, root map[string]any) []DoctorIssue {
	st := state.Upgrade(root)
	if st == nil {
		return nil
	}

	var issues []DoctorIssue
	if st.LikelyCauseID != nil {
		found := false
		for _, c := range st.Causes {
			if c.ID == *st.LikelyCauseID {
				found = true
				break
			}
		}
		if !found {
			issues = append(issues, DoctorIssue{
				Level:     DoctorIssueLevelWarn,
				Code:      "likely_cause_dangling",
				Message:   fmt.Sprintf("likelyCauseId %q does not match any cause", *st.LikelyCauseID),
				Path:      path,
				Worksheet: name,
			})
		}
	}
	if n := prunableFindings(root); n > 0 {
		issues = append(issues, DoctorIssue{
			Level:     DoctorIssueLevelWarn,
			Code:      "findings_prunable",
			Message:   fmt.Sprintf("%d blank finding(s) on disk; pruned on the next save", n),
			Path:      path,
			Worksheet: name,
		})
	}
	return issues
}

// prunableFindings counts finding entries with no mode and a blank note.
// They survive in the file until a save rewrites it.
func prunableFindings(root map[string]any) int {
	arr, ok := root["causes"].([]any)
	if !ok {
		arr, _ = root["possibleCauses"].([]any)
	}
	n := 0
	for _, entry := range arr {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		fs, ok := m["findings"].(map[string]any)
		if !ok {
			continue
		}
		for _, f := range fs {
			if state.NormalizeFinding(f).Empty() {
				n++
			}
		}
	}
	return n
}

func issuesOrEmpty(issues []DoctorIssue) []DoctorIssue {
	if issues == nil {
		return []DoctorIssue{}
	}
	return issues
}
