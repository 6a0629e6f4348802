// Package store persists worksheets on local disk: one directory per
// worksheet holding a canonical JSON snapshot plus a SQLite revision
// history, and a small global config at ~/.warroom.
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
	"time"

	"warroom-cli/internal/logging"
	"warroom-cli/internal/model"
	"warroom-cli/internal/state"
)

const (
	snapshotFileName = "worksheet.json"
	historyFileName  = "history.sqlite"
)

var (
	// ErrNoWorksheet means the worksheet directory or snapshot does not exist.
	ErrNoWorksheet = errors.New("worksheet does not exist")
	// ErrUnusable means the snapshot exists but nothing usable survives the
	// read pipeline (unparseable JSON or a non-object root).
	ErrUnusable = errors.New("worksheet data is unusable")
)

// Store is one worksheet directory.
type Store struct {
	Dir string
}

// RootDir resolves the data root: an explicit --dir override, or the
// config dir.
func RootDir(override string) (string, error) {
	if v := strings.TrimSpace(override); v != "" {
		return filepath.Clean(v), nil
	}
	return ConfigDir()
}

// NormalizeWorksheetName validates a user-supplied worksheet name as a
// directory name.
func NormalizeWorksheetName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("worksheet name is empty")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("worksheet name %q must be a plain directory name", name)
	}
	return name, nil
}

// ForWorksheet returns the store rooted at <root>/worksheets/<name>.
func ForWorksheet(root, name string) (Store, error) {
	name, err := NormalizeWorksheetName(name)
	if err != nil {
		return Store{}, err
	}
	return Store{Dir: filepath.Join(root, "worksheets", name)}, nil
}

// Name is the worksheet's directory name.
func (s Store) Name() string { return filepath.Base(filepath.Clean(s.Dir)) }

func (s Store) Ensure() error { return os.MkdirAll(s.Dir, 0o755) }

// SnapshotPath is the worksheet's on-disk JSON document.
func (s Store) SnapshotPath() string { return filepath.Join(s.Dir, snapshotFileName) }
func (s Store) historyPath() string  { return filepath.Join(s.Dir, historyFileName) }

// Exists reports whether a snapshot has ever been saved here.
func (s Store) Exists() bool {
	_, err := os.Stat(s.SnapshotPath())
	return err == nil
}

// Load reads the snapshot and runs it through the full read pipeline.
// Whatever historical shape is on disk, the caller gets back a canonical
// current-version state or an error, never something in between.
func (s Store) Load() (*model.State, error) {
	b, err := os.ReadFile(s.SnapshotPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("worksheet %q: %w", s.Name(), ErrNoWorksheet)
		}
		return nil, err
	}
	st := state.DecodeSnapshot(b)
	if st == nil {
		return nil, fmt.Errorf("worksheet %q: %w", s.Name(), ErrUnusable)
	}
	return st, nil
}

// Save stamps savedAt and the schema version, writes the snapshot
// atomically (keeping a .bak of the previous one), and appends a revision
// to the history. The returned state is the stamped clone that was
// persisted; the input is not modified.
func (s Store) Save(ctx context.Context, st *model.State, reason string) (*model.State, error) {
	if st == nil {
		return nil, errors.New("nil state")
	}
	if err := s.Ensure(); err != nil {
		return nil, err
	}

	out := st.Clone()
	out.Meta.Version = state.SchemaVersion
	now := time.Now().UTC().Format(time.RFC3339)
	out.Meta.SavedAt = &now

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	b = append(b, '\n')

	path := s.SnapshotPath()
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(s.Dir, snapshotFileName+".bak.*.tmp", path+".bak", prev, 0o644)
	}
	if err := atomicWriteFile(s.Dir, snapshotFileName+".*.tmp", path, b, 0o600); err != nil {
		return nil, err
	}

	// History is an audit trail, not the source of truth; a broken history
	// db must not block saving the worksheet itself.
	if err := s.appendRevision(ctx, b, reason, now); err != nil {
		logging.New("store").Warn("revision append failed",
			"worksheet", s.Name(), "reason", reason, "err", err)
	}
	return out, nil
}

// Export marshals the current canonical snapshot for handing to another
// tool or person.
func (s Store) Export() ([]byte, error) {
	st, err := s.Load()
	if err != nil {
		return nil, err
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// Import runs an external snapshot through the read pipeline and saves it
// as this worksheet's new state. Any historical shape is accepted; data
// that yields nothing usable is rejected without touching the worksheet.
func (s Store) Import(ctx context.Context, data []byte, reason string) (*model.State, error) {
	st := state.DecodeSnapshot(data)
	if st == nil {
		return nil, fmt.Errorf("import: %w", ErrUnusable)
	}
	if reason == "" {
		reason = "import"
	}
	return s.Save(ctx, st, reason)
}

// WorksheetInfo is one row of the worksheet listing.
type WorksheetInfo struct {
	Name     string `json:"name"`
	OneLine  string `json:"oneLine,omitempty"`
	SavedAt  string `json:"savedAt,omitempty"`
	Unusable bool   `json:"unusable,omitempty"`
}

// ListWorksheets scans <root>/worksheets and peeks at each snapshot.
// Unusable snapshots are listed, flagged, and otherwise skipped so one
// corrupt worksheet cannot hide the rest.
func ListWorksheets(root string) ([]WorksheetInfo, error) {
	wsRoot := filepath.Join(root, "worksheets")
	ents, err := os.ReadDir(wsRoot)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []WorksheetInfo{}, nil
		}
		return nil, err
	}
	out := []WorksheetInfo{}
	for _, e := range ents {
		if !e.IsDir() {
			continue
		}
		info := WorksheetInfo{Name: e.Name()}
		st, err := Store{Dir: filepath.Join(wsRoot, e.Name())}.Load()
		switch {
		case errors.Is(err, ErrNoWorksheet):
			continue
		case err != nil:
			info.Unusable = true
		default:
			info.OneLine = st.Pre.OneLine
			if st.Meta.SavedAt != nil {
				info.SavedAt = *st.Meta.SavedAt
			}
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
