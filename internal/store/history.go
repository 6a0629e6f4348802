package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"warroom-cli/internal/model"
	"warroom-cli/internal/state"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Revision is one history entry: a full snapshot of the worksheet as it
// was saved, plus why.
type Revision struct {
	ID            string `json:"id"`
	SavedAt       string `json:"savedAt"`
	Reason        string `json:"reason"`
	SchemaVersion int    `json:"schemaVersion"`
	Size          int    `json:"size"`
}

func (s Store) openHistory(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.historyPath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids
	// "database is locked" flakiness when CLI and TUI overlap.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := s.migrateHistory(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (s Store) migrateHistory(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS revisions (
			revision_id TEXT PRIMARY KEY,
			saved_at TEXT NOT NULL,
			saved_at_unixms INTEGER NOT NULL,
			reason TEXT NOT NULL,
			schema_version INTEGER NOT NULL,
			snapshot_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_revisions_saved ON revisions(saved_at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	_, err := ensureMetaValue(ctx, db, "worksheet_id")
	return err
}

func ensureMetaValue(ctx context.Context, db *sql.DB, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("empty meta key")
	}
	var v string
	err := db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = ?`, key).Scan(&v)
	if err == nil && strings.TrimSpace(v) != "" {
		return v, nil
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	id := uuid.NewString()
	if _, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO meta(k, v) VALUES(?, ?)`, key, id); err != nil {
		return "", err
	}
	return id, nil
}

// WorksheetID returns the stable per-worksheet identifier minted on first
// save. Copying a worksheet directory copies its identity with it.
func (s Store) WorksheetID(ctx context.Context) (string, error) {
	db, err := s.openHistory(ctx)
	if err != nil {
		return "", err
	}
	defer db.Close()
	return ensureMetaValue(ctx, db, "worksheet_id")
}

func (s Store) appendRevision(ctx context.Context, snapshot []byte, reason, savedAt string) error {
	db, err := s.openHistory(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if strings.TrimSpace(reason) == "" {
		reason = "save"
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO revisions(revision_id, saved_at, saved_at_unixms, reason, schema_version, snapshot_json)
		 VALUES(?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), savedAt, time.Now().UnixMilli(), reason, state.SchemaVersion, string(snapshot))
	if err != nil {
		return err
	}

	// HistoryLimit is a user preference; reading it is best-effort so a
	// broken config never blocks a save.
	if cfg, cfgErr := LoadConfig(); cfgErr == nil && cfg.HistoryLimit > 0 {
		_, err = db.ExecContext(ctx,
			`DELETE FROM revisions WHERE revision_id NOT IN (
				SELECT revision_id FROM revisions
				ORDER BY saved_at_unixms DESC, rowid DESC
				LIMIT ?
			)`, cfg.HistoryLimit)
	}
	return err
}

// Revisions lists history entries, newest first. limit == 0 means all.
func (s Store) Revisions(ctx context.Context, limit int) ([]Revision, error) {
	db, err := s.openHistory(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	// rowid breaks same-millisecond ties in insertion order.
	q := `SELECT revision_id, saved_at, reason, schema_version, length(snapshot_json)
	      FROM revisions
	      ORDER BY saved_at_unixms DESC, rowid DESC`
	var rows *sql.Rows
	if limit > 0 {
		rows, err = db.QueryContext(ctx, q+` LIMIT ?`, limit)
	} else {
		rows, err = db.QueryContext(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Revision{}
	for rows.Next() {
		var r Revision
		if err := rows.Scan(&r.ID, &r.SavedAt, &r.Reason, &r.SchemaVersion, &r.Size); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RevisionSnapshot fetches one revision's stored snapshot. A unique id
// prefix is accepted, so users can paste the short form from `history`.
func (s Store) RevisionSnapshot(ctx context.Context, id string) ([]byte, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("revision id is empty")
	}
	db, err := s.openHistory(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT revision_id, snapshot_json FROM revisions WHERE revision_id LIKE ? || '%' LIMIT 2`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []string
	var snapshot string
	for rows.Next() {
		var rid, snap string
		if err := rows.Scan(&rid, &snap); err != nil {
			return nil, err
		}
		matches = append(matches, rid)
		snapshot = snap
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("revision %q not found", id)
	case 1:
		return []byte(snapshot), nil
	default:
		return nil, fmt.Errorf("revision %q is ambiguous (%s...)", id, strings.Join(matches, ", "))
	}
}

// RestoreRevision makes an old revision the current state. The restore is
// itself saved, so it appears in history and can be undone the same way.
func (s Store) RestoreRevision(ctx context.Context, id string) (*model.State, error) {
	snapshot, err := s.RevisionSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	st := state.DecodeSnapshot(snapshot)
	if st == nil {
		return nil, fmt.Errorf("revision %q: %w", id, ErrUnusable)
	}
	return s.Save(ctx, st, "restore "+shortID(id))
}

// shortID trims a uuid to its first segment for display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
