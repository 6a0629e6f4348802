package store

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"warroom-cli/internal/state"
)

func saveTimes(t *testing.T, s Store, oneLines ...string) {
	t.Helper()
	ctx := context.Background()
	for _, ol := range oneLines {
		if _, err := s.Save(ctx, sampleState(t, ol), "edit "+ol); err != nil {
			t.Fatalf("save %q: %v", ol, err)
		}
		// Revision timestamps have millisecond resolution.
		time.Sleep(2 * time.Millisecond)
	}
}

func TestRevisionsNewestFirst(t *testing.T) {
	s, _ := testStore(t, "hist")
	saveTimes(t, s, "one", "two", "three")

	revs, err := s.Revisions(context.Background(), 0)
	if err != nil {
		t.Fatalf("revisions: %v", err)
	}
	if len(revs) != 3 {
		t.Fatalf("got %d revisions, want 3", len(revs))
	}
	wantReasons := []string{"edit three", "edit two", "edit one"}
	for i, want := range wantReasons {
		if revs[i].Reason != want {
			t.Fatalf("revs[%d].Reason = %q, want %q", i, revs[i].Reason, want)
		}
		if revs[i].SchemaVersion != state.SchemaVersion {
			t.Fatalf("revs[%d].SchemaVersion = %d", i, revs[i].SchemaVersion)
		}
		if revs[i].Size <= 0 {
			t.Fatalf("revs[%d].Size = %d", i, revs[i].Size)
		}
		if _, err := time.Parse(time.RFC3339, revs[i].SavedAt); err != nil {
			t.Fatalf("revs[%d].SavedAt %q: %v", i, revs[i].SavedAt, err)
		}
	}
}

func TestRevisionsLimit(t *testing.T) {
	s, _ := testStore(t, "hist-limit")
	saveTimes(t, s, "one", "two", "three")

	revs, err := s.Revisions(context.Background(), 2)
	if err != nil {
		t.Fatalf("revisions: %v", err)
	}
	if len(revs) != 2 {
		t.Fatalf("got %d revisions, want 2", len(revs))
	}
	if revs[0].Reason != "edit three" || revs[1].Reason != "edit two" {
		t.Fatalf("limit kept the wrong revisions: %+v", revs)
	}
}

func TestRevisionSnapshotPrefixLookup(t *testing.T) {
	s, _ := testStore(t, "hist-prefix")
	ctx := context.Background()
	saveTimes(t, s, "first", "second")

	revs, err := s.Revisions(ctx, 0)
	if err != nil {
		t.Fatalf("revisions: %v", err)
	}
	oldID := revs[1].ID

	snap, err := s.RevisionSnapshot(ctx, oldID[:8])
	if err != nil {
		t.Fatalf("prefix lookup: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(snap, &m); err != nil {
		t.Fatalf("snapshot is not JSON: %v", err)
	}
	pre, _ := m["pre"].(map[string]any)
	if pre["oneLine"] != "first" {
		t.Fatalf("prefix resolved to the wrong revision: %v", pre["oneLine"])
	}

	if _, err := s.RevisionSnapshot(ctx, "zzzzzzzz"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("bogus id: %v, want not found", err)
	}
	if _, err := s.RevisionSnapshot(ctx, "  "); err == nil {
		t.Fatalf("blank id accepted")
	}
}

func TestRevisionSnapshotAmbiguousPrefix(t *testing.T) {
	s, _ := testStore(t, "hist-ambig")
	ctx := context.Background()

	db, err := s.openHistory(ctx)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer db.Close()
	for _, id := range []string{"aaa-1111", "aaa-2222"} {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO revisions(revision_id, saved_at, saved_at_unixms, reason, schema_version, snapshot_json)
			 VALUES(?, ?, ?, ?, ?, ?)`,
			id, "2026-08-21T10:00:00Z", 1, "save", state.SchemaVersion, "{}"); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	if _, err := s.RevisionSnapshot(ctx, "aaa"); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Fatalf("shared prefix: %v, want ambiguous", err)
	}
	if _, err := s.RevisionSnapshot(ctx, "aaa-1111"); err != nil {
		t.Fatalf("exact id still works: %v", err)
	}
}

func TestRestoreRevision(t *testing.T) {
	s, _ := testStore(t, "hist-restore")
	ctx := context.Background()
	saveTimes(t, s, "first", "second")

	revs, err := s.Revisions(ctx, 0)
	if err != nil {
		t.Fatalf("revisions: %v", err)
	}
	oldID := revs[1].ID

	restored, err := s.RestoreRevision(ctx, oldID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Pre.OneLine != "first" {
		t.Fatalf("restored oneLine = %q, want first", restored.Pre.OneLine)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Pre.OneLine != "first" {
		t.Fatalf("restore did not persist: oneLine = %q", loaded.Pre.OneLine)
	}

	revs, err = s.Revisions(ctx, 0)
	if err != nil {
		t.Fatalf("revisions after restore: %v", err)
	}
	if len(revs) != 3 {
		t.Fatalf("restore did not append a revision: %d", len(revs))
	}
	if want := "restore " + shortID(oldID); revs[0].Reason != want {
		t.Fatalf("revs[0].Reason = %q, want %q", revs[0].Reason, want)
	}
}

func TestHistoryLimitPrunes(t *testing.T) {
	s, _ := testStore(t, "hist-prune")
	if err := SaveConfig(&GlobalConfig{HistoryLimit: 2}); err != nil {
		t.Fatalf("save config: %v", err)
	}
	saveTimes(t, s, "one", "two", "three", "four")

	revs, err := s.Revisions(context.Background(), 0)
	if err != nil {
		t.Fatalf("revisions: %v", err)
	}
	if len(revs) != 2 {
		t.Fatalf("got %d revisions, want 2 after pruning", len(revs))
	}
	if revs[0].Reason != "edit four" || revs[1].Reason != "edit three" {
		t.Fatalf("pruning kept the wrong revisions: %+v", revs)
	}
}

func TestWorksheetIDStable(t *testing.T) {
	s, _ := testStore(t, "hist-id")
	ctx := context.Background()

	id1, err := s.WorksheetID(ctx)
	if err != nil {
		t.Fatalf("worksheet id: %v", err)
	}
	if id1 == "" {
		t.Fatalf("empty worksheet id")
	}
	id2, err := s.WorksheetID(ctx)
	if err != nil {
		t.Fatalf("worksheet id again: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("worksheet id changed between calls: %q vs %q", id1, id2)
	}
}
