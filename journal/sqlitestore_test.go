package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLiteStore(t *testing.T, cfg SQLiteStoreConfig) *SQLiteStore {
	t.Helper()
	if cfg.DSN == "" {
		cfg.DSN = filepath.Join(t.TempDir(), "journal.db")
	}
	store, err := NewSQLiteStore(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func testEntry(id, contribution string, at time.Time) Entry {
	return Entry{
		ID:               id,
		Kind:             "invocation_finished",
		InvocationID:     "inv-" + id,
		Plugin:           "demo",
		ContributionID:   contribution,
		ContributionKind: "command",
		Reference:        "demo.mod:run",
		Time:             at,
		Elapsed:          5 * time.Millisecond,
	}
}

func TestSQLiteStore_AppendAndListRecent(t *testing.T) {
	store := newTestSQLiteStore(t, SQLiteStoreConfig{})
	ctx := context.Background()

	base := time.Now().UTC()
	for i, id := range []string{"a", "b", "c"} {
		if err := store.Append(ctx, testEntry(id, "demo.run", base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	entries, err := store.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].ID != "c" || entries[2].ID != "a" {
		t.Errorf("entry order = %v, %v, %v", entries[0].ID, entries[1].ID, entries[2].ID)
	}

	e := entries[0]
	if e.Plugin != "demo" || e.ContributionKind != "command" || e.Reference != "demo.mod:run" {
		t.Errorf("round-tripped entry = %+v", e)
	}
	if e.Elapsed != 5*time.Millisecond {
		t.Errorf("elapsed = %v", e.Elapsed)
	}

	limited, err := store.ListRecent(ctx, 1)
	if err != nil {
		t.Fatalf("ListRecent(1) error = %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "c" {
		t.Errorf("limited = %v", limited)
	}
}

func TestSQLiteStore_OrdersFractionalSecondsCorrectly(t *testing.T) {
	store := newTestSQLiteStore(t, SQLiteStoreConfig{})
	ctx := context.Background()

	// A whole-second timestamp must sort before a chronologically later
	// fractional one; textual RFC3339 ordering gets this wrong.
	base := time.Date(2026, 8, 29, 12, 0, 1, 0, time.UTC)
	_ = store.Append(ctx, testEntry("whole", "demo.run", base))
	_ = store.Append(ctx, testEntry("fractional", "demo.run", base.Add(500*time.Millisecond)))

	entries, err := store.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ID != "fractional" || entries[1].ID != "whole" {
		t.Errorf("entry order = %v, %v, want fractional first", entries[0].ID, entries[1].ID)
	}
	if want := base.Add(500 * time.Millisecond); !entries[0].Time.Equal(want) {
		t.Errorf("time = %v, want %v", entries[0].Time, want)
	}

	byContribution, err := store.ListByContribution(ctx, "demo.run", 0)
	if err != nil {
		t.Fatalf("ListByContribution() error = %v", err)
	}
	if byContribution[0].ID != "fractional" {
		t.Errorf("by-contribution order starts with %v, want fractional", byContribution[0].ID)
	}
}

func TestSQLiteStore_ListByContribution(t *testing.T) {
	store := newTestSQLiteStore(t, SQLiteStoreConfig{})
	ctx := context.Background()

	base := time.Now().UTC()
	_ = store.Append(ctx, testEntry("1", "demo.a", base))
	_ = store.Append(ctx, testEntry("2", "demo.b", base.Add(time.Second)))
	_ = store.Append(ctx, testEntry("3", "demo.a", base.Add(2*time.Second)))

	entries, err := store.ListByContribution(ctx, "demo.a", 0)
	if err != nil {
		t.Fatalf("ListByContribution() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ID != "3" || entries[1].ID != "1" {
		t.Errorf("entries = %v, %v", entries[0].ID, entries[1].ID)
	}
}

func TestSQLiteStore_PruneByAge(t *testing.T) {
	store := newTestSQLiteStore(t, SQLiteStoreConfig{RetentionAge: time.Hour})
	ctx := context.Background()

	now := time.Now().UTC()
	_ = store.Append(ctx, testEntry("old", "demo.run", now.Add(-2*time.Hour)))
	_ = store.Append(ctx, testEntry("fresh", "demo.run", now))

	if err := store.Prune(ctx); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	entries, err := store.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "fresh" {
		t.Errorf("entries after prune = %v", entries)
	}
}

func TestSQLiteStore_PruneByCount(t *testing.T) {
	store := newTestSQLiteStore(t, SQLiteStoreConfig{RetentionCount: 2})
	ctx := context.Background()

	base := time.Now().UTC()
	for i, id := range []string{"1", "2", "3", "4"} {
		_ = store.Append(ctx, testEntry(id, "demo.a", base.Add(time.Duration(i)*time.Second)))
	}
	_ = store.Append(ctx, testEntry("other", "demo.b", base))

	if err := store.Prune(ctx); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	aEntries, err := store.ListByContribution(ctx, "demo.a", 0)
	if err != nil {
		t.Fatalf("ListByContribution() error = %v", err)
	}
	if len(aEntries) != 2 {
		t.Fatalf("got %d entries for demo.a, want 2", len(aEntries))
	}
	if aEntries[0].ID != "4" || aEntries[1].ID != "3" {
		t.Errorf("kept entries = %v, %v, want the newest two", aEntries[0].ID, aEntries[1].ID)
	}

	// Per-contribution retention must not touch other contributions.
	bEntries, err := store.ListByContribution(ctx, "demo.b", 0)
	if err != nil {
		t.Fatalf("ListByContribution(demo.b) error = %v", err)
	}
	if len(bEntries) != 1 {
		t.Errorf("got %d entries for demo.b, want 1", len(bEntries))
	}
}

func TestSQLiteStore_RejectsInvalidPruneSchedule(t *testing.T) {
	_, err := NewSQLiteStore(SQLiteStoreConfig{
		DSN:           filepath.Join(t.TempDir(), "journal.db"),
		RetentionAge:  time.Hour,
		PruneSchedule: "not a cron",
	})
	if err == nil {
		t.Fatal("expected error for invalid prune schedule")
	}
}

func TestSQLiteStore_CloseIsIdempotent(t *testing.T) {
	store, err := NewSQLiteStore(SQLiteStoreConfig{
		DSN:          filepath.Join(t.TempDir(), "journal.db"),
		RetentionAge: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	// Second close must not panic on the stop channel.
	_ = store.Close()
}
