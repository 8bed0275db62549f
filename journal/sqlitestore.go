package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

// SQLiteStoreConfig configures the SQLite journal store.
type SQLiteStoreConfig struct {
	// DSN is the database connection string.
	DSN string

	// RetentionAge deletes entries older than this duration (0 = no age pruning).
	RetentionAge time.Duration

	// RetentionCount keeps at most this many entries per contribution
	// (0 = no count pruning).
	RetentionCount int

	// PruneInterval is how often to run pruning (default 1 hour).
	// Ignored when PruneSchedule is set.
	PruneInterval time.Duration

	// PruneSchedule is an optional UTC five-field cron expression that
	// replaces the fixed interval.
	PruneSchedule string
}

// SQLiteStore persists journal entries to a SQLite database. It uses
// WAL mode for concurrent read access and runs a background pruner when
// any retention is configured.
type SQLiteStore struct {
	db    *sql.DB
	cfg   SQLiteStoreConfig
	sched *pruneSchedule
	stop  chan struct{}
	done  chan struct{}
}

// NewSQLiteStore opens (or creates) a SQLite journal store.
func NewSQLiteStore(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.PruneInterval == 0 {
		cfg.PruneInterval = time.Hour
	}
	var sched *pruneSchedule
	if cfg.PruneSchedule != "" {
		var err error
		sched, err = parsePruneSchedule(cfg.PruneSchedule)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("journal: open: %w", err)
	}

	// Enable WAL mode for concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: set WAL mode: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: create schema: %w", err)
	}

	s := &SQLiteStore{
		db:    db,
		cfg:   cfg,
		sched: sched,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}

	if cfg.RetentionAge > 0 || cfg.RetentionCount > 0 {
		go s.pruneLoop()
	} else {
		close(s.done)
	}

	return s, nil
}

// Append stores an entry in the database.
func (s *SQLiteStore) Append(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO journal (id, kind, invocation_id, plugin, contribution_id, contribution_kind, reference, time, elapsed, error, trace_id, span_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Kind,
		entry.InvocationID,
		entry.Plugin,
		entry.ContributionID,
		entry.ContributionKind,
		entry.Reference,
		entry.Time.UnixNano(),
		int64(entry.Elapsed),
		entry.Err,
		entry.TraceID,
		entry.SpanID,
	)
	if err != nil {
		return fmt.Errorf("journal: append: %w", err)
	}
	return nil
}

// ListRecent returns the most recent entries, newest first.
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, kind, invocation_id, plugin, contribution_id, contribution_kind, reference, time, elapsed, error, trace_id, span_id
	           FROM journal ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: list recent: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListByContribution returns a contribution's entries, newest first.
func (s *SQLiteStore) ListByContribution(ctx context.Context, contributionID string, limit int) ([]Entry, error) {
	query := `SELECT id, kind, invocation_id, plugin, contribution_id, contribution_kind, reference, time, elapsed, error, trace_id, span_id
	           FROM journal WHERE contribution_id = ? ORDER BY seq DESC`
	args := []any{contributionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: list by contribution: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Close stops the background pruner and closes the database connection.
func (s *SQLiteStore) Close() error {
	select {
	case <-s.stop:
		// Already closed.
	default:
		close(s.stop)
	}
	<-s.done
	return s.db.Close()
}

// Prune runs a single pruning pass. Exported for testing.
func (s *SQLiteStore) Prune(ctx context.Context) error {
	if s.cfg.RetentionAge > 0 {
		cutoff := time.Now().Add(-s.cfg.RetentionAge).UnixNano()
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM journal WHERE time < ?`, cutoff,
		); err != nil {
			return fmt.Errorf("journal: prune by age: %w", err)
		}
	}

	if s.cfg.RetentionCount > 0 {
		// For each contribution, keep only the most recent RetentionCount entries.
		rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT contribution_id FROM journal`)
		if err != nil {
			return fmt.Errorf("journal: prune list contributions: %w", err)
		}
		var ids []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				_ = rows.Close()
				return fmt.Errorf("journal: prune scan contribution id: %w", err)
			}
			ids = append(ids, id)
		}
		_ = rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("journal: prune rows err: %w", err)
		}

		for _, id := range ids {
			if _, err := s.db.ExecContext(ctx,
				`DELETE FROM journal WHERE contribution_id = ? AND seq NOT IN (
					SELECT seq FROM journal WHERE contribution_id = ? ORDER BY seq DESC LIMIT ?
				)`, id, id, s.cfg.RetentionCount,
			); err != nil {
				return fmt.Errorf("journal: prune by count for %s: %w", id, err)
			}
		}
	}

	return nil
}

func (s *SQLiteStore) pruneLoop() {
	defer close(s.done)

	for {
		wait := s.cfg.PruneInterval
		if s.sched != nil {
			wait = time.Until(s.sched.next(time.Now()))
		}
		if wait <= 0 {
			wait = time.Minute
		}

		timer := time.NewTimer(wait)
		select {
		case <-s.stop:
			timer.Stop()
			return
		case <-timer.C:
			_ = s.Prune(context.Background())
		}
	}
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var (
			e           Entry
			timeNano    int64
			elapsedNano int64
		)
		err := rows.Scan(
			&e.ID,
			&e.Kind,
			&e.InvocationID,
			&e.Plugin,
			&e.ContributionID,
			&e.ContributionKind,
			&e.Reference,
			&timeNano,
			&elapsedNano,
			&e.Err,
			&e.TraceID,
			&e.SpanID,
		)
		if err != nil {
			return nil, fmt.Errorf("journal: scan entry: %w", err)
		}

		e.Elapsed = time.Duration(elapsedNano)
		e.Time = time.Unix(0, timeNano).UTC()

		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Compile-time interface check.
var _ Store = (*SQLiteStore)(nil)
