// Package history implements the rolling announcement log
// (SPEC_FULL.md §4.11): every applied announcement is recorded so a
// "repeat last utterance" or "flat review" command has something to
// read back, capped at a configurable row count with oldest-first
// trimming run on insert.
package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/openscreenreader/atspicache/internal/announce"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Record is one logged announcement.
type Record struct {
	ID        int64
	Priority  announce.Priority
	Text      string
	Source    string
	CreatedAt time.Time
}

// Log is a capped, SQLite-backed announcement history.
type Log struct {
	db  *sql.DB
	cap int
}

// Open opens (creating if needed) a history log at path, applying
// pending migrations. cap is the maximum row count retained; a
// non-positive cap disables trimming.
func Open(ctx context.Context, path string, cap int) (*Log, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: ping sqlite: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: migrate: %w", err)
	}
	return &Log{db: db, cap: cap}, nil
}

// Close closes the underlying database.
func (l *Log) Close() error { return l.db.Close() }

// Append records a as having been announced at when, then trims the
// oldest rows beyond l.cap.
func (l *Log) Append(ctx context.Context, a announce.Announcement, when time.Time) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO announcements (priority, text, source, created_at) VALUES (?, ?, ?, ?)`,
		int(a.Priority), a.Text, a.Source.String(), when.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("history: insert: %w", err)
	}
	return l.trim(ctx)
}

func (l *Log) trim(ctx context.Context) error {
	if l.cap <= 0 {
		return nil
	}
	var count int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM announcements`).Scan(&count); err != nil {
		return fmt.Errorf("history: count: %w", err)
	}
	overflow := count - l.cap
	if overflow <= 0 {
		return nil
	}
	res, err := l.db.ExecContext(ctx,
		`DELETE FROM announcements WHERE id IN (SELECT id FROM announcements ORDER BY id ASC LIMIT ?)`,
		overflow,
	)
	if err != nil {
		return fmt.Errorf("history: trim: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		slog.Debug("history: trimmed oldest rows", "count", n)
	}
	return nil
}

// Last returns the most recently appended record, for "repeat last
// utterance".
func (l *Log) Last(ctx context.Context) (Record, bool, error) {
	recs, err := l.recent(ctx, 1)
	if err != nil {
		return Record{}, false, err
	}
	if len(recs) == 0 {
		return Record{}, false, nil
	}
	return recs[0], true, nil
}

// Recent returns the n most recently appended records, oldest first,
// for "flat review".
func (l *Log) Recent(ctx context.Context, n int) ([]Record, error) {
	recs, err := l.recent(ctx, n)
	if err != nil {
		return nil, err
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	return recs, nil
}

func (l *Log) recent(ctx context.Context, n int) ([]Record, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, priority, text, source, created_at FROM announcements ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var priority int
		var createdAt string
		if err := rows.Scan(&r.ID, &priority, &r.Text, &r.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		r.Priority = announce.Priority(priority)
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("history: parse timestamp: %w", err)
		}
		r.CreatedAt = t
		out = append(out, r)
	}
	return out, rows.Err()
}

func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return err
	}

	var current int
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current); err != nil {
		return err
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		var ver int
		if _, err := fmt.Sscanf(e.Name(), "%03d_", &ver); err != nil || ver <= current {
			continue
		}
		data, err := migrationsFS.ReadFile("migrations/" + e.Name())
		if err != nil {
			return err
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(data)); err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`, ver); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
