// Package history keeps the per-workspace SQLite sidecar: the recently
// opened record list and an append-only journal of CLI operations. It never
// touches record bundles; losing the database costs convenience, not data.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const defaultDBName = "inspectline.db"

// Store wraps the workspace database.
type Store struct {
	DB  *sql.DB
	Now func() time.Time
}

// Recent is one row of the recently opened list.
type Recent struct {
	Path     string
	Title    string
	OpenedAt time.Time
}

// JournalEntry is one logged CLI operation.
type JournalEntry struct {
	TS     time.Time
	Op     string
	Path   string
	Detail map[string]any
}

func dbPath(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, ".inspectline", defaultDBName)
}

// Path returns the db path for the workspace.
func Path(workspace string) string {
	return dbPath(workspace)
}

// EnsureWorkspace creates the workspace sidecar directory if missing.
func EnsureWorkspace(workspace string) (string, error) {
	if workspace == "" {
		workspace = "."
	}
	path := filepath.Join(workspace, ".inspectline")
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// Open opens the workspace database and applies pending migrations.
func Open(workspace string) (*Store, error) {
	if _, err := EnsureWorkspace(workspace); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=foreign_keys(1)", dbPath(workspace))
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &Store{DB: conn, Now: time.Now}, nil
}

func (s *Store) Close() error { return s.DB.Close() }

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// TouchRecent records path as the most recently opened record, updating the
// timestamp and display title on repeat opens.
func (s *Store) TouchRecent(ctx context.Context, path, title string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	ts := s.now().UTC().Format(time.RFC3339)
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO recents(path, title, opened_at) VALUES (?,?,?)
		ON CONFLICT(path) DO UPDATE SET title=excluded.title, opened_at=excluded.opened_at`,
		abs, title, ts)
	return err
}

// ListRecents returns up to limit entries, most recently opened first.
func (s *Store) ListRecents(ctx context.Context, limit int) ([]Recent, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT path, title, opened_at FROM recents ORDER BY opened_at DESC, path LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Recent
	for rows.Next() {
		var r Recent
		var ts string
		if err := rows.Scan(&r.Path, &r.Title, &ts); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			r.OpenedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ForgetRecent drops one entry, for records the user deleted on disk.
func (s *Store) ForgetRecent(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	_, err = s.DB.ExecContext(ctx, `DELETE FROM recents WHERE path = ?`, abs)
	return err
}

// AppendJournal logs one CLI operation. Detail may be nil.
func (s *Store) AppendJournal(ctx context.Context, op, path string, detail map[string]any) error {
	if detail == nil {
		detail = map[string]any{}
	}
	data, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("marshal journal detail: %w", err)
	}
	ts := s.now().UTC().Format(time.RFC3339)
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO journal(ts, op, path, detail_json) VALUES (?,?,?,?)`,
		ts, op, nullable(path), string(data))
	return err
}

// TailJournal returns the latest entries, newest first.
func (s *Store) TailJournal(ctx context.Context, limit int) ([]JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT ts, op, COALESCE(path, ''), detail_json FROM journal ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []JournalEntry
	for rows.Next() {
		var e JournalEntry
		var ts, detail string
		if err := rows.Scan(&ts, &e.Op, &e.Path, &detail); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			e.TS = t
		}
		if err := json.Unmarshal([]byte(detail), &e.Detail); err != nil {
			e.Detail = map[string]any{}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
