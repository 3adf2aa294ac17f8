// File: internal/journal/journal.go
// Brief: SQLite audit journal for step invocations.

// Package journal records every step invocation and the pre-migration
// object inventory in a local SQLite file. The journal is an audit trail
// only: protocol state is always reconstructed from live control-plane
// queries, never read back from here.
package journal

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

// DefaultPath is the journal location relative to the working directory.
const DefaultPath = ".bucketmv/journal.sqlite"

type Journal struct {
	db   *sql.DB
	path string
}

// Entry is one recorded step invocation.
type Entry struct {
	ID          int64
	Step        string
	Resource    string
	SourceStack string
	TargetStack string
	// Outcome is "ok", "noop", or the failure kind.
	Outcome     string
	Owner       string
	ObjectCount int
	Note        string
	CreatedAt   time.Time
}

// Open creates (or opens) the journal at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Journal, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping journal: %w", err)
	}
	j := &Journal{db: db, path: path}
	if err := j.initSchema(ctx); err != nil {
		_ = j.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) initSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS steps (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	step TEXT NOT NULL,
	resource TEXT NOT NULL,
	source_stack TEXT NOT NULL,
	target_stack TEXT NOT NULL,
	outcome TEXT NOT NULL,
	owner TEXT NOT NULL DEFAULT '',
	object_count INTEGER NOT NULL DEFAULT -1,
	note TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS inventories (
	resource TEXT NOT NULL,
	keys TEXT NOT NULL,
	captured_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_inventories_resource ON inventories(resource, captured_at);
`
	if _, err := j.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init journal schema: %w", err)
	}
	return nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Path returns the journal file location.
func (j *Journal) Path() string { return j.path }

// RecordStep appends one step invocation.
func (j *Journal) RecordStep(ctx context.Context, e Entry) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO steps (step, resource, source_stack, target_stack, outcome, owner, object_count, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Step, e.Resource, e.SourceStack, e.TargetStack, e.Outcome, e.Owner, e.ObjectCount, e.Note,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record step: %w", err)
	}
	return nil
}

// ListSteps returns the most recent entries, newest first.
func (j *Journal) ListSteps(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, step, resource, source_stack, target_stack, outcome, owner, object_count, note, created_at
		 FROM steps ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.ID, &e.Step, &e.Resource, &e.SourceStack, &e.TargetStack,
			&e.Outcome, &e.Owner, &e.ObjectCount, &e.Note, &created); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, created); parseErr == nil {
			e.CreatedAt = ts
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SaveInventory stores the resource's object keys as the latest captured
// inventory.
func (j *Journal) SaveInventory(ctx context.Context, resource string, keys []string) error {
	blob, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO inventories (resource, keys, captured_at) VALUES (?, ?, ?)`,
		resource, string(blob), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save inventory: %w", err)
	}
	return nil
}

// LatestInventory returns the most recently captured inventory for the
// resource. ok is false when none was ever captured.
func (j *Journal) LatestInventory(ctx context.Context, resource string) (keys []string, capturedAt time.Time, ok bool, err error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT keys, captured_at FROM inventories WHERE resource = ? ORDER BY captured_at DESC LIMIT 1`,
		resource)
	var blob, created string
	if scanErr := row.Scan(&blob, &created); scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return nil, time.Time{}, false, nil
		}
		return nil, time.Time{}, false, fmt.Errorf("load inventory: %w", scanErr)
	}
	if err := json.Unmarshal([]byte(blob), &keys); err != nil {
		return nil, time.Time{}, false, fmt.Errorf("decode inventory: %w", err)
	}
	if ts, parseErr := time.Parse(time.RFC3339Nano, created); parseErr == nil {
		capturedAt = ts
	}
	return keys, capturedAt, true, nil
}
