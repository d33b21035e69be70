// Package audit persists the decision trail in SQLite so operators can see
// what was approved, rejected or failed, and with which external id.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one audited transition attempt.
type Entry struct {
	Ref        string    `json:"ref"`
	ItemID     string    `json:"itemId"`
	Kind       string    `json:"kind"`
	Action     string    `json:"action"`
	FromStage  string    `json:"fromStage"`
	ToStage    string    `json:"toStage,omitempty"`
	Outcome    string    `json:"outcome"`
	ExternalID string    `json:"externalId,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	DecidedAt  time.Time `json:"decidedAt"`
}

// Outcome values
const (
	OutcomeApplied = "applied"
	OutcomeFailed  = "failed"
)

// timeLayout is fixed width so that decided_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Query narrows List results.
type Query struct {
	ItemID string
	Limit  int
}

// Store is the SQLite backed audit log.
type Store struct {
	db *sql.DB
}

// New opens (creating when needed) the audit database at dbPath.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate audit db: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS decisions (
		ref TEXT PRIMARY KEY,
		item_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		action TEXT NOT NULL,
		from_stage TEXT NOT NULL,
		to_stage TEXT,
		outcome TEXT NOT NULL,
		external_id TEXT,
		reason TEXT,
		decided_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_decisions_item_id ON decisions(item_id);
	CREATE INDEX IF NOT EXISTS idx_decisions_decided_at ON decisions(decided_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record inserts an entry; recording the same ref twice is a no-op.
func (s *Store) Record(ctx context.Context, entry *Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO decisions (ref, item_id, kind, action, from_stage, to_stage, outcome, external_id, reason, decided_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Ref, entry.ItemID, entry.Kind, entry.Action, entry.FromStage, entry.ToStage, entry.Outcome, entry.ExternalID, entry.Reason,
		entry.DecidedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, query Query) ([]*Entry, error) {
	statement := `SELECT ref, item_id, kind, action, from_stage, to_stage, outcome, external_id, reason, decided_at FROM decisions`
	var args []interface{}
	if query.ItemID != "" {
		statement += ` WHERE item_id = ?`
		args = append(args, query.ItemID)
	}
	statement += ` ORDER BY decided_at DESC, rowid DESC`
	if query.Limit > 0 {
		statement += ` LIMIT ?`
		args = append(args, query.Limit)
	}
	rows, err := s.db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry := &Entry{}
		var toStage, externalID, reason sql.NullString
		var decidedAt string
		if err := rows.Scan(&entry.Ref, &entry.ItemID, &entry.Kind, &entry.Action, &entry.FromStage, &toStage, &entry.Outcome, &externalID, &reason, &decidedAt); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		entry.ToStage = toStage.String
		entry.ExternalID = externalID.String
		entry.Reason = reason.String
		if entry.DecidedAt, err = time.Parse(timeLayout, decidedAt); err != nil {
			return nil, fmt.Errorf("parse decided_at %q: %w", decidedAt, err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
