package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLiteStore persists audit events in SQLite (modernc.org/sqlite driver).
// The table is append-only; no update or delete statement exists here.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite constructs a SQLite-backed audit store.
func NewSQLite(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Init creates the audit table if it does not exist.
func (s *SQLiteStore) Init(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS audit_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			action     TEXT NOT NULL,
			outcome    BOOLEAN NOT NULL,
			source     TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_audit_events_user ON audit_events (user_id, created_at);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init audit schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, event Event) error {
	const query = `
		INSERT INTO audit_events (user_id, created_at, action, outcome, source)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query,
		event.UserID, event.Timestamp, event.Action, event.Outcome, event.Source,
	); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]Event, error) {
	const query = `
		SELECT user_id, created_at, action, outcome, source
		FROM audit_events
		WHERE user_id = ?
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.UserID, &e.Timestamp, &e.Action, &e.Outcome, &e.Source); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
