package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"custodia/internal/consent/models"
)

// SQLiteStore persists consent records in SQLite (modernc.org/sqlite driver),
// the durable backend for single-node deployments. Category flags are stored
// as a JSON object column; the replace is a single upsert statement so it is
// atomic per user.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite constructs a SQLite-backed consent store.
func NewSQLite(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Init creates the consents table if it does not exist.
func (s *SQLiteStore) Init(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS consents (
			user_id        TEXT PRIMARY KEY,
			global_allowed BOOLEAN NOT NULL,
			category_flags TEXT NOT NULL,
			created_at     TIMESTAMP NOT NULL,
			expires_at     TIMESTAMP NOT NULL
		);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init consent schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, userID string) (*models.Record, error) {
	const query = `
		SELECT user_id, global_allowed, category_flags, created_at, expires_at
		FROM consents
		WHERE user_id = ?
	`
	record, err := scanRecord(s.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get consent: %w", err)
	}
	return record, nil
}

func (s *SQLiteStore) Replace(ctx context.Context, record *models.Record) error {
	flags, err := json.Marshal(record.CategoryFlags)
	if err != nil {
		return fmt.Errorf("encode category flags: %w", err)
	}
	const query = `
		INSERT INTO consents (user_id, global_allowed, category_flags, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			global_allowed = excluded.global_allowed,
			category_flags = excluded.category_flags,
			created_at     = excluded.created_at,
			expires_at     = excluded.expires_at
	`
	if _, err := s.db.ExecContext(ctx, query,
		record.UserID, record.GlobalAllowed, string(flags), record.CreatedAt, record.ExpiresAt,
	); err != nil {
		return fmt.Errorf("replace consent: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM consents WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete consent: %w", err)
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var (
		record   models.Record
		rawFlags string
	)
	if err := row.Scan(&record.UserID, &record.GlobalAllowed, &rawFlags, &record.CreatedAt, &record.ExpiresAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(rawFlags), &record.CategoryFlags); err != nil {
		return nil, fmt.Errorf("decode category flags: %w", err)
	}
	if record.CategoryFlags == nil {
		record.CategoryFlags = map[models.Category]bool{}
	}
	return &record, nil
}
