package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"custodia/internal/consent/models"
)

// PostgresStore persists consent records in PostgreSQL. The driver is
// registered by the binary that opens the *sql.DB. Category flags live in a
// JSONB column and the replace is a single upsert, atomic per user.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed consent store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (*models.Record, error) {
	const query = `
		SELECT user_id, global_allowed, category_flags, created_at, expires_at
		FROM consents
		WHERE user_id = $1
	`
	var (
		record   models.Record
		rawFlags []byte
	)
	err := s.db.QueryRowContext(ctx, query, userID).
		Scan(&record.UserID, &record.GlobalAllowed, &rawFlags, &record.CreatedAt, &record.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get consent: %w", err)
	}
	if err := json.Unmarshal(rawFlags, &record.CategoryFlags); err != nil {
		return nil, fmt.Errorf("decode category flags: %w", err)
	}
	if record.CategoryFlags == nil {
		record.CategoryFlags = map[models.Category]bool{}
	}
	return &record, nil
}

func (s *PostgresStore) Replace(ctx context.Context, record *models.Record) error {
	flags, err := json.Marshal(record.CategoryFlags)
	if err != nil {
		return fmt.Errorf("encode category flags: %w", err)
	}
	const query = `
		INSERT INTO consents (user_id, global_allowed, category_flags, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			global_allowed = EXCLUDED.global_allowed,
			category_flags = EXCLUDED.category_flags,
			created_at     = EXCLUDED.created_at,
			expires_at     = EXCLUDED.expires_at
	`
	if _, err := s.db.ExecContext(ctx, query,
		record.UserID, record.GlobalAllowed, flags, record.CreatedAt, record.ExpiresAt,
	); err != nil {
		return fmt.Errorf("replace consent: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM consents WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete consent: %w", err)
	}
	return nil
}
