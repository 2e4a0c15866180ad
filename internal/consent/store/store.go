package store

import (
	"context"

	"custodia/internal/consent/models"
	dErrors "custodia/pkg/domain-errors"
)

// ErrNotFound keeps storage-specific 404s consistent across implementations.
// "No record" is a policy fact, not an infrastructure failure: callers must be
// able to tell the two apart, so every implementation returns exactly this
// sentinel for a missing record and wrapped errors for everything else.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "consent record not found")

// Store is the persistence boundary for consent records.
//
// Error Contract:
//   - Get returns ErrNotFound when no record exists for the user
//   - Replace is an atomic per-user upsert: concurrent callers never observe
//     a record mixing fields from two payloads
//   - infrastructure failures come back as wrapped errors, never ErrNotFound
type Store interface {
	Get(ctx context.Context, userID string) (*models.Record, error)
	Replace(ctx context.Context, record *models.Record) error
	// DeleteByUser exists for erasure collaborators; the core flows never
	// call it.
	DeleteByUser(ctx context.Context, userID string) error
}
