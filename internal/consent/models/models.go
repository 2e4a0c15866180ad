package models

import (
	"time"

	dErrors "custodia/pkg/domain-errors"
)

// Category labels a class of personal data (e.g. email, credit card). The
// vocabulary is open: deployments define their own categories via
// configuration, so Category carries no closed enum. The single reserved value
// is CategoryUnknown, the bucket for classifier types with no mapping.
type Category string

// CategoryUnknown collects classifier findings whose vendor type has no entry
// in the mapping table. They are kept visible instead of being dropped so that
// policy gaps are observable.
const CategoryUnknown Category = "unknown_category"

// Record is the durable per-user statement of processing permissions.
//
// # Replace Semantics
//
// There is exactly one Record per user at any time. Re-registration replaces
// the record wholesale: category flags not resubmitted are gone, they do NOT
// merge with the previous record. History lives in the audit trail, not here.
type Record struct {
	UserID string
	// GlobalAllowed is the master switch. When false every category is
	// denied regardless of its own flag.
	GlobalAllowed bool
	// CategoryFlags holds explicit per-category grants and denials. An
	// absent key inherits GlobalAllowed.
	CategoryFlags map[Category]bool
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// NewRecord creates a Record with domain invariant checks.
func NewRecord(userID string, globalAllowed bool, flags map[Category]bool, createdAt, expiresAt time.Time) (*Record, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user ID required")
	}
	if createdAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "creation time required")
	}
	if expiresAt.Before(createdAt) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "expiry must not precede creation time")
	}
	copied := make(map[Category]bool, len(flags))
	for category, allowed := range flags {
		copied[category] = allowed
	}
	return &Record{
		UserID:        userID,
		GlobalAllowed: globalAllowed,
		CategoryFlags: copied,
		CreatedAt:     createdAt,
		ExpiresAt:     expiresAt,
	}, nil
}

// IsExpired reports whether the record's validity window has closed. The
// window is half-open: a record expiring exactly at now is expired.
func (r Record) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Clone returns a deep copy so stores can hand out records without sharing
// the flags map.
func (r Record) Clone() *Record {
	flags := make(map[Category]bool, len(r.CategoryFlags))
	for category, allowed := range r.CategoryFlags {
		flags[category] = allowed
	}
	clone := r
	clone.CategoryFlags = flags
	return &clone
}

// Registration is the domain-level input for registering consent.
type Registration struct {
	GlobalAllowed bool
	Categories    map[Category]bool
	// Validity overrides the configured default when positive.
	Validity time.Duration
}
