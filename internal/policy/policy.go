// Package policy contains the pure consent decision rules. It has no I/O:
// given a record, a category and a point in time it produces an ALLOW/DENY
// decision with a stable reason code, so it is trivially testable without any
// store behind it.
package policy

import (
	"time"

	"custodia/internal/consent/models"
)

// Reason encodes why a decision came out the way it did. Denial reasons are
// expected policy outcomes, not errors; they never travel as Go errors.
type Reason string

const (
	ReasonNoRecord       Reason = "no_record"
	ReasonGlobalDenied   Reason = "global_denied"
	ReasonCategoryDenied Reason = "category_denied"
	ReasonExpired        Reason = "expired"
	ReasonValid          Reason = "valid"
)

// Decision is the outcome of evaluating a record against a category and time.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Evaluate applies the ordered rule chain, short-circuiting on the first
// failing rule:
//
//  1. no record            -> DENY no_record
//  2. global switch off    -> DENY global_denied
//  3. explicit category no -> DENY category_denied
//  4. validity window over -> DENY expired
//  5. otherwise            -> ALLOW valid
//
// Rule order matters: a record with the global switch off reports
// global_denied even when it is also expired, and an explicit category denial
// wins over expiry. An absent category flag inherits the global switch.
func Evaluate(rec *models.Record, category models.Category, now time.Time) Decision {
	if rec == nil {
		return Decision{Reason: ReasonNoRecord}
	}
	if !rec.GlobalAllowed {
		return Decision{Reason: ReasonGlobalDenied}
	}
	if allowed, ok := rec.CategoryFlags[category]; ok && !allowed {
		return Decision{Reason: ReasonCategoryDenied}
	}
	if rec.IsExpired(now) {
		return Decision{Reason: ReasonExpired}
	}
	return Decision{Allowed: true, Reason: ReasonValid}
}
