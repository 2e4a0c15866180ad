package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out. Entries are append-only:
// nothing in this package mutates or deletes a recorded event.
type Event struct {
	Timestamp time.Time
	UserID    string
	Action    string
	Outcome   bool
	Source    string
}

// Source tags identify which service produced an entry.
const (
	SourceConsentService = "consent_service"
	SourceScanService    = "scan_service"
)
