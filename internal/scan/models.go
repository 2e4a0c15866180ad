package scan

import (
	"time"

	"custodia/internal/classifier"
	"custodia/internal/consent/models"
	"custodia/internal/policy"
)

// CategoryDecision pairs a discovered category with its consent decision.
type CategoryDecision struct {
	Category models.Category `json:"category"`
	Allowed  bool            `json:"allowed"`
	Reason   policy.Reason   `json:"reason"`
}

// Report captures one scan of one source: the raw findings and the consent
// decisions they triggered. Reports are ephemeral scan output, not durable
// policy state; retention is a collaborator concern.
type Report struct {
	ID        string               `json:"id"`
	SubjectID string               `json:"subject_id"`
	Source    string               `json:"source"`
	ScannedAt time.Time            `json:"scanned_at"`
	Findings  []classifier.Finding `json:"findings"`
	Decisions []CategoryDecision   `json:"decisions"`
	// Violations counts denied categories that triggered containment.
	Violations int `json:"violations"`
}
