package handler

import (
	"time"

	"custodia/internal/audit"
	"custodia/internal/consent/models"
	"custodia/internal/policy"
)

// RegisterResponse reports the persisted record back to the caller.
type RegisterResponse struct {
	UserID        string          `json:"user_id"`
	GlobalAllowed bool            `json:"global_allowed"`
	Categories    map[string]bool `json:"categories"`
	CreatedAt     time.Time       `json:"created_at"`
	ExpiresAt     time.Time       `json:"expires_at"`
}

func formatRegisterResponse(record *models.Record) *RegisterResponse {
	categories := make(map[string]bool, len(record.CategoryFlags))
	for category, allowed := range record.CategoryFlags {
		categories[string(category)] = allowed
	}
	return &RegisterResponse{
		UserID:        record.UserID,
		GlobalAllowed: record.GlobalAllowed,
		Categories:    categories,
		CreatedAt:     record.CreatedAt,
		ExpiresAt:     record.ExpiresAt,
	}
}

// EvaluateResponse carries a decision with its reason code.
type EvaluateResponse struct {
	UserID   string `json:"user_id"`
	Category string `json:"category"`
	Allowed  bool   `json:"allowed"`
	Reason   string `json:"reason"`
}

func formatEvaluateResponse(userID string, category models.Category, decision policy.Decision) *EvaluateResponse {
	return &EvaluateResponse{
		UserID:   userID,
		Category: string(category),
		Allowed:  decision.Allowed,
		Reason:   string(decision.Reason),
	}
}

// AuditEntry is the wire form of one audit event.
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Outcome   bool      `json:"outcome"`
	Source    string    `json:"source"`
}

// AuditResponse is the audit trail for one user.
type AuditResponse struct {
	UserID  string       `json:"user_id"`
	Entries []AuditEntry `json:"entries"`
}

func formatAuditResponse(userID string, events []audit.Event) *AuditResponse {
	entries := make([]AuditEntry, 0, len(events))
	for _, event := range events {
		entries = append(entries, AuditEntry{
			Timestamp: event.Timestamp,
			Action:    event.Action,
			Outcome:   event.Outcome,
			Source:    event.Source,
		})
	}
	return &AuditResponse{UserID: userID, Entries: entries}
}
