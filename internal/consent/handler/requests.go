package handler

import (
	"time"

	"custodia/internal/consent/models"
	dErrors "custodia/pkg/domain-errors"
)

// RegisterRequest is the wire payload for POST /consent/register.
type RegisterRequest struct {
	UserID        string          `json:"user_id"`
	GlobalAllowed bool            `json:"global_allowed"`
	Categories    map[string]bool `json:"categories"`
	// Validity is an optional Go duration string ("720h"); empty means the
	// configured default.
	Validity string `json:"validity,omitempty"`
}

// Validate checks the payload and converts it into the domain registration.
func (r *RegisterRequest) Validate() (string, models.Registration, error) {
	if r.UserID == "" {
		return "", models.Registration{}, dErrors.New(dErrors.CodeValidation, "user_id is required")
	}

	var validity time.Duration
	if r.Validity != "" {
		parsed, err := time.ParseDuration(r.Validity)
		if err != nil || parsed <= 0 {
			return "", models.Registration{}, dErrors.New(dErrors.CodeValidation, "validity must be a positive duration")
		}
		validity = parsed
	}

	categories := make(map[models.Category]bool, len(r.Categories))
	for name, allowed := range r.Categories {
		if name == "" {
			return "", models.Registration{}, dErrors.New(dErrors.CodeValidation, "category names must not be empty")
		}
		categories[models.Category(name)] = allowed
	}

	return r.UserID, models.Registration{
		GlobalAllowed: r.GlobalAllowed,
		Categories:    categories,
		Validity:      validity,
	}, nil
}
