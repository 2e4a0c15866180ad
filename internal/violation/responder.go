// Package violation triggers downstream containment when processing is denied
// for data that is already in flight. Callers invoke it only for in-flight
// denials; ordinary pre-checks never reach this package.
package violation

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"custodia/internal/consent/models"
)

// ProcessingController receives halt-processing requests keyed by user.
type ProcessingController interface {
	Halt(ctx context.Context, userID string) error
}

// RedactionService receives redact-category requests keyed by user and category.
type RedactionService interface {
	Redact(ctx context.Context, userID string, category models.Category) error
}

// Responder fans a violation out to the containment collaborators. The two
// actions are independent and unordered; each must be delivered at least once,
// which is the collaborator adapters' job (see Client), not this type's.
type Responder struct {
	controller ProcessingController
	redactor   RedactionService
	redactable map[models.Category]bool
	logger     *slog.Logger
}

// NewResponder wires the containment collaborators. Only categories in the
// redactable set trigger redaction requests.
func NewResponder(controller ProcessingController, redactor RedactionService, redactable []models.Category, logger *slog.Logger) *Responder {
	set := make(map[models.Category]bool, len(redactable))
	for _, category := range redactable {
		set[category] = true
	}
	return &Responder{
		controller: controller,
		redactor:   redactor,
		redactable: set,
		logger:     logger,
	}
}

// OnViolation halts further processing for the user and, when the category is
// redactable, requests redaction. The actions run concurrently; a failure of
// one never cancels the other, and failures are logged and counted rather than
// returned; by the time a violation is handled the decision has already been
// made and recorded.
func (r *Responder) OnViolation(ctx context.Context, userID string, category models.Category) {
	var g errgroup.Group

	g.Go(func() error {
		if err := r.controller.Halt(ctx, userID); err != nil {
			dispatchTotal.WithLabelValues("halt", "failure").Inc()
			r.logger.ErrorContext(ctx, "halt-processing dispatch failed",
				"user_id", userID,
				"error", err,
			)
			return nil
		}
		dispatchTotal.WithLabelValues("halt", "success").Inc()
		return nil
	})

	if r.redactable[category] {
		g.Go(func() error {
			if err := r.redactor.Redact(ctx, userID, category); err != nil {
				dispatchTotal.WithLabelValues("redact", "failure").Inc()
				r.logger.ErrorContext(ctx, "redaction dispatch failed",
					"user_id", userID,
					"category", category,
					"error", err,
				)
				return nil
			}
			dispatchTotal.WithLabelValues("redact", "success").Inc()
			return nil
		})
	}

	_ = g.Wait()

	r.logger.WarnContext(ctx, "consent violation handled",
		"user_id", userID,
		"category", category,
		"redactable", r.redactable[category],
	)
}
