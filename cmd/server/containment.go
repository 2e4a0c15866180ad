package main

import (
	"context"
	"log/slog"

	"custodia/internal/consent/models"
	"custodia/internal/platform/config"
	"custodia/internal/violation"
)

// newProcessingController returns the halt-processing collaborator. Without a
// configured controller URL, violations are still recorded and logged but no
// remote halt is requested.
func newProcessingController(cfg config.ViolationConfig, log *slog.Logger) violation.ProcessingController {
	if cfg.ControllerURL != "" {
		return violation.NewClient(cfg.ControllerURL)
	}
	log.Warn("no violation controller configured, halt requests will only be logged")
	return &loggingContainment{logger: log}
}

// newRedactionService returns the redaction collaborator, with the same
// logging fallback as the controller.
func newRedactionService(cfg config.ViolationConfig, log *slog.Logger) violation.RedactionService {
	if cfg.RedactionURL != "" {
		return violation.NewClient(cfg.RedactionURL)
	}
	log.Warn("no redaction service configured, redaction requests will only be logged")
	return &loggingContainment{logger: log}
}

// loggingContainment is the local stand-in for unconfigured collaborators.
type loggingContainment struct {
	logger *slog.Logger
}

func (l *loggingContainment) Halt(ctx context.Context, userID string) error {
	l.logger.WarnContext(ctx, "halt processing requested", "user_id", userID)
	return nil
}

func (l *loggingContainment) Redact(ctx context.Context, userID string, category models.Category) error {
	l.logger.WarnContext(ctx, "data redaction requested", "user_id", userID, "category", category)
	return nil
}
