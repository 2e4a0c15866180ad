// Package scan turns classifier findings into consent decisions. It is the
// bridge between the scanning collaborator (which enumerates storage and calls
// the vendor classifier, both outside this service) and the policy evaluator:
// findings come in, every discovered category is checked against the subject's
// consent, and denials trigger containment because scanned data is by
// definition already being processed.
package scan

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"custodia/internal/audit"
	"custodia/internal/classifier"
	"custodia/internal/consent/models"
	"custodia/internal/policy"
	dErrors "custodia/pkg/domain-errors"
)

// Evaluator is the consent decision boundary consumed by the scan pipeline.
type Evaluator interface {
	Evaluate(ctx context.Context, userID string, category models.Category) (policy.Decision, error)
}

// Responder receives in-flight violations.
type Responder interface {
	OnViolation(ctx context.Context, userID string, category models.Category)
}

// Service processes findings for a data subject.
type Service struct {
	adapter   *classifier.Adapter
	evaluator Evaluator
	responder Responder
	reports   ReportStore
	auditor   *audit.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithClock injects the time source for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(adapter *classifier.Adapter, evaluator Evaluator, responder Responder, reports ReportStore, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		adapter:   adapter,
		evaluator: evaluator,
		responder: responder,
		reports:   reports,
		auditor:   auditor,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// ProcessFindings normalizes findings, evaluates every discovered category for
// the subject, and invokes the responder for each denial. An evaluator
// infrastructure failure aborts the scan (fail closed: no decision was
// reached, so no violation is raised and no partial report is recorded).
func (s *Service) ProcessFindings(ctx context.Context, subjectID, source string, findings []classifier.Finding) (*Report, error) {
	if subjectID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "subject ID must not be empty")
	}

	report := &Report{
		ID:        uuid.New().String(),
		SubjectID: subjectID,
		Source:    source,
		ScannedAt: s.now(),
		Findings:  findings,
	}

	categories := s.adapter.Normalize(findings)
	for _, category := range categories {
		decision, err := s.evaluator.Evaluate(ctx, subjectID, category)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "scan aborted: consent evaluation unavailable")
		}

		report.Decisions = append(report.Decisions, CategoryDecision{
			Category: category,
			Allowed:  decision.Allowed,
			Reason:   decision.Reason,
		})

		if !decision.Allowed {
			report.Violations++
			// Scanned data is already flowing, so a denial here is an
			// in-flight violation, not a pre-check.
			s.responder.OnViolation(ctx, subjectID, category)
		}
	}

	if err := s.reports.Save(ctx, report); err != nil {
		// The decisions and violations already happened; a report save
		// failure is logged, not returned.
		s.logger.ErrorContext(ctx, "failed to save scan report",
			"report_id", report.ID,
			"subject_id", subjectID,
			"error", err,
		)
	}

	s.emitAudit(ctx, subjectID, report)
	s.logger.InfoContext(ctx, "scan processed",
		"report_id", report.ID,
		"subject_id", subjectID,
		"source", source,
		"categories", len(categories),
		"violations", report.Violations,
	)
	return report, nil
}

// ReportsBySubject lists the recorded reports for a subject.
func (s *Service) ReportsBySubject(ctx context.Context, subjectID string) ([]*Report, error) {
	if subjectID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "subject ID must not be empty")
	}
	return s.reports.ListBySubject(ctx, subjectID)
}

func (s *Service) emitAudit(ctx context.Context, subjectID string, report *Report) {
	if s.auditor == nil {
		return
	}
	action := "scan completed: no violations"
	if report.Violations > 0 {
		action = "scan completed with violations"
	}
	s.auditor.Emit(ctx, audit.Event{
		UserID:    subjectID,
		Timestamp: report.ScannedAt,
		Action:    action,
		Outcome:   report.Violations == 0,
		Source:    audit.SourceScanService,
	})
}
