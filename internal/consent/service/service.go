package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"custodia/internal/audit"
	"custodia/internal/consent/metrics"
	"custodia/internal/consent/models"
	"custodia/internal/consent/store"
	"custodia/internal/policy"
	dErrors "custodia/pkg/domain-errors"
)

// Store defines the persistence interface the service consumes.
// Error Contract:
//   - Get returns store.ErrNotFound when no record exists
//   - other errors are infrastructure failures, never silently treated as
//     a missing record
type Store interface {
	Get(ctx context.Context, userID string) (*models.Record, error)
	Replace(ctx context.Context, record *models.Record) error
}

type Option func(*Service)

const defaultValidity = 365 * 24 * time.Hour // 1 year

// Service evaluates consent decisions and registers consent records. Every
// evaluation and registration emits exactly one audit event, success or
// failure, before returning; audit durability is the publisher's concern and
// never blocks or fails the decision path.
type Service struct {
	store           Store
	tx              RegistrationTx
	auditor         *audit.Publisher
	metrics         *metrics.Metrics
	logger          *slog.Logger
	tracer          trace.Tracer
	required        []models.Category
	defaultValidity time.Duration
	storeTimeout    time.Duration
	now             func() time.Time
}

func NewService(store Store, tx RegistrationTx, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:           store,
		tx:              tx,
		auditor:         auditor,
		logger:          logger,
		tracer:          otel.Tracer("custodia/consent"),
		defaultValidity: defaultValidity,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.defaultValidity <= 0 {
		svc.defaultValidity = defaultValidity
	}
	return svc
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithRequiredCategories configures the categories every registration payload
// must carry an explicit flag for.
func WithRequiredCategories(categories []models.Category) Option {
	return func(s *Service) {
		s.required = categories
	}
}

// WithDefaultValidity configures how long a registered consent stays valid
// when the registration does not request a validity itself.
func WithDefaultValidity(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.defaultValidity = d
		}
	}
}

// WithStoreTimeout bounds individual store lookups. A timeout surfaces as
// store_unavailable, never as a denial.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// WithClock injects the time source for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Evaluate decides whether processing the given category for the given user is
// currently authorized. Denials are decisions, not errors: the error return is
// reserved for operational failures (bad input, store unavailable). Exactly
// one audit event is emitted per call, whatever the outcome.
func (s *Service) Evaluate(ctx context.Context, userID string, category models.Category) (policy.Decision, error) {
	if userID == "" {
		return policy.Decision{}, dErrors.New(dErrors.CodeBadRequest, "user ID must not be empty")
	}
	if category == "" {
		return policy.Decision{}, dErrors.New(dErrors.CodeBadRequest, "category must not be empty")
	}

	ctx, span := s.tracer.Start(ctx, "consent.evaluate",
		trace.WithAttributes(attribute.String("consent.category", string(category))))
	defer span.End()

	lookupCtx := ctx
	if s.storeTimeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, s.storeTimeout)
		defer cancel()
	}

	record, err := s.store.Get(lookupCtx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		// Infrastructure failure is not "no record": the caller decides the
		// fail-open/fail-closed policy, we only report that no decision was
		// reached.
		s.emitAudit(ctx, userID, fmt.Sprintf("consent check for %s failed: store unavailable", category), false)
		s.incrementStoreFailures()
		s.logger.ErrorContext(ctx, "consent store lookup failed",
			"user_id", userID,
			"category", category,
			"error", err,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "store unavailable")
		return policy.Decision{}, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "consent store unavailable")
	}
	if errors.Is(err, store.ErrNotFound) {
		record = nil
	}

	decision := policy.Evaluate(record, category, s.now())
	span.SetAttributes(attribute.String("consent.reason", string(decision.Reason)))

	s.emitAudit(ctx, userID, fmt.Sprintf("consent check for %s: %s", category, decision.Reason), decision.Allowed)
	s.incrementEvaluations(decision.Reason)

	// Policy denials are expected outcomes, logged below error level.
	level := slog.LevelInfo
	if !decision.Allowed {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "consent evaluated",
		"user_id", userID,
		"category", category,
		"allowed", decision.Allowed,
		"reason", decision.Reason,
	)

	return decision, nil
}

// Register persists a fresh consent record for the user, replacing any prior
// record wholesale. Category flags not resubmitted are discarded, not merged;
// additive updates were considered and rejected because a registration is the
// user's complete current statement of consent.
func (s *Service) Register(ctx context.Context, userID string, reg models.Registration) (*models.Record, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user ID must not be empty")
	}

	ctx, span := s.tracer.Start(ctx, "consent.register")
	defer span.End()
	start := s.now()

	if missing := s.missingRequired(reg.Categories); len(missing) > 0 {
		msg := fmt.Sprintf("missing required consent: %s", strings.Join(missing, ", "))
		s.emitAudit(ctx, userID, "consent registration rejected: "+msg, false)
		s.incrementRegistrations("rejected")
		span.SetStatus(codes.Error, "missing required consent")
		return nil, dErrors.New(dErrors.CodeMissingRequiredConsent, msg)
	}

	validity := reg.Validity
	if validity <= 0 {
		validity = s.defaultValidity
	}
	now := s.now()
	record, err := models.NewRecord(userID, reg.GlobalAllowed, reg.Categories, now, now.Add(validity))
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, userID, func(ctx context.Context, store Store) error {
		return store.Replace(ctx, record)
	})
	if err != nil {
		s.emitAudit(ctx, userID, "consent registration failed: persistence error", false)
		s.incrementRegistrations("failed")
		s.incrementStoreFailures()
		s.logger.ErrorContext(ctx, "consent registration failed",
			"user_id", userID,
			"error", err,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return nil, dErrors.Wrap(err, dErrors.CodePersistenceFailed, "failed to persist consent record")
	}

	s.emitAudit(ctx, userID, "consent registered", true)
	s.incrementRegistrations("registered")
	s.observeRegistrationLatency(s.now().Sub(start).Seconds())
	s.logger.InfoContext(ctx, "consent registered",
		"user_id", userID,
		"global_allowed", record.GlobalAllowed,
		"categories", len(record.CategoryFlags),
		"expires_at", record.ExpiresAt,
	)
	return record, nil
}

// AuditTrail returns the recorded audit events for a user.
func (s *Service) AuditTrail(ctx context.Context, userID string) ([]audit.Event, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user ID must not be empty")
	}
	return s.auditor.List(ctx, userID)
}

// missingRequired returns the sorted required categories absent from the payload.
func (s *Service) missingRequired(categories map[models.Category]bool) []string {
	var missing []string
	for _, required := range s.required {
		if _, ok := categories[required]; !ok {
			missing = append(missing, string(required))
		}
	}
	sort.Strings(missing)
	return missing
}

func (s *Service) emitAudit(ctx context.Context, userID, action string, outcome bool) {
	if s.auditor == nil {
		return
	}
	s.auditor.Emit(ctx, audit.Event{
		UserID:    userID,
		Timestamp: s.now(),
		Action:    action,
		Outcome:   outcome,
		Source:    audit.SourceConsentService,
	})
}

func (s *Service) incrementEvaluations(reason policy.Reason) {
	if s.metrics != nil {
		s.metrics.IncrementEvaluations(string(reason))
	}
}

func (s *Service) incrementRegistrations(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementRegistrations(outcome)
	}
}

func (s *Service) incrementStoreFailures() {
	if s.metrics != nil {
		s.metrics.IncrementStoreFailures()
	}
}

func (s *Service) observeRegistrationLatency(seconds float64) {
	if s.metrics != nil {
		s.metrics.ObserveRegistrationLatency(seconds)
	}
}
