package scan

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"custodia/internal/audit"
	"custodia/internal/classifier"
	"custodia/internal/consent/models"
	consentservice "custodia/internal/consent/service"
	"custodia/internal/consent/store"
	"custodia/internal/policy"
	dErrors "custodia/pkg/domain-errors"
)

var frozenNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// recordingResponder captures violations for assertions.
type recordingResponder struct {
	violations []string
}

func (r *recordingResponder) OnViolation(_ context.Context, userID string, category models.Category) {
	r.violations = append(r.violations, userID+"/"+string(category))
}

// failingEvaluator simulates an unavailable consent store.
type failingEvaluator struct{}

func (failingEvaluator) Evaluate(context.Context, string, models.Category) (policy.Decision, error) {
	return policy.Decision{}, dErrors.New(dErrors.CodeStoreUnavailable, "store down")
}

type ScanSuite struct {
	suite.Suite
	consentStore *store.InMemoryStore
	responder    *recordingResponder
	reports      *InMemoryReportStore
	service      *Service
}

func (s *ScanSuite) SetupTest() {
	s.consentStore = store.New()
	s.responder = &recordingResponder{}
	s.reports = NewInMemoryReportStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	evaluator := consentservice.NewService(
		s.consentStore,
		consentservice.NewShardedTx(s.consentStore, time.Second),
		audit.NewPublisher(audit.NewInMemoryStore()),
		logger,
		consentservice.WithClock(func() time.Time { return frozenNow }),
	)

	adapter := classifier.NewAdapter(map[string]models.Category{
		"EMAIL_ADDRESS":      "email",
		"CREDIT_CARD_NUMBER": "credit_card",
	})

	s.service = NewService(adapter, evaluator, s.responder, s.reports,
		audit.NewPublisher(audit.NewInMemoryStore()), logger,
		WithClock(func() time.Time { return frozenNow }),
	)
}

func TestScanSuite(t *testing.T) {
	suite.Run(t, new(ScanSuite))
}

func (s *ScanSuite) registerConsent(flags map[models.Category]bool) {
	record := &models.Record{
		UserID:        "subject-1",
		GlobalAllowed: true,
		CategoryFlags: flags,
		CreatedAt:     frozenNow,
		ExpiresAt:     frozenNow.Add(24 * time.Hour),
	}
	s.Require().NoError(s.consentStore.Replace(context.Background(), record))
}

func (s *ScanSuite) TestAllowedCategoriesRaiseNoViolation() {
	s.registerConsent(map[models.Category]bool{"email": true})

	report, err := s.service.ProcessFindings(context.Background(), "subject-1", "bucket/file.txt", []classifier.Finding{
		{Type: "EMAIL_ADDRESS", Quote: "a@example.com"},
	})
	s.Require().NoError(err)

	s.Equal(0, report.Violations)
	s.Empty(s.responder.violations)
	s.Require().Len(report.Decisions, 1)
	s.Equal(policy.ReasonValid, report.Decisions[0].Reason)
}

func (s *ScanSuite) TestDeniedCategoryTriggersContainment() {
	s.registerConsent(map[models.Category]bool{"email": false})

	report, err := s.service.ProcessFindings(context.Background(), "subject-1", "bucket/file.txt", []classifier.Finding{
		{Type: "EMAIL_ADDRESS"},
		{Type: "CREDIT_CARD_NUMBER"},
	})
	s.Require().NoError(err)

	s.Equal(1, report.Violations)
	s.Equal([]string{"subject-1/email"}, s.responder.violations)
}

func (s *ScanSuite) TestNoConsentRecordMeansEveryCategoryViolates() {
	report, err := s.service.ProcessFindings(context.Background(), "subject-1", "bucket/file.txt", []classifier.Finding{
		{Type: "EMAIL_ADDRESS"},
	})
	s.Require().NoError(err)

	s.Equal(1, report.Violations)
	s.Equal(policy.ReasonNoRecord, report.Decisions[0].Reason)
}

func (s *ScanSuite) TestUnknownVendorTypeIsEvaluatedNotDropped() {
	s.registerConsent(nil)

	report, err := s.service.ProcessFindings(context.Background(), "subject-1", "bucket/file.txt", []classifier.Finding{
		{Type: "SSN"},
	})
	s.Require().NoError(err)

	s.Require().Len(report.Decisions, 1)
	s.Equal(models.CategoryUnknown, report.Decisions[0].Category)
}

func (s *ScanSuite) TestEvaluatorFailureFailsClosed() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	adapter := classifier.NewAdapter(map[string]models.Category{"EMAIL_ADDRESS": "email"})
	svc := NewService(adapter, failingEvaluator{}, s.responder, s.reports, nil, logger)

	_, err := svc.ProcessFindings(context.Background(), "subject-1", "bucket/file.txt", []classifier.Finding{
		{Type: "EMAIL_ADDRESS"},
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeStoreUnavailable))
	s.Empty(s.responder.violations, "no decision reached, no violation raised")

	reports, listErr := s.reports.ListBySubject(context.Background(), "subject-1")
	s.Require().NoError(listErr)
	s.Empty(reports, "aborted scans record no partial report")
}

func (s *ScanSuite) TestReportPersistedAndListable() {
	s.registerConsent(nil)

	report, err := s.service.ProcessFindings(context.Background(), "subject-1", "bucket/a.csv", []classifier.Finding{
		{Type: "EMAIL_ADDRESS"},
	})
	s.Require().NoError(err)
	s.NotEmpty(report.ID)
	s.Equal(frozenNow, report.ScannedAt)

	reports, err := s.service.ReportsBySubject(context.Background(), "subject-1")
	s.Require().NoError(err)
	s.Require().Len(reports, 1)
	s.Equal(report.ID, reports[0].ID)
}
