package scan

import (
	"context"
	"sync"
)

// ReportStore keeps recent scan reports for inspection.
type ReportStore interface {
	Save(ctx context.Context, report *Report) error
	ListBySubject(ctx context.Context, subjectID string) ([]*Report, error)
}

// InMemoryReportStore is the default report store; reports are per-scan
// artifacts and need no durability here.
type InMemoryReportStore struct {
	mu      sync.RWMutex
	reports map[string][]*Report
}

func NewInMemoryReportStore() *InMemoryReportStore {
	return &InMemoryReportStore{reports: make(map[string][]*Report)}
}

func (s *InMemoryReportStore) Save(_ context.Context, report *Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.SubjectID] = append(s.reports[report.SubjectID], report)
	return nil
}

func (s *InMemoryReportStore) ListBySubject(_ context.Context, subjectID string) ([]*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Report{}, s.reports[subjectID]...), nil
}
