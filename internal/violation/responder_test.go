package violation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/internal/consent/models"
)

type fakeController struct {
	mu    sync.Mutex
	halts []string
	err   error
}

func (f *fakeController) Halt(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.halts = append(f.halts, userID)
	return f.err
}

type fakeRedactor struct {
	mu       sync.Mutex
	requests []string
}

func (f *fakeRedactor) Redact(_ context.Context, userID string, category models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, userID+"/"+string(category))
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOnViolation_HaltsAndRedactsRedactableCategory(t *testing.T) {
	controller := &fakeController{}
	redactor := &fakeRedactor{}
	r := NewResponder(controller, redactor, []models.Category{"email", "phone_number"}, discardLogger())

	r.OnViolation(context.Background(), "user-1", "email")

	assert.Equal(t, []string{"user-1"}, controller.halts)
	assert.Equal(t, []string{"user-1/email"}, redactor.requests)
}

func TestOnViolation_NonRedactableCategoryOnlyHalts(t *testing.T) {
	controller := &fakeController{}
	redactor := &fakeRedactor{}
	r := NewResponder(controller, redactor, []models.Category{"email"}, discardLogger())

	r.OnViolation(context.Background(), "user-1", "credit_card")

	assert.Equal(t, []string{"user-1"}, controller.halts)
	assert.Empty(t, redactor.requests)
}

func TestOnViolation_HaltFailureDoesNotBlockRedaction(t *testing.T) {
	controller := &fakeController{err: errors.New("controller down")}
	redactor := &fakeRedactor{}
	r := NewResponder(controller, redactor, []models.Category{"email"}, discardLogger())

	r.OnViolation(context.Background(), "user-1", "email")

	assert.Equal(t, []string{"user-1/email"}, redactor.requests,
		"the two containment actions are independent")
}

func TestClient_RetriesUntilSuccess(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithAttempts(5), WithBackoff(time.Millisecond))
	err := client.Halt(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestClient_ReportsFailureAfterBudgetSpent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithAttempts(2), WithBackoff(time.Millisecond))
	err := client.Redact(context.Background(), "user-1", "email")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestClient_RespectsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(srv.URL, WithAttempts(3), WithBackoff(time.Hour))
	err := client.Halt(ctx, "user-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
