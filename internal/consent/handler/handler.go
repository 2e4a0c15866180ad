package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"custodia/internal/audit"
	"custodia/internal/consent/models"
	"custodia/internal/platform/middleware"
	"custodia/internal/policy"
	"custodia/internal/transport/http/shared"
	respond "custodia/internal/transport/http/shared/json"
	dErrors "custodia/pkg/domain-errors"
)

// Service defines the interface for consent operations.
type Service interface {
	Evaluate(ctx context.Context, userID string, category models.Category) (policy.Decision, error)
	Register(ctx context.Context, userID string, reg models.Registration) (*models.Record, error)
	AuditTrail(ctx context.Context, userID string) ([]audit.Event, error)
}

// Handler handles consent-related endpoints.
type Handler struct {
	logger  *slog.Logger
	consent Service
}

// New creates a new consent Handler.
func New(consent Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		consent: consent,
	}
}

// Register registers the consent routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/consent/register", h.handleRegister)
	r.Get("/consent/evaluate", h.handleEvaluate)
	r.Get("/consent/audit", h.handleAuditTrail)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	userID, registration, err := req.Validate()
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	record, err := h.consent.Register(ctx, userID, registration)
	if err != nil {
		// Denial codes are caller-fixable and expected; only operational
		// failures are worth an error log here.
		if !dErrors.HasCode(err, dErrors.CodeMissingRequiredConsent) {
			h.logger.ErrorContext(ctx, "failed to register consent",
				"request_id", requestID,
				"error", err,
			)
		}
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusCreated, formatRegisterResponse(record))
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.URL.Query().Get("user_id")
	category := models.Category(r.URL.Query().Get("category"))

	decision, err := h.consent.Evaluate(ctx, userID, category)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeStoreUnavailable) {
			h.logger.ErrorContext(ctx, "consent evaluation unavailable",
				"request_id", middleware.GetRequestID(ctx),
				"error", err,
			)
		}
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, formatEvaluateResponse(userID, category, decision))
}

func (h *Handler) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.URL.Query().Get("user_id")

	events, err := h.consent.AuditTrail(ctx, userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, formatAuditResponse(userID, events))
}
