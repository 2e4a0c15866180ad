package scan

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"custodia/internal/classifier"
	"custodia/internal/transport/http/shared"
	respond "custodia/internal/transport/http/shared/json"
	dErrors "custodia/pkg/domain-errors"
)

// ReportRequest is the wire payload for POST /scan/report.
type ReportRequest struct {
	SubjectID string               `json:"subject_id"`
	Source    string               `json:"source"`
	Findings  []classifier.Finding `json:"findings"`
}

// Handler exposes the scan pipeline over HTTP.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates a scan Handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register registers the scan routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/scan/report", h.handleReport)
	r.Get("/scan/reports", h.handleListReports)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	report, err := h.service.ProcessFindings(ctx, req.SubjectID, req.Source, req.Findings)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeStoreUnavailable) {
			h.logger.ErrorContext(ctx, "scan processing unavailable", "error", err)
		}
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.ReportsBySubject(r.Context(), r.URL.Query().Get("subject_id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, reports)
}
