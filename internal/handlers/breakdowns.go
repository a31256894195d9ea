package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/vehiclemate/internal/datasource"
	"github.com/ukydev/vehiclemate/internal/httputil"
	"github.com/ukydev/vehiclemate/internal/middleware"
	"github.com/ukydev/vehiclemate/internal/models"
	"github.com/ukydev/vehiclemate/internal/repository"
)

// BreakdownService files and tracks breakdown reports.
type BreakdownService interface {
	Issues() []models.BreakdownIssue
	Report(ctx context.Context, in models.BreakdownInput) (repository.Result[models.BreakdownReport], error)
	List(ctx context.Context) (repository.Result[[]models.BreakdownReport], error)
	ListForUser(ctx context.Context, userID string) (repository.Result[[]models.BreakdownReport], error)
	Get(ctx context.Context, id string) (repository.Result[models.BreakdownReport], error)
	Advance(ctx context.Context, id string, to models.ReportStatus, garageID string) (repository.Result[models.BreakdownReport], error)
	Pending() []models.BreakdownReport
	Sync(ctx context.Context) (int, error)
}

// AdvanceRequest moves a report to its next status.
type AdvanceRequest struct {
	Status   models.ReportStatus `json:"status"`
	GarageID string              `json:"garageId"`
}

// GarageLookup resolves a garage of the directory.
type GarageLookup interface {
	Get(ctx context.Context, id string) (repository.Result[models.Garage], error)
}

// BreakdownHandler serves breakdown reports.
type BreakdownHandler struct {
	breakdowns BreakdownService
	garages    GarageLookup
	logger     logrus.FieldLogger
}

// NewBreakdownHandler creates a new breakdown handler
func NewBreakdownHandler(svc BreakdownService, garages GarageLookup, logger logrus.FieldLogger) *BreakdownHandler {
	return &BreakdownHandler{breakdowns: svc, garages: garages, logger: handlerLogger(logger, "breakdowns")}
}

// Issues handles GET /api/issues
func (h *BreakdownHandler) Issues(w http.ResponseWriter, r *http.Request) {
	httputil.JSONResponse(w, h.breakdowns.Issues(), http.StatusOK)
}

// Report handles POST /api/breakdowns. The reporter is the signed-in user.
func (h *BreakdownHandler) Report(w http.ResponseWriter, r *http.Request) {
	var in models.BreakdownInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.JSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		in.UserID = claims.UserID
	}

	res, err := h.breakdowns.Report(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	status := http.StatusCreated
	if res.Queued {
		status = http.StatusAccepted
	}
	httputil.JSONResponse(w, res, status)
}

// List handles GET /api/breakdowns?mine=true
func (h *BreakdownHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		res repository.Result[[]models.BreakdownReport]
		err error
	)
	claims, ok := middleware.GetUserFromContext(r.Context())
	if ok && r.URL.Query().Get("mine") == "true" {
		res, err = h.breakdowns.ListForUser(r.Context(), claims.UserID)
	} else {
		res, err = h.breakdowns.List(r.Context())
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httputil.JSONResponse(w, res, http.StatusOK)
}

// Get handles GET /api/breakdowns/{id}
func (h *BreakdownHandler) Get(w http.ResponseWriter, r *http.Request) {
	res, err := h.breakdowns.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httputil.JSONResponse(w, res, http.StatusOK)
}

// Advance handles POST /api/breakdowns/{id}/advance. Garage owners only;
// an assigned garage must exist in the directory.
func (h *BreakdownHandler) Advance(w http.ResponseWriter, r *http.Request) {
	var req AdvanceRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.JSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.GarageID != "" {
		if _, err := h.garages.Get(r.Context(), req.GarageID); err != nil {
			if errors.Is(err, datasource.ErrNotFound) {
				httputil.JSONError(w, "Unknown garage", http.StatusBadRequest)
				return
			}
			writeError(w, h.logger, err)
			return
		}
	}

	res, err := h.breakdowns.Advance(r.Context(), r.PathValue("id"), req.Status, req.GarageID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httputil.JSONResponse(w, res, http.StatusOK)
}

// Pending handles GET /api/breakdowns/pending
func (h *BreakdownHandler) Pending(w http.ResponseWriter, r *http.Request) {
	httputil.JSONResponse(w, h.breakdowns.Pending(), http.StatusOK)
}

// Sync handles POST /api/breakdowns/sync
func (h *BreakdownHandler) Sync(w http.ResponseWriter, r *http.Request) {
	sent, err := h.breakdowns.Sync(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httputil.JSONResponse(w, map[string]int{"sent": sent, "pending": len(h.breakdowns.Pending())}, http.StatusOK)
}
