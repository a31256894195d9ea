package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/vehiclemate/internal/httputil"
	"github.com/ukydev/vehiclemate/internal/middleware"
	"github.com/ukydev/vehiclemate/internal/towing"
)

// TowingInput is the towing form.
type TowingInput struct {
	Pickup  string `json:"pickup"`
	Dropoff string `json:"dropoff"`
}

// TowingHandler files towing requests.
type TowingHandler struct {
	towing *towing.Service
	logger logrus.FieldLogger
}

// NewTowingHandler creates a new towing handler
func NewTowingHandler(svc *towing.Service, logger logrus.FieldLogger) *TowingHandler {
	return &TowingHandler{towing: svc, logger: handlerLogger(logger, "towing")}
}

// Request handles POST /api/towing
func (h *TowingHandler) Request(w http.ResponseWriter, r *http.Request) {
	var in TowingInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.JSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.JSONRedirect(w, "User context not found", middleware.LoginPath, http.StatusUnauthorized)
		return
	}

	req, err := h.towing.Request(claims.UserID, in.Pickup, in.Dropoff)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httputil.JSONResponse(w, req, http.StatusCreated)
}

// List handles GET /api/towing, returning the caller's requests.
func (h *TowingHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.JSONRedirect(w, "User context not found", middleware.LoginPath, http.StatusUnauthorized)
		return
	}
	httputil.JSONResponse(w, h.towing.List(claims.UserID), http.StatusOK)
}
