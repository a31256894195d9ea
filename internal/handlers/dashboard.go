package handlers

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/vehiclemate/internal/garages"
	"github.com/ukydev/vehiclemate/internal/httputil"
	"github.com/ukydev/vehiclemate/internal/middleware"
	"github.com/ukydev/vehiclemate/internal/notify"
)

// DashboardHandler serves the owner's garage editor. Routes are expected
// behind RequireRole(garage_owner).
type DashboardHandler struct {
	dashboards *garages.Dashboards
	notifier   notify.Notifier
	logger     logrus.FieldLogger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboards *garages.Dashboards, notifier notify.Notifier, logger logrus.FieldLogger) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards, notifier: notifier, logger: handlerLogger(logger, "dashboard")}
}

func (h *DashboardHandler) dashboard(w http.ResponseWriter, r *http.Request) (*garages.Dashboard, bool) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.JSONRedirect(w, "User context not found", middleware.LoginPath, http.StatusUnauthorized)
		return nil, false
	}
	return h.dashboards.For(claims.UserID), true
}

// Get handles GET /api/dashboard
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	httputil.JSONResponse(w, d.Garage(), http.StatusOK)
}

// AddService handles POST /api/dashboard/services
func (h *DashboardHandler) AddService(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	var in garages.ServiceInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.JSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	svc, err := d.AddService(in)
	if err != nil {
		h.notify(notify.LevelError, "Please fill in all required fields")
		writeError(w, h.logger, err)
		return
	}
	h.notify(notify.LevelSuccess, "Service added successfully")
	httputil.JSONResponse(w, svc, http.StatusCreated)
}

// RemoveService handles DELETE /api/dashboard/services/{id}
func (h *DashboardHandler) RemoveService(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	if err := d.RemoveService(r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.notify(notify.LevelSuccess, "Service deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}

// AddInventory handles POST /api/dashboard/inventory
func (h *DashboardHandler) AddInventory(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	var in garages.InventoryInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.JSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	item, err := d.AddInventory(in)
	if err != nil {
		h.notify(notify.LevelError, "Please fill in all required fields")
		writeError(w, h.logger, err)
		return
	}
	h.notify(notify.LevelSuccess, "Inventory item added successfully")
	httputil.JSONResponse(w, item, http.StatusCreated)
}

// RemoveInventory handles DELETE /api/dashboard/inventory/{id}
func (h *DashboardHandler) RemoveInventory(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	if err := d.RemoveInventory(r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.notify(notify.LevelSuccess, "Inventory item deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}

// Toggle24Hours handles POST /api/dashboard/open24
func (h *DashboardHandler) Toggle24Hours(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	enabled := d.Toggle24Hours()
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	h.notify(notify.LevelSuccess, fmt.Sprintf("24/7 service %s", state))
	httputil.JSONResponse(w, map[string]bool{"is24Hours": enabled}, http.StatusOK)
}

func (h *DashboardHandler) notify(level notify.Level, message string) {
	if h.notifier != nil {
		h.notifier.Notify(level, message)
	}
}
