package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/vehiclemate/internal/connectivity"
	"github.com/ukydev/vehiclemate/internal/httputil"
	"github.com/ukydev/vehiclemate/internal/models"
	"github.com/ukydev/vehiclemate/internal/notify"
)

// EmergencyResponse is the SOS page content.
type EmergencyResponse struct {
	Contacts []models.EmergencyContact `json:"contacts"`
	Tips     []string                  `json:"tips"`
}

// ConnectivityRequest relays a platform online/offline event.
type ConnectivityRequest struct {
	Online *bool `json:"online"`
}

// StatusHandler serves connectivity, notifications and static content.
type StatusHandler struct {
	observer *connectivity.Observer
	feed     *notify.Feed
	logger   logrus.FieldLogger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(observer *connectivity.Observer, feed *notify.Feed, logger logrus.FieldLogger) *StatusHandler {
	return &StatusHandler{observer: observer, feed: feed, logger: handlerLogger(logger, "status")}
}

// Health handles GET /health
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.JSONResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// Connectivity handles GET /api/connectivity
func (h *StatusHandler) Connectivity(w http.ResponseWriter, r *http.Request) {
	httputil.JSONResponse(w, map[string]bool{"offline": h.observer.Offline()}, http.StatusOK)
}

// SetConnectivity handles POST /api/connectivity
func (h *StatusHandler) SetConnectivity(w http.ResponseWriter, r *http.Request) {
	var req ConnectivityRequest
	if err := httputil.DecodeJSON(r, &req); err != nil || req.Online == nil {
		httputil.JSONError(w, "online is required", http.StatusBadRequest)
		return
	}
	h.observer.Set(*req.Online)
	h.logger.WithField("online", *req.Online).Debug("Connectivity relayed")
	httputil.JSONResponse(w, map[string]bool{"offline": h.observer.Offline()}, http.StatusOK)
}

// Notifications handles GET /api/notifications
func (h *StatusHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	httputil.JSONResponse(w, h.feed.Recent(), http.StatusOK)
}

// Emergency handles GET /api/emergency
func (h *StatusHandler) Emergency(w http.ResponseWriter, r *http.Request) {
	httputil.JSONResponse(w, EmergencyResponse{
		Contacts: models.EmergencyContacts,
		Tips:     models.SafetyTips,
	}, http.StatusOK)
}
