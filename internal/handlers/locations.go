package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/ukydev/vehiclemate/internal/httputil"
	"github.com/ukydev/vehiclemate/internal/locations"
	"github.com/ukydev/vehiclemate/internal/models"
)

var errMissingCoordinates = errors.New("lat and lng are required")

// LocationHandler resolves and remembers locations.
type LocationHandler struct {
	locations *locations.Service
	validate  *validator.Validate
	logger    logrus.FieldLogger
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(svc *locations.Service, validate *validator.Validate, logger logrus.FieldLogger) *LocationHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &LocationHandler{locations: svc, validate: validate, logger: handlerLogger(logger, "locations")}
}

// Current handles GET /api/locations/current
func (h *LocationHandler) Current(w http.ResponseWriter, r *http.Request) {
	loc, err := h.locations.Current(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httputil.JSONResponse(w, loc, http.StatusOK)
}

// Resolve handles GET /api/locations/resolve?lat=&lng=
func (h *LocationHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	loc, err := parseLatLng(r)
	if err != nil {
		httputil.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	httputil.JSONResponse(w, h.locations.Resolve(r.Context(), loc.Latitude, loc.Longitude), http.StatusOK)
}

// Recent handles GET /api/locations/recent
func (h *LocationHandler) Recent(w http.ResponseWriter, r *http.Request) {
	httputil.JSONResponse(w, h.locations.Recent(), http.StatusOK)
}

// Remember handles POST /api/locations/recent
func (h *LocationHandler) Remember(w http.ResponseWriter, r *http.Request) {
	var loc models.Location
	if err := httputil.DecodeJSON(r, &loc); err != nil {
		httputil.JSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(loc); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !h.locations.Remember(loc) {
		httputil.JSONError(w, "Location could not be saved", http.StatusInternalServerError)
		return
	}
	httputil.JSONResponse(w, h.locations.Recent(), http.StatusCreated)
}

func parseLatLng(r *http.Request) (models.Location, error) {
	q := r.URL.Query()
	if q.Get("lat") == "" || q.Get("lng") == "" {
		return models.Location{}, errMissingCoordinates
	}
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		return models.Location{}, fmt.Errorf("invalid lat %q", q.Get("lat"))
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		return models.Location{}, fmt.Errorf("invalid lng %q", q.Get("lng"))
	}
	return models.Location{Latitude: lat, Longitude: lng}, nil
}
