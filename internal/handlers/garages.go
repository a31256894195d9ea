package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/vehiclemate/internal/garages"
	"github.com/ukydev/vehiclemate/internal/httputil"
	"github.com/ukydev/vehiclemate/internal/models"
	"github.com/ukydev/vehiclemate/internal/repository"
)

const defaultNearbyLimit = 5

// GarageService is the garage directory used by GarageHandler.
type GarageService interface {
	Get(ctx context.Context, id string) (repository.Result[models.Garage], error)
	Search(ctx context.Context, f garages.Filter) (repository.Result[[]models.Garage], error)
	Nearby(ctx context.Context, loc models.Location, limit int) (repository.Result[[]garages.NearbyGarage], error)
}

// GarageHandler serves the garage directory.
type GarageHandler struct {
	garages GarageService
	logger  logrus.FieldLogger
}

// NewGarageHandler creates a new garage handler
func NewGarageHandler(svc GarageService, logger logrus.FieldLogger) *GarageHandler {
	return &GarageHandler{garages: svc, logger: handlerLogger(logger, "garages")}
}

// List handles GET /api/garages?vehicleType=&q=&open24=
func (h *GarageHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := garages.Filter{
		VehicleType: models.VehicleType(q.Get("vehicleType")),
		Query:       q.Get("q"),
	}
	if v := q.Get("open24"); v != "" {
		open24, err := strconv.ParseBool(v)
		if err != nil {
			httputil.JSONError(w, "open24 must be a boolean", http.StatusBadRequest)
			return
		}
		f.Only24Hours = open24
	}

	res, err := h.garages.Search(r.Context(), f)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httputil.JSONResponse(w, res, http.StatusOK)
}

// Get handles GET /api/garages/{id}
func (h *GarageHandler) Get(w http.ResponseWriter, r *http.Request) {
	res, err := h.garages.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httputil.JSONResponse(w, res, http.StatusOK)
}

// Nearby handles GET /api/garages/nearby?lat=&lng=&limit=
func (h *GarageHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	loc, err := parseLatLng(r)
	if err != nil {
		httputil.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit := defaultNearbyLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit <= 0 {
			httputil.JSONError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
	}

	res, err := h.garages.Nearby(r.Context(), loc, limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httputil.JSONResponse(w, res, http.StatusOK)
}
