package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/ukydev/vehiclemate/internal/auth"
	"github.com/ukydev/vehiclemate/internal/breakdowns"
	"github.com/ukydev/vehiclemate/internal/community"
	"github.com/ukydev/vehiclemate/internal/datasource"
	"github.com/ukydev/vehiclemate/internal/garages"
	"github.com/ukydev/vehiclemate/internal/httputil"
	"github.com/ukydev/vehiclemate/internal/locations"
	"github.com/ukydev/vehiclemate/internal/repository"
	"github.com/ukydev/vehiclemate/internal/towing"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var verr validator.ValidationErrors
	switch {
	case errors.Is(err, datasource.ErrNotFound),
		errors.Is(err, garages.ErrServiceNotFound),
		errors.Is(err, garages.ErrInventoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, breakdowns.ErrInvalidReport),
		errors.Is(err, breakdowns.ErrUnknownIssue),
		errors.Is(err, community.ErrInvalidPost),
		errors.Is(err, community.ErrInvalidComment),
		errors.Is(err, garages.ErrInvalidVehicleType),
		errors.Is(err, towing.ErrMissingLocations),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, datasource.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, repository.ErrOffline),
		errors.Is(err, repository.ErrNoCache),
		errors.Is(err, datasource.ErrUnavailable),
		errors.Is(err, locations.ErrGeolocationUnsupported):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}

// writeError reports err to the client. Server-side failures are logged and
// their detail withheld.
func writeError(w http.ResponseWriter, logger logrus.FieldLogger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.WithError(err).Error("Request failed")
		httputil.JSONError(w, "Internal server error", status)
		return
	}
	logger.WithError(err).WithField("status", status).Debug("Request rejected")
	httputil.JSONError(w, err.Error(), status)
}
