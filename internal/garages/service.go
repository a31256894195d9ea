package garages

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/sirupsen/logrus"

	"github.com/ukydev/vehiclemate/internal/connectivity"
	"github.com/ukydev/vehiclemate/internal/datasource"
	"github.com/ukydev/vehiclemate/internal/models"
	"github.com/ukydev/vehiclemate/internal/notify"
	"github.com/ukydev/vehiclemate/internal/repository"
	"github.com/ukydev/vehiclemate/internal/store"
)

var ErrInvalidVehicleType = errors.New("invalid vehicle type")

// Filter narrows a garage listing. Zero values match everything.
type Filter struct {
	VehicleType models.VehicleType `json:"vehicleType,omitempty"`
	Query       string             `json:"query,omitempty"`
	Only24Hours bool               `json:"only24Hours,omitempty"`
}

// Match reports whether g passes the filter.
func (f Filter) Match(g *models.Garage) bool {
	if f.VehicleType != "" && !g.Serves(f.VehicleType) {
		return false
	}
	if f.Only24Hours && !g.Is24Hours {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if strings.Contains(strings.ToLower(g.Name), q) || strings.Contains(strings.ToLower(g.Address), q) {
			return true
		}
		for _, s := range g.Services {
			if strings.Contains(strings.ToLower(s.Name), q) {
				return true
			}
		}
		return false
	}
	return true
}

// NearbyGarage is a garage with its distance from a reference point.
type NearbyGarage struct {
	models.Garage
	DistanceKm float64 `json:"distanceKm"`
}

// Service is the garage directory.
type Service struct {
	repo   *repository.Repository[models.Garage]
	logger logrus.FieldLogger
}

// NewService creates the garage directory on top of source.
func NewService(source datasource.Source[models.Garage], st *store.Store, status connectivity.Status, notifier notify.Notifier, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	opts := repository.Options{Name: "garages", Key: store.KeyGarages}
	return &Service{
		repo:   repository.New(source, st, status, notifier, opts, logger),
		logger: logger.WithField("service", "garages"),
	}
}

// List returns every garage.
func (s *Service) List(ctx context.Context) (repository.Result[[]models.Garage], error) {
	return s.repo.List(ctx)
}

// Get returns one garage.
func (s *Service) Get(ctx context.Context, id string) (repository.Result[models.Garage], error) {
	return s.repo.Get(ctx, id)
}

// ListByVehicleType returns the garages serving vt. Offline, the filter is
// applied to the cached directory and the result is marked as cached.
func (s *Service) ListByVehicleType(ctx context.Context, vt models.VehicleType) (repository.Result[[]models.Garage], error) {
	if !models.IsValidVehicleType(vt) {
		return repository.Result[[]models.Garage]{}, fmt.Errorf("%w: %q", ErrInvalidVehicleType, vt)
	}
	return s.Search(ctx, Filter{VehicleType: vt})
}

// Search returns the garages matching f.
func (s *Service) Search(ctx context.Context, f Filter) (repository.Result[[]models.Garage], error) {
	if f.VehicleType != "" && !models.IsValidVehicleType(f.VehicleType) {
		return repository.Result[[]models.Garage]{}, fmt.Errorf("%w: %q", ErrInvalidVehicleType, f.VehicleType)
	}
	res, err := s.repo.List(ctx)
	if err != nil {
		return res, err
	}
	return repository.MapResult(res, func(all []models.Garage) []models.Garage {
		out := make([]models.Garage, 0, len(all))
		for i := range all {
			if f.Match(&all[i]) {
				out = append(out, all[i])
			}
		}
		return out
	}), nil
}

// Nearby returns the garages closest to loc, nearest first. A limit of zero
// or less returns all of them.
func (s *Service) Nearby(ctx context.Context, loc models.Location, limit int) (repository.Result[[]NearbyGarage], error) {
	res, err := s.repo.List(ctx)
	if err != nil {
		return repository.Result[[]NearbyGarage]{}, err
	}
	return repository.MapResult(res, func(all []models.Garage) []NearbyGarage {
		return byDistance(all, loc, limit)
	}), nil
}

func byDistance(all []models.Garage, loc models.Location, limit int) []NearbyGarage {
	origin := orb.Point{loc.Longitude, loc.Latitude}
	out := make([]NearbyGarage, 0, len(all))
	for _, g := range all {
		meters := geo.Distance(origin, orb.Point{g.Longitude, g.Latitude})
		out = append(out, NearbyGarage{Garage: g, DistanceKm: meters / 1000})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
