package locations

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/vehiclemate/internal/datasource"
	"github.com/ukydev/vehiclemate/internal/models"
	"github.com/ukydev/vehiclemate/internal/store"
)

// MaxRecent is how many remembered locations are kept.
const MaxRecent = 5

// GeocodeLatency is the simulated reverse geocoding round trip.
const GeocodeLatency = 500 * time.Millisecond

var ErrGeolocationUnsupported = errors.New("geolocation is not supported")

// Geolocator reports the device position.
type Geolocator interface {
	Locate(ctx context.Context) (models.Location, error)
}

// GeolocatorFunc adapts a function to Geolocator.
type GeolocatorFunc func(ctx context.Context) (models.Location, error)

// Locate calls f.
func (f GeolocatorFunc) Locate(ctx context.Context) (models.Location, error) {
	return f(ctx)
}

// Fixed always reports the same position.
func Fixed(lat, lng float64) Geolocator {
	return GeolocatorFunc(func(context.Context) (models.Location, error) {
		return models.Location{Latitude: lat, Longitude: lng}, nil
	})
}

// Service resolves positions to addresses and remembers recent ones.
type Service struct {
	geo     Geolocator
	store   *store.Store
	latency time.Duration
	logger  logrus.FieldLogger

	mu sync.Mutex
}

// NewService creates the location service. A nil geolocator makes Current
// fail with ErrGeolocationUnsupported.
func NewService(geo Geolocator, st *store.Store, latencyScale float64, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		geo:     geo,
		store:   st,
		latency: time.Duration(float64(GeocodeLatency) * latencyScale),
		logger:  logger.WithField("service", "locations"),
	}
}

// Current returns the device position with its address. When the address
// lookup fails the coordinates are still returned.
func (s *Service) Current(ctx context.Context) (models.Location, error) {
	if s.geo == nil {
		return models.Location{}, ErrGeolocationUnsupported
	}
	loc, err := s.geo.Locate(ctx)
	if err != nil {
		return models.Location{}, fmt.Errorf("locate: %w", err)
	}
	return s.Resolve(ctx, loc.Latitude, loc.Longitude), nil
}

// Resolve attaches an address to the given coordinates when one can be found.
func (s *Service) Resolve(ctx context.Context, lat, lng float64) models.Location {
	loc := models.Location{Latitude: lat, Longitude: lng}
	address, err := s.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		s.logger.WithError(err).Warn("Reverse geocoding failed, returning coordinates only")
		return loc
	}
	loc.Address = address
	return loc
}

// ReverseGeocode returns a synthetic highway address for the coordinates.
func (s *Service) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	if err := datasource.Delay(ctx, s.latency); err != nil {
		return "", err
	}
	return FormatAddress(lat, lng), nil
}

// FormatAddress derives the highway and marker numbers from the coordinates.
// The remainder keeps the sign of the dividend, so western longitudes give
// negative highway numbers.
func FormatAddress(lat, lng float64) string {
	highway := int64(math.Floor(lng*10)) % 100
	marker := int64(math.Floor(lat*100)) % 100
	if marker < 0 {
		marker = -marker
	}
	return fmt.Sprintf("Highway %d, Near %d km marker", highway, marker)
}

// Remember adds loc to the recent locations, evicting the oldest past MaxRecent.
func (s *Service) Remember(loc models.Location) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	recent := store.LoadCollection[models.Location](s.store, store.KeyLocations)
	recent = append(recent, loc)
	if len(recent) > MaxRecent {
		recent = recent[len(recent)-MaxRecent:]
	}
	return store.SaveCollection(s.store, store.KeyLocations, recent)
}

// Recent returns the remembered locations, oldest first.
func (s *Service) Recent() []models.Location {
	return store.LoadCollection[models.Location](s.store, store.KeyLocations)
}
