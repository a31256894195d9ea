package towing

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ukydev/vehiclemate/internal/models"
	"github.com/ukydev/vehiclemate/internal/notify"
	"github.com/ukydev/vehiclemate/internal/store"
)

var ErrMissingLocations = errors.New("pickup and dropoff are required")

const StatusRequested = "requested"

// Service records towing requests in the local store.
type Service struct {
	store    *store.Store
	notifier notify.Notifier
	now      func() time.Time
	logger   logrus.FieldLogger

	mu sync.Mutex
}

// NewService creates the towing service.
func NewService(st *store.Store, notifier notify.Notifier, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		store:    st,
		notifier: notifier,
		now:      time.Now,
		logger:   logger.WithField("service", "towing"),
	}
}

// Request files a towing request between two places.
func (s *Service) Request(userID, pickup, dropoff string) (models.TowingRequest, error) {
	pickup, dropoff = strings.TrimSpace(pickup), strings.TrimSpace(dropoff)
	if pickup == "" || dropoff == "" {
		s.notify(notify.LevelError, "Please fill in both locations")
		return models.TowingRequest{}, ErrMissingLocations
	}

	req := models.TowingRequest{
		ID:        "tow-" + uuid.Must(uuid.NewV7()).String(),
		UserID:    userID,
		Pickup:    pickup,
		Dropoff:   dropoff,
		CreatedAt: s.now().UTC(),
		Status:    StatusRequested,
	}

	s.mu.Lock()
	ok := store.AppendToCollection(s.store, store.KeyTowing, req)
	s.mu.Unlock()
	if !ok {
		return models.TowingRequest{}, fmt.Errorf("towing request %s could not be saved", req.ID)
	}

	s.logger.WithFields(logrus.Fields{"request_id": req.ID, "user_id": userID}).Info("Towing requested")
	s.notify(notify.LevelSuccess, "Towing request submitted successfully!")
	return req, nil
}

// List returns the stored requests of userID, or all of them when userID is empty.
func (s *Service) List(userID string) []models.TowingRequest {
	all := store.LoadCollection[models.TowingRequest](s.store, store.KeyTowing)
	if userID == "" {
		return all
	}
	out := make([]models.TowingRequest, 0, len(all))
	for _, r := range all {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

func (s *Service) notify(level notify.Level, message string) {
	if s.notifier != nil {
		s.notifier.Notify(level, message)
	}
}
