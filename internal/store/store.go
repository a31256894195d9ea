package store

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// Fixed keys of the persisted collections.
const (
	KeySession          = "vehiclemate_user"
	KeyGarages          = "vehiclemate_garages"
	KeyBreakdowns       = "vehiclemate_breakdowns"
	KeyForum            = "vehiclemate_forum"
	KeyLocations        = "vehiclemate_locations"
	KeyBreakdownsOutbox = "vehiclemate_outbox_breakdowns"
	KeyTowing           = "vehiclemate_towing"
)

// Backend is the raw byte storage behind a Store.
type Backend interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Store persists JSON-serialized values under fixed keys.
// Read and write failures are logged and swallowed: a caller always gets
// either the stored value or an empty one.
type Store struct {
	backend Backend
	logger  logrus.FieldLogger
}

// New creates a store on top of the given backend
func New(backend Backend, logger logrus.FieldLogger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{backend: backend, logger: logger}
}

// SaveValue serializes v and stores it under key, overwriting any prior value.
func (s *Store) SaveValue(key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("Failed to serialize value")
		return false
	}
	if err := s.backend.Set(key, data); err != nil {
		s.logger.WithError(err).WithField("key", key).Error("Failed to write value")
		return false
	}
	return true
}

// LoadValue decodes the value stored under key into out. It reports false
// when the key is absent or the stored payload is unreadable.
func (s *Store) LoadValue(key string, out any) bool {
	data, ok, err := s.backend.Get(key)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("Failed to read value")
		return false
	}
	if !ok || len(data) == 0 {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Discarding corrupt stored value")
		return false
	}
	return true
}

// Remove deletes the value stored under key.
func (s *Store) Remove(key string) {
	if err := s.backend.Delete(key); err != nil {
		s.logger.WithError(err).WithField("key", key).Error("Failed to remove value")
	}
}

// SaveCollection stores items under key, overwriting any prior collection.
func SaveCollection[T any](s *Store, key string, items []T) bool {
	if items == nil {
		items = []T{}
	}
	return s.SaveValue(key, items)
}

// LoadCollection returns the collection stored under key, or an empty
// collection if it is absent or corrupt.
func LoadCollection[T any](s *Store, key string) []T {
	var items []T
	if !s.LoadValue(key, &items) || items == nil {
		return []T{}
	}
	return items
}

// AppendToCollection loads the collection under key, appends item and saves it back.
func AppendToCollection[T any](s *Store, key string, item T) bool {
	items := LoadCollection[T](s, key)
	items = append(items, item)
	return SaveCollection(s, key, items)
}
