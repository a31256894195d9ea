package store

import (
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/vehiclemate/internal/models"
)

func newTestStore(t *testing.T) (*Store, *MemoryBackend, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	backend := NewMemoryBackend()
	return New(backend, logger), backend, hook
}

func TestCollectionRoundTrip(t *testing.T) {
	s, _, _ := newTestStore(t)

	garages := []models.Garage{
		{
			ID:           "garage-1",
			Name:         "Highway Truck Services",
			Rating:       4.7,
			VehicleTypes: []models.VehicleType{models.VehicleTruck, models.VehicleBus},
			Services:     []models.Service{{ID: "service-1", Name: "Tire Replacement", Price: 1500, Negotiable: true}},
			Inventory:    []models.InventoryItem{{ID: "inventory-1", Name: "Truck Tires", Price: 8000, Quantity: 12, Condition: models.ConditionNew}},
		},
	}
	require.True(t, SaveCollection(s, KeyGarages, garages))
	assert.Equal(t, garages, LoadCollection[models.Garage](s, KeyGarages))

	reports := []models.BreakdownReport{{
		ID:        "report-1",
		Status:    models.StatusPending,
		CreatedAt: time.Date(2023, 10, 15, 8, 30, 0, 0, time.UTC),
		Location:  models.Location{Latitude: 28.7, Longitude: 77.1, Address: "Highway 71, Near 70 km marker"},
	}}
	require.True(t, SaveCollection(s, KeyBreakdowns, reports))
	assert.Equal(t, reports, LoadCollection[models.BreakdownReport](s, KeyBreakdowns))
}

func TestSaveOverwrites(t *testing.T) {
	s, _, _ := newTestStore(t)

	SaveCollection(s, KeyLocations, []models.Location{{Latitude: 1}, {Latitude: 2}})
	SaveCollection(s, KeyLocations, []models.Location{{Latitude: 3}})

	assert.Equal(t, []models.Location{{Latitude: 3}}, LoadCollection[models.Location](s, KeyLocations))
}

func TestLoadCollection_Absent(t *testing.T) {
	s, _, hook := newTestStore(t)

	got := LoadCollection[models.Garage](s, KeyGarages)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, hook.AllEntries())
}

func TestLoadCollection_Corrupt(t *testing.T) {
	s, backend, hook := newTestStore(t)
	require.NoError(t, backend.Set(KeyForum, []byte("{not json")))

	got := LoadCollection[models.ForumPost](s, KeyForum)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestLoadValue_SessionRecord(t *testing.T) {
	s, backend, _ := newTestStore(t)

	var u models.User
	assert.False(t, s.LoadValue(KeySession, &u))

	want := models.User{ID: "user-1", Name: "asha", Email: "asha@x.com", Role: models.RoleGarageOwner, Token: "t"}
	require.True(t, s.SaveValue(KeySession, want))
	require.True(t, s.LoadValue(KeySession, &u))
	assert.Equal(t, want, u)

	s.Remove(KeySession)
	_, ok, _ := backend.Get(KeySession)
	assert.False(t, ok)
}

func TestAppendToCollection(t *testing.T) {
	s, _, _ := newTestStore(t)

	AppendToCollection(s, KeyTowing, models.TowingRequest{ID: "tow-1"})
	AppendToCollection(s, KeyTowing, models.TowingRequest{ID: "tow-2"})

	got := LoadCollection[models.TowingRequest](s, KeyTowing)
	require.Len(t, got, 2)
	assert.Equal(t, "tow-1", got[0].ID)
	assert.Equal(t, "tow-2", got[1].ID)
}

type failingBackend struct{ err error }

func (f failingBackend) Get(string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingBackend) Set(string, []byte) error         { return f.err }
func (f failingBackend) Delete(string) error              { return f.err }

func TestBackendFailuresAreSwallowed(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := New(failingBackend{err: errors.New("disk full")}, logger)

	assert.False(t, SaveCollection(s, KeyGarages, []models.Garage{{ID: "garage-1"}}))
	assert.Empty(t, LoadCollection[models.Garage](s, KeyGarages))
	s.Remove(KeyGarages)

	assert.Len(t, hook.AllEntries(), 3)
	for _, e := range hook.AllEntries() {
		assert.Equal(t, logrus.ErrorLevel, e.Level)
	}
}

func TestUnserializableValue(t *testing.T) {
	s, _, hook := newTestStore(t)
	assert.False(t, s.SaveValue("bad", map[string]any{"ch": make(chan int)}))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
