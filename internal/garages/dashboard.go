package garages

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ukydev/vehiclemate/internal/models"
)

var (
	ErrServiceNotFound   = errors.New("service not found")
	ErrInventoryNotFound = errors.New("inventory item not found")
)

// ServiceInput is the owner's form for a new service.
type ServiceInput struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price" validate:"gt=0"`
	Negotiable  bool    `json:"negotiable"`
}

// InventoryInput is the owner's form for a new stock item.
type InventoryInput struct {
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description" validate:"required"`
	Price       float64          `json:"price" validate:"gt=0"`
	Quantity    int              `json:"quantity" validate:"gt=0"`
	Condition   models.Condition `json:"condition" validate:"omitempty,oneof=new used"`
}

// Dashboard is an owner's working copy of a garage. Edits stay in memory
// and never reach the directory or the store.
type Dashboard struct {
	mu       sync.RWMutex
	garage   models.Garage
	validate *validator.Validate
}

// NewDashboard starts a working copy of g.
func NewDashboard(g models.Garage, validate *validator.Validate) *Dashboard {
	if validate == nil {
		validate = validator.New()
	}
	return &Dashboard{garage: g.Clone(), validate: validate}
}

// Garage returns a snapshot of the working copy.
func (d *Dashboard) Garage() models.Garage {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.garage.Clone()
}

// AddService validates in and appends it as a new service.
func (d *Dashboard) AddService(in ServiceInput) (models.Service, error) {
	if err := d.validate.Struct(in); err != nil {
		return models.Service{}, err
	}
	svc := models.Service{
		ID:          "service-" + uuid.Must(uuid.NewV7()).String(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Negotiable:  in.Negotiable,
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.garage.Services = append(d.garage.Services, svc)
	return svc, nil
}

// AddInventory validates in and appends it as a new stock item.
func (d *Dashboard) AddInventory(in InventoryInput) (models.InventoryItem, error) {
	if err := d.validate.Struct(in); err != nil {
		return models.InventoryItem{}, err
	}
	condition := in.Condition
	if condition == "" {
		condition = models.ConditionNew
	}
	item := models.InventoryItem{
		ID:          "inventory-" + uuid.Must(uuid.NewV7()).String(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Condition:   condition,
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.garage.Inventory = append(d.garage.Inventory, item)
	return item, nil
}

// RemoveService deletes the service with the given id.
func (d *Dashboard) RemoveService(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := slices.IndexFunc(d.garage.Services, func(s models.Service) bool { return s.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrServiceNotFound, id)
	}
	d.garage.Services = slices.Delete(d.garage.Services, i, i+1)
	return nil
}

// RemoveInventory deletes the stock item with the given id.
func (d *Dashboard) RemoveInventory(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := slices.IndexFunc(d.garage.Inventory, func(it models.InventoryItem) bool { return it.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrInventoryNotFound, id)
	}
	d.garage.Inventory = slices.Delete(d.garage.Inventory, i, i+1)
	return nil
}

// Toggle24Hours flips the round-the-clock flag and returns the new value.
func (d *Dashboard) Toggle24Hours() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.garage.Is24Hours = !d.garage.Is24Hours
	return d.garage.Is24Hours
}

// Dashboards hands each owner their own working copy, created on first use
// from the template garage.
type Dashboards struct {
	mu       sync.Mutex
	template models.Garage
	byOwner  map[string]*Dashboard
	validate *validator.Validate
}

// NewDashboards creates the registry.
func NewDashboards(template models.Garage, validate *validator.Validate) *Dashboards {
	return &Dashboards{
		template: template.Clone(),
		byOwner:  make(map[string]*Dashboard),
		validate: validate,
	}
}

// For returns the dashboard of ownerID.
func (r *Dashboards) For(ownerID string) *Dashboard {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byOwner[ownerID]
	if !ok {
		d = NewDashboard(r.template, r.validate)
		r.byOwner[ownerID] = d
	}
	return d
}
