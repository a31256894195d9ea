package models

import (
	"errors"
	"fmt"
	"slices"
)

// VehicleType is the kind of vehicle a garage services or a report concerns.
type VehicleType string

const (
	VehicleCar   VehicleType = "car"
	VehicleTruck VehicleType = "truck"
	VehicleBike  VehicleType = "bike"
	VehicleBus   VehicleType = "bus"
	VehicleOther VehicleType = "other"
)

// IsValidVehicleType checks if a vehicle type is known
func IsValidVehicleType(vt VehicleType) bool {
	switch vt {
	case VehicleCar, VehicleTruck, VehicleBike, VehicleBus, VehicleOther:
		return true
	default:
		return false
	}
}

// Condition of an inventory item.
type Condition string

const (
	ConditionNew  Condition = "new"
	ConditionUsed Condition = "used"
)

// Service is a repair service offered by a single garage.
type Service struct {
	ID          string  `bson:"id" json:"id"`
	Name        string  `bson:"name" json:"name" validate:"required"`
	Description string  `bson:"description" json:"description" validate:"required"`
	Price       float64 `bson:"price" json:"price" validate:"gte=0"`
	Negotiable  bool    `bson:"negotiable" json:"negotiable"`
}

// InventoryItem is a part held in stock by a single garage.
type InventoryItem struct {
	ID          string    `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name" validate:"required"`
	Description string    `bson:"description" json:"description" validate:"required"`
	Price       float64   `bson:"price" json:"price" validate:"gte=0"`
	Quantity    int       `bson:"quantity" json:"quantity" validate:"gte=0"`
	Condition   Condition `bson:"condition" json:"condition" validate:"oneof=new used"`
}

// Garage represents a roadside garage. It owns its services and inventory.
type Garage struct {
	ID             string          `bson:"_id" json:"id"`
	Name           string          `bson:"name" json:"name"`
	Address        string          `bson:"address" json:"address"`
	Latitude       float64         `bson:"latitude" json:"latitude"`
	Longitude      float64         `bson:"longitude" json:"longitude"`
	PhoneNumber    string          `bson:"phone_number" json:"phoneNumber"`
	Is24Hours      bool            `bson:"is_24_hours" json:"is24Hours"`
	Rating         float64         `bson:"rating" json:"rating"`
	TotalRatings   int             `bson:"total_ratings" json:"totalRatings"`
	VehicleTypes   []VehicleType   `bson:"vehicle_types" json:"vehicleTypes"`
	Services       []Service       `bson:"services" json:"services"`
	Inventory      []InventoryItem `bson:"inventory" json:"inventory"`
	Certifications []string        `bson:"certifications" json:"certifications"`
}

var ErrRatingOutOfRange = errors.New("rating must be between 0 and 5")

// Validate checks the garage invariants.
func (g *Garage) Validate() error {
	if g.ID == "" {
		return errors.New("garage id is required")
	}
	if g.Rating < 0 || g.Rating > 5 {
		return fmt.Errorf("%w: %.1f", ErrRatingOutOfRange, g.Rating)
	}
	return nil
}

// Serves reports whether the garage works on the given vehicle type.
func (g *Garage) Serves(vt VehicleType) bool {
	for _, t := range g.VehicleTypes {
		if t == vt {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers never share the owned collections.
func (g Garage) Clone() Garage {
	out := g
	out.VehicleTypes = slices.Clone(g.VehicleTypes)
	out.Services = slices.Clone(g.Services)
	out.Inventory = slices.Clone(g.Inventory)
	out.Certifications = slices.Clone(g.Certifications)
	return out
}

// EntityID returns the garage id.
func (g Garage) EntityID() string { return g.ID }
