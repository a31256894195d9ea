package garages

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/vehiclemate/internal/datasource"
	"github.com/ukydev/vehiclemate/internal/models"
)

// DefaultLatency mirrors the round trips of the garage directory.
var DefaultLatency = datasource.Latency{
	List:   800 * time.Millisecond,
	Get:    500 * time.Millisecond,
	Create: 800 * time.Millisecond,
	Update: 500 * time.Millisecond,
}

// SeedGarages returns a fresh copy of the built-in garage directory.
func SeedGarages() []models.Garage {
	return []models.Garage{
		{
			ID:           "garage-1",
			Name:         "Highway Truck Services",
			Address:      "Highway 66, Near 45 km marker",
			Latitude:     28.7041,
			Longitude:    77.1025,
			PhoneNumber:  "+91-9876543210",
			Is24Hours:    true,
			Rating:       4.7,
			TotalRatings: 120,
			VehicleTypes: []models.VehicleType{models.VehicleTruck, models.VehicleBus},
			Services: []models.Service{
				{ID: "service-1", Name: "Tire Replacement", Description: "Replace damaged tires with new ones", Price: 1500, Negotiable: true},
				{ID: "service-2", Name: "Engine Repair", Description: "Diagnose and fix engine issues", Price: 5000, Negotiable: true},
			},
			Inventory: []models.InventoryItem{
				{ID: "inventory-1", Name: "Truck Tires", Description: "Heavy-duty tires for trucks", Price: 8000, Quantity: 12, Condition: models.ConditionNew},
			},
			Certifications: []string{"Tata Authorized", "Ashok Leyland Certified"},
		},
		{
			ID:           "garage-2",
			Name:         "Quick Fix Auto",
			Address:      "Highway 48, Near 78 km marker",
			Latitude:     28.6139,
			Longitude:    77.2090,
			PhoneNumber:  "+91-9876543211",
			Is24Hours:    false,
			Rating:       4.2,
			TotalRatings: 85,
			VehicleTypes: []models.VehicleType{models.VehicleCar, models.VehicleBike},
			Services: []models.Service{
				{ID: "service-3", Name: "Oil Change", Description: "Replace engine oil and filter", Price: 1200},
				{ID: "service-4", Name: "Battery Jump Start", Description: "Jump start your vehicle's dead battery", Price: 500},
			},
			Inventory: []models.InventoryItem{
				{ID: "inventory-2", Name: "Car Battery", Description: "Battery for passenger cars", Price: 4500, Quantity: 5, Condition: models.ConditionNew},
			},
			Certifications: []string{"Maruti Suzuki Authorized"},
		},
		{
			ID:           "garage-3",
			Name:         "Truck Masters",
			Address:      "Highway 2, Near 112 km marker",
			Latitude:     28.5355,
			Longitude:    77.3910,
			PhoneNumber:  "+91-9876543212",
			Is24Hours:    true,
			Rating:       4.9,
			TotalRatings: 210,
			VehicleTypes: []models.VehicleType{models.VehicleTruck},
			Services: []models.Service{
				{ID: "service-5", Name: "Full Service", Description: "Complete truck service and maintenance", Price: 8000, Negotiable: true},
				{ID: "service-6", Name: "Hydraulics Repair", Description: "Repair hydraulic systems for trucks", Price: 6000, Negotiable: true},
			},
			Inventory: []models.InventoryItem{
				{ID: "inventory-3", Name: "Brake Pads", Description: "Heavy duty brake pads for trucks", Price: 3500, Quantity: 8, Condition: models.ConditionNew},
				{ID: "inventory-4", Name: "Used Engine Parts", Description: "Various used engine parts in good condition", Price: 12000, Quantity: 3, Condition: models.ConditionUsed},
			},
			Certifications: []string{"Tata Certified", "Mahindra Authorized", "Volvo Partner"},
		},
	}
}

// NewSeedSource creates the in-memory garage directory.
func NewSeedSource(cfg datasource.Config, logger logrus.FieldLogger) *datasource.Seed[models.Garage] {
	return datasource.NewSeed("garages", SeedGarages(), DefaultLatency, cfg, logger)
}
