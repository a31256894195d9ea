package models

import "time"

// TowingRequest is a request to tow a vehicle between two places.
type TowingRequest struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"userId"`
	Pickup    string    `bson:"pickup" json:"pickup" validate:"required"`
	Dropoff   string    `bson:"dropoff" json:"dropoff" validate:"required"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	Status    string    `bson:"status" json:"status"`
}

// EmergencyContact is a phone line shown on the SOS page.
type EmergencyContact struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

// EmergencyContacts are the fixed SOS numbers.
var EmergencyContacts = []EmergencyContact{
	{Name: "Highway Patrol", Number: "1-800-HIGHWAY"},
	{Name: "National Emergency", Number: "911"},
	{Name: "Police Control Room", Number: "100"},
}

// SafetyTips are shown alongside the emergency contacts.
var SafetyTips = []string{
	"Turn on hazard lights and place warning triangles",
	"Move to a safe spot away from traffic",
	"Keep emergency contacts readily available",
	"Always carry a basic emergency kit",
	"Stay inside your vehicle if conditions are unsafe",
}
