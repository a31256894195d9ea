package models

// Location represents a geographical location with latitude and longitude coordinates.
type Location struct {
	Latitude  float64 `bson:"latitude" json:"latitude" validate:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude" validate:"longitude"`
	Address   string  `bson:"address,omitempty" json:"address,omitempty"`
}
