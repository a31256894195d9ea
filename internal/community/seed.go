package community

import (
	"time"

	"github.com/ukydev/vehiclemate/internal/models"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SeedPosts returns a fresh copy of the built-in forum threads.
func SeedPosts() []models.ForumPost {
	return []models.ForumPost{
		{
			ID:        "post-1",
			UserID:    "user-123",
			UserName:  "TruckDriver123",
			Title:     "Best garages on Mumbai-Pune highway?",
			Content:   "I regularly drive between Mumbai and Pune. Can experienced drivers recommend reliable garages on this route? Especially ones that service Tata trucks at reasonable prices.",
			CreatedAt: at("2023-10-15T08:30:00Z"),
			Likes:     24,
			Comments: []models.ForumComment{
				{ID: "comment-1", UserID: "user-456", UserName: "HighwayHelper", Content: "Try Highway Truck Services near the 45km marker. They have great service for Tata trucks and fair pricing.", CreatedAt: at("2023-10-15T09:15:00Z")},
				{ID: "comment-2", UserID: "user-789", UserName: "ExpressTrucker", Content: "I've had good experiences with Truck Masters. They're open 24/7 and have skilled mechanics.", CreatedAt: at("2023-10-15T10:20:00Z")},
			},
			Tags: []string{"mumbai-pune", "garage-recommendation", "tata-trucks"},
		},
		{
			ID:        "post-2",
			UserID:    "user-456",
			UserName:  "HighwayHelper",
			Title:     "Warning: Road construction on NH8",
			Content:   "Heavy construction ongoing on NH8 between Delhi and Jaipur. Expect delays of 1-2 hours. Alternative routes recommended for the next 2 weeks.",
			CreatedAt: at("2023-10-16T14:45:00Z"),
			Likes:     56,
			Comments: []models.ForumComment{
				{ID: "comment-3", UserID: "user-123", UserName: "TruckDriver123", Content: "Thanks for the heads up! I'll take the NH48 instead.", CreatedAt: at("2023-10-16T15:10:00Z")},
			},
			Tags: []string{"road-alert", "nh8", "delhi-jaipur"},
		},
		{
			ID:        "post-3",
			UserID:    "user-789",
			UserName:  "ExpressTrucker",
			Title:     "Tips for maintaining truck brakes during monsoon",
			Content:   "I've been driving for 15 years and have learned that brake maintenance is crucial during monsoon season. Here are some tips to avoid brake failure on wet roads...",
			CreatedAt: at("2023-10-17T11:20:00Z"),
			Likes:     89,
			Comments:  []models.ForumComment{},
			Tags:      []string{"maintenance-tips", "truck-brakes", "monsoon-driving"},
		},
	}
}
