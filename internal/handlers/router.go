package handlers

import (
	"net/http"

	"github.com/ukydev/vehiclemate/internal/middleware"
	"github.com/ukydev/vehiclemate/internal/models"
)

// rateWindowSeconds is the rate limiter window.
const rateWindowSeconds = 60

// Handlers groups every HTTP handler of the service.
type Handlers struct {
	Auth       *AuthHandler
	Garages    *GarageHandler
	Dashboard  *DashboardHandler
	Breakdowns *BreakdownHandler
	Community  *CommunityHandler
	Locations  *LocationHandler
	Towing     *TowingHandler
	Status     *StatusHandler
	// Stream serves /ws; nil disables it.
	Stream http.HandlerFunc
}

// NewRouter registers the routes and wraps them in authentication and rate
// limiting. A rateLimit of zero disables the limiter.
func NewRouter(h Handlers, authMW *middleware.AuthMiddleware, limiter *middleware.RateLimitMiddleware, rateLimit int) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Status.Health)

	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.HandleFunc("GET /api/auth/me", h.Auth.Me)
	mux.HandleFunc("GET /api/state", h.Auth.State)

	mux.HandleFunc("GET /api/garages", h.Garages.List)
	mux.HandleFunc("GET /api/garages/nearby", h.Garages.Nearby)
	mux.HandleFunc("GET /api/garages/{id}", h.Garages.Get)

	owner := authMW.RequireRole(models.RoleGarageOwner)
	mux.Handle("GET /api/dashboard", owner(http.HandlerFunc(h.Dashboard.Get)))
	mux.Handle("POST /api/dashboard/services", owner(http.HandlerFunc(h.Dashboard.AddService)))
	mux.Handle("DELETE /api/dashboard/services/{id}", owner(http.HandlerFunc(h.Dashboard.RemoveService)))
	mux.Handle("POST /api/dashboard/inventory", owner(http.HandlerFunc(h.Dashboard.AddInventory)))
	mux.Handle("DELETE /api/dashboard/inventory/{id}", owner(http.HandlerFunc(h.Dashboard.RemoveInventory)))
	mux.Handle("POST /api/dashboard/open24", owner(http.HandlerFunc(h.Dashboard.Toggle24Hours)))

	mux.HandleFunc("GET /api/issues", h.Breakdowns.Issues)
	mux.HandleFunc("POST /api/breakdowns", h.Breakdowns.Report)
	mux.HandleFunc("GET /api/breakdowns", h.Breakdowns.List)
	mux.HandleFunc("GET /api/breakdowns/pending", h.Breakdowns.Pending)
	mux.HandleFunc("POST /api/breakdowns/sync", h.Breakdowns.Sync)
	mux.HandleFunc("GET /api/breakdowns/{id}", h.Breakdowns.Get)
	mux.Handle("POST /api/breakdowns/{id}/advance", owner(http.HandlerFunc(h.Breakdowns.Advance)))

	mux.HandleFunc("GET /api/community/posts", h.Community.List)
	mux.HandleFunc("POST /api/community/posts", h.Community.CreatePost)
	mux.HandleFunc("GET /api/community/posts/{id}", h.Community.Get)
	mux.HandleFunc("POST /api/community/posts/{id}/comments", h.Community.AddComment)
	mux.HandleFunc("POST /api/community/posts/{id}/like", h.Community.ToggleLike)

	mux.HandleFunc("GET /api/locations/current", h.Locations.Current)
	mux.HandleFunc("GET /api/locations/resolve", h.Locations.Resolve)
	mux.HandleFunc("GET /api/locations/recent", h.Locations.Recent)
	mux.HandleFunc("POST /api/locations/recent", h.Locations.Remember)

	mux.HandleFunc("POST /api/towing", h.Towing.Request)
	mux.HandleFunc("GET /api/towing", h.Towing.List)

	mux.HandleFunc("GET /api/emergency", h.Status.Emergency)
	mux.HandleFunc("GET /api/connectivity", h.Status.Connectivity)
	mux.HandleFunc("POST /api/connectivity", h.Status.SetConnectivity)
	mux.HandleFunc("GET /api/notifications", h.Status.Notifications)

	if h.Stream != nil {
		mux.HandleFunc("GET /ws", h.Stream)
	}

	var handler http.Handler = authMW.Authenticate(mux)
	if limiter != nil {
		handler = limiter.RateLimit(rateLimit, rateWindowSeconds)(handler)
	}
	return handler
}
