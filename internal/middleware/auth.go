package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/vehiclemate/internal/auth"
	"github.com/ukydev/vehiclemate/internal/httputil"
	"github.com/ukydev/vehiclemate/internal/models"
	"github.com/ukydev/vehiclemate/internal/notify"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	UserContextKey contextKey = "user"
)

// LoginPath is where unauthenticated users are sent.
const LoginPath = "/login"

var deniedMessages = map[models.Role]string{
	models.RoleGarageOwner: "Only garage owners can access this page",
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authService *auth.Service
	notifier    notify.Notifier
	logger      logrus.FieldLogger
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *auth.Service, notifier notify.Notifier, logger logrus.FieldLogger) *AuthMiddleware {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthMiddleware{
		authService: authService,
		notifier:    notifier,
		logger:      logger.WithField("component", "auth_middleware"),
	}
}

// Authenticate validates JWT tokens and adds user context. Public routes
// pass through, carrying the claims when a valid token is present anyway.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")

		if isPublic(r) {
			if authHeader != "" {
				if claims, err := m.claims(authHeader); err == nil {
					r = r.WithContext(WithUser(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
			return
		}

		if authHeader == "" {
			httputil.JSONRedirect(w, "Authorization header required", LoginPath, http.StatusUnauthorized)
			return
		}

		claims, err := m.claims(authHeader)
		if err != nil {
			m.logger.WithError(err).WithField("path", r.URL.Path).Debug("Rejected token")
			httputil.JSONRedirect(w, "Invalid token", LoginPath, http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims)))
	})
}

// claims accepts only "Bearer <token>" headers.
func (m *AuthMiddleware) claims(authHeader string) (*models.Claims, error) {
	token, err := m.authService.ExtractTokenFromHeader(authHeader)
	if err != nil {
		return nil, err
	}
	return m.authService.ValidateToken(token)
}

// RequireRole middleware checks if the user has the required role. Refused
// users are told why and pointed at the page to go to instead.
func (m *AuthMiddleware) RequireRole(requiredRole models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserFromContext(r.Context())
			if !ok {
				m.notify("Please login to access the garage dashboard")
				httputil.JSONRedirect(w, "User context not found", LoginPath, http.StatusUnauthorized)
				return
			}

			if claims.Role != requiredRole {
				msg, ok := deniedMessages[requiredRole]
				if !ok {
					msg = "Insufficient permissions"
				}
				m.notify(msg)
				m.logger.WithFields(logrus.Fields{
					"user_id": claims.UserID,
					"role":    claims.Role,
					"path":    r.URL.Path,
				}).Warn("Role check failed")
				httputil.JSONRedirect(w, msg, auth.RootPath, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *AuthMiddleware) notify(message string) {
	if m.notifier != nil {
		m.notifier.Notify(notify.LevelError, message)
	}
}

// GetUserFromContext extracts user claims from request context
func GetUserFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*models.Claims)
	return claims, ok
}

// WithUser returns a context carrying the claims.
func WithUser(ctx context.Context, claims *models.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

// isPublic determines if authentication should be skipped for a request
func isPublic(r *http.Request) bool {
	skipPaths := []string{
		"/api/auth/login",
		"/api/auth/register",
		"/api/emergency",
		"/api/issues",
		"/api/connectivity",
		"/api/notifications",
		"/health",
		"/ws",
	}
	for _, skipPath := range skipPaths {
		if strings.HasPrefix(r.URL.Path, skipPath) {
			return true
		}
	}

	// Browsing does not need an account.
	if r.Method == http.MethodGet {
		for _, p := range []string{"/api/garages", "/api/community", "/api/locations", "/api/state"} {
			if strings.HasPrefix(r.URL.Path, p) {
				return true
			}
		}
	}
	return false
}

// RateLimitMiddleware provides basic rate limiting
type RateLimitMiddleware struct {
	requests map[string][]int64 // IP -> timestamps
	mu       sync.RWMutex
	now      func() time.Time
}

// NewRateLimitMiddleware creates a new rate limiting middleware
func NewRateLimitMiddleware() *RateLimitMiddleware {
	return &RateLimitMiddleware{
		requests: make(map[string][]int64),
		now:      time.Now,
	}
}

// RateLimit applies rate limiting based on IP address. A non-positive
// maxRequests disables the limit.
func (m *RateLimitMiddleware) RateLimit(maxRequests int, windowSeconds int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxRequests <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			now := m.now().Unix()
			windowStart := now - int64(windowSeconds)

			m.mu.Lock()
			var valid []int64
			for _, ts := range m.requests[clientIP] {
				if ts > windowStart {
					valid = append(valid, ts)
				}
			}

			if len(valid) >= maxRequests {
				m.requests[clientIP] = valid
				m.mu.Unlock()
				httputil.JSONError(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			m.requests[clientIP] = append(valid, now)
			m.mu.Unlock()

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	// Check for forwarded headers first
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	ip := r.RemoteAddr
	if colonIndex := strings.LastIndex(ip, ":"); colonIndex != -1 {
		ip = ip[:colonIndex]
	}
	return ip
}
