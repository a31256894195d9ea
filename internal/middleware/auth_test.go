package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/vehiclemate/internal/auth"
	"github.com/ukydev/vehiclemate/internal/models"
	"github.com/ukydev/vehiclemate/internal/notify"
)

func newTestMiddleware(t *testing.T) (*AuthMiddleware, *auth.Service, *notify.Feed) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	authService := auth.NewService(auth.Config{JWTSecret: "test-secret"}, nil, nil, logger)
	feed := notify.NewFeed(0, logger)
	return NewAuthMiddleware(authService, feed, logger), authService, feed
}

func tokenFor(t *testing.T, s *auth.Service, role models.Role) string {
	t.Helper()
	token, err := s.GenerateToken(&models.User{ID: "user-1", Email: "owner@example.com", Role: role})
	require.NoError(t, err)
	return token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	middleware, authService, _ := newTestMiddleware(t)

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/breakdowns", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, authService, models.RoleUser))
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
			claims, ok := GetUserFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, "user-1", claims.UserID)
			assert.Equal(t, models.RoleUser, claims.Role)
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing authorization header", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/breakdowns", nil)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, LoginPath, decodeBody(t, w)["redirect"])
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/towing", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token without bearer scheme", func(t *testing.T) {
		for _, header := range []string{
			tokenFor(t, authService, models.RoleUser),
			"Basic " + tokenFor(t, authService, models.RoleUser),
			"Bearer",
		} {
			req := httptest.NewRequest("POST", "/api/towing", nil)
			req.Header.Set("Authorization", header)
			w := httptest.NewRecorder()

			handlerCalled := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
			})

			middleware.Authenticate(handler).ServeHTTP(w, req)
			assert.False(t, handlerCalled, header)
			assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		}
	})

	t.Run("public paths", func(t *testing.T) {
		for _, tc := range []struct{ method, path string }{
			{"POST", "/api/auth/login"},
			{"POST", "/api/auth/register"},
			{"GET", "/health"},
			{"GET", "/api/emergency"},
			{"GET", "/api/garages/garage-1"},
			{"GET", "/api/community/posts"},
			{"POST", "/api/connectivity"},
		} {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()
			handlerCalled := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
			})

			middleware.Authenticate(handler).ServeHTTP(w, req)
			assert.True(t, handlerCalled, tc.path)
			assert.Equal(t, http.StatusOK, w.Code, tc.path)
		}
	})

	t.Run("writes to browsable paths need a token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/community/posts", nil)
		w := httptest.NewRecorder()
		middleware.Authenticate(http.NotFoundHandler()).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("public path keeps claims of a valid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/garages", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, authService, models.RoleGarageOwner))
		w := httptest.NewRecorder()

		var claims *models.Claims
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ = GetUserFromContext(r.Context())
		})
		middleware.Authenticate(handler).ServeHTTP(w, req)
		require.NotNil(t, claims)
		assert.Equal(t, models.RoleGarageOwner, claims.Role)
	})
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	middleware, authService, feed := newTestMiddleware(t)

	t.Run("garage owner reaches the dashboard", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, authService, models.RoleGarageOwner))
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		authHandler := middleware.Authenticate(middleware.RequireRole(models.RoleGarageOwner)(handler))
		authHandler.ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("plain user is sent home", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, authService, models.RoleUser))
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		authHandler := middleware.Authenticate(middleware.RequireRole(models.RoleGarageOwner)(handler))
		authHandler.ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusForbidden, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "/", body["redirect"])
		assert.Equal(t, "Only garage owners can access this page", body["error"])

		recent := feed.Recent()
		require.NotEmpty(t, recent)
		assert.Equal(t, "Only garage owners can access this page", recent[len(recent)-1].Message)
		assert.Equal(t, notify.LevelError, recent[len(recent)-1].Level)
	})

	t.Run("no claims", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/dashboard", nil)
		w := httptest.NewRecorder()
		middleware.RequireRole(models.RoleGarageOwner)(http.NotFoundHandler()).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, LoginPath, decodeBody(t, w)["redirect"])
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	middleware := NewRateLimitMiddleware()

	t.Run("rate limit not exceeded", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/test", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		middleware.RateLimit(5, 60)(handler).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rate limit exceeded", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/test", nil)
		req.RemoteAddr = "192.168.1.2:12345"
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		rateLimitHandler := middleware.RateLimit(1, 60)(handler)

		rateLimitHandler.ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		handlerCalled = false
		rateLimitHandler.ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})

	t.Run("window expires", func(t *testing.T) {
		limiter := NewRateLimitMiddleware()
		now := time.Unix(1_700_000_000, 0)
		limiter.now = func() time.Time { return now }

		req := httptest.NewRequest("GET", "/api/test", nil)
		req.RemoteAddr = "10.0.0.1:1"
		h := limiter.RateLimit(1, 60)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		now = now.Add(61 * time.Second)
		w = httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("disabled", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/test", nil)
		h := middleware.RateLimit(0, 60)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.9:5555"
	assert.Equal(t, "192.168.1.9", getClientIP(req))

	req.Header.Set("X-Real-IP", "10.1.1.1")
	assert.Equal(t, "10.1.1.1", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", getClientIP(req))
}

func TestGetUserFromContext(t *testing.T) {
	claims := &models.Claims{UserID: "test-id", Role: models.RoleUser}

	retrieved, ok := GetUserFromContext(WithUser(context.Background(), claims))
	assert.True(t, ok)
	assert.Equal(t, claims, retrieved)

	_, ok = GetUserFromContext(context.Background())
	assert.False(t, ok)
}
