package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/vehiclemate/internal/models"
	"github.com/ukydev/vehiclemate/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store, store.Backend) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	backend := store.NewMemoryBackend()
	st := store.New(backend, logger)
	return NewService(Config{JWTSecret: "test-secret"}, st, nil, logger), st, backend
}

func TestNewService_Defaults(t *testing.T) {
	service, _, _ := newTestService(t)
	assert.NotEmpty(t, service.jwtSecret)
	assert.Equal(t, 24*time.Hour, service.tokenExp)
	assert.Zero(t, service.latency)

	scaled := NewService(Config{LatencyScale: 1}, nil, nil, nil)
	assert.Equal(t, SignInLatency, scaled.latency)
}

func TestService_Login(t *testing.T) {
	service, _, _ := newTestService(t)

	user, err := service.Login(context.Background(), models.LoginRequest{Email: "ravi.kumar@example.com", Password: "anything"})
	require.NoError(t, err)
	assert.Equal(t, "ravi.kumar", user.Name)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEmpty(t, user.Token)
	assert.Regexp(t, `^user-[0-9a-f]{8}$`, user.ID)

	again, err := service.Login(context.Background(), models.LoginRequest{Email: "ravi.kumar@example.com", Password: "other"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	assert.Equal(t, again, service.CurrentUser())
}

func TestService_LoginValidation(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = service.Login(context.Background(), models.LoginRequest{Email: "a@b.co"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, service.CurrentUser())
}

func TestService_LoginHonoursCancellation(t *testing.T) {
	logger, _ := test.NewNullLogger()
	service := NewService(Config{LatencyScale: 1000}, store.New(store.NewMemoryBackend(), logger), nil, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := service.Login(ctx, models.LoginRequest{Email: "a@b.co", Password: "x"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, service.CurrentUser())
}

func TestService_RegisterGarageOwner(t *testing.T) {
	service, _, _ := newTestService(t)

	user, err := service.Register(context.Background(), models.RegisterRequest{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "secret",
		Role:     models.RoleGarageOwner,
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha", user.Name)
	assert.Equal(t, models.RoleGarageOwner, user.Role)
	assert.Regexp(t, `^user-\d+$`, user.ID)

	current := service.CurrentUser()
	require.NotNil(t, current)
	assert.Equal(t, user.ID, current.ID)
	assert.Equal(t, models.RoleGarageOwner, current.Role)

	_, err = service.Register(context.Background(), models.RegisterRequest{Name: "X", Email: "x@example.com", Password: "p", Role: "admin"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_LogoutAndCorruptSession(t *testing.T) {
	service, _, backend := newTestService(t)

	_, err := service.Login(context.Background(), models.LoginRequest{Email: "a@b.co", Password: "x"})
	require.NoError(t, err)

	assert.Equal(t, "/", service.Logout())
	assert.Nil(t, service.CurrentUser())

	require.NoError(t, backend.Set(store.KeySession, []byte("{not json")))
	assert.Nil(t, service.CurrentUser())
}

func TestService_ValidateToken(t *testing.T) {
	service, _, _ := newTestService(t)

	user := &models.User{ID: "user-1", Email: "owner@example.com", Role: models.RoleGarageOwner}
	token, err := service.GenerateToken(user)
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.Equal(t, models.RoleGarageOwner, claims.Role)

	// Test token with Bearer prefix
	_, err = service.ValidateToken("Bearer " + token)
	assert.NoError(t, err)

	_, err = service.ValidateToken("invalid-token")
	assert.Equal(t, ErrInvalidToken, err)

	other := NewService(Config{JWTSecret: "another-secret"}, nil, nil, nil)
	_, err = other.ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ValidateTokenExpiredAndBadRole(t *testing.T) {
	service, _, _ := newTestService(t)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-1",
		"role":    "user",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString(service.jwtSecret)
	require.NoError(t, err)
	_, err = service.ValidateToken(signed)
	assert.Equal(t, ErrExpiredToken, err)

	badRole := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-1",
		"role":    "admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err = badRole.SignedString(service.jwtSecret)
	require.NoError(t, err)
	_, err = service.ValidateToken(signed)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ExtractTokenFromHeader(t *testing.T) {
	service, _, _ := newTestService(t)

	extracted, err := service.ExtractTokenFromHeader("Bearer valid-token")
	assert.NoError(t, err)
	assert.Equal(t, "valid-token", extracted)

	for _, header := range []string{"", "InvalidFormat", "Bearer ", "Basic abc"} {
		_, err = service.ExtractTokenFromHeader(header)
		assert.Equal(t, ErrInvalidToken, err, header)
	}
}
