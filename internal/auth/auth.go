package auth

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ukydev/vehiclemate/internal/datasource"
	"github.com/ukydev/vehiclemate/internal/models"
	"github.com/ukydev/vehiclemate/internal/store"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// SignInLatency is the simulated round trip of login and registration.
const SignInLatency = 800 * time.Millisecond

// RootPath is where the UI goes after logout.
const RootPath = "/"

// Service handles the session: sign-in, sign-up, sign-out and the tokens
// that identify the signed-in user. Passwords are accepted but not checked.
type Service struct {
	jwtSecret []byte
	tokenExp  time.Duration
	store     *store.Store
	validate  *validator.Validate
	latency   time.Duration
	logger    logrus.FieldLogger
}

// Config holds the session settings.
type Config struct {
	JWTSecret    string
	TokenExpiry  time.Duration
	LatencyScale float64
}

// NewService creates a new authentication service
func NewService(cfg Config, st *store.Store, validate *validator.Validate, logger logrus.FieldLogger) *Service {
	secret := cfg.JWTSecret
	if secret == "" {
		secret = "default-secret-key-change-in-production"
	}
	exp := cfg.TokenExpiry
	if exp <= 0 {
		exp = 24 * time.Hour // default 24 hours
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		jwtSecret: []byte(secret),
		tokenExp:  exp,
		store:     st,
		validate:  validate,
		latency:   time.Duration(float64(SignInLatency) * cfg.LatencyScale),
		logger:    logger.WithField("service", "auth"),
	}
}

// Login signs a user in. The display name is the local part of the email
// and the role is always user. The same email always maps to the same id.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	if err := datasource.Delay(ctx, s.latency); err != nil {
		return nil, err
	}

	name, _, _ := strings.Cut(req.Email, "@")
	user := &models.User{
		ID:    "user-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(req.Email))).String()[:8],
		Name:  name,
		Email: req.Email,
		Role:  models.RoleUser,
	}
	return s.startSession(user)
}

// Register creates a user with the requested name and role and signs them in.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	if err := datasource.Delay(ctx, s.latency); err != nil {
		return nil, err
	}

	user := &models.User{
		ID:    fmt.Sprintf("user-%d", rand.IntN(1_000_000)),
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	}
	return s.startSession(user)
}

func (s *Service) startSession(user *models.User) (*models.User, error) {
	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	user.Token = token
	if !s.store.SaveValue(store.KeySession, user) {
		s.logger.WithField("user_id", user.ID).Warn("Session could not be persisted")
	}
	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("Signed in")
	return user, nil
}

// Logout clears the persisted session and returns the path to navigate to.
func (s *Service) Logout() string {
	s.store.Remove(store.KeySession)
	s.logger.Info("Signed out")
	return RootPath
}

// CurrentUser returns the persisted session user, or nil when there is none
// or the stored record is unreadable.
func (s *Service) CurrentUser() *models.User {
	var user models.User
	if !s.store.LoadValue(store.KeySession, &user) || user.ID == "" {
		return nil
	}
	return &user
}

// GenerateToken generates a JWT token for a user
func (s *Service) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     now.Add(s.tokenExp).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates a JWT token and returns the claims
func (s *Service) ValidateToken(tokenString string) (*models.Claims, error) {
	// Remove "Bearer " prefix if present
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	roleStr, ok := claims["role"].(string)
	if !ok || !models.IsValidRole(models.Role(roleStr)) {
		return nil, ErrInvalidToken
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &models.Claims{
		UserID: userID,
		Email:  email,
		Role:   models.Role(roleStr),
		Exp:    int64(exp),
	}, nil
}

// ExtractTokenFromHeader extracts token from Authorization header
func (s *Service) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}

	return parts[1], nil
}
