package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/vehiclemate/internal/app"
	"github.com/ukydev/vehiclemate/internal/auth"
	"github.com/ukydev/vehiclemate/internal/httputil"
	"github.com/ukydev/vehiclemate/internal/middleware"
	"github.com/ukydev/vehiclemate/internal/models"
)

// SessionResponse is returned on sign-in and sign-up.
type SessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// StateResponse describes the application state.
type StateResponse struct {
	User    *models.User `json:"user"`
	Loading bool         `json:"loading"`
	Offline bool         `json:"offline"`
}

// AuthHandler handles authentication requests
type AuthHandler struct {
	app    *app.App
	logger logrus.FieldLogger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(a *app.App, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{app: a, logger: handlerLogger(logger, "auth")}
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.JSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	user, err := h.app.Login(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httputil.JSONResponse(w, SessionResponse{Token: user.Token, User: user}, http.StatusOK)
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.JSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	user, err := h.app.Register(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httputil.JSONResponse(w, SessionResponse{Token: user.Token, User: user}, http.StatusCreated)
}

// Logout ends the session and tells the client where to go. Only the
// caller's own persisted session is cleared.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	path := auth.RootPath
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		if current := h.app.User(); current != nil && current.ID == claims.UserID {
			path = h.app.Logout()
		}
	}
	httputil.JSONResponse(w, map[string]string{"redirect": path}, http.StatusOK)
}

// Me returns the identity carried by the request token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := h.caller(r)
	if user == nil {
		httputil.JSONError(w, "User context not found", http.StatusUnauthorized)
		return
	}
	httputil.JSONResponse(w, user, http.StatusOK)
}

// State returns the application state as seen by the caller: its own
// identity, whether the session is still loading and the connectivity.
func (h *AuthHandler) State(w http.ResponseWriter, r *http.Request) {
	httputil.JSONResponse(w, StateResponse{
		User:    h.caller(r),
		Loading: h.app.Loading(),
		Offline: h.app.Offline(),
	}, http.StatusOK)
}

// caller returns the user identified by the request token, or nil.
func (h *AuthHandler) caller(r *http.Request) *models.User {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return nil
	}
	user := h.app.User()
	if user == nil || user.ID != claims.UserID {
		user = &models.User{ID: claims.UserID, Email: claims.Email, Role: claims.Role}
	}
	user.Token = ""
	return user
}

func handlerLogger(logger logrus.FieldLogger, name string) logrus.FieldLogger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return logger.WithField("handler", name)
}
