package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/vehiclemate/internal/community"
	"github.com/ukydev/vehiclemate/internal/httputil"
	"github.com/ukydev/vehiclemate/internal/middleware"
	"github.com/ukydev/vehiclemate/internal/models"
)

// CommunityHandler serves the forum.
type CommunityHandler struct {
	community *community.Service
	logger    logrus.FieldLogger
}

// NewCommunityHandler creates a new community handler
func NewCommunityHandler(svc *community.Service, logger logrus.FieldLogger) *CommunityHandler {
	return &CommunityHandler{community: svc, logger: handlerLogger(logger, "community")}
}

// List handles GET /api/community/posts
func (h *CommunityHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.community.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httputil.JSONResponse(w, res, http.StatusOK)
}

// Get handles GET /api/community/posts/{id}
func (h *CommunityHandler) Get(w http.ResponseWriter, r *http.Request) {
	res, err := h.community.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httputil.JSONResponse(w, res, http.StatusOK)
}

// CreatePost handles POST /api/community/posts. The author is the
// signed-in user.
func (h *CommunityHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in models.PostInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.JSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		in.UserID = claims.UserID
	}

	res, err := h.community.CreatePost(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httputil.JSONResponse(w, res, http.StatusCreated)
}

// AddComment handles POST /api/community/posts/{id}/comments
func (h *CommunityHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var in models.CommentInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.JSONError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		in.UserID = claims.UserID
	}

	res, err := h.community.AddComment(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httputil.JSONResponse(w, res, http.StatusCreated)
}

// ToggleLike handles POST /api/community/posts/{id}/like
func (h *CommunityHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.JSONRedirect(w, "User context not found", middleware.LoginPath, http.StatusUnauthorized)
		return
	}
	state, err := h.community.ToggleLike(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httputil.JSONResponse(w, state, http.StatusOK)
}
