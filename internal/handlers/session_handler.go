package handlers

import (
	"context"
	"net/http"

	"github.com/etendy/backend/internal/auth"
	"github.com/etendy/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CurrentRoleService returns the signed in user together with their role
type CurrentRoleService interface {
	CurrentRole(ctx context.Context) (*models.CurrentUserResponse, error)
}

// SignOutService ends the session of the signed in user
type SignOutService interface {
	SignOut(ctx context.Context) error
}

// SessionHandler handles requests about the caller's own session
type SessionHandler struct {
	BaseHandler
	roleService CurrentRoleService
	identity    SignOutService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(roleService CurrentRoleService, identity SignOutService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler: BaseHandler{Logger: logger},
		roleService: roleService,
		identity:    identity,
	}
}

// RegisterRoutes registers the session routes
// Note: This assumes the router is already scoped to /api/v1 and behind the auth middleware
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.GetMe)
	r.Post("/auth/sign-out", h.SignOut)
}

// GetMe handles GET /me
// @Summary Get the signed in user
// @Tags session
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.CurrentUserResponse "Current user with role"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /me [get]
func (h *SessionHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	current, err := h.roleService.CurrentRole(r.Context())
	if err != nil {
		h.RespondServiceError(w, r, "failed to get current user", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, current)
}

// SignOut handles POST /auth/sign-out
// @Summary Sign out
// @Description Revoke the access token of the request and clear the token cookie
// @Tags session
// @Security ApiKeyAuth
// @Success 204 "Signed out"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/sign-out [post]
func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.SignOut(r.Context()); err != nil {
		h.RespondServiceError(w, r, "failed to sign out", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
