package handlers

import (
	"context"
	"net/http"

	"github.com/etendy/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RoleService is the interface that wraps methods for role administration
type RoleService interface {
	// Method ListUsers returns every user that has a role record, newest first.
	//
	// If some error occurs, the error will be returned together with "nil" value.
	ListUsers(ctx context.Context) ([]models.UserRole, error)
	// Method Promote turns a plain user into an admin.
	//
	// "targetUserID" parameter is the user to promote.
	// "actingUserID" parameter is the super admin making the change.
	//
	// If the user changes their own role, services.ErrSelfActionDenied will be returned.
	// If the target is not a plain user, services.ErrInvalidTransition will be returned.
	Promote(ctx context.Context, targetUserID, actingUserID string) error
	// Method Demote turns an admin back into a plain user.
	//
	// "targetUserID" parameter is the user to demote.
	// "actingUserID" parameter is the super admin making the change.
	//
	// If the user changes their own role, services.ErrSelfActionDenied will be returned.
	// If the target is not an admin, services.ErrInvalidTransition will be returned.
	Demote(ctx context.Context, targetUserID, actingUserID string) error
}

// AdminHandler handles admin-related HTTP requests
type AdminHandler struct {
	BaseHandler
	roleService RoleService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(roleService RoleService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler: BaseHandler{Logger: logger},
		roleService: roleService,
	}
}

// RegisterRoutes registers all admin handler routes
// Note: This assumes the router is already scoped to /api/v1 and restricted to super admins
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/users", h.ListUsers)
		r.Post("/users/{id}/promote", h.PromoteUser)
		r.Post("/users/{id}/demote", h.DemoteUser)
	})
}

// ListUsers handles GET /admin/users
// @Summary List users with roles
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.UserRole "Users with role records"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.roleService.ListUsers(r.Context())
	if err != nil {
		h.RespondServiceError(w, r, "failed to list users", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, users)
}

// PromoteUser handles POST /admin/users/{id}/promote
// @Summary Promote a user to admin
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "User ID"
// @Success 200 {object} map[string]string "User promoted"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Insufficient permissions or own role"
// @Failure 409 {object} map[string]string "User is not a plain user"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/users/{id}/promote [post]
func (h *AdminHandler) PromoteUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.roleService.Promote(r.Context(), chi.URLParam(r, "id"), identity.ID); err != nil {
		h.RespondServiceError(w, r, "failed to promote user", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "user promoted to admin"})
}

// DemoteUser handles POST /admin/users/{id}/demote
// @Summary Demote an admin to user
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "User ID"
// @Success 200 {object} map[string]string "User demoted"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Insufficient permissions or own role"
// @Failure 409 {object} map[string]string "User is not an admin"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/users/{id}/demote [post]
func (h *AdminHandler) DemoteUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.roleService.Demote(r.Context(), chi.URLParam(r, "id"), identity.ID); err != nil {
		h.RespondServiceError(w, r, "failed to demote user", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "admin demoted to user"})
}
