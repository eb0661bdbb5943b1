package handlers

import (
	"context"
	"net/http"

	"github.com/etendy/backend/internal/models"
	"github.com/etendy/backend/internal/restrictions"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PresetService is the interface that wraps methods for preset operations
type PresetService interface {
	// Method OwnerFor returns the owner identifier presets of identity are stored under.
	//
	// If the role lookup fails, the error will be returned together with empty string.
	OwnerFor(ctx context.Context, identity *models.Identity) (string, error)
	// Method Authorize checks that identity may modify the preset.
	//
	// "id" parameter is used to identify the preset.
	// "identity" parameter is the caller.
	//
	// If the preset does not exist, services.ErrNotFound will be returned.
	// If the caller neither owns it nor is a super admin, services.ErrForbidden will be returned.
	Authorize(ctx context.Context, id string, identity *models.Identity) error
	// Method Create sanitizes settings, validates restrictions and stores a new preset.
	//
	// "name" parameter is the preset name, stripped of markup.
	// "rawSettings" parameter is the editor state as sent by the client.
	// "owner" parameter is the owner identifier.
	// "restrictionsPartial" parameter holds the restrictions differing from the defaults.
	//
	// If validation fails, services.ErrValidation will be returned together with "nil" value.
	Create(ctx context.Context, name string, rawSettings any, owner string, restrictionsPartial restrictions.Document) (*models.PresetRecord, error)
	// Method Update replaces settings and merges restrictions of an active preset.
	//
	// "settings" and "restrictionsPatch" parameters left unset are not changed.
	//
	// If the preset is not active, services.ErrNotFound will be returned together with "nil" value.
	Update(ctx context.Context, id string, settings models.Optional[any], restrictionsPatch models.Optional[restrictions.Document]) (*models.PresetRecord, error)
	// Method Rename replaces the name of an active preset.
	//
	// If the name is empty after cleaning, services.ErrValidation will be returned together with "nil" value.
	Rename(ctx context.Context, id, newName string) (*models.PresetRecord, error)
	// Method SoftDelete marks a preset deleted. Deleting twice succeeds.
	//
	// If the preset does not exist, services.ErrNotFound will be returned.
	SoftDelete(ctx context.Context, id string) error
	// Method ListActiveForOwner returns the visible presets of an owner, newest first.
	ListActiveForOwner(ctx context.Context, owner string) ([]models.Preset, error)
	// Method GetActive returns a visible preset with its resolved restrictions.
	//
	// If the preset is not visible, services.ErrNotFound will be returned together with "nil" value.
	GetActive(ctx context.Context, id string) (*models.PresetRecord, error)
	// Method ShareURL returns the public link of a preset.
	ShareURL(id string) string
}

// PresetHandler handles preset-related HTTP requests
type PresetHandler struct {
	BaseHandler
	presetService PresetService
}

// NewPresetHandler creates a new preset handler
func NewPresetHandler(presetService PresetService, logger *zap.Logger) *PresetHandler {
	return &PresetHandler{
		BaseHandler:   BaseHandler{Logger: logger},
		presetService: presetService,
	}
}

// RegisterRoutes registers the preset routes that require a signed in caller
// Note: This assumes the router is already scoped to /api/v1
func (h *PresetHandler) RegisterRoutes(r chi.Router) {
	r.Route("/presets", func(r chi.Router) {
		r.Get("/", h.ListPresets)
		r.Post("/", h.CreatePreset)
		r.Patch("/{id}", h.UpdatePreset)
		r.Patch("/{id}/name", h.RenamePreset)
		r.Delete("/{id}", h.DeletePreset)
	})
}

// RegisterPublicRoutes registers the share link route on the root router
func (h *PresetHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/p/{id}", h.GetSharedPreset)
}

// ListPresets handles GET /presets
// @Summary List own presets
// @Description List the active presets owned by the caller, newest first
// @Tags presets
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.PresetListItem "List of presets"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /presets [get]
func (h *PresetHandler) ListPresets(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	owner, err := h.presetService.OwnerFor(r.Context(), identity)
	if err != nil {
		h.RespondServiceError(w, r, "failed to resolve preset owner", err)
		return
	}

	presets, err := h.presetService.ListActiveForOwner(r.Context(), owner)
	if err != nil {
		h.RespondServiceError(w, r, "failed to list presets", err)
		return
	}

	items := make([]models.PresetListItem, 0, len(presets))
	for _, preset := range presets {
		items = append(items, models.PresetListItem{
			ID:        preset.ID,
			Name:      preset.Name,
			Owner:     preset.Owner,
			ShareURL:  h.presetService.ShareURL(preset.ID),
			CreatedAt: preset.CreatedAt,
		})
	}

	h.RespondJSON(w, http.StatusOK, items)
}

// CreatePreset handles POST /presets
// @Summary Create a preset
// @Description Store the editor settings as a new preset owned by the caller
// @Tags presets
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreatePresetRequest true "Preset to create"
// @Success 201 {object} models.PresetRecord "Created preset"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /presets [post]
func (h *PresetHandler) CreatePreset(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req models.CreatePresetRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	owner, err := h.presetService.OwnerFor(r.Context(), identity)
	if err != nil {
		h.RespondServiceError(w, r, "failed to resolve preset owner", err)
		return
	}

	record, err := h.presetService.Create(r.Context(), req.Name, req.Settings, owner, req.Restrictions)
	if err != nil {
		h.RespondServiceError(w, r, "failed to create preset", err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, record)
}

// UpdatePreset handles PATCH /presets/{id}
// @Summary Update a preset
// @Description Replace the settings and merge restrictions of a preset. Keys left out are not changed.
// @Tags presets
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Preset ID"
// @Param request body models.UpdatePresetRequest true "Fields to update"
// @Success 200 {object} models.PresetRecord "Updated preset"
// @Failure 400 {object} map[string]string "Invalid request body or restrictions"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Preset belongs to another owner"
// @Failure 404 {object} map[string]string "Preset not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /presets/{id} [patch]
func (h *PresetHandler) UpdatePreset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req models.UpdatePresetRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.presetService.Update(r.Context(), id, req.Settings, req.Restrictions)
	if err != nil {
		h.RespondServiceError(w, r, "failed to update preset", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, record)
}

// RenamePreset handles PATCH /presets/{id}/name
// @Summary Rename a preset
// @Tags presets
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Preset ID"
// @Param request body models.RenamePresetRequest true "New name"
// @Success 200 {object} models.PresetRecord "Renamed preset"
// @Failure 400 {object} map[string]string "Invalid name"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Preset belongs to another owner"
// @Failure 404 {object} map[string]string "Preset not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /presets/{id}/name [patch]
func (h *PresetHandler) RenamePreset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req models.RenamePresetRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.presetService.Rename(r.Context(), id, req.Name)
	if err != nil {
		h.RespondServiceError(w, r, "failed to rename preset", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, record)
}

// DeletePreset handles DELETE /presets/{id}
// @Summary Delete a preset
// @Description Soft delete a preset. Deleting an already deleted preset succeeds.
// @Tags presets
// @Security ApiKeyAuth
// @Param id path string true "Preset ID"
// @Success 204 "Preset deleted"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Preset belongs to another owner"
// @Failure 404 {object} map[string]string "Preset not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /presets/{id} [delete]
func (h *PresetHandler) DeletePreset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}

	if err := h.presetService.SoftDelete(r.Context(), id); err != nil {
		h.RespondServiceError(w, r, "failed to delete preset", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetSharedPreset handles GET /p/{id}
// @Summary Open a shared preset
// @Description Public read of a preset through its share link
// @Tags presets
// @Produce json
// @Param id path string true "Preset ID"
// @Success 200 {object} models.PublicPresetResponse "Shared preset"
// @Failure 404 {object} map[string]string "Preset not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /p/{id} [get]
func (h *PresetHandler) GetSharedPreset(w http.ResponseWriter, r *http.Request) {
	record, err := h.presetService.GetActive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.RespondServiceError(w, r, "failed to get shared preset", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, models.PublicPresetResponse{
		ID:           record.ID,
		Name:         record.Name,
		Settings:     record.Settings,
		Restrictions: record.ResolvedRestrictions,
	})
}

// authorize checks that the caller may modify the preset named in the path and returns its id
func (h *PresetHandler) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity, ok := h.identity(w, r)
	if !ok {
		return "", false
	}

	id := chi.URLParam(r, "id")
	if err := h.presetService.Authorize(r.Context(), id, identity); err != nil {
		h.RespondServiceError(w, r, "failed to authorize preset access", err)
		return "", false
	}
	return id, true
}
