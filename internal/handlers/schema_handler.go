package handlers

import (
	"net/http"

	"github.com/etendy/backend/internal/restrictions"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RestrictionSchemaResponse describes the restriction categories the editor can render
type RestrictionSchemaResponse struct {
	Categories []restrictions.Category `json:"categories"`
	Defaults   restrictions.Document   `json:"defaults"`
	Fonts      []string                `json:"fonts"`
}

// SchemaHandler serves the restriction schema
type SchemaHandler struct {
	BaseHandler
}

// NewSchemaHandler creates a new schema handler
func NewSchemaHandler(logger *zap.Logger) *SchemaHandler {
	return &SchemaHandler{BaseHandler: BaseHandler{Logger: logger}}
}

// RegisterRoutes registers the schema route
func (h *SchemaHandler) RegisterRoutes(r chi.Router) {
	r.Get("/restrictions/schema", h.GetSchema)
}

// GetSchema handles GET /restrictions/schema
// @Summary Get the restriction schema
// @Tags restrictions
// @Produce json
// @Success 200 {object} RestrictionSchemaResponse "Categories, defaults and fonts"
// @Router /restrictions/schema [get]
func (h *SchemaHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	h.RespondJSON(w, http.StatusOK, RestrictionSchemaResponse{
		Categories: restrictions.Schema(),
		Defaults:   restrictions.Defaults(),
		Fonts:      restrictions.FontList(),
	})
}
