package models

import (
	"time"

	"github.com/etendy/backend/internal/restrictions"
	"github.com/etendy/backend/internal/sanitizer"
)

// Preset represents a stored canvas preset
type Preset struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Settings     sanitizer.Document    `json:"settings"`
	Restrictions restrictions.Document `json:"restrictions"`
	Owner        string                `json:"owner"`
	IsActive     bool                  `json:"isActive"`
	DeletedAt    *time.Time            `json:"deletedAt,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// PresetUpdate holds the columns to write on update; nil fields are left untouched
type PresetUpdate struct {
	Name         *string
	Settings     sanitizer.Document
	Restrictions restrictions.Document
	UpdatedAt    time.Time
}

// PresetRecord is a preset as returned by the preset service
type PresetRecord struct {
	Preset
	ShareURL             string                 `json:"shareUrl"`
	ResolvedRestrictions *restrictions.Resolved `json:"resolvedRestrictions"`
	SanitizationFallback bool                   `json:"sanitizationFallback"`
}

// PresetListItem represents a preset in list responses
type PresetListItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	ShareURL  string    `json:"shareUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublicPresetResponse is what visitors of a share link receive
type PublicPresetResponse struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Settings     sanitizer.Document     `json:"settings"`
	Restrictions *restrictions.Resolved `json:"restrictions"`
}

// CreatePresetRequest represents a request to create a preset
type CreatePresetRequest struct {
	Name         string                `json:"name" validate:"required,max=500"`
	Settings     any                   `json:"settings"`
	Restrictions restrictions.Document `json:"restrictions"`
}

// UpdatePresetRequest represents a partial preset update.
//
// A missing key leaves the stored value untouched. An explicit null settings value is sanitized
// like any other input. An explicit null restrictions value is an empty patch.
type UpdatePresetRequest struct {
	Settings     Optional[any]                   `json:"settings"`
	Restrictions Optional[restrictions.Document] `json:"restrictions"`
}

// RenamePresetRequest represents a request to rename a preset
type RenamePresetRequest struct {
	Name string `json:"name" validate:"required,max=500"`
}
