package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/etendy/backend/internal/models"
	"github.com/etendy/backend/internal/restrictions"
	"github.com/etendy/backend/internal/sanitizer"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// MaxPresetNameLength is the maximum length of a preset name in characters
const MaxPresetNameLength = 100

// PresetRepository is the interface that wraps methods for Preset table data access
type PresetRepository interface {
	// Method Create inserts a new preset into the database.
	//
	// "preset" parameter is used to create a new preset.
	//
	// If some error occurs during preset creation, the error will be returned.
	Create(ctx context.Context, preset *models.Preset) error
	// Method GetByID retrieves a preset by ID, including soft deleted ones.
	//
	// "id" parameter is used to retrieve a preset by ID.
	//
	// If preset with such ID does not exist, models.ErrRecordNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, id string) (*models.Preset, error)
	// Method GetActiveByID retrieves an active, not deleted preset by ID.
	//
	// "id" parameter is used to retrieve a preset by ID.
	//
	// If no such preset exists, models.ErrRecordNotFound will be returned together with "nil" value.
	GetActiveByID(ctx context.Context, id string) (*models.Preset, error)
	// Method Update updates the non nil fields of an active preset.
	//
	// "id" parameter is used to identify the preset to update.
	// "update" parameter contains the fields to update.
	//
	// If no active preset with such ID exists, models.ErrRecordNotFound will be returned.
	Update(ctx context.Context, id string, update *models.PresetUpdate) error
	// Method SoftDelete marks a preset inactive and deleted.
	//
	// "id" parameter is used to identify the preset.
	// "deletedAt" parameter is stored only if the preset has no deletion time yet.
	//
	// If preset with such ID does not exist, models.ErrRecordNotFound will be returned.
	SoftDelete(ctx context.Context, id string, deletedAt time.Time) error
	// Method ListByOwner retrieves the active presets of an owner, newest first.
	//
	// "owner" parameter is the owner identifier.
	//
	// If some error occurs, the error will be returned together with "nil" value.
	ListByOwner(ctx context.Context, owner string) ([]models.Preset, error)
}

// RoleChecker is the interface that wraps the role predicates presets depend on
type RoleChecker interface {
	// Method IsAdmin reports whether the user is an admin or a super admin.
	IsAdmin(ctx context.Context, userID string) (bool, error)
	// Method IsSuperAdmin reports whether the user is a super admin.
	IsSuperAdmin(ctx context.Context, userID string) (bool, error)
}

// presetService implements the preset lifecycle
type presetService struct {
	repo         PresetRepository
	roles        RoleChecker
	namePolicy   *bluemonday.Policy
	publicOrigin string
	logger       *zap.Logger
	now          func() time.Time
	newID        func() string
}

// NewPresetService creates a new preset service.
//
// "publicOrigin" is the origin share links are built on, e.g. https://etendy.app
func NewPresetService(repo PresetRepository, roles RoleChecker, publicOrigin string, logger *zap.Logger) *presetService {
	return &presetService{
		repo:         repo,
		roles:        roles,
		namePolicy:   bluemonday.StrictPolicy(),
		publicOrigin: strings.TrimRight(publicOrigin, "/"),
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
}

// OwnerFor returns the owner identifier presets created by identity are stored under:
// the email for admins and super admins, the user id for everybody else
func (s *presetService) OwnerFor(ctx context.Context, identity *models.Identity) (string, error) {
	if identity == nil {
		return "", ErrUnauthenticated
	}

	isAdmin, err := s.roles.IsAdmin(ctx, identity.ID)
	if err != nil {
		return "", err
	}
	if isAdmin && identity.Email != "" {
		return identity.Email, nil
	}
	return identity.ID, nil
}

// Authorize checks that identity may modify the preset: it must own it or be a super admin
func (s *presetService) Authorize(ctx context.Context, id string, identity *models.Identity) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: preset id is required", ErrValidation)
	}

	preset, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.mapRepoError(id, "failed to get preset", err)
	}

	owner, err := s.OwnerFor(ctx, identity)
	if err != nil {
		return err
	}
	if preset.Owner == owner || preset.Owner == identity.ID {
		return nil
	}

	isSuperAdmin, err := s.roles.IsSuperAdmin(ctx, identity.ID)
	if err != nil {
		return err
	}
	if !isSuperAdmin {
		return fmt.Errorf("%w: preset %s belongs to another owner", ErrForbidden, id)
	}
	return nil
}

// Create sanitizes the settings, validates the restrictions and stores a new active preset
func (s *presetService) Create(ctx context.Context, name string, rawSettings any, owner string, restrictionsPartial restrictions.Document) (*models.PresetRecord, error) {
	cleanName, err := s.cleanName(name)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(owner) == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrValidation)
	}

	partial, err := restrictions.Normalize(restrictionsPartial)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	settings := s.sanitize(rawSettings)

	now := s.now()
	preset := &models.Preset{
		ID:           s.newID(),
		Name:         cleanName,
		Settings:     settings.Document,
		Restrictions: partial,
		Owner:        owner,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, preset); err != nil {
		return nil, fmt.Errorf("failed to create preset: %w", err)
	}

	s.logger.Info("preset created", zap.String("preset_id", preset.ID), zap.String("owner", owner))
	return s.record(preset, settings.Fallback)
}

// Update replaces the settings and merges the restrictions of an active preset.
//
// An unset "settings" leaves the stored settings untouched, a set one is sanitized as in Create.
// "restrictionsPatch" is merged into the stored restrictions at key level.
func (s *presetService) Update(ctx context.Context, id string, settings models.Optional[any], restrictionsPatch models.Optional[restrictions.Document]) (*models.PresetRecord, error) {
	preset, err := s.getActive(ctx, id)
	if err != nil {
		return nil, err
	}

	update := &models.PresetUpdate{}
	changed := false

	if patch, ok := restrictionsPatch.Get(); ok {
		merged, err := restrictions.Apply(restrictions.Clean(preset.Restrictions), patch)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		update.Restrictions = merged
		changed = true
	}

	fallback := false
	if raw, ok := settings.Get(); ok {
		result := s.sanitize(raw)
		update.Settings = result.Document
		fallback = result.Fallback
		changed = true
	}

	if !changed {
		return s.record(preset, false)
	}

	update.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, id, update); err != nil {
		return nil, s.mapRepoError(id, "failed to update preset", err)
	}

	if update.Settings != nil {
		preset.Settings = update.Settings
	}
	if update.Restrictions != nil {
		preset.Restrictions = update.Restrictions
	}
	preset.UpdatedAt = update.UpdatedAt

	s.logger.Info("preset updated", zap.String("preset_id", id))
	return s.record(preset, fallback)
}

// Rename replaces the name of an active preset
func (s *presetService) Rename(ctx context.Context, id, newName string) (*models.PresetRecord, error) {
	cleanName, err := s.cleanName(newName)
	if err != nil {
		return nil, err
	}

	preset, err := s.getActive(ctx, id)
	if err != nil {
		return nil, err
	}

	update := &models.PresetUpdate{Name: &cleanName, UpdatedAt: s.now()}
	if err := s.repo.Update(ctx, id, update); err != nil {
		return nil, s.mapRepoError(id, "failed to rename preset", err)
	}

	preset.Name = cleanName
	preset.UpdatedAt = update.UpdatedAt
	return s.record(preset, false)
}

// SoftDelete marks a preset inactive and deleted.
//
// Deleting an already deleted preset succeeds and keeps the first deletion time.
func (s *presetService) SoftDelete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: preset id is required", ErrValidation)
	}

	preset, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.mapRepoError(id, "failed to get preset", err)
	}
	if preset.DeletedAt != nil {
		return nil
	}

	if err := s.repo.SoftDelete(ctx, id, s.now()); err != nil {
		return s.mapRepoError(id, "failed to delete preset", err)
	}

	s.logger.Info("preset deleted", zap.String("preset_id", id))
	return nil
}

// ListActiveForOwner returns the visible presets of an owner, newest first
func (s *presetService) ListActiveForOwner(ctx context.Context, owner string) ([]models.Preset, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrValidation)
	}

	presets, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}

	for i := range presets {
		presets[i].Restrictions = restrictions.Clean(presets[i].Restrictions)
	}
	if presets == nil {
		presets = []models.Preset{}
	}
	return presets, nil
}

// GetActive returns a visible preset, as opened through its share link
func (s *presetService) GetActive(ctx context.Context, id string) (*models.PresetRecord, error) {
	preset, err := s.getActive(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.record(preset, false)
}

// ShareURL returns the public link of a preset
func (s *presetService) ShareURL(id string) string {
	return s.publicOrigin + "/p/" + url.PathEscape(id)
}

func (s *presetService) getActive(ctx context.Context, id string) (*models.Preset, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: preset id is required", ErrValidation)
	}

	preset, err := s.repo.GetActiveByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(id, "failed to get preset", err)
	}
	return preset, nil
}

// cleanName strips markup and surrounding whitespace
func (s *presetService) cleanName(name string) (string, error) {
	cleaned := strings.TrimSpace(s.namePolicy.Sanitize(name))
	if cleaned == "" {
		return "", fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if utf8.RuneCountInString(cleaned) > MaxPresetNameLength {
		return "", fmt.Errorf("%w: name must be at most %d characters", ErrValidation, MaxPresetNameLength)
	}
	return cleaned, nil
}

func (s *presetService) sanitize(raw any) sanitizer.Result {
	result := sanitizer.Sanitize(raw)
	if result.Fallback {
		s.logger.Warn("settings sanitization fell back to the minimal document", zap.Error(result.Reason))
	}
	return result
}

func (s *presetService) record(preset *models.Preset, fallback bool) (*models.PresetRecord, error) {
	preset.Restrictions = restrictions.Clean(preset.Restrictions)

	resolved, err := restrictions.Resolve(preset.Restrictions)
	if err != nil {
		return nil, err
	}

	return &models.PresetRecord{
		Preset:               *preset,
		ShareURL:             s.ShareURL(preset.ID),
		ResolvedRestrictions: resolved,
		SanitizationFallback: fallback,
	}, nil
}

func (s *presetService) mapRepoError(id, message string, err error) error {
	if errors.Is(err, models.ErrRecordNotFound) {
		return fmt.Errorf("%w: preset %s", ErrNotFound, id)
	}
	return fmt.Errorf("%s: %w", message, err)
}
