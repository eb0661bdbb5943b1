package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/etendy/backend/internal/models"
	"github.com/etendy/backend/internal/restrictions"
	"github.com/etendy/backend/internal/sanitizer"
	"go.uber.org/zap"
)

const presetColumns = `id, name, settings, restrictions, owner, is_active, deleted_at, created_at, updated_at`

type presetRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPresetRepository creates a new preset repository
func NewPresetRepository(db *sql.DB, logger *zap.Logger) *presetRepository {
	return &presetRepository{
		db:     db,
		logger: logger,
	}
}

// Method Create is a PresetRepository implementation for inserting a new preset.
func (r *presetRepository) Create(ctx context.Context, preset *models.Preset) error {
	settings, err := json.Marshal(preset.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	presetRestrictions, err := encodeRestrictions(preset.Restrictions)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO presets (id, name, settings, restrictions, owner, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		preset.ID,
		preset.Name,
		string(settings),
		presetRestrictions,
		preset.Owner,
		preset.IsActive,
		preset.CreatedAt,
		preset.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to create preset", zap.String("preset_id", preset.ID), zap.Error(err))
		return fmt.Errorf("failed to create preset: %w", err)
	}
	return nil
}

// Method GetByID is a PresetRepository implementation for retrieving a preset in any state.
func (r *presetRepository) GetByID(ctx context.Context, id string) (*models.Preset, error) {
	query := `
		SELECT ` + presetColumns + `
		FROM presets
		WHERE id = ?
		LIMIT 1
	`
	return r.getOne(ctx, query, id)
}

// Method GetActiveByID is a PresetRepository implementation for retrieving a visible preset.
func (r *presetRepository) GetActiveByID(ctx context.Context, id string) (*models.Preset, error) {
	query := `
		SELECT ` + presetColumns + `
		FROM presets
		WHERE id = ? AND is_active = TRUE AND deleted_at IS NULL
		LIMIT 1
	`
	return r.getOne(ctx, query, id)
}

// Method Update is a PresetRepository implementation for updating the provided fields of a visible preset.
func (r *presetRepository) Update(ctx context.Context, id string, update *models.PresetUpdate) error {
	// Build SET clause
	setClauses := []string{}
	args := []any{}
	if update.Name != nil {
		setClauses = append(setClauses, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Settings != nil {
		settings, err := json.Marshal(update.Settings)
		if err != nil {
			return fmt.Errorf("failed to encode settings: %w", err)
		}
		setClauses = append(setClauses, "settings = ?")
		args = append(args, string(settings))
	}
	if update.Restrictions != nil {
		presetRestrictions, err := encodeRestrictions(update.Restrictions)
		if err != nil {
			return err
		}
		setClauses = append(setClauses, "restrictions = ?")
		args = append(args, presetRestrictions)
	}
	if len(setClauses) == 0 {
		return fmt.Errorf("no fields to update")
	}

	updatedAt := update.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, updatedAt, id)

	query := fmt.Sprintf(`
		UPDATE presets
		SET %s
		WHERE id = ? AND is_active = TRUE AND deleted_at IS NULL
	`, strings.Join(setClauses, ", "))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to update preset", zap.String("preset_id", id), zap.Error(err))
		return fmt.Errorf("failed to update preset: %w", err)
	}

	return checkRowsAffected(result)
}

// Method SoftDelete is a PresetRepository implementation for marking a preset deleted.
// An existing deleted_at value is never overwritten.
func (r *presetRepository) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	query := `
		UPDATE presets
		SET is_active = FALSE, deleted_at = COALESCE(deleted_at, ?), updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, deletedAt, deletedAt, id)
	if err != nil {
		r.logger.Error("failed to delete preset", zap.String("preset_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete preset: %w", err)
	}

	return checkRowsAffected(result)
}

// Method ListByOwner is a PresetRepository implementation for retrieving the visible presets of an owner.
func (r *presetRepository) ListByOwner(ctx context.Context, owner string) ([]models.Preset, error) {
	query := `
		SELECT ` + presetColumns + `
		FROM presets
		WHERE owner = ? AND is_active = TRUE AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		r.logger.Error("failed to query presets", zap.Error(err))
		return nil, fmt.Errorf("failed to query presets: %w", err)
	}
	defer rows.Close()

	var presets []models.Preset
	for rows.Next() {
		preset, err := scanPreset(rows)
		if err != nil {
			r.logger.Error("failed to scan preset", zap.Error(err))
			return nil, err
		}
		presets = append(presets, *preset)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return presets, nil
}

func (r *presetRepository) getOne(ctx context.Context, query string, id string) (*models.Preset, error) {
	preset, err := scanPreset(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("preset %s: %w", id, models.ErrRecordNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get preset", zap.String("preset_id", id), zap.Error(err))
		return nil, err
	}
	return preset, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPreset(row rowScanner) (*models.Preset, error) {
	preset := &models.Preset{}
	var settings, presetRestrictions []byte
	var deletedAt sql.NullTime

	err := row.Scan(
		&preset.ID,
		&preset.Name,
		&settings,
		&presetRestrictions,
		&preset.Owner,
		&preset.IsActive,
		&deletedAt,
		&preset.CreatedAt,
		&preset.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan preset: %w", err)
	}

	if deletedAt.Valid {
		preset.DeletedAt = &deletedAt.Time
	}

	preset.Settings = sanitizer.Document{}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &preset.Settings); err != nil {
			return nil, fmt.Errorf("failed to decode settings of preset %s: %w", preset.ID, err)
		}
	}

	preset.Restrictions, err = decodeRestrictions(presetRestrictions)
	if err != nil {
		return nil, fmt.Errorf("failed to decode restrictions of preset %s: %w", preset.ID, err)
	}

	return preset, nil
}

// decodeRestrictions reads a stored restrictions column. NULL comes from legacy rows and reads
// as an empty partial; categories that are not objects are skipped.
func decodeRestrictions(data []byte) (restrictions.Document, error) {
	doc := restrictions.Document{}
	if len(data) == 0 {
		return doc, nil
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for category, value := range raw {
		if fields, ok := value.(map[string]any); ok {
			doc[category] = fields
		}
	}
	return doc, nil
}

func encodeRestrictions(doc restrictions.Document) (string, error) {
	if doc == nil {
		doc = restrictions.Document{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode restrictions: %w", err)
	}
	return string(data), nil
}

func checkRowsAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrRecordNotFound
	}
	return nil
}
