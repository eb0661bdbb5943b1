package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/etendy/backend/internal/models"
	"github.com/etendy/backend/internal/restrictions"
	"github.com/etendy/backend/internal/sanitizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func newTestPresetService(t *testing.T, repo *mockPresetRepository, roles *mockRoleChecker) *presetService {
	t.Helper()
	if roles == nil {
		roles = &mockRoleChecker{}
	}
	svc := NewPresetService(repo, roles, "https://etendy.app/", zaptest.NewLogger(t))
	clock := testNow
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	counter := 0
	svc.newID = func() string {
		counter++
		return fmt.Sprintf("preset-%d", counter)
	}
	return svc
}

func activePreset(id, owner string, createdAt time.Time) *models.Preset {
	return &models.Preset{
		ID:           id,
		Name:         "Theme " + id,
		Settings:     sanitizer.Document{"backgroundType": "solid", "elements": []any{}},
		Restrictions: restrictions.Document{restrictions.CategoryImage: {"cropEnabled": false}},
		Owner:        owner,
		IsActive:     true,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func TestNewPresetService(t *testing.T) {
	repo := newMockPresetRepository()
	roles := &mockRoleChecker{}

	svc := NewPresetService(repo, roles, "https://etendy.app///", zaptest.NewLogger(t))

	assert.NotNil(t, svc)
	assert.Equal(t, repo, svc.repo)
	assert.Equal(t, "https://etendy.app", svc.publicOrigin)
	assert.NotEmpty(t, svc.newID())
}

func TestPresetService_Create(t *testing.T) {
	t.Run("sanitizes settings and resolves defaults", func(t *testing.T) {
		repo := newMockPresetRepository()
		svc := newTestPresetService(t, repo, nil)

		record, err := svc.Create(context.Background(), "Theme A", map[string]any{
			"backgroundType": "solid",
			"canvasWidth":    2000,
			"elements": []any{
				map[string]any{"id": 1, "type": "text", "text": "Hi", "evilField": "x"},
			},
		}, "a@x.com", restrictions.Document{})

		require.NoError(t, err)
		assert.Equal(t, "preset-1", record.ID)
		assert.Equal(t, "Theme A", record.Name)
		assert.Equal(t, "a@x.com", record.Owner)
		assert.True(t, record.IsActive)
		assert.Nil(t, record.DeletedAt)
		assert.False(t, record.SanitizationFallback)
		assert.Equal(t, "https://etendy.app/p/preset-1", record.ShareURL)

		stored := repo.presets["preset-1"]
		require.NotNil(t, stored)
		element := stored.Settings["elements"].([]any)[0].(map[string]any)
		assert.NotContains(t, element, "evilField")
		assert.Equal(t, "Hi", element["text"])
		assert.True(t, restrictions.MergeWithDefaults(stored.Restrictions)[restrictions.CategoryFonts]["enabled"].(bool))
		assert.True(t, record.ResolvedRestrictions.Fonts.Enabled)
	})

	t.Run("keeps valid restriction overrides", func(t *testing.T) {
		repo := newMockPresetRepository()
		svc := newTestPresetService(t, repo, nil)

		record, err := svc.Create(context.Background(), "Locked", map[string]any{}, "a@x.com", restrictions.Document{
			restrictions.CategoryCanvas: {"lockCanvasSize": true, "defaultWidth": 99999},
		})

		require.NoError(t, err)
		assert.Equal(t, restrictions.Document{
			restrictions.CategoryCanvas: {"lockCanvasSize": true, "defaultWidth": float64(restrictions.MaxCanvasSize)},
		}, repo.presets[record.ID].Restrictions)
		canvas := record.ResolvedRestrictions.CanvasControls
		assert.True(t, canvas.LockCanvasSize)
		assert.Equal(t, restrictions.MaxCanvasSize, canvas.DefaultWidth)
		assert.Equal(t, restrictions.DefaultCanvasSize, canvas.DefaultHeight)
	})

	t.Run("fallback is flagged not failed", func(t *testing.T) {
		circular := map[string]any{"backgroundColor": "#000"}
		circular["self"] = circular
		repo := newMockPresetRepository()
		svc := newTestPresetService(t, repo, nil)

		record, err := svc.Create(context.Background(), "Broken", circular, "u1", nil)

		require.NoError(t, err)
		assert.True(t, record.SanitizationFallback)
		assert.Equal(t, "#000", record.Settings["backgroundColor"])
		assert.Equal(t, []any{}, record.Settings["elements"])
		assert.Contains(t, repo.presets, record.ID)
	})

	tests := []struct {
		name         string
		presetName   string
		owner        string
		restrictions restrictions.Document
		repoErr      error
		expectedErr  error
	}{
		{name: "empty name", presetName: "", owner: "u1", expectedErr: ErrValidation},
		{name: "whitespace name", presetName: " \t\n ", owner: "u1", expectedErr: ErrValidation},
		{name: "markup only name", presetName: "<b></b>", owner: "u1", expectedErr: ErrValidation},
		{name: "name too long", presetName: strings.Repeat("a", MaxPresetNameLength+1), owner: "u1", expectedErr: ErrValidation},
		{name: "missing owner", presetName: "Theme", owner: "", expectedErr: ErrValidation},
		{
			name:         "malformed numeric restriction",
			presetName:   "Theme",
			owner:        "u1",
			restrictions: restrictions.Document{restrictions.CategoryCanvas: {"defaultWidth": "wide"}},
			expectedErr:  ErrValidation,
		},
		{
			name:         "unknown restriction field",
			presetName:   "Theme",
			owner:        "u1",
			restrictions: restrictions.Document{restrictions.CategoryFonts: {"comicSans": true}},
			expectedErr:  restrictions.ErrInvalidField,
		},
		{name: "repository error", presetName: "Theme", owner: "u1", repoErr: errors.New("database error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockPresetRepository()
			repo.createErr = tt.repoErr
			svc := newTestPresetService(t, repo, nil)

			record, err := svc.Create(context.Background(), tt.presetName, map[string]any{}, tt.owner, tt.restrictions)

			assert.Error(t, err)
			assert.Nil(t, record)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			}
			if tt.repoErr != nil {
				assert.ErrorIs(t, err, tt.repoErr)
			}
			assert.Empty(t, repo.presets)
		})
	}
}

func TestPresetService_CleanName(t *testing.T) {
	svc := newTestPresetService(t, newMockPresetRepository(), nil)

	tests := []struct {
		input    string
		expected string
	}{
		{input: "Theme A", expected: "Theme A"},
		{input: "  padded  ", expected: "padded"},
		{input: "<b>Bold</b> name", expected: "Bold name"},
		{input: "<script>alert(1)</script>Safe", expected: "Safe"},
		{input: strings.Repeat("ж", MaxPresetNameLength), expected: strings.Repeat("ж", MaxPresetNameLength)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, err := svc.cleanName(tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, name)
		})
	}
}

func TestPresetService_Update(t *testing.T) {
	t.Run("absent settings are untouched and restrictions merge", func(t *testing.T) {
		existing := activePreset("p1", "a@x.com", testNow)
		repo := newMockPresetRepository(existing)
		svc := newTestPresetService(t, repo, nil)
		settingsBefore := existing.Settings

		record, err := svc.Update(context.Background(), "p1",
			models.Optional[any]{},
			models.Some(restrictions.Document{restrictions.CategoryImage: {"uploadEnabled": false}}),
		)

		require.NoError(t, err)
		require.Len(t, repo.updates, 1)
		assert.Nil(t, repo.updates[0].Settings)
		assert.Equal(t, settingsBefore, repo.presets["p1"].Settings)
		assert.Equal(t, settingsBefore, record.Settings)

		image := record.ResolvedRestrictions.ImageControls
		assert.False(t, image.UploadEnabled)
		assert.False(t, image.CropEnabled)
		assert.True(t, image.BorderEnabled)
		assert.True(t, image.BlurEnabled)
		assert.Equal(t, restrictions.Document{
			restrictions.CategoryImage: {"uploadEnabled": false, "cropEnabled": false},
		}, repo.presets["p1"].Restrictions)
	})

	t.Run("present settings are sanitized", func(t *testing.T) {
		repo := newMockPresetRepository(activePreset("p1", "a@x.com", testNow))
		svc := newTestPresetService(t, repo, nil)

		record, err := svc.Update(context.Background(), "p1",
			models.Some[any](map[string]any{
				"backgroundType": "gradient",
				"elements":       []any{map[string]any{"id": "s", "type": "shape", "src": "x.png"}},
			}),
			models.Optional[restrictions.Document]{},
		)

		require.NoError(t, err)
		element := repo.presets["p1"].Settings["elements"].([]any)[0].(map[string]any)
		assert.NotContains(t, element, "src")
		assert.Equal(t, "gradient", record.Settings["backgroundType"])
		assert.Nil(t, repo.updates[0].Restrictions)
		assert.Equal(t, restrictions.Document{restrictions.CategoryImage: {"cropEnabled": false}}, repo.presets["p1"].Restrictions)
	})

	t.Run("explicit null settings fall back", func(t *testing.T) {
		repo := newMockPresetRepository(activePreset("p1", "a@x.com", testNow))
		svc := newTestPresetService(t, repo, nil)

		record, err := svc.Update(context.Background(), "p1", models.Null[any](), models.Optional[restrictions.Document]{})

		require.NoError(t, err)
		assert.True(t, record.SanitizationFallback)
		assert.Equal(t, sanitizer.DefaultBackgroundType, repo.presets["p1"].Settings["backgroundType"])
	})

	t.Run("category null clears and field null resets", func(t *testing.T) {
		existing := activePreset("p1", "a@x.com", testNow)
		existing.Restrictions = restrictions.Document{
			restrictions.CategoryImage: {"cropEnabled": false, "blurEnabled": false},
			restrictions.CategoryFonts: {"enabled": false},
		}
		repo := newMockPresetRepository(existing)
		svc := newTestPresetService(t, repo, nil)

		record, err := svc.Update(context.Background(), "p1", models.Optional[any]{}, models.Some(restrictions.Document{
			restrictions.CategoryImage: {"cropEnabled": nil},
			restrictions.CategoryFonts: nil,
		}))

		require.NoError(t, err)
		assert.Equal(t, restrictions.Document{
			restrictions.CategoryImage: {"blurEnabled": false},
		}, repo.presets["p1"].Restrictions)
		assert.True(t, record.ResolvedRestrictions.Fonts.Enabled)
		assert.True(t, record.ResolvedRestrictions.ImageControls.CropEnabled)
	})

	t.Run("nothing provided writes nothing", func(t *testing.T) {
		repo := newMockPresetRepository(activePreset("p1", "a@x.com", testNow))
		svc := newTestPresetService(t, repo, nil)

		record, err := svc.Update(context.Background(), "p1", models.Optional[any]{}, models.Optional[restrictions.Document]{})

		require.NoError(t, err)
		assert.Equal(t, "p1", record.ID)
		assert.Empty(t, repo.updates)
	})

	t.Run("legacy record without restrictions", func(t *testing.T) {
		existing := activePreset("p1", "a@x.com", testNow)
		existing.Restrictions = nil
		repo := newMockPresetRepository(existing)
		svc := newTestPresetService(t, repo, nil)

		record, err := svc.Update(context.Background(), "p1", models.Optional[any]{}, models.Some(restrictions.Document{
			restrictions.CategoryShape: {"starEnabled": false},
		}))

		require.NoError(t, err)
		assert.False(t, record.ResolvedRestrictions.ShapeControls.StarEnabled)
		assert.True(t, record.ResolvedRestrictions.ShapeControls.LineEnabled)
	})

	deleted := activePreset("gone", "a@x.com", testNow)
	deleted.IsActive = false
	deletedAt := testNow
	deleted.DeletedAt = &deletedAt

	tests := []struct {
		name        string
		id          string
		patch       models.Optional[restrictions.Document]
		updateErr   error
		expectedErr error
	}{
		{name: "missing preset", id: "nope", patch: models.Optional[restrictions.Document]{}, expectedErr: ErrNotFound},
		{name: "deleted preset", id: "gone", patch: models.Optional[restrictions.Document]{}, expectedErr: ErrNotFound},
		{name: "empty id", id: "", patch: models.Optional[restrictions.Document]{}, expectedErr: ErrValidation},
		{
			name:        "invalid patch",
			id:          "p1",
			patch:       models.Some(restrictions.Document{restrictions.CategoryCanvas: {"defaultHeight": "tall"}}),
			expectedErr: ErrValidation,
		},
		{
			name:      "repository error",
			id:        "p1",
			patch:     models.Some(restrictions.Document{restrictions.CategoryCanvas: {"defaultHeight": 900}}),
			updateErr: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockPresetRepository(activePreset("p1", "a@x.com", testNow), deleted)
			repo.updateErr = tt.updateErr
			svc := newTestPresetService(t, repo, nil)

			record, err := svc.Update(context.Background(), tt.id, models.Some[any](map[string]any{}), tt.patch)

			assert.Error(t, err)
			assert.Nil(t, record)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			}
			if tt.updateErr != nil {
				assert.ErrorIs(t, err, tt.updateErr)
			}
			assert.Empty(t, repo.updates)
		})
	}
}

func TestPresetService_Rename(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		newName     string
		expectedErr error
		expected    string
	}{
		{name: "success", id: "p1", newName: "  Renamed  ", expected: "Renamed"},
		{name: "strips markup", id: "p1", newName: "<i>Fancy</i>", expected: "Fancy"},
		{name: "empty", id: "p1", newName: "", expectedErr: ErrValidation},
		{name: "whitespace only", id: "p1", newName: "   ", expectedErr: ErrValidation},
		{name: "missing preset", id: "nope", newName: "Renamed", expectedErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := activePreset("p1", "a@x.com", testNow)
			repo := newMockPresetRepository(existing)
			svc := newTestPresetService(t, repo, nil)

			record, err := svc.Rename(context.Background(), tt.id, tt.newName)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, record)
				assert.Equal(t, "Theme p1", repo.presets["p1"].Name)
				assert.Empty(t, repo.updates)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, record.Name)
			assert.Equal(t, tt.expected, repo.presets["p1"].Name)
			require.Len(t, repo.updates, 1)
			assert.Nil(t, repo.updates[0].Settings)
			assert.Nil(t, repo.updates[0].Restrictions)
			assert.Equal(t, existing.Settings, repo.presets["p1"].Settings)
		})
	}
}

func TestPresetService_SoftDelete(t *testing.T) {
	t.Run("twice keeps the first timestamp", func(t *testing.T) {
		repo := newMockPresetRepository(activePreset("p1", "a@x.com", testNow))
		svc := newTestPresetService(t, repo, nil)
		ctx := context.Background()

		require.NoError(t, svc.SoftDelete(ctx, "p1"))
		first := *repo.presets["p1"].DeletedAt

		require.NoError(t, svc.SoftDelete(ctx, "p1"))

		assert.False(t, repo.presets["p1"].IsActive)
		assert.Equal(t, first, *repo.presets["p1"].DeletedAt)
		assert.Equal(t, 1, repo.deleteCalls)
	})

	t.Run("record is kept but hidden", func(t *testing.T) {
		repo := newMockPresetRepository(activePreset("p1", "a@x.com", testNow))
		svc := newTestPresetService(t, repo, nil)
		ctx := context.Background()

		require.NoError(t, svc.SoftDelete(ctx, "p1"))

		assert.Contains(t, repo.presets, "p1")
		_, err := svc.GetActive(ctx, "p1")
		assert.ErrorIs(t, err, ErrNotFound)
		presets, err := svc.ListActiveForOwner(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Empty(t, presets)
	})

	tests := []struct {
		name        string
		id          string
		getErr      error
		deleteErr   error
		expectedErr error
	}{
		{name: "missing preset", id: "nope", expectedErr: ErrNotFound},
		{name: "empty id", id: " ", expectedErr: ErrValidation},
		{name: "read error", id: "p1", getErr: errors.New("database error")},
		{name: "delete error", id: "p1", deleteErr: errors.New("database error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockPresetRepository(activePreset("p1", "a@x.com", testNow))
			repo.getErr = tt.getErr
			repo.deleteErr = tt.deleteErr
			svc := newTestPresetService(t, repo, nil)

			err := svc.SoftDelete(context.Background(), tt.id)

			assert.Error(t, err)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			}
			assert.True(t, repo.presets["p1"].IsActive)
		})
	}
}

func TestPresetService_ListActiveForOwner(t *testing.T) {
	older := activePreset("old", "a@x.com", testNow.Add(-2*time.Hour))
	newer := activePreset("new", "a@x.com", testNow.Add(-time.Hour))
	other := activePreset("other", "b@x.com", testNow)
	inactive := activePreset("inactive", "a@x.com", testNow)
	inactive.IsActive = false

	t.Run("newest first, only visible", func(t *testing.T) {
		repo := newMockPresetRepository(older, newer, other, inactive)
		svc := newTestPresetService(t, repo, nil)

		presets, err := svc.ListActiveForOwner(context.Background(), "a@x.com")

		require.NoError(t, err)
		require.Len(t, presets, 2)
		assert.Equal(t, "new", presets[0].ID)
		assert.Equal(t, "old", presets[1].ID)
	})

	t.Run("no presets", func(t *testing.T) {
		svc := newTestPresetService(t, newMockPresetRepository(), nil)

		presets, err := svc.ListActiveForOwner(context.Background(), "nobody")

		require.NoError(t, err)
		assert.NotNil(t, presets)
		assert.Empty(t, presets)
	})

	t.Run("empty owner", func(t *testing.T) {
		svc := newTestPresetService(t, newMockPresetRepository(), nil)

		_, err := svc.ListActiveForOwner(context.Background(), "")

		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := newMockPresetRepository()
		repo.listErr = errors.New("database error")
		svc := newTestPresetService(t, repo, nil)

		presets, err := svc.ListActiveForOwner(context.Background(), "a@x.com")

		assert.Error(t, err)
		assert.Nil(t, presets)
	})
}

func TestPresetService_GetActive(t *testing.T) {
	existing := activePreset("p1", "a@x.com", testNow)
	existing.Restrictions = restrictions.Document{
		restrictions.CategoryBackground: {"locked": true, "backgroundType": "image"},
		"legacyControls":                {"x": true},
	}
	repo := newMockPresetRepository(existing)
	svc := newTestPresetService(t, repo, nil)

	record, err := svc.GetActive(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, "https://etendy.app/p/p1", record.ShareURL)
	assert.NotContains(t, record.Restrictions, "legacyControls")
	assert.True(t, record.ResolvedRestrictions.BackgroundControls.Locked)
	assert.Equal(t, "image", record.ResolvedRestrictions.BackgroundControls.BackgroundType)
}

func TestPresetService_ShareURL(t *testing.T) {
	svc := newTestPresetService(t, newMockPresetRepository(), nil)

	assert.Equal(t, "https://etendy.app/p/abc", svc.ShareURL("abc"))
	assert.Equal(t, "https://etendy.app/p/a%2Fb", svc.ShareURL("a/b"))
}

func TestPresetService_OwnerFor(t *testing.T) {
	roles := &mockRoleChecker{
		admins:      map[string]bool{"admin": true},
		superAdmins: map[string]bool{"root": true},
	}

	tests := []struct {
		name        string
		identity    *models.Identity
		roles       *mockRoleChecker
		expected    string
		expectedErr bool
	}{
		{name: "admin owns by email", identity: &models.Identity{ID: "admin", Email: "a@x.com"}, roles: roles, expected: "a@x.com"},
		{name: "super admin owns by email", identity: &models.Identity{ID: "root", Email: "r@x.com"}, roles: roles, expected: "r@x.com"},
		{name: "user owns by id", identity: &models.Identity{ID: "u1", Email: "u@x.com"}, roles: roles, expected: "u1"},
		{name: "admin without email", identity: &models.Identity{ID: "admin"}, roles: roles, expected: "admin"},
		{name: "signed out", identity: nil, roles: roles, expectedErr: true},
		{name: "role error", identity: &models.Identity{ID: "u1"}, roles: &mockRoleChecker{err: errors.New("cache down")}, expectedErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestPresetService(t, newMockPresetRepository(), tt.roles)

			owner, err := svc.OwnerFor(context.Background(), tt.identity)

			if tt.expectedErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, owner)
		})
	}
}

func TestPresetService_Authorize(t *testing.T) {
	roles := &mockRoleChecker{
		admins:      map[string]bool{"admin": true, "admin2": true},
		superAdmins: map[string]bool{"root": true},
	}
	adminPreset := activePreset("p1", "a@x.com", testNow)
	userPreset := activePreset("p2", "u1", testNow)

	tests := []struct {
		name        string
		id          string
		identity    *models.Identity
		expectedErr error
	}{
		{name: "admin owner", id: "p1", identity: &models.Identity{ID: "admin", Email: "a@x.com"}},
		{name: "user owner", id: "p2", identity: &models.Identity{ID: "u1", Email: "u@x.com"}},
		{name: "super admin on someone else's preset", id: "p2", identity: &models.Identity{ID: "root", Email: "r@x.com"}},
		{name: "other admin", id: "p1", identity: &models.Identity{ID: "admin2", Email: "b@x.com"}, expectedErr: ErrForbidden},
		{name: "other user", id: "p2", identity: &models.Identity{ID: "u2", Email: "u2@x.com"}, expectedErr: ErrForbidden},
		{name: "missing preset", id: "nope", identity: &models.Identity{ID: "root"}, expectedErr: ErrNotFound},
		{name: "signed out", id: "p1", identity: nil, expectedErr: ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestPresetService(t, newMockPresetRepository(adminPreset, userPreset), roles)

			err := svc.Authorize(context.Background(), tt.id, tt.identity)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
