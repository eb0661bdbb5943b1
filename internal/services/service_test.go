package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/etendy/backend/internal/models"
)

// mockRoleStore is an in-memory implementation of RoleStore
type mockRoleStore struct {
	mu       sync.Mutex
	roles    map[string]models.Role
	grantors map[string]string
	getErr   error
	setErr   error
	listErr  error
	list     []models.UserRole

	// transitionCalls counts attempts, writes counts the transitions that changed a role
	getCalls        int
	transitionCalls int
	writes          int
}

func newMockRoleStore(roles map[string]models.Role) *mockRoleStore {
	if roles == nil {
		roles = map[string]models.Role{}
	}
	return &mockRoleStore{roles: roles, grantors: map[string]string{}}
}

func (m *mockRoleStore) GetRole(ctx context.Context, userID string) (models.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getErr != nil {
		return "", m.getErr
	}
	role, ok := m.roles[userID]
	if !ok {
		return models.RoleUser, nil
	}
	return role, nil
}

func (m *mockRoleStore) SetRole(ctx context.Context, userID string, role models.Role, grantedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.roles[userID] = role
	m.grantors[userID] = grantedBy
	return nil
}

func (m *mockRoleStore) TransitionRole(ctx context.Context, userID string, from, to models.Role, grantedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitionCalls++
	if m.setErr != nil {
		return m.setErr
	}
	current, ok := m.roles[userID]
	if !ok {
		current = models.RoleUser
	}
	if current != from {
		return models.ErrRoleMismatch
	}
	m.roles[userID] = to
	m.grantors[userID] = grantedBy
	m.writes++
	return nil
}

func (m *mockRoleStore) ListAllWithRoles(ctx context.Context) ([]models.UserRole, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.list, nil
}

func (m *mockRoleStore) role(userID string) models.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	role, ok := m.roles[userID]
	if !ok {
		return models.RoleUser
	}
	return role
}

// mockIdentityProvider is a mock implementation of IdentityProvider
type mockIdentityProvider struct {
	identity   *models.Identity
	err        error
	signOutErr error
}

func (m *mockIdentityProvider) CurrentUser(ctx context.Context) (*models.Identity, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.identity, nil
}

func (m *mockIdentityProvider) SignOut(ctx context.Context) error {
	return m.signOutErr
}

// mockPresetRepository is an in-memory implementation of PresetRepository
type mockPresetRepository struct {
	presets     map[string]*models.Preset
	createErr   error
	getErr      error
	updateErr   error
	deleteErr   error
	listErr     error
	updates     []models.PresetUpdate
	deleteCalls int
}

func newMockPresetRepository(presets ...*models.Preset) *mockPresetRepository {
	m := &mockPresetRepository{presets: map[string]*models.Preset{}}
	for _, preset := range presets {
		m.presets[preset.ID] = preset
	}
	return m
}

func (m *mockPresetRepository) Create(ctx context.Context, preset *models.Preset) error {
	if m.createErr != nil {
		return m.createErr
	}
	copied := *preset
	m.presets[preset.ID] = &copied
	return nil
}

func (m *mockPresetRepository) GetByID(ctx context.Context, id string) (*models.Preset, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	preset, ok := m.presets[id]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	copied := *preset
	return &copied, nil
}

func (m *mockPresetRepository) GetActiveByID(ctx context.Context, id string) (*models.Preset, error) {
	preset, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !(preset.IsActive && preset.DeletedAt == nil) {
		return nil, models.ErrRecordNotFound
	}
	return preset, nil
}

func (m *mockPresetRepository) Update(ctx context.Context, id string, update *models.PresetUpdate) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	preset, ok := m.presets[id]
	if !ok || !(preset.IsActive && preset.DeletedAt == nil) {
		return models.ErrRecordNotFound
	}
	m.updates = append(m.updates, *update)
	if update.Name != nil {
		preset.Name = *update.Name
	}
	if update.Settings != nil {
		preset.Settings = update.Settings
	}
	if update.Restrictions != nil {
		preset.Restrictions = update.Restrictions
	}
	preset.UpdatedAt = update.UpdatedAt
	return nil
}

func (m *mockPresetRepository) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	m.deleteCalls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	preset, ok := m.presets[id]
	if !ok {
		return models.ErrRecordNotFound
	}
	preset.IsActive = false
	if preset.DeletedAt == nil {
		preset.DeletedAt = &deletedAt
	}
	return nil
}

func (m *mockPresetRepository) ListByOwner(ctx context.Context, owner string) ([]models.Preset, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.Preset
	for _, preset := range m.presets {
		if preset.Owner == owner && preset.IsActive && preset.DeletedAt == nil {
			out = append(out, *preset)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// mockRoleChecker is a mock implementation of RoleChecker
type mockRoleChecker struct {
	admins      map[string]bool
	superAdmins map[string]bool
	err         error
}

func (m *mockRoleChecker) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.admins[userID] || m.superAdmins[userID], nil
}

func (m *mockRoleChecker) IsSuperAdmin(ctx context.Context, userID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.superAdmins[userID], nil
}
