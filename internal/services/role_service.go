package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/etendy/backend/internal/models"
	"go.uber.org/zap"
)

// RoleStore is the interface that wraps methods for role records data access
type RoleStore interface {
	// Method GetRole retrieves the role of a user.
	//
	// "userID" parameter is used to identify the user.
	//
	// If the user has no role record, RoleUser is returned together with nil error.
	// If some error occurs, the error will be returned together with empty role.
	GetRole(ctx context.Context, userID string) (models.Role, error)
	// Method TransitionRole changes the role of a user only while the stored role equals "from".
	//
	// "userID" parameter is used to identify the user.
	// "from" parameter is the role the user must currently have. A user without a record is a plain user.
	// "to" parameter is the new role.
	// "grantedBy" parameter is the ID of the user who made the change.
	//
	// If the stored role differs from "from", models.ErrRoleMismatch will be returned.
	// If some other error occurs, the error will be returned.
	TransitionRole(ctx context.Context, userID string, from, to models.Role, grantedBy string) error
	// Method ListAllWithRoles retrieves every role record, newest first.
	//
	// If some error occurs, the error will be returned together with "nil" value.
	ListAllWithRoles(ctx context.Context) ([]models.UserRole, error)
}

// IdentityProvider is the interface that wraps methods of the external authentication backend
type IdentityProvider interface {
	// Method CurrentUser returns the signed in user.
	//
	// If nobody is signed in, "nil" is returned together with nil error.
	CurrentUser(ctx context.Context) (*models.Identity, error)
	// Method SignOut ends the session of the signed in user.
	//
	// If some error occurs, the error will be returned.
	SignOut(ctx context.Context) error
}

// roleService implements the user -> admin -> user role state machine.
//
// super_admin is provisioned outside of this service and can neither be granted nor revoked here.
type roleService struct {
	store    RoleStore
	identity IdentityProvider
	locks    *keyedLock
	logger   *zap.Logger
}

// NewRoleService creates a new role service
func NewRoleService(store RoleStore, identity IdentityProvider, logger *zap.Logger) *roleService {
	return &roleService{
		store:    store,
		identity: identity,
		locks:    newKeyedLock(),
		logger:   logger,
	}
}

// Promote turns a plain user into an admin, recording the acting user as grantor
func (s *roleService) Promote(ctx context.Context, targetUserID, actingUserID string) error {
	if err := checkTransitionActors(targetUserID, actingUserID); err != nil {
		return err
	}
	return s.transition(ctx, targetUserID, actingUserID, models.RoleUser, models.RoleAdmin)
}

// Demote turns an admin back into a plain user. Super admins are never demoted.
func (s *roleService) Demote(ctx context.Context, targetUserID, actingUserID string) error {
	if err := checkTransitionActors(targetUserID, actingUserID); err != nil {
		return err
	}
	return s.transition(ctx, targetUserID, actingUserID, models.RoleAdmin, models.RoleUser)
}

// IsAdmin reports whether the user may manage presets as an admin. Super admins are admins too.
func (s *roleService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	role, err := s.roleOf(ctx, userID)
	if err != nil {
		return false, err
	}
	return role == models.RoleAdmin || role == models.RoleSuperAdmin, nil
}

// IsSuperAdmin reports whether the user is a super admin
func (s *roleService) IsSuperAdmin(ctx context.Context, userID string) (bool, error) {
	role, err := s.roleOf(ctx, userID)
	if err != nil {
		return false, err
	}
	return role == models.RoleSuperAdmin, nil
}

// CurrentRole returns the signed in user together with their role
func (s *roleService) CurrentRole(ctx context.Context) (*models.CurrentUserResponse, error) {
	identity, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if identity == nil {
		return nil, ErrUnauthenticated
	}

	role, err := s.roleOf(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	return &models.CurrentUserResponse{
		ID:    identity.ID,
		Email: identity.Email,
		Role:  role,
	}, nil
}

// ListUsers returns every user that has a role record
func (s *roleService) ListUsers(ctx context.Context) ([]models.UserRole, error) {
	users, err := s.store.ListAllWithRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []models.UserRole{}
	}
	return users, nil
}

// transition moves target from "from" to "to" while holding the per-user lock.
// The store decides against its own record, never against a cached role.
func (s *roleService) transition(ctx context.Context, targetUserID, actingUserID string, from, to models.Role) error {
	unlock, err := s.locks.lock(ctx, targetUserID)
	if err != nil {
		return fmt.Errorf("failed to lock role of user %s: %w", targetUserID, err)
	}
	defer unlock()

	err = s.store.TransitionRole(ctx, targetUserID, from, to, actingUserID)
	if errors.Is(err, models.ErrRoleMismatch) {
		return fmt.Errorf("%w: user %s is not %s", ErrInvalidTransition, targetUserID, from)
	}
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}

	s.logger.Info("role changed",
		zap.String("user_id", targetUserID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("acting_user_id", actingUserID),
	)
	return nil
}

// roleOf reads a role, treating unknown stored values as a plain user
func (s *roleService) roleOf(ctx context.Context, userID string) (models.Role, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: user id is required", ErrValidation)
	}

	role, err := s.store.GetRole(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get role: %w", err)
	}
	if !role.Valid() {
		s.logger.Warn("unknown role in store, treating as user", zap.String("user_id", userID), zap.String("role", string(role)))
		return models.RoleUser, nil
	}
	return role, nil
}

// checkTransitionActors rejects self changes before anything is read from the store
func checkTransitionActors(targetUserID, actingUserID string) error {
	if targetUserID == "" || actingUserID == "" {
		return fmt.Errorf("%w: target and acting user ids are required", ErrValidation)
	}
	if targetUserID == actingUserID {
		return fmt.Errorf("%w: user %s", ErrSelfActionDenied, actingUserID)
	}
	return nil
}
