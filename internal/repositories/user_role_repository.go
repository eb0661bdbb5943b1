package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/etendy/backend/internal/models"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY
const mysqlDuplicateEntry = 1062

type userRoleRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRoleRepository creates a new user role repository
func NewUserRoleRepository(db *sql.DB, logger *zap.Logger) *userRoleRepository {
	return &userRoleRepository{
		db:     db,
		logger: logger,
	}
}

// Method GetRole is a RoleStore implementation for retrieving the role of a user.
// Users without a record are plain users.
func (r *userRoleRepository) GetRole(ctx context.Context, userID string) (models.Role, error) {
	query := `
		SELECT role
		FROM user_roles
		WHERE user_id = ?
		LIMIT 1
	`

	var role string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RoleUser, nil
	}
	if err != nil {
		r.logger.Error("failed to get role", zap.String("user_id", userID), zap.Error(err))
		return "", fmt.Errorf("failed to get role: %w", err)
	}

	return models.Role(role), nil
}

// Method SetRole is a RoleStore implementation for creating or replacing the role record of a user.
func (r *userRoleRepository) SetRole(ctx context.Context, userID string, role models.Role, grantedBy string) error {
	query := `
		INSERT INTO user_roles (user_id, role, granted_by)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE role = VALUES(role), granted_by = VALUES(granted_by)
	`

	if _, err := r.db.ExecContext(ctx, query, userID, string(role), nullableGrantor(grantedBy)); err != nil {
		r.logger.Error("failed to set role", zap.String("user_id", userID), zap.Error(err))
		return fmt.Errorf("failed to set role: %w", err)
	}
	return nil
}

// Method TransitionRole is a RoleStore implementation for changing a role only while it still equals "from".
//
// A user without a record counts as a plain user, so a transition from RoleUser inserts the record.
// If the stored role differs, models.ErrRoleMismatch is returned.
func (r *userRoleRepository) TransitionRole(ctx context.Context, userID string, from, to models.Role, grantedBy string) error {
	query := `
		UPDATE user_roles
		SET role = ?, granted_by = ?
		WHERE user_id = ? AND role = ?
	`

	result, err := r.db.ExecContext(ctx, query, string(to), nullableGrantor(grantedBy), userID, string(from))
	if err != nil {
		r.logger.Error("failed to transition role", zap.String("user_id", userID), zap.Error(err))
		return fmt.Errorf("failed to transition role: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}
	if from != models.RoleUser {
		return fmt.Errorf("user %s is not %s: %w", userID, from, models.ErrRoleMismatch)
	}

	insert := `
		INSERT INTO user_roles (user_id, role, granted_by)
		VALUES (?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, insert, userID, string(to), nullableGrantor(grantedBy)); err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return fmt.Errorf("user %s is not %s: %w", userID, from, models.ErrRoleMismatch)
		}
		r.logger.Error("failed to insert role", zap.String("user_id", userID), zap.Error(err))
		return fmt.Errorf("failed to insert role: %w", err)
	}
	return nil
}

// Method ListAllWithRoles is a RoleStore implementation for retrieving every role record, newest first.
func (r *userRoleRepository) ListAllWithRoles(ctx context.Context) ([]models.UserRole, error) {
	query := `
		SELECT user_id, role, granted_by, created_at, updated_at
		FROM user_roles
		ORDER BY created_at DESC, user_id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to query user roles", zap.Error(err))
		return nil, fmt.Errorf("failed to query user roles: %w", err)
	}
	defer rows.Close()

	var users []models.UserRole
	for rows.Next() {
		var user models.UserRole
		var role string
		var grantedBy sql.NullString
		if err := rows.Scan(&user.UserID, &role, &grantedBy, &user.CreatedAt, &user.UpdatedAt); err != nil {
			r.logger.Error("failed to scan user role", zap.Error(err))
			return nil, fmt.Errorf("failed to scan user role: %w", err)
		}
		user.Role = models.Role(role)
		if grantedBy.Valid {
			user.GrantedBy = &grantedBy.String
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

func nullableGrantor(grantedBy string) sql.NullString {
	if grantedBy == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: grantedBy, Valid: true}
}
