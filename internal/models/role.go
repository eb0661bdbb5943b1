package models

import "time"

// Role is the permission level of a user
type Role string

// Role constants
const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Identity is the signed in user as reported by the identity provider
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// UserRole is a row of the user_roles table
type UserRole struct {
	UserID    string    `json:"userId"`
	Role      Role      `json:"role"`
	GrantedBy *string   `json:"grantedBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CurrentUserResponse represents the signed in user in API responses
type CurrentUserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
