package identity

import (
	"context"

	"github.com/google/uuid"
)

// RoleRepository defines role persistence inside one tenant partition
type RoleRepository interface {
	// Create inserts a role. A second role of the same type yields DUPLICATE_ENTITY on field "type".
	Create(ctx context.Context, role *Role) error

	// FindByID finds a role by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Role, error)

	// FindByType finds the role of a type
	FindByType(ctx context.Context, roleType RoleType) (*Role, error)

	// FindOrCreateByType returns the role of a type, creating it if absent.
	// Concurrent callers converge on a single row.
	FindOrCreateByType(ctx context.Context, roleType RoleType) (*Role, error)
}

// UserRoleRepository defines role-assignment persistence
type UserRoleRepository interface {
	// Create inserts a role assignment
	Create(ctx context.Context, userRole *UserRole) error

	// FindByUserID lists the role assignments of a user
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]UserRole, error)
}
