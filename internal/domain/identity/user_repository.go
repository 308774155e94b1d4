package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines user persistence inside one tenant partition.
// Implementations are bound to a partition at construction; no method takes a tenant.
type UserRepository interface {
	// Create inserts a new user. A duplicate email yields DUPLICATE_ENTITY on field "email".
	Create(ctx context.Context, user *User) error

	// Update persists mutable profile columns of an existing user
	Update(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by (case-insensitive) email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByEmail checks if an email is already taken in the partition
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// SoftDeactivate clears is_active and touches no other column.
	// It returns false if the user was already inactive.
	SoftDeactivate(ctx context.Context, id uuid.UUID) (bool, error)

	// Reactivate sets is_active. It returns false if the user was already active.
	Reactivate(ctx context.Context, id uuid.UUID) (bool, error)
}
