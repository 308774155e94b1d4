package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserPermissionRepository defines permission-grant persistence
type UserPermissionRepository interface {
	// BulkInsert inserts all grants in one statement. An empty slice is a no-op.
	BulkInsert(ctx context.Context, perms []UserPermission) error

	// FindByUserID lists the grants of a user ordered by key
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]UserPermission, error)
}
