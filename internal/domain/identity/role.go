package identity

import (
	"strings"
	"time"

	"github.com/campus/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RoleType identifies a role inside a partition. At most one Role row exists
// per (partition, type).
type RoleType string

const (
	RoleTypeTeacher RoleType = "teacher"
	RoleTypeStudent RoleType = "student"
	RoleTypeStaff   RoleType = "staff"
	RoleTypeParent  RoleType = "parent"
	RoleTypeAdmin   RoleType = "admin"
)

// IsValid returns true if t is a known role type
func (t RoleType) IsValid() bool {
	switch t {
	case RoleTypeTeacher, RoleTypeStudent, RoleTypeStaff, RoleTypeParent, RoleTypeAdmin:
		return true
	}
	return false
}

// DisplayName returns the default human-readable name for a role type
func (t RoleType) DisplayName() string {
	s := string(t)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Role is a per-partition role, lazily created the first time a user of its type is provisioned
type Role struct {
	ID          uuid.UUID
	Type        RoleType
	Name        string
	TenantScope string
	CreatedAt   time.Time
}

// NewRole creates a role of the given type scoped to a partition
func NewRole(roleType RoleType, tenantScope string) (*Role, error) {
	if !roleType.IsValid() {
		return nil, shared.NewValidationError("type", "Invalid role type")
	}
	return &Role{
		ID:          uuid.New(),
		Type:        roleType,
		Name:        roleType.DisplayName(),
		TenantScope: tenantScope,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// UserRole links a user to a role
type UserRole struct {
	UserID     uuid.UUID
	RoleID     uuid.UUID
	AssignedBy *uuid.UUID
	AssignedAt time.Time
}

// NewUserRole creates a role assignment
func NewUserRole(userID, roleID, assignedBy uuid.UUID) UserRole {
	ur := UserRole{
		UserID:     userID,
		RoleID:     roleID,
		AssignedAt: time.Now().UTC(),
	}
	if assignedBy != uuid.Nil {
		ur.AssignedBy = &assignedBy
	}
	return ur
}

// UserPermission is a permission key granted to a user at provisioning time.
// Grants are a snapshot of the plan: later plan changes do not touch them.
type UserPermission struct {
	UserID        uuid.UUID
	PermissionKey string
	GrantedBy     *uuid.UUID
	GrantedAt     time.Time
}

// NewUserPermissions creates one grant per key, all stamped with the same time
func NewUserPermissions(userID uuid.UUID, keys []string, grantedBy uuid.UUID) []UserPermission {
	now := time.Now().UTC()
	var by *uuid.UUID
	if grantedBy != uuid.Nil {
		by = &grantedBy
	}
	perms := make([]UserPermission, 0, len(keys))
	for _, k := range keys {
		perms = append(perms, UserPermission{
			UserID:        userID,
			PermissionKey: k,
			GrantedBy:     by,
			GrantedAt:     now,
		})
	}
	return perms
}
