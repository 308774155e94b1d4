package models

import (
	"time"

	"github.com/campus/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// UserModel is the persistence model for the User domain entity
type UserModel struct {
	BaseModel
	Email              string            `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash       string            `gorm:"type:varchar(255);not null"`
	FirstName          string            `gorm:"type:varchar(100)"`
	LastName           string            `gorm:"type:varchar(100)"`
	Phone              string            `gorm:"type:varchar(50)"`
	UserType           identity.UserType `gorm:"type:varchar(20);not null"`
	IsActive           bool              `gorm:"not null"`
	MustChangePassword bool              `gorm:"not null"`
	Metadata           Metadata          `gorm:"type:jsonb;serializer:json"`
	CreatedBy          *uuid.UUID        `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity:         m.BaseModel.ToDomain(),
		Email:              m.Email,
		PasswordHash:       m.PasswordHash,
		FirstName:          m.FirstName,
		LastName:           m.LastName,
		Phone:              m.Phone,
		UserType:           m.UserType,
		IsActive:           m.IsActive,
		MustChangePassword: m.MustChangePassword,
		Metadata:           map[string]string(nonNilMetadata(m.Metadata)),
		CreatedBy:          m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain User entity
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.FirstName = u.FirstName
	m.LastName = u.LastName
	m.Phone = u.Phone
	m.UserType = u.UserType
	m.IsActive = u.IsActive
	m.MustChangePassword = u.MustChangePassword
	m.Metadata = nonNilMetadata(u.Metadata)
	m.CreatedBy = u.CreatedBy
}

// UserModelFromDomain creates a new persistence model from a domain User entity
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// RoleModel is the persistence model for the Role domain entity
type RoleModel struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Type        identity.RoleType `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name        string            `gorm:"type:varchar(100);not null"`
	TenantScope string            `gorm:"type:varchar(63);not null"`
	CreatedAt   time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RoleModel) TableName() string {
	return "roles"
}

// ToDomain converts the persistence model to a domain Role
func (m *RoleModel) ToDomain() *identity.Role {
	return &identity.Role{
		ID:          m.ID,
		Type:        m.Type,
		Name:        m.Name,
		TenantScope: m.TenantScope,
		CreatedAt:   m.CreatedAt,
	}
}

// RoleModelFromDomain creates a new persistence model from a domain Role
func RoleModelFromDomain(r *identity.Role) *RoleModel {
	return &RoleModel{
		ID:          r.ID,
		Type:        r.Type,
		Name:        r.Name,
		TenantScope: r.TenantScope,
		CreatedAt:   r.CreatedAt,
	}
}

// UserRoleModel is the persistence model for the UserRole relationship
type UserRoleModel struct {
	UserID     uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RoleID     uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AssignedBy *uuid.UUID `gorm:"type:uuid"`
	AssignedAt time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserRoleModel) TableName() string {
	return "user_roles"
}

// ToDomain converts the persistence model to a domain UserRole
func (m *UserRoleModel) ToDomain() identity.UserRole {
	return identity.UserRole{
		UserID:     m.UserID,
		RoleID:     m.RoleID,
		AssignedBy: m.AssignedBy,
		AssignedAt: m.AssignedAt,
	}
}

// UserRoleModelFromDomain creates a new persistence model from a domain UserRole
func UserRoleModelFromDomain(ur *identity.UserRole) *UserRoleModel {
	return &UserRoleModel{
		UserID:     ur.UserID,
		RoleID:     ur.RoleID,
		AssignedBy: ur.AssignedBy,
		AssignedAt: ur.AssignedAt,
	}
}

// UserPermissionModel is the persistence model for a permission grant
type UserPermissionModel struct {
	UserID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	PermissionKey string     `gorm:"type:varchar(100);primaryKey"`
	GrantedBy     *uuid.UUID `gorm:"type:uuid"`
	GrantedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserPermissionModel) TableName() string {
	return "user_permissions"
}

// ToDomain converts the persistence model to a domain UserPermission
func (m *UserPermissionModel) ToDomain() identity.UserPermission {
	return identity.UserPermission{
		UserID:        m.UserID,
		PermissionKey: m.PermissionKey,
		GrantedBy:     m.GrantedBy,
		GrantedAt:     m.GrantedAt,
	}
}

// UserPermissionModelsFromDomain converts a batch of grants
func UserPermissionModelsFromDomain(perms []identity.UserPermission) []UserPermissionModel {
	out := make([]UserPermissionModel, len(perms))
	for i, p := range perms {
		out[i] = UserPermissionModel{
			UserID:        p.UserID,
			PermissionKey: p.PermissionKey,
			GrantedBy:     p.GrantedBy,
			GrantedAt:     p.GrantedAt,
		}
	}
	return out
}
