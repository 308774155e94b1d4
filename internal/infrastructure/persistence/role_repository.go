package persistence

import (
	"context"
	"errors"

	"github.com/campus/backend/internal/domain/identity"
	"github.com/campus/backend/internal/domain/shared"
	"github.com/campus/backend/internal/infrastructure/persistence/models"
	"github.com/campus/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

const (
	tableRoles     = "roles"
	tableUserRoles = "user_roles"
)

// GormRoleRepository implements identity.RoleRepository inside one tenant partition
type GormRoleRepository struct {
	db *tenant.TenantDB
}

// NewGormRoleRepository creates a new GormRoleRepository
func NewGormRoleRepository(db *tenant.TenantDB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

// Create creates a new role
func (r *GormRoleRepository) Create(ctx context.Context, role *identity.Role) error {
	model := models.RoleModelFromDomain(role)
	return translateError(r.db.Table(ctx, tableRoles).Create(model).Error, "Role", "type")
}

// FindByID finds a role by ID
func (r *GormRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	var model models.RoleModel
	if err := r.db.Table(ctx, tableRoles).Where("id = ?", id).Take(&model).Error; err != nil {
		return nil, translateError(err, "Role", "id")
	}
	return model.ToDomain(), nil
}

// FindByType finds the role of a type
func (r *GormRoleRepository) FindByType(ctx context.Context, roleType identity.RoleType) (*identity.Role, error) {
	var model models.RoleModel
	if err := r.db.Table(ctx, tableRoles).Where("type = ?", roleType).Take(&model).Error; err != nil {
		return nil, translateError(err, "Role", "type")
	}
	return model.ToDomain(), nil
}

// FindOrCreateByType returns the role of a type, creating it if absent.
// The insert is ON CONFLICT (type) DO NOTHING followed by a read, so concurrent
// first-time callers all read back the single row that won the insert.
func (r *GormRoleRepository) FindOrCreateByType(ctx context.Context, roleType identity.RoleType) (*identity.Role, error) {
	existing, err := r.FindByType(ctx, roleType)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	role, err := identity.NewRole(roleType, r.db.Partition())
	if err != nil {
		return nil, err
	}
	model := models.RoleModelFromDomain(role)
	if err := r.db.Table(ctx, tableRoles).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "type"}}, DoNothing: true}).
		Create(model).Error; err != nil {
		return nil, translateError(err, "Role", "type")
	}

	return r.FindByType(ctx, roleType)
}

// GormUserRoleRepository implements identity.UserRoleRepository inside one tenant partition
type GormUserRoleRepository struct {
	db *tenant.TenantDB
}

// NewGormUserRoleRepository creates a new GormUserRoleRepository
func NewGormUserRoleRepository(db *tenant.TenantDB) *GormUserRoleRepository {
	return &GormUserRoleRepository{db: db}
}

// Create inserts a role assignment
func (r *GormUserRoleRepository) Create(ctx context.Context, userRole *identity.UserRole) error {
	model := models.UserRoleModelFromDomain(userRole)
	return translateError(r.db.Table(ctx, tableUserRoles).Create(model).Error, "UserRole", "role_id")
}

// FindByUserID lists the role assignments of a user
func (r *GormUserRoleRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]identity.UserRole, error) {
	var rows []models.UserRoleModel
	if err := r.db.Table(ctx, tableUserRoles).Where("user_id = ?", userID).Order("assigned_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]identity.UserRole, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

var (
	_ identity.RoleRepository     = (*GormRoleRepository)(nil)
	_ identity.UserRoleRepository = (*GormUserRoleRepository)(nil)
)
