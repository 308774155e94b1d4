package persistence

import (
	"context"

	"github.com/campus/backend/internal/domain/identity"
	"github.com/campus/backend/internal/infrastructure/persistence/models"
	"github.com/campus/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
)

const tableUserPermissions = "user_permissions"

// GormUserPermissionRepository implements identity.UserPermissionRepository inside one tenant partition
type GormUserPermissionRepository struct {
	db *tenant.TenantDB
}

// NewGormUserPermissionRepository creates a new GormUserPermissionRepository
func NewGormUserPermissionRepository(db *tenant.TenantDB) *GormUserPermissionRepository {
	return &GormUserPermissionRepository{db: db}
}

// BulkInsert inserts all grants in a single multi-row INSERT
func (r *GormUserPermissionRepository) BulkInsert(ctx context.Context, perms []identity.UserPermission) error {
	if len(perms) == 0 {
		return nil
	}
	rows := models.UserPermissionModelsFromDomain(perms)
	return translateError(r.db.Table(ctx, tableUserPermissions).Create(&rows).Error, "UserPermission", "permission_key")
}

// FindByUserID lists the grants of a user ordered by key
func (r *GormUserPermissionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]identity.UserPermission, error) {
	var rows []models.UserPermissionModel
	if err := r.db.Table(ctx, tableUserPermissions).
		Where("user_id = ?", userID).
		Order("permission_key").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]identity.UserPermission, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

var _ identity.UserPermissionRepository = (*GormUserPermissionRepository)(nil)
