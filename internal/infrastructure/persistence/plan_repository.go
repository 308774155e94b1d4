package persistence

import (
	"context"

	"github.com/campus/backend/internal/domain/shared"
	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/campus/backend/internal/infrastructure/persistence/models"
	"github.com/campus/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
)

const (
	tablePlans           = "plans"
	tablePlanPermissions = "plan_permissions"
)

// GormPlanRepository implements tenancy.PlanRepository on the global partition
type GormPlanRepository struct {
	db *tenant.GlobalDB
}

// NewGormPlanRepository creates a new GormPlanRepository
func NewGormPlanRepository(db *tenant.GlobalDB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// FindByID finds a plan with its permission grants
func (r *GormPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenancy.Plan, error) {
	var model models.PlanModel
	if err := r.db.Table(ctx, tablePlans).Where("id = ?", id).Take(&model).Error; err != nil {
		return nil, translateError(err, "Plan", "id")
	}
	return r.withPermissions(ctx, &model)
}

// FindBySlug finds a plan with its permission grants
func (r *GormPlanRepository) FindBySlug(ctx context.Context, slug string) (*tenancy.Plan, error) {
	if slug == "" {
		return nil, shared.ErrNotFound
	}
	var model models.PlanModel
	if err := r.db.Table(ctx, tablePlans).Where("slug = ?", slug).Take(&model).Error; err != nil {
		return nil, translateError(err, "Plan", "slug")
	}
	return r.withPermissions(ctx, &model)
}

// ListPermissions returns the permission grants of a plan ordered by key
func (r *GormPlanRepository) ListPermissions(ctx context.Context, planID uuid.UUID) ([]tenancy.PlanPermission, error) {
	var rows []models.PlanPermissionModel
	if err := r.db.Table(ctx, tablePlanPermissions).
		Where("plan_id = ?", planID).
		Order("permission_key").
		Order("role_type").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]tenancy.PlanPermission, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormPlanRepository) withPermissions(ctx context.Context, model *models.PlanModel) (*tenancy.Plan, error) {
	plan := model.ToDomain()
	perms, err := r.ListPermissions(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	plan.Permissions = perms
	return plan, nil
}

var _ tenancy.PlanRepository = (*GormPlanRepository)(nil)
