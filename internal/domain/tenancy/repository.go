package tenancy

import (
	"context"

	"github.com/google/uuid"
)

// InstitutionRepository reads institutions from the global partition.
// Implementations take no tenant context.
type InstitutionRepository interface {
	// FindByID finds a non-deleted institution by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Institution, error)

	// FindByPartitionName finds a non-deleted institution by its partition (schema) name
	FindByPartitionName(ctx context.Context, partitionName string) (*Institution, error)

	// FindBySubDomain finds a non-deleted institution by sub-domain
	FindBySubDomain(ctx context.Context, subDomain string) (*Institution, error)
}

// PlanRepository reads subscription plans from the global partition
type PlanRepository interface {
	// FindByID finds a plan with its permission grants
	FindByID(ctx context.Context, id uuid.UUID) (*Plan, error)

	// FindBySlug finds a plan with its permission grants
	FindBySlug(ctx context.Context, slug string) (*Plan, error)

	// ListPermissions returns the permission grants of a plan
	ListPermissions(ctx context.Context, planID uuid.UUID) ([]PlanPermission, error)
}
