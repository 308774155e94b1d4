package persistence

import (
	"context"

	"github.com/campus/backend/internal/domain/shared"
	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/campus/backend/internal/infrastructure/persistence/models"
	"github.com/campus/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const tableInstitutions = "institutions"

// GormInstitutionRepository implements tenancy.InstitutionRepository on the global partition
type GormInstitutionRepository struct {
	db *tenant.GlobalDB
}

// NewGormInstitutionRepository creates a new GormInstitutionRepository
func NewGormInstitutionRepository(db *tenant.GlobalDB) *GormInstitutionRepository {
	return &GormInstitutionRepository{db: db}
}

// FindByID finds a non-deleted institution by ID
func (r *GormInstitutionRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenancy.Institution, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByPartitionName finds a non-deleted institution by partition name
func (r *GormInstitutionRepository) FindByPartitionName(ctx context.Context, partitionName string) (*tenancy.Institution, error) {
	if partitionName == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, "partition_name = ?", partitionName)
}

// FindBySubDomain finds a non-deleted institution by sub-domain
func (r *GormInstitutionRepository) FindBySubDomain(ctx context.Context, subDomain string) (*tenancy.Institution, error) {
	subDomain = tenancy.NormalizeSubDomain(subDomain)
	if subDomain == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, "sub_domain = ?", subDomain)
}

func (r *GormInstitutionRepository) findOne(ctx context.Context, query string, arg any) (*tenancy.Institution, error) {
	var model models.InstitutionModel
	if err := r.notDeleted(ctx).Where(query, arg).Take(&model).Error; err != nil {
		return nil, translateError(err, "Institution", "id")
	}
	return model.ToDomain(), nil
}

func (r *GormInstitutionRepository) notDeleted(ctx context.Context) *gorm.DB {
	return r.db.Table(ctx, tableInstitutions).Where("deleted_at IS NULL")
}

var _ tenancy.InstitutionRepository = (*GormInstitutionRepository)(nil)
