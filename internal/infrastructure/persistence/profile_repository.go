package persistence

import (
	"context"

	"github.com/campus/backend/internal/domain/identity"
	"github.com/campus/backend/internal/domain/shared"
	"github.com/campus/backend/internal/infrastructure/persistence/models"
	"github.com/campus/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
)

// GormProfileRepository implements identity.ProfileRepository for one profile kind.
// P is the domain profile, M its persistence model.
type GormProfileRepository[P any, M any] struct {
	db          *tenant.TenantDB
	table       string
	entity      string
	uniqueField string
	userID      func(*P) uuid.UUID
	toModel     func(*P) *M
	toDomain    func(*M) *P
}

// NewGormTeacherProfileRepository creates the teacher profile repository
func NewGormTeacherProfileRepository(db *tenant.TenantDB) *GormProfileRepository[identity.TeacherProfile, models.TeacherProfileModel] {
	return &GormProfileRepository[identity.TeacherProfile, models.TeacherProfileModel]{
		db:          db,
		table:       models.TeacherProfileModel{}.TableName(),
		entity:      "TeacherProfile",
		uniqueField: "employee_number",
		userID:      (*identity.TeacherProfile).ProfileUserID,
		toModel:     models.TeacherProfileModelFromDomain,
		toDomain:    (*models.TeacherProfileModel).ToDomain,
	}
}

// NewGormStudentProfileRepository creates the student profile repository
func NewGormStudentProfileRepository(db *tenant.TenantDB) *GormProfileRepository[identity.StudentProfile, models.StudentProfileModel] {
	return &GormProfileRepository[identity.StudentProfile, models.StudentProfileModel]{
		db:          db,
		table:       models.StudentProfileModel{}.TableName(),
		entity:      "StudentProfile",
		uniqueField: "admission_number",
		userID:      (*identity.StudentProfile).ProfileUserID,
		toModel:     models.StudentProfileModelFromDomain,
		toDomain:    (*models.StudentProfileModel).ToDomain,
	}
}

// NewGormStaffProfileRepository creates the staff profile repository
func NewGormStaffProfileRepository(db *tenant.TenantDB) *GormProfileRepository[identity.StaffProfile, models.StaffProfileModel] {
	return &GormProfileRepository[identity.StaffProfile, models.StaffProfileModel]{
		db:          db,
		table:       models.StaffProfileModel{}.TableName(),
		entity:      "StaffProfile",
		uniqueField: "employee_number",
		userID:      (*identity.StaffProfile).ProfileUserID,
		toModel:     models.StaffProfileModelFromDomain,
		toDomain:    (*models.StaffProfileModel).ToDomain,
	}
}

// NewGormParentProfileRepository creates the parent profile repository
func NewGormParentProfileRepository(db *tenant.TenantDB) *GormProfileRepository[identity.ParentProfile, models.ParentProfileModel] {
	return &GormProfileRepository[identity.ParentProfile, models.ParentProfileModel]{
		db:          db,
		table:       models.ParentProfileModel{}.TableName(),
		entity:      "ParentProfile",
		uniqueField: "user_id",
		userID:      (*identity.ParentProfile).ProfileUserID,
		toModel:     models.ParentProfileModelFromDomain,
		toDomain:    (*models.ParentProfileModel).ToDomain,
	}
}

// Create inserts a profile
func (r *GormProfileRepository[P, M]) Create(ctx context.Context, profile *P) error {
	model := r.toModel(profile)
	return translateError(r.db.Table(ctx, r.table).Create(model).Error, r.entity, r.uniqueField)
}

// Update persists all attributes of an existing profile
func (r *GormProfileRepository[P, M]) Update(ctx context.Context, profile *P) error {
	model := r.toModel(profile)
	result := r.db.Table(ctx, r.table).
		Where("user_id = ?", r.userID(profile)).
		Select("*").
		Omit("user_id", "created_at").
		Updates(model)
	if result.Error != nil {
		return translateError(result.Error, r.entity, r.uniqueField)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByUserID finds the profile of a user
func (r *GormProfileRepository[P, M]) FindByUserID(ctx context.Context, userID uuid.UUID) (*P, error) {
	var model M
	if err := r.db.Table(ctx, r.table).Where("user_id = ?", userID).Take(&model).Error; err != nil {
		return nil, translateError(err, r.entity, "user_id")
	}
	return r.toDomain(&model), nil
}

var (
	_ identity.TeacherProfileRepository = (*GormProfileRepository[identity.TeacherProfile, models.TeacherProfileModel])(nil)
	_ identity.StudentProfileRepository = (*GormProfileRepository[identity.StudentProfile, models.StudentProfileModel])(nil)
	_ identity.StaffProfileRepository   = (*GormProfileRepository[identity.StaffProfile, models.StaffProfileModel])(nil)
	_ identity.ParentProfileRepository  = (*GormProfileRepository[identity.ParentProfile, models.ParentProfileModel])(nil)
)
