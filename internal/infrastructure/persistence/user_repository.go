package persistence

import (
	"context"

	"github.com/campus/backend/internal/domain/identity"
	"github.com/campus/backend/internal/domain/shared"
	"github.com/campus/backend/internal/infrastructure/persistence/models"
	"github.com/campus/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
)

const tableUsers = "users"

// GormUserRepository implements identity.UserRepository inside one tenant partition
type GormUserRepository struct {
	db *tenant.TenantDB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *tenant.TenantDB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	return translateError(r.db.Table(ctx, tableUsers).Create(model).Error, "User", "email")
}

// Update updates the mutable profile columns of a user
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	user.Touch()
	model := models.UserModelFromDomain(user)
	result := r.db.Table(ctx, tableUsers).
		Where("id = ?", user.ID).
		Select("first_name", "last_name", "phone", "metadata", "must_change_password", "updated_at").
		Updates(model)
	if result.Error != nil {
		return translateError(result.Error, "User", "email")
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.Table(ctx, tableUsers).Where("id = ?", id).Take(&model).Error; err != nil {
		return nil, translateError(err, "User", "id")
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a user by email within the partition
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	email = identity.NormalizeEmail(email)
	if email == "" {
		return nil, shared.ErrNotFound
	}
	var model models.UserModel
	if err := r.db.Table(ctx, tableUsers).Where("email = ?", email).Take(&model).Error; err != nil {
		return nil, translateError(err, "User", "email")
	}
	return model.ToDomain(), nil
}

// ExistsByEmail checks if an email is already taken in the partition
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.Table(ctx, tableUsers).
		Where("email = ?", identity.NormalizeEmail(email)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SoftDeactivate clears is_active. No other column is written.
func (r *GormUserRepository) SoftDeactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.setActive(ctx, id, false)
}

// Reactivate sets is_active
func (r *GormUserRepository) Reactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.setActive(ctx, id, true)
}

// setActive flips is_active with a conditional update so a no-op leaves the row untouched.
// A zero row count is disambiguated by a lookup: missing user or already in the target state.
func (r *GormUserRepository) setActive(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
	result := r.db.Table(ctx, tableUsers).
		Where("id = ? AND is_active = ?", id, !active).
		Update("is_active", active)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	var count int64
	if err := r.db.Table(ctx, tableUsers).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, shared.ErrNotFound
	}
	return false, nil
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
