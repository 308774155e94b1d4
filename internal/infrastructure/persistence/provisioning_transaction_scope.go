package persistence

import (
	"context"

	appprov "github.com/campus/backend/internal/application/provisioning"
	"github.com/campus/backend/internal/domain/identity"
	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/campus/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormTransactionScope implements provisioning.TransactionScope using GORM transactions.
// Each Execute binds a fresh transaction to the partition of the given tenant context.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction on the tenant partition.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, tc tenancy.TenantContext, fn func(repos appprov.TransactionalRepositories) error) error {
	return tenant.NewTenantDB(s.db, tc).Transaction(ctx, func(tx *tenant.TenantDB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all tenant repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *tenant.TenantDB
}

func (r *gormTransactionalRepositories) UserRepo() identity.UserRepository {
	return NewGormUserRepository(r.tx)
}

func (r *gormTransactionalRepositories) RoleRepo() identity.RoleRepository {
	return NewGormRoleRepository(r.tx)
}

func (r *gormTransactionalRepositories) UserRoleRepo() identity.UserRoleRepository {
	return NewGormUserRoleRepository(r.tx)
}

func (r *gormTransactionalRepositories) PermissionRepo() identity.UserPermissionRepository {
	return NewGormUserPermissionRepository(r.tx)
}

func (r *gormTransactionalRepositories) TeacherProfileRepo() identity.TeacherProfileRepository {
	return NewGormTeacherProfileRepository(r.tx)
}

func (r *gormTransactionalRepositories) StudentProfileRepo() identity.StudentProfileRepository {
	return NewGormStudentProfileRepository(r.tx)
}

func (r *gormTransactionalRepositories) StaffProfileRepo() identity.StaffProfileRepository {
	return NewGormStaffProfileRepository(r.tx)
}

func (r *gormTransactionalRepositories) ParentProfileRepo() identity.ParentProfileRepository {
	return NewGormParentProfileRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appprov.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appprov.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
