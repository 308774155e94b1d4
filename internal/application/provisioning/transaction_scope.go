package provisioning

import (
	"context"

	"github.com/campus/backend/internal/domain/identity"
	"github.com/campus/backend/internal/domain/tenancy"
)

// TransactionScope provides transactional access to the repositories of one tenant partition.
// All repository operations executed within fn are committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs fn within a transaction on the partition of tc.
	// If fn returns an error, or ctx is done before commit, the transaction is rolled back.
	Execute(ctx context.Context, tc tenancy.TenantContext, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to tenant repositories within a transaction.
// All repositories returned share the same underlying database transaction and partition.
type TransactionalRepositories interface {
	UserRepo() identity.UserRepository
	RoleRepo() identity.RoleRepository
	UserRoleRepo() identity.UserRoleRepository
	PermissionRepo() identity.UserPermissionRepository
	TeacherProfileRepo() identity.TeacherProfileRepository
	StudentProfileRepo() identity.StudentProfileRepository
	StaffProfileRepo() identity.StaffProfileRepository
	ParentProfileRepo() identity.ParentProfileRepository
}

// Repositories is a plain set of repositories
type Repositories struct {
	Users          identity.UserRepository
	Roles          identity.RoleRepository
	UserRoles      identity.UserRoleRepository
	Permissions    identity.UserPermissionRepository
	TeacherProfile identity.TeacherProfileRepository
	StudentProfile identity.StudentProfileRepository
	StaffProfile   identity.StaffProfileRepository
	ParentProfile  identity.ParentProfileRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing with mock repositories.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(ctx context.Context, _ tenancy.TenantContext, fn func(repos TransactionalRepositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s)
}

func (s *NoOpTransactionScope) UserRepo() identity.UserRepository                 { return s.repos.Users }
func (s *NoOpTransactionScope) RoleRepo() identity.RoleRepository                 { return s.repos.Roles }
func (s *NoOpTransactionScope) UserRoleRepo() identity.UserRoleRepository         { return s.repos.UserRoles }
func (s *NoOpTransactionScope) PermissionRepo() identity.UserPermissionRepository { return s.repos.Permissions }
func (s *NoOpTransactionScope) TeacherProfileRepo() identity.TeacherProfileRepository {
	return s.repos.TeacherProfile
}
func (s *NoOpTransactionScope) StudentProfileRepo() identity.StudentProfileRepository {
	return s.repos.StudentProfile
}
func (s *NoOpTransactionScope) StaffProfileRepo() identity.StaffProfileRepository {
	return s.repos.StaffProfile
}
func (s *NoOpTransactionScope) ParentProfileRepo() identity.ParentProfileRepository {
	return s.repos.ParentProfile
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
