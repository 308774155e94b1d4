package provisioning

import (
	"context"

	"github.com/campus/backend/internal/domain/identity"
	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) SoftDeactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Reactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockRoleRepository is a mock implementation of identity.RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) Create(ctx context.Context, role *identity.Role) error {
	return m.Called(ctx, role).Error(0)
}

func (m *MockRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Role), args.Error(1)
}

func (m *MockRoleRepository) FindByType(ctx context.Context, roleType identity.RoleType) (*identity.Role, error) {
	args := m.Called(ctx, roleType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Role), args.Error(1)
}

func (m *MockRoleRepository) FindOrCreateByType(ctx context.Context, roleType identity.RoleType) (*identity.Role, error) {
	args := m.Called(ctx, roleType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Role), args.Error(1)
}

// MockUserRoleRepository is a mock implementation of identity.UserRoleRepository
type MockUserRoleRepository struct {
	mock.Mock
}

func (m *MockUserRoleRepository) Create(ctx context.Context, userRole *identity.UserRole) error {
	return m.Called(ctx, userRole).Error(0)
}

func (m *MockUserRoleRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]identity.UserRole, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]identity.UserRole), args.Error(1)
}

// MockPermissionRepository is a mock implementation of identity.UserPermissionRepository
type MockPermissionRepository struct {
	mock.Mock
}

func (m *MockPermissionRepository) BulkInsert(ctx context.Context, perms []identity.UserPermission) error {
	return m.Called(ctx, perms).Error(0)
}

func (m *MockPermissionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]identity.UserPermission, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]identity.UserPermission), args.Error(1)
}

// MockProfileRepository is a mock implementation of identity.ProfileRepository
type MockProfileRepository[P any] struct {
	mock.Mock
}

func (m *MockProfileRepository[P]) Create(ctx context.Context, profile *P) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockProfileRepository[P]) Update(ctx context.Context, profile *P) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockProfileRepository[P]) FindByUserID(ctx context.Context, userID uuid.UUID) (*P, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*P), args.Error(1)
}

// MockPlanSnapshotter is a mock implementation of PlanSnapshotter
type MockPlanSnapshotter struct {
	mock.Mock
}

func (m *MockPlanSnapshotter) Snapshot(ctx context.Context, tc tenancy.TenantContext) (tenancy.PlanSnapshot, error) {
	args := m.Called(ctx, tc)
	return args.Get(0).(tenancy.PlanSnapshot), args.Error(1)
}

// MockTenantRevalidator is a mock implementation of TenantRevalidator
type MockTenantRevalidator struct {
	mock.Mock
}

func (m *MockTenantRevalidator) ResolveFresh(ctx context.Context, ref string) (tenancy.TenantContext, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(tenancy.TenantContext), args.Error(1)
}

func (m *MockTenantRevalidator) Invalidate(ctx context.Context, refs ...string) error {
	return m.Called(ctx, refs).Error(0)
}

// MockNotifier is a mock implementation of CredentialNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyTemporaryPassword(ctx context.Context, tc tenancy.TenantContext, user *identity.User, tempPassword string) error {
	return m.Called(ctx, tc, user, tempPassword).Error(0)
}

// denyPolicy rejects every action with err
type denyPolicy struct{ err error }

func (p denyPolicy) Authorize(context.Context, tenancy.TenantContext, uuid.UUID, Action, identity.UserType) error {
	return p.err
}

// serviceFixture wires a Service to mocks through NoOpTransactionScope
type serviceFixture struct {
	users    *MockUserRepository
	roles    *MockRoleRepository
	userRole *MockUserRoleRepository
	perms    *MockPermissionRepository
	teachers *MockProfileRepository[identity.TeacherProfile]
	students *MockProfileRepository[identity.StudentProfile]
	staff    *MockProfileRepository[identity.StaffProfile]
	parents  *MockProfileRepository[identity.ParentProfile]
	plans    *MockPlanSnapshotter
	tenants  *MockTenantRevalidator
	notifier *MockNotifier
	service  *Service
}

func newServiceFixture(opts ...Option) *serviceFixture {
	f := &serviceFixture{
		users:    new(MockUserRepository),
		roles:    new(MockRoleRepository),
		userRole: new(MockUserRoleRepository),
		perms:    new(MockPermissionRepository),
		teachers: new(MockProfileRepository[identity.TeacherProfile]),
		students: new(MockProfileRepository[identity.StudentProfile]),
		staff:    new(MockProfileRepository[identity.StaffProfile]),
		parents:  new(MockProfileRepository[identity.ParentProfile]),
		plans:    new(MockPlanSnapshotter),
		tenants:  new(MockTenantRevalidator),
		notifier: new(MockNotifier),
	}
	scope := NewNoOpTransactionScope(Repositories{
		Users:          f.users,
		Roles:          f.roles,
		UserRoles:      f.userRole,
		Permissions:    f.perms,
		TeacherProfile: f.teachers,
		StudentProfile: f.students,
		StaffProfile:   f.staff,
		ParentProfile:  f.parents,
	})
	base := []Option{
		WithConfig(Config{BcryptCost: 4, BulkConcurrency: 2, MaxBatchSize: 10}),
		WithNotifier(f.notifier),
	}
	f.service = NewService(scope, f.plans, f.tenants, nil, append(base, opts...)...)
	return f
}
