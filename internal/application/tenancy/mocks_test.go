package tenancy

import (
	"context"
	"time"

	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockInstitutionRepository is a mock implementation of tenancy.InstitutionRepository
type MockInstitutionRepository struct {
	mock.Mock
}

func (m *MockInstitutionRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenancy.Institution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenancy.Institution), args.Error(1)
}

func (m *MockInstitutionRepository) FindByPartitionName(ctx context.Context, partitionName string) (*tenancy.Institution, error) {
	args := m.Called(ctx, partitionName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenancy.Institution), args.Error(1)
}

func (m *MockInstitutionRepository) FindBySubDomain(ctx context.Context, subDomain string) (*tenancy.Institution, error) {
	args := m.Called(ctx, subDomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenancy.Institution), args.Error(1)
}

// MockContextCache is a mock implementation of tenancy.ContextCache
type MockContextCache struct {
	mock.Mock
}

func (m *MockContextCache) Get(ctx context.Context, ref string) (*tenancy.TenantContext, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenancy.TenantContext), args.Error(1)
}

func (m *MockContextCache) Set(ctx context.Context, ref string, tc tenancy.TenantContext, ttl time.Duration) error {
	return m.Called(ctx, ref, tc, ttl).Error(0)
}

func (m *MockContextCache) Delete(ctx context.Context, refs ...string) error {
	return m.Called(ctx, refs).Error(0)
}

func (m *MockContextCache) Close() error {
	return m.Called().Error(0)
}

func newInstitution(partition string, status tenancy.InstitutionStatus) *tenancy.Institution {
	planID := uuid.New()
	inst := &tenancy.Institution{
		Name:          "Institution " + partition,
		PartitionName: partition,
		SubDomain:     "sub-" + partition,
		PlanID:        &planID,
		Status:        status,
		Metadata:      map[string]string{},
	}
	inst.ID = uuid.New()
	return inst
}
