package persistence

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/campus/backend/internal/domain/shared"
	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/campus/backend/internal/infrastructure/persistence/tenant"
	"github.com/campus/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormInstitutionRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	planID := testutil.SeedPlan(t, db.DB, "basic", "view_students")
	live := testutil.SeedInstitution(t, db.DB, testutil.InstitutionFixture{
		Name: "School 42", PartitionName: "school_42", SubDomain: "school42", PlanID: &planID,
	})
	gone := testutil.SeedInstitution(t, db.DB, testutil.InstitutionFixture{
		PartitionName: "school_gone", SubDomain: "gone", Deleted: true,
	})
	repo := NewGormInstitutionRepository(db.Global())

	inst, err := repo.FindByID(ctx, live.TenantID)
	require.NoError(t, err)
	assert.Equal(t, "school_42", inst.PartitionName)
	assert.Equal(t, "School 42", inst.Name)
	require.True(t, inst.HasPlan())
	assert.Equal(t, planID, *inst.PlanID)
	assert.True(t, inst.IsActive())

	byPartition, err := repo.FindByPartitionName(ctx, "school_42")
	require.NoError(t, err)
	assert.Equal(t, live.TenantID, byPartition.ID)

	bySub, err := repo.FindBySubDomain(ctx, " School42 ")
	require.NoError(t, err)
	assert.Equal(t, live.TenantID, bySub.ID)

	t.Run("soft-deleted institutions are invisible", func(t *testing.T) {
		_, err := repo.FindByID(ctx, gone.TenantID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = repo.FindByPartitionName(ctx, "school_gone")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = repo.FindBySubDomain(ctx, "gone")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("empty keys are not found", func(t *testing.T) {
		_, err := repo.FindByPartitionName(ctx, "")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = repo.FindBySubDomain(ctx, "  ")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormPlanRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	planID := testutil.SeedPlanWithRoles(t, db.DB, "premium", map[string][]string{
		"":        {"view_teachers", "view_students"},
		"teacher": {"grade_students"},
	})
	repo := NewGormPlanRepository(db.Global())

	plan, err := repo.FindByID(ctx, planID)
	require.NoError(t, err)
	assert.Equal(t, "premium", plan.Slug)
	require.Len(t, plan.Permissions, 3)
	assert.Equal(t, "grade_students", plan.Permissions[0].PermissionKey)
	assert.Equal(t, "teacher", plan.Permissions[0].RoleType)

	bySlug, err := repo.FindBySlug(ctx, "premium")
	require.NoError(t, err)
	assert.Equal(t, planID, bySlug.ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = repo.FindBySlug(ctx, "")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	perms, err := repo.ListPermissions(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestGormInstitutionRepository_SQL(t *testing.T) {
	m := testutil.NewMockDB(t)
	repo := NewGormInstitutionRepository(tenant.NewGlobalDB(m.DB, "public"))

	m.Mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "public"."institutions" WHERE deleted_at IS NULL AND partition_name = $1 LIMIT $2`)).
		WithArgs("school_42", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "partition_name", "status"}).
			AddRow(uuid.New().String(), "school_42", string(tenancy.InstitutionStatusActive)))

	inst, err := repo.FindByPartitionName(context.Background(), "school_42")
	require.NoError(t, err)
	assert.Equal(t, "school_42", inst.PartitionName)
	m.ExpectationsWereMet(t)
}
