package persistence

import (
	"context"
	"sync"
	"testing"

	"github.com/campus/backend/internal/domain/identity"
	"github.com/campus/backend/internal/domain/shared"
	"github.com/campus/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormRoleRepository_FindOrCreateByType(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t, "school_42")
	repo := NewGormRoleRepository(db.Tenant(tenantContext("school_42")))

	_, err := repo.FindByType(ctx, identity.RoleTypeTeacher)
	require.ErrorIs(t, err, shared.ErrNotFound)

	first, err := repo.FindOrCreateByType(ctx, identity.RoleTypeTeacher)
	require.NoError(t, err)
	assert.Equal(t, identity.RoleTypeTeacher, first.Type)
	assert.Equal(t, "Teacher", first.Name)
	assert.Equal(t, "school_42", first.TenantScope)

	second, err := repo.FindOrCreateByType(ctx, identity.RoleTypeTeacher)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	byID, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Type, byID.Type)

	_, err = repo.FindOrCreateByType(ctx, identity.RoleType("janitor"))
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestGormRoleRepository_FindOrCreateConverges(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t, "school_42")
	repo := NewGormRoleRepository(db.Tenant(tenantContext("school_42")))

	const workers = 8
	ids := make([]uuid.UUID, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			role, err := repo.FindOrCreateByType(ctx, identity.RoleTypeStudent)
			if assert.NoError(t, err) {
				ids[i] = role.ID
			}
		}()
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, int64(1), testutil.CountRows(t, db.DB, "school_42", "roles", "type = ?", "student"))
}

func TestGormRoleRepository_DuplicateType(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t, "school_42")
	repo := NewGormRoleRepository(db.Tenant(tenantContext("school_42")))

	r1, err := identity.NewRole(identity.RoleTypeParent, "school_42")
	require.NoError(t, err)
	r2, err := identity.NewRole(identity.RoleTypeParent, "school_42")
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, r1))
	assert.ErrorIs(t, repo.Create(ctx, r2), shared.ErrDuplicateEntity)
}

func TestGormUserRoleAndPermissionRepositories(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t, "school_42")
	tdb := db.Tenant(tenantContext("school_42"))
	users := NewGormUserRepository(tdb)
	roles := NewGormRoleRepository(tdb)
	userRoles := NewGormUserRoleRepository(tdb)
	perms := NewGormUserPermissionRepository(tdb)

	user := newUser(t, "t@example.com", identity.UserTypeTeacher)
	require.NoError(t, users.Create(ctx, user))
	role, err := roles.FindOrCreateByType(ctx, identity.RoleTypeTeacher)
	require.NoError(t, err)

	ur := identity.NewUserRole(user.ID, role.ID, testutil.TestActorID())
	require.NoError(t, userRoles.Create(ctx, &ur))
	assert.ErrorIs(t, userRoles.Create(ctx, &ur), shared.ErrDuplicateEntity)

	assigned, err := userRoles.FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, role.ID, assigned[0].RoleID)

	require.NoError(t, perms.BulkInsert(ctx, nil))
	grants := identity.NewUserPermissions(user.ID, []string{"view_students", "grade_students"}, uuid.Nil)
	require.NoError(t, perms.BulkInsert(ctx, grants))

	stored, err := perms.FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "grade_students", stored[0].PermissionKey)
	assert.Equal(t, "view_students", stored[1].PermissionKey)
	assert.Nil(t, stored[0].GrantedBy)
}
