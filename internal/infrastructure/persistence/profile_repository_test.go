package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campus/backend/internal/domain/identity"
	"github.com/campus/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormProfileRepository_Student(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t, "school_42")
	repo := NewGormStudentProfileRepository(db.Tenant(tenantContext("school_42")))

	dob := time.Date(2012, 3, 4, 0, 0, 0, 0, time.UTC)
	p := &identity.StudentProfile{
		UserID:          uuid.New(),
		AdmissionNumber: "ADM-001",
		GradeLevel:      "7",
		DateOfBirth:     &dob,
		CreatedAt:       time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, p))

	dup := &identity.StudentProfile{UserID: uuid.New(), AdmissionNumber: "ADM-001", CreatedAt: time.Now().UTC()}
	err := repo.Create(ctx, dup)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, shared.CodeDuplicateEntity, de.Code)
	assert.Equal(t, "admission_number", de.Field)

	p.GradeLevel = "8"
	require.NoError(t, repo.Update(ctx, p))

	found, err := repo.FindByUserID(ctx, p.UserID)
	require.NoError(t, err)
	assert.Equal(t, "8", found.GradeLevel)
	assert.Equal(t, "ADM-001", found.AdmissionNumber)

	_, err = repo.FindByUserID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, dup), shared.ErrNotFound)
}

func TestGormProfileRepository_TeacherEmployeeNumber(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t, "school_42")
	repo := NewGormTeacherProfileRepository(db.Tenant(tenantContext("school_42")))

	// empty employee numbers are stored as NULL and never collide
	require.NoError(t, repo.Create(ctx, &identity.TeacherProfile{UserID: uuid.New(), CreatedAt: time.Now().UTC()}))
	require.NoError(t, repo.Create(ctx, &identity.TeacherProfile{UserID: uuid.New(), CreatedAt: time.Now().UTC()}))

	require.NoError(t, repo.Create(ctx, &identity.TeacherProfile{UserID: uuid.New(), EmployeeNumber: "E-1", CreatedAt: time.Now().UTC()}))
	err := repo.Create(ctx, &identity.TeacherProfile{UserID: uuid.New(), EmployeeNumber: "E-1", CreatedAt: time.Now().UTC()})
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "employee_number", de.Field)
}

func TestGormProfileRepository_StaffAndParent(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t, "school_42")
	tdb := db.Tenant(tenantContext("school_42"))
	staff := NewGormStaffProfileRepository(tdb)
	parents := NewGormParentProfileRepository(tdb)

	s := &identity.StaffProfile{UserID: uuid.New(), Department: "Admin", Position: "Clerk", CreatedAt: time.Now().UTC()}
	require.NoError(t, staff.Create(ctx, s))
	gotS, err := staff.FindByUserID(ctx, s.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Clerk", gotS.Position)
	assert.Empty(t, gotS.EmployeeNumber)

	p := &identity.ParentProfile{UserID: uuid.New(), Relationship: "mother", CreatedAt: time.Now().UTC()}
	require.NoError(t, parents.Create(ctx, p))
	assert.ErrorIs(t, parents.Create(ctx, p), shared.ErrDuplicateEntity)
	gotP, err := parents.FindByUserID(ctx, p.UserID)
	require.NoError(t, err)
	assert.Equal(t, "mother", gotP.Relationship)
}
