package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GlobalSchema is the schema holding global tables in SQLite test databases
const GlobalSchema = "main"

var globalDDL = []string{
	`CREATE TABLE main.plans (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE main.plan_permissions (
		plan_id TEXT NOT NULL,
		permission_key TEXT NOT NULL,
		role_type TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (plan_id, permission_key, role_type)
	)`,
	`CREATE TABLE main.institutions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		partition_name TEXT NOT NULL UNIQUE,
		sub_domain TEXT UNIQUE,
		type TEXT,
		plan_id TEXT,
		status TEXT NOT NULL,
		metadata TEXT,
		deleted_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
}

var tenantDDL = []string{
	`CREATE TABLE %[1]s.users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name TEXT,
		last_name TEXT,
		phone TEXT,
		user_type TEXT NOT NULL,
		is_active BOOLEAN NOT NULL,
		must_change_password BOOLEAN NOT NULL,
		metadata TEXT,
		created_by TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE %[1]s.roles (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		tenant_scope TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE %[1]s.user_roles (
		user_id TEXT NOT NULL,
		role_id TEXT NOT NULL,
		assigned_by TEXT,
		assigned_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, role_id)
	)`,
	`CREATE TABLE %[1]s.user_permissions (
		user_id TEXT NOT NULL,
		permission_key TEXT NOT NULL,
		granted_by TEXT,
		granted_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, permission_key)
	)`,
	`CREATE TABLE %[1]s.teacher_profiles (
		user_id TEXT PRIMARY KEY,
		employee_number TEXT UNIQUE,
		qualification TEXT,
		specialization TEXT,
		hire_date DATETIME,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE %[1]s.student_profiles (
		user_id TEXT PRIMARY KEY,
		admission_number TEXT NOT NULL UNIQUE,
		grade_level TEXT,
		date_of_birth DATETIME,
		guardian_email TEXT,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE %[1]s.staff_profiles (
		user_id TEXT PRIMARY KEY,
		employee_number TEXT UNIQUE,
		department TEXT,
		position TEXT,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE %[1]s.parent_profiles (
		user_id TEXT PRIMARY KEY,
		relationship TEXT,
		occupation TEXT,
		created_at DATETIME NOT NULL
	)`,
}

// NewSQLiteDB opens an in-memory SQLite database with the global tables in "main"
// and one attached database per partition emulating a PostgreSQL schema.
// The pool is limited to one connection so every statement sees the attached databases.
func NewSQLiteDB(t *testing.T, partitions ...string) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range globalDDL {
		require.NoError(t, db.Exec(stmt).Error)
	}
	for _, p := range partitions {
		AttachPartition(t, db, p)
	}
	return db
}

// AttachPartition attaches an empty database named partition and creates the tenant tables in it
func AttachPartition(t *testing.T, db *gorm.DB, partition string) {
	t.Helper()
	require.True(t, tenancy.IsValidPartitionName(partition), "invalid partition %q", partition)

	require.NoError(t, db.Exec(fmt.Sprintf("ATTACH DATABASE ':memory:' AS %s", partition)).Error)
	for _, stmt := range tenantDDL {
		require.NoError(t, db.Exec(fmt.Sprintf(stmt, partition)).Error)
	}
}

// SeedPlan inserts a plan whose keys are granted to every role type and returns its ID
func SeedPlan(t *testing.T, db *gorm.DB, slug string, keys ...string) uuid.UUID {
	t.Helper()
	return SeedPlanWithRoles(t, db, slug, map[string][]string{"": keys})
}

// SeedPlanWithRoles inserts a plan with per-role grants; the "" role grants to everyone
func SeedPlanWithRoles(t *testing.T, db *gorm.DB, slug string, grants map[string][]string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	require.NoError(t, db.Exec(
		`INSERT INTO main.plans (id, slug, name, created_at) VALUES (?, ?, ?, ?)`,
		id.String(), slug, slug, time.Now().UTC(),
	).Error)
	for role, keys := range grants {
		for _, k := range keys {
			require.NoError(t, db.Exec(
				`INSERT INTO main.plan_permissions (plan_id, permission_key, role_type) VALUES (?, ?, ?)`,
				id.String(), k, role,
			).Error)
		}
	}
	return id
}

// AddPlanPermission grants one more key to every role type of a plan
func AddPlanPermission(t *testing.T, db *gorm.DB, planID uuid.UUID, key string) {
	t.Helper()
	require.NoError(t, db.Exec(
		`INSERT INTO main.plan_permissions (plan_id, permission_key, role_type) VALUES (?, ?, '')`,
		planID.String(), key,
	).Error)
}

// InstitutionFixture describes an institution row
type InstitutionFixture struct {
	Name          string
	PartitionName string
	SubDomain     string
	PlanID        *uuid.UUID
	Status        tenancy.InstitutionStatus
	Deleted       bool
}

// SeedInstitution inserts an institution and returns the tenant context a resolver would build
func SeedInstitution(t *testing.T, db *gorm.DB, f InstitutionFixture) tenancy.TenantContext {
	t.Helper()

	if f.Status == "" {
		f.Status = tenancy.InstitutionStatusActive
	}
	if f.Name == "" {
		f.Name = f.PartitionName
	}
	var subDomain any
	if f.SubDomain != "" {
		subDomain = f.SubDomain
	}
	var planID any
	if f.PlanID != nil {
		planID = f.PlanID.String()
	}
	var deletedAt any
	if f.Deleted {
		deletedAt = time.Now().UTC()
	}

	id := uuid.New()
	now := time.Now().UTC()
	require.NoError(t, db.Exec(
		`INSERT INTO main.institutions
			(id, name, partition_name, sub_domain, type, plan_id, status, metadata, deleted_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 'school', ?, ?, '{}', ?, ?, ?)`,
		id.String(), f.Name, f.PartitionName, subDomain, planID, string(f.Status), deletedAt, now, now,
	).Error)

	tc := tenancy.TenantContext{
		TenantID:        id,
		PartitionName:   f.PartitionName,
		InstitutionName: f.Name,
		Status:          f.Status,
		SubDomain:       f.SubDomain,
		Type:            "school",
		Metadata:        map[string]string{},
	}
	if f.PlanID != nil {
		tc.PlanID = *f.PlanID
	}
	return tc
}

// CountRows counts rows of a partition table matching where
func CountRows(t *testing.T, db *gorm.DB, partition, table, where string, args ...any) int64 {
	t.Helper()

	var n int64
	q := db.Table(partition + "." + table)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
