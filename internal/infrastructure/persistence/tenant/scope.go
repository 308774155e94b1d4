// Package tenant provides schema-per-tenant database scoping for GORM.
//
// A tenant partition is a PostgreSQL schema. TenantDB routes every statement
// to the schema of one resolved tenant, GlobalDB to the shared schema holding
// institutions and plans. The two are distinct types so a repository built
// for one partition kind cannot be handed the other.
//
// Usage:
//
//	tdb := tenant.NewTenantDB(gormDB, tc)
//	tdb.Table(ctx, "users").Where("email = ?", email).Take(&m)
//	// SELECT * FROM "school_42"."users" WHERE email = $1 LIMIT $2
package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/campus/backend/internal/domain/tenancy"
	"gorm.io/gorm"
)

// ErrPartitionMismatch is returned when a scoped statement targets a table outside its partition
var ErrPartitionMismatch = errors.New("statement targets a table outside its partition")

// PartitionSettingKey marks a statement with the schema it must stay in
const PartitionSettingKey = "tenant:partition"

var schemaPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// TenantDB wraps GORM DB with routing to one tenant partition
type TenantDB struct {
	db *gorm.DB
	tc tenancy.TenantContext
}

// NewTenantDB binds db to the partition of a resolved tenant context.
// Panics if tc does not carry a valid partition: building a tenant-scoped
// repository without a resolved context is a programming error.
func NewTenantDB(db *gorm.DB, tc tenancy.TenantContext) *TenantDB {
	if db == nil {
		panic("tenant.NewTenantDB called with nil db")
	}
	if !tc.IsResolved() {
		panic(fmt.Sprintf("tenant.NewTenantDB called with unresolved tenant context (partition %q) - this is a programming error", tc.PartitionName))
	}
	return &TenantDB{db: db, tc: tc}
}

// Partition returns the schema name this DB is bound to
func (t *TenantDB) Partition() string {
	return t.tc.PartitionName
}

// TenantContext returns the tenant context this DB was bound with
func (t *TenantDB) TenantContext() tenancy.TenantContext {
	return t.tc
}

// Table returns a statement addressing a table of the tenant partition
func (t *TenantDB) Table(ctx context.Context, name string) *gorm.DB {
	return scopedTable(t.db.WithContext(ctx), t.tc.PartitionName, name)
}

// Transaction runs fn in a transaction whose TenantDB stays bound to the same partition
func (t *TenantDB) Transaction(ctx context.Context, fn func(tx *TenantDB) error, opts ...*sql.TxOptions) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&TenantDB{db: tx, tc: t.tc})
	}, opts...)
}

// GlobalDB wraps GORM DB with routing to the global partition
type GlobalDB struct {
	db     *gorm.DB
	schema string
}

// NewGlobalDB binds db to the global schema ("public" on PostgreSQL).
// Panics if schema is not a valid identifier.
func NewGlobalDB(db *gorm.DB, schema string) *GlobalDB {
	if db == nil {
		panic("tenant.NewGlobalDB called with nil db")
	}
	if !schemaPattern.MatchString(schema) {
		panic(fmt.Sprintf("tenant.NewGlobalDB called with invalid schema %q", schema))
	}
	return &GlobalDB{db: db, schema: schema}
}

// Schema returns the global schema name
func (g *GlobalDB) Schema() string {
	return g.schema
}

// Table returns a statement addressing a table of the global partition
func (g *GlobalDB) Table(ctx context.Context, name string) *gorm.DB {
	return scopedTable(g.db.WithContext(ctx), g.schema, name)
}

// QualifiedName returns "schema.table"
func QualifiedName(schema, table string) string {
	return schema + "." + table
}

func scopedTable(db *gorm.DB, schema, table string) *gorm.DB {
	return db.Set(PartitionSettingKey, schema).Table(QualifiedName(schema, table))
}
