package tenant

import (
	"strings"

	"gorm.io/gorm"
)

// PartitionGuard provides GORM callback hooks that reject statements which were
// scoped to a partition but address a table outside of it, e.g. after a later
// Table() call replaced the qualified name.
type PartitionGuard struct{}

// NewPartitionGuard creates a new partition guard
func NewPartitionGuard() *PartitionGuard {
	return &PartitionGuard{}
}

// RegisterCallbacks registers the guard with GORM
func (g *PartitionGuard) RegisterCallbacks(db *gorm.DB) error {
	if err := db.Callback().Create().Before("gorm:create").Register("tenant:guard_create", g.check); err != nil {
		return err
	}
	if err := db.Callback().Query().Before("gorm:query").Register("tenant:guard_query", g.check); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("tenant:guard_update", g.check); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("tenant:guard_delete", g.check); err != nil {
		return err
	}
	return db.Callback().Row().Before("gorm:row").Register("tenant:guard_row", g.check)
}

// check verifies the statement's table expression starts with its partition
func (g *PartitionGuard) check(db *gorm.DB) {
	v, ok := db.Get(PartitionSettingKey)
	if !ok {
		return
	}
	schema, _ := v.(string)
	if schema == "" || db.Statement.TableExpr == nil {
		_ = db.AddError(ErrPartitionMismatch)
		return
	}

	prefix := db.Statement.Quote(schema) + "."
	if !strings.HasPrefix(db.Statement.TableExpr.SQL, prefix) {
		_ = db.AddError(ErrPartitionMismatch)
	}
}
