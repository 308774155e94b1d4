package tenancy

import (
	"regexp"
	"strings"

	"github.com/campus/backend/internal/domain/shared"
)

// partitionNamePattern matches a PostgreSQL identifier that is safe to use
// unquoted as a schema name.
var partitionNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// reservedPartitions can never back a tenant
var reservedPartitions = map[string]struct{}{
	"public":             {},
	"main":               {},
	"information_schema": {},
	"pg_catalog":         {},
	"pg_toast":           {},
}

// ValidatePartitionName checks that name can address a tenant partition
func ValidatePartitionName(name string) error {
	if !partitionNamePattern.MatchString(name) {
		return shared.NewValidationError("partition_name",
			"Partition name must start with a letter or underscore and contain only lowercase letters, digits and underscores")
	}
	if _, reserved := reservedPartitions[name]; reserved || strings.HasPrefix(name, "pg_") {
		return shared.NewValidationError("partition_name", "Partition name is reserved")
	}
	return nil
}

// IsValidPartitionName is the boolean form of ValidatePartitionName
func IsValidPartitionName(name string) bool {
	return ValidatePartitionName(name) == nil
}
