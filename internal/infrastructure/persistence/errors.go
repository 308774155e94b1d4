package persistence

import (
	"errors"
	"strings"

	"github.com/campus/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps driver errors to domain errors.
// Unique violations become DUPLICATE_ENTITY on the given field, a missing row becomes ErrNotFound.
func translateError(err error, entity, field string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if isUniqueViolation(err) {
		dup := shared.NewDuplicateEntityError(entity, uniqueField(err, field))
		dup.Err = err
		return dup
	}
	return err
}

// isUniqueViolation reports unique constraint errors from PostgreSQL and SQLite.
// gorm.ErrDuplicatedKey is only produced when the dialector translates errors.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

// uniqueField picks the violated column from the driver message when it names one
// of the known unique columns, falling back to the repository default.
func uniqueField(err error, fallback string) string {
	msg := err.Error()
	for _, col := range []string{"admission_number", "employee_number", "email", "type"} {
		if strings.Contains(msg, "."+col) || strings.Contains(msg, "_"+col+"_key") || strings.Contains(msg, "_"+col) {
			return col
		}
	}
	return fallback
}
