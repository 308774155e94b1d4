package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_IsMatchesCode(t *testing.T) {
	err := NewDuplicateEntityError("User", "email")

	assert.True(t, errors.Is(err, ErrDuplicateEntity))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "User with this email already exists", err.Error())
	assert.Equal(t, "email", err.Field)
}

func TestTransactionAborted_PreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewTransactionAbortedError("create_profile", fmt.Errorf("insert teacher profile: %w", cause))

	assert.ErrorIs(t, err, ErrTransactionAborted)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "create_profile", err.Step)
	assert.Contains(t, err.Error(), "connection reset")

	wrapped := fmt.Errorf("bulk item 2: %w", err)
	var de *DomainError
	require.ErrorAs(t, wrapped, &de)
	assert.Equal(t, CodeTransactionAborted, de.Code)
}
