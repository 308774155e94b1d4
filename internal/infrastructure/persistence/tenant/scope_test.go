package tenant

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testUser struct {
	ID    uuid.UUID
	Email string
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, NewPartitionGuard().RegisterCallbacks(gormDB))

	return gormDB, mock, mockDB
}

func resolvedContext(partition string) tenancy.TenantContext {
	return tenancy.TenantContext{
		TenantID:      uuid.New(),
		PartitionName: partition,
		Status:        tenancy.InstitutionStatusActive,
	}
}

func TestNewTenantDB_PanicsWithoutResolvedContext(t *testing.T) {
	db, _, mockDB := setupMockDB(t)
	defer mockDB.Close()

	assert.Panics(t, func() { NewTenantDB(db, tenancy.TenantContext{}) })
	assert.Panics(t, func() {
		NewTenantDB(db, tenancy.TenantContext{TenantID: uuid.New(), PartitionName: "school-42"})
	})
	assert.Panics(t, func() { NewTenantDB(nil, resolvedContext("school_42")) })
	assert.NotPanics(t, func() { NewTenantDB(db, resolvedContext("school_42")) })
}

func TestNewGlobalDB_PanicsOnInvalidSchema(t *testing.T) {
	db, _, mockDB := setupMockDB(t)
	defer mockDB.Close()

	assert.Panics(t, func() { NewGlobalDB(db, "") })
	assert.Panics(t, func() { NewGlobalDB(db, `public"; --`) })
	assert.Equal(t, "public", NewGlobalDB(db, "public").Schema())
}

func TestTenantDB_Table(t *testing.T) {
	t.Run("qualifies table with partition schema", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		tdb := NewTenantDB(db, resolvedContext("school_42"))
		assert.Equal(t, "school_42", tdb.Partition())

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "school_42"."users" WHERE email = $1`)).
			WithArgs("a@x.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

		var users []testUser
		err := tdb.Table(context.Background(), "users").Where("email = ?", "a@x.com").Find(&users).Error
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("two tenants address disjoint schemas", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		t1 := NewTenantDB(db, resolvedContext("school_1"))
		t2 := NewTenantDB(db, resolvedContext("school_2"))

		mock.ExpectQuery(regexp.QuoteMeta(`FROM "school_1"."users"`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))
		mock.ExpectQuery(regexp.QuoteMeta(`FROM "school_2"."users"`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

		var users []testUser
		require.NoError(t, t1.Table(context.Background(), "users").Find(&users).Error)
		require.NoError(t, t2.Table(context.Background(), "users").Find(&users).Error)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPartitionGuard_RejectsEscapedTable(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	tdb := NewTenantDB(db, resolvedContext("school_42"))

	var users []testUser
	err := tdb.Table(context.Background(), "users").Table("public.users").Find(&users).Error
	assert.ErrorIs(t, err, ErrPartitionMismatch)

	// no SQL must reach the database
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPartitionGuard_IgnoresUnscopedStatements(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "test_users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	var users []testUser
	require.NoError(t, db.Table("test_users").Find(&users).Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantDB_TransactionStaysInPartition(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	tdb := NewTenantDB(db, resolvedContext("school_42"))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "school_42"."users" SET "email"=$1 WHERE id = $2`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id := uuid.New()
	err := tdb.Transaction(context.Background(), func(tx *TenantDB) error {
		assert.Equal(t, "school_42", tx.Partition())
		return tx.Table(context.Background(), "users").Where("id = ?", id).Update("email", "b@x.com").Error
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
