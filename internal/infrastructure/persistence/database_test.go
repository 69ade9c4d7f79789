package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newMockDatabase wraps a sqlmock connection in the Postgres dialector
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: conn, DriverName: "postgres"}),
		&gorm.Config{SkipDefaultTransaction: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	db, err := wrap(gdb)
	require.NoError(t, err)
	return db, mock
}

// newSQLiteDB opens an in-memory database with the full schema
func newSQLiteDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection would get its own empty in-memory database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestDatabase_PingAndClose(t *testing.T) {
	db, mock := newMockDatabase(t)

	mock.ExpectPing()
	mock.ExpectClose()

	require.NoError(t, db.PingContext(context.Background()))
	require.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_PingFailure(t *testing.T) {
	db, mock := newMockDatabase(t)
	defer db.Close()

	mock.ExpectPing().WillReturnError(assert.AnError)

	assert.ErrorIs(t, db.PingContext(context.Background()), assert.AnError)
}

func TestDatabase_Stats(t *testing.T) {
	db, _ := newMockDatabase(t)
	defer db.Close()

	stats := db.Stats()
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
}

type ledgerRow struct {
	ID     uint
	Number string
}

func TestDatabase_Transaction(t *testing.T) {
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		db, mock := newMockDatabase(t)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "ledger_rows"`).
			WithArgs("PT-0001").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		err := db.Transaction(ctx, func(tx *gorm.DB) error {
			return tx.Create(&ledgerRow{Number: "PT-0001"}).Error
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback", func(t *testing.T) {
		db, mock := newMockDatabase(t)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := db.Transaction(ctx, func(*gorm.DB) error { return assert.AnError })
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAutoMigrate_CreatesEveryTable(t *testing.T) {
	db := newSQLiteDB(t)

	for _, table := range []string{
		"customers", "invoices", "advances", "receipts",
		"receipt_allocations", "period_locks", "audit_logs", "outbox_entries",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
