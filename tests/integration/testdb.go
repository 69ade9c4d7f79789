// Package integration runs the receivables service against a real PostgreSQL
// started with testcontainers. The schema comes from the embedded migrations.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/erp/receivables/internal/infrastructure/migration"
	"github.com/erp/receivables/internal/infrastructure/persistence"
	"github.com/erp/receivables/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// Shared container for all tests in the package
	sharedContainer    testcontainers.Container
	sharedContainerMu  sync.Mutex
	sharedContainerDSN string
)

// TestDB represents a test database connection
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	DSN   string
	t     *testing.T
}

// NewTestDB returns a connection to the package's PostgreSQL container,
// starting and migrating it on first use, with every table emptied.
// It skips the test under -short.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test needs docker")
	}

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer == nil {
		ctx := context.Background()
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("receivables_test"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("admin123"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		require.NoError(t, err, "Failed to start PostgreSQL container")

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err, "Failed to get connection string")

		_, sqlDB := connectToDatabase(t, dsn)
		runMigrations(t, sqlDB)
		_ = sqlDB.Close()

		sharedContainer = container
		sharedContainerDSN = dsn
	}

	db, sqlDB := connectToDatabase(t, sharedContainerDSN)
	tdb := &TestDB{DB: db, SqlDB: sqlDB, DSN: sharedContainerDSN, t: t}
	tdb.CleanTables()

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return tdb
}

// CleanupSharedContainer terminates the shared container. Call it from TestMain.
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = sharedContainer.Terminate(ctx)
		sharedContainer = nil
		sharedContainerDSN = ""
	}
}

// receivableTables lists the tables in the order they can be truncated together
var receivableTables = []string{
	"receipt_allocations",
	"receipts",
	"invoices",
	"advances",
	"customers",
	"period_locks",
	"audit_logs",
	"outbox_entries",
}

// CleanTables truncates every receivables table
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(receivableTables, ", "))).Error
	require.NoError(tdb.t, err, "Failed to truncate tables")
}

// CreateCustomer inserts a customer of sellerTaxCode owned by owner
func (tdb *TestDB) CreateCustomer(sellerTaxCode, taxCode string, paymentTermsDays int, owner uuid.UUID) *receivable.Customer {
	tdb.t.Helper()

	customer, err := receivable.NewCustomer(sellerTaxCode, taxCode, "Customer "+taxCode, paymentTermsDays, &owner)
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormCustomerRepository(tdb.DB).Create(context.Background(), customer),
		"Failed to create test customer")
	return customer
}

// Count returns the number of rows in table matching the optional condition
func (tdb *TestDB) Count(table string, cond string, args ...any) int64 {
	tdb.t.Helper()

	query := tdb.DB.Table(table)
	if cond != "" {
		query = query.Where(cond, args...)
	}
	var n int64
	require.NoError(tdb.t, query.Count(&n).Error)
	return n
}

// connectToDatabase establishes a GORM connection to the database
func connectToDatabase(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), gormConfig)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "Failed to get underlying SQL DB")

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, sqlDB
}

// runMigrations applies the embedded schema migrations
func runMigrations(t *testing.T, sqlDB *sql.DB) {
	t.Helper()

	m, err := migration.New(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	defer func() { _ = m.Close() }()
	require.NoError(t, m.Up(), "Failed to run migrations")
}
