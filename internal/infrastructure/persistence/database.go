package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erp/receivables/internal/infrastructure/config"
	"github.com/erp/receivables/internal/infrastructure/persistence/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database is the GORM handle plus the pool underneath it
type Database struct {
	DB   *gorm.DB
	pool *sql.DB
}

type DatabaseOption func(*gorm.Config)

// WithGormLogger replaces the silent default logger. A nil logger is ignored.
func WithGormLogger(l logger.Interface) DatabaseOption {
	return func(c *gorm.Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// NewDatabase opens the Postgres pool, sizes it from cfg and pings once
func NewDatabase(cfg *config.DatabaseConfig, opts ...DatabaseOption) (*Database, error) {
	gormCfg := &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}
	for _, opt := range opts {
		opt(gormCfg)
	}

	gdb, err := gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db, err := wrap(gdb)
	if err != nil {
		return nil, err
	}

	db.pool.SetMaxOpenConns(cfg.MaxOpenConns)
	db.pool.SetMaxIdleConns(cfg.MaxIdleConns)
	db.pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	db.pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := db.pool.Ping(); err != nil {
		_ = db.pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func wrap(gdb *gorm.DB) (*Database, error) {
	pool, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return &Database{DB: gdb, pool: pool}, nil
}

// SchemaModels lists every table the service owns, parents before children
func SchemaModels() []any {
	return []any{
		&models.CustomerModel{},
		&models.InvoiceModel{},
		&models.AdvanceModel{},
		&models.ReceiptModel{},
		&models.ReceiptAllocationModel{},
		&models.PeriodLockModel{},
		&models.AuditLogModel{},
		&models.OutboxEntryModel{},
	}
}

// AutoMigrate creates the schema from the models. Production schemas come
// from the SQL migrations; this is for embedded databases in tests and local runs.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(SchemaModels()...); err != nil {
		return fmt.Errorf("failed to auto-migrate schema: %w", err)
	}
	return nil
}

// PingContext lets the health probe check the pool
func (d *Database) PingContext(ctx context.Context) error {
	return d.pool.PingContext(ctx)
}

func (d *Database) Stats() sql.DBStats {
	return d.pool.Stats()
}

func (d *Database) Close() error {
	return d.pool.Close()
}

// Transaction runs fn in a transaction bound to ctx, rolling back when fn errors
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}
