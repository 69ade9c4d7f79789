package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultSlowQueryThreshold = 200 * time.Millisecond
	defaultPoolStatsInterval  = 15 * time.Second
)

type DBMetricsConfig struct {
	Enabled            bool
	SlowQueryThreshold time.Duration
	PoolStatsInterval  time.Duration
}

func DefaultDBMetricsConfig() DBMetricsConfig {
	return DBMetricsConfig{
		Enabled:            true,
		SlowQueryThreshold: defaultSlowQueryThreshold,
		PoolStatsInterval:  defaultPoolStatsInterval,
	}
}

// knownTables bounds the db.table label; anything else is reported as "other"
var knownTables = map[string]bool{
	"customers":           true,
	"invoices":            true,
	"advances":            true,
	"receipts":            true,
	"receipt_allocations": true,
	"period_locks":        true,
	"audit_logs":          true,
	"outbox_entries":      true,
}

// DBMetrics counts statements per operation and table and samples the
// connection pool on an interval.
type DBMetrics struct {
	config DBMetricsConfig
	logger *zap.Logger

	queries, queryErrors, slowQueries *Counter
	queryDuration                     *Histogram
	poolConns, poolConnsMax           *Gauge

	mu       sync.RWMutex
	pool     *sql.DB
	stop     chan struct{}
	stopOnce sync.Once
	sampler  sync.WaitGroup
}

func NewDBMetrics(meter metric.Meter, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThreshold == 0 {
		cfg.SlowQueryThreshold = defaultSlowQueryThreshold
	}
	if cfg.PoolStatsInterval == 0 {
		cfg.PoolStatsInterval = defaultPoolStatsInterval
	}
	m := &DBMetrics{config: cfg, logger: logger, stop: make(chan struct{})}

	var errs []error
	counter := func(name, desc string) *Counter {
		c, err := NewCounter(meter, name, desc, "{query}")
		errs = append(errs, err)
		return c
	}
	gauge := func(name, desc string) *Gauge {
		g, err := NewGauge(meter, name, desc, "{connection}")
		errs = append(errs, err)
		return g
	}

	m.queries = counter("db_query_total", "Database statements by operation and table")
	m.queryErrors = counter("db_query_errors_total", "Failed database statements, record-not-found excluded")
	m.slowQueries = counter("db_slow_query_total", "Database statements slower than the slow query threshold")
	m.poolConns = gauge("db_pool_connections", "Pool connections by state")
	m.poolConnsMax = gauge("db_pool_connections_max", "Pool connection limit")

	var err error
	m.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database statement latency in seconds",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// SetSQLDB sets the pool sampled by StartPoolStatsCollection
func (m *DBMetrics) SetSQLDB(pool *sql.DB) {
	m.mu.Lock()
	m.pool = pool
	m.mu.Unlock()
}

func (m *DBMetrics) sqlDB() *sql.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pool
}

// StartPoolStatsCollection samples the pool right away and then every
// PoolStatsInterval until Stop or ctx ends. It does nothing without SetSQLDB.
func (m *DBMetrics) StartPoolStatsCollection(ctx context.Context) {
	if m.sqlDB() == nil {
		m.logger.Warn("Pool stats collection not started: no sql.DB set")
		return
	}

	m.sampler.Add(1)
	go func() {
		defer m.sampler.Done()
		ticker := time.NewTicker(m.config.PoolStatsInterval)
		defer ticker.Stop()
		for {
			m.samplePool(ctx)
			select {
			case <-ticker.C:
			case <-m.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	m.logger.Info("Pool stats collection started", zap.Duration("interval", m.config.PoolStatsInterval))
}

func (m *DBMetrics) samplePool(ctx context.Context) {
	pool := m.sqlDB()
	if pool == nil {
		return
	}
	s := pool.Stats()
	m.poolConnsMax.Record(ctx, int64(s.MaxOpenConnections))
	m.poolConns.Record(ctx, int64(s.Idle), AttrDBState.String("idle"))
	m.poolConns.Record(ctx, int64(s.InUse), AttrDBState.String("in_use"))
	m.poolConns.Record(ctx, int64(s.OpenConnections), AttrDBState.String("open"))
}

// Stop ends pool sampling. Later calls are no-ops.
func (m *DBMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		m.sampler.Wait()
	})
}

// RecordQuery counts one statement. Record-not-found is not an error here
// since repositories map it to NotFound.
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, duration time.Duration, err error) {
	operation = strings.ToUpper(operation)
	if operation == "" {
		operation = "UNKNOWN"
	}
	op := AttrDBOperation.String(operation)
	tbl := AttrDBTable.String(tableLabel(table))

	m.queries.Inc(ctx, op, tbl)
	m.queryDuration.RecordDuration(ctx, duration, op)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		m.queryErrors.Inc(ctx, op, tbl)
	}
	if duration > m.config.SlowQueryThreshold {
		m.slowQueries.Inc(ctx, tbl)
	}
}

func tableLabel(table string) string {
	switch {
	case table == "":
		return "unknown"
	case knownTables[table]:
		return table
	default:
		return "other"
	}
}

// DBMetricsPlugin feeds every GORM statement into DBMetrics
type DBMetricsPlugin struct {
	metrics *DBMetrics
	logger  *zap.Logger
}

func NewDBMetricsPlugin(metrics *DBMetrics, logger *zap.Logger) *DBMetricsPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBMetricsPlugin{metrics: metrics, logger: logger}
}

func (p *DBMetricsPlugin) Name() string { return "db_metrics" }

type statementStartKey struct{}

func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	start := func(tx *gorm.DB) {
		tx.Statement.Context = context.WithValue(statementContext(tx), statementStartKey{}, time.Now())
	}
	as := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) { p.record(tx, op) }
	}
	sniff := func(tx *gorm.DB) { p.record(tx, detectOperationType(tx.Statement.SQL.String())) }

	cb := db.Callback()
	err := errors.Join(
		cb.Create().Before("gorm:create").Register("db_metrics:before_create", start),
		cb.Create().After("gorm:create").Register("db_metrics:after_create", as("INSERT")),
		cb.Query().Before("gorm:query").Register("db_metrics:before_query", start),
		cb.Query().After("gorm:query").Register("db_metrics:after_query", as("SELECT")),
		cb.Update().Before("gorm:update").Register("db_metrics:before_update", start),
		cb.Update().After("gorm:update").Register("db_metrics:after_update", as("UPDATE")),
		cb.Delete().Before("gorm:delete").Register("db_metrics:before_delete", start),
		cb.Delete().After("gorm:delete").Register("db_metrics:after_delete", as("DELETE")),
		cb.Row().Before("gorm:row").Register("db_metrics:before_row", start),
		cb.Row().After("gorm:row").Register("db_metrics:after_row", sniff),
		cb.Raw().Before("gorm:raw").Register("db_metrics:before_raw", start),
		cb.Raw().After("gorm:raw").Register("db_metrics:after_raw", sniff),
	)
	if err != nil {
		return err
	}
	p.logger.Debug("Database metrics plugin initialized")
	return nil
}

func (p *DBMetricsPlugin) record(tx *gorm.DB, operation string) {
	ctx := statementContext(tx)
	var elapsed time.Duration
	if began, ok := ctx.Value(statementStartKey{}).(time.Time); ok {
		elapsed = time.Since(began)
	}
	p.metrics.RecordQuery(ctx, operation, tx.Statement.Table, elapsed, tx.Error)
}

func statementContext(tx *gorm.DB) context.Context {
	if tx.Statement.Context != nil {
		return tx.Statement.Context
	}
	return context.Background()
}

func detectOperationType(sql string) string {
	sql = strings.ToUpper(strings.TrimSpace(sql))
	for _, op := range [...]string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sql, op) {
			return op
		}
	}
	return "OTHER"
}

// RegisterDBMetrics installs the plugin on db and starts pool sampling. It
// returns nil when metrics are off; otherwise the caller must Stop it.
func RegisterDBMetrics(db *gorm.DB, meterProvider *MeterProvider, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if !cfg.Enabled || meterProvider == nil || !meterProvider.IsEnabled() {
		logger.Debug("Database metrics disabled")
		return nil, nil
	}

	m, err := NewDBMetrics(meterProvider.Meter("db.client"), cfg, logger)
	if err != nil {
		return nil, err
	}
	pool, err := db.DB()
	if err != nil {
		return nil, err
	}
	m.SetSQLDB(pool)
	if err := db.Use(NewDBMetricsPlugin(m, logger)); err != nil {
		return nil, err
	}
	m.StartPoolStatsCollection(context.Background())

	logger.Info("Database metrics registered",
		zap.Duration("slow_query_threshold", m.config.SlowQueryThreshold),
		zap.Duration("pool_stats_interval", m.config.PoolStatsInterval),
	)
	return m, nil
}
