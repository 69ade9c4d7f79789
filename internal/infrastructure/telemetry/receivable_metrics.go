package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// SellerSnapshot is the point-in-time receivable position of one seller.
type SellerSnapshot struct {
	SellerTaxCode      string
	UnallocatedAmount  decimal.Decimal
	UnallocatedCount   int64
	OpenDocumentAmount decimal.Decimal
}

// ReceivableSnapshotProvider supplies gauge data for periodic collection.
type ReceivableSnapshotProvider interface {
	SellerSnapshots(ctx context.Context) ([]SellerSnapshot, error)
}

// ReceivableMetrics records allocation, reversal and scanner activity.
type ReceivableMetrics struct {
	logger *zap.Logger

	receiptsApproved  *Counter
	allocatedAmount   *FloatCounter
	reversals         *Counter
	reversedAmount    *FloatCounter
	autoAllocations   *Counter
	autoAllocatedAmt  *FloatCounter
	scanRuns          *Counter
	scanSuggested     *Counter
	scanSkipped       *Counter
	scanDuration      *Histogram
	unallocatedAmount *FloatGauge
	unallocatedCount  *Gauge
	openAmount        *FloatGauge

	provider    ReceivableSnapshotProvider
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// ReceivableMetricsConfig holds configuration for receivable metrics.
type ReceivableMetricsConfig struct {
	Meter    metric.Meter
	Logger   *zap.Logger
	Provider ReceivableSnapshotProvider
}

// NewReceivableMetrics creates the receivable instruments on cfg.Meter.
func NewReceivableMetrics(cfg ReceivableMetricsConfig) (*ReceivableMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &ReceivableMetrics{
		logger:   logger,
		provider: cfg.Provider,
		stopChan: make(chan struct{}),
	}

	var err error
	if m.receiptsApproved, err = NewCounter(cfg.Meter, "receivables_receipts_approved_total",
		"Receipts approved", "{receipts}"); err != nil {
		return nil, err
	}
	if m.allocatedAmount, err = NewFloatCounter(cfg.Meter, "receivables_allocated_amount_total",
		"Amount allocated when receipts are approved", "{currency}"); err != nil {
		return nil, err
	}
	if m.reversals, err = NewCounter(cfg.Meter, "receivables_reversals_total",
		"Void operations that reversed allocations", "{operations}"); err != nil {
		return nil, err
	}
	if m.reversedAmount, err = NewFloatCounter(cfg.Meter, "receivables_reversed_amount_total",
		"Allocated amount returned by void operations", "{currency}"); err != nil {
		return nil, err
	}
	if m.autoAllocations, err = NewCounter(cfg.Meter, "receivables_auto_allocations_total",
		"Documents settled from receipt surplus on creation", "{documents}"); err != nil {
		return nil, err
	}
	if m.autoAllocatedAmt, err = NewFloatCounter(cfg.Meter, "receivables_auto_allocated_amount_total",
		"Amount settled from receipt surplus on document creation", "{currency}"); err != nil {
		return nil, err
	}
	if m.scanRuns, err = NewCounter(cfg.Meter, "receivables_scan_runs_total",
		"Suggestion scanner runs", "{runs}"); err != nil {
		return nil, err
	}
	if m.scanSuggested, err = NewCounter(cfg.Meter, "receivables_scan_suggested_total",
		"Draft receipts that received suggestions", "{receipts}"); err != nil {
		return nil, err
	}
	if m.scanSkipped, err = NewCounter(cfg.Meter, "receivables_scan_skipped_total",
		"Draft receipts skipped by the scanner", "{receipts}"); err != nil {
		return nil, err
	}
	if m.scanDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "receivables_scan_duration_seconds",
		Description: "Suggestion scanner run duration",
		Unit:        "s",
		Boundaries:  []float64{0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
	}); err != nil {
		return nil, err
	}
	if m.unallocatedAmount, err = NewFloatGauge(cfg.Meter, "receivables_unallocated_amount",
		"Approved receipt money not yet allocated", "{currency}"); err != nil {
		return nil, err
	}
	if m.unallocatedCount, err = NewGauge(cfg.Meter, "receivables_unallocated_receipts",
		"Approved receipts with money left to allocate", "{receipts}"); err != nil {
		return nil, err
	}
	if m.openAmount, err = NewFloatGauge(cfg.Meter, "receivables_open_document_amount",
		"Outstanding amount over open invoices and advances", "{currency}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordReceiptApproved counts one approval and the amount it allocated.
func (m *ReceivableMetrics) RecordReceiptApproved(ctx context.Context, mode string, allocated decimal.Decimal) {
	m.receiptsApproved.Inc(ctx, AttrAllocationMode.String(mode))
	m.allocatedAmount.Add(ctx, allocated.InexactFloat64(), AttrAllocationMode.String(mode))
}

// RecordReversal counts one void of a receipt or document.
func (m *ReceivableMetrics) RecordReversal(ctx context.Context, entityType string, amount decimal.Decimal) {
	m.reversals.Inc(ctx, AttrEntityType.String(entityType))
	m.reversedAmount.Add(ctx, amount.InexactFloat64(), AttrEntityType.String(entityType))
}

// RecordAutoAllocation counts one document settled from surplus.
func (m *ReceivableMetrics) RecordAutoAllocation(ctx context.Context, documentType string, amount decimal.Decimal) {
	m.autoAllocations.Inc(ctx, AttrDocumentType.String(documentType))
	m.autoAllocatedAmt.Add(ctx, amount.InexactFloat64(), AttrDocumentType.String(documentType))
}

// RecordScan records one completed scanner run.
func (m *ReceivableMetrics) RecordScan(ctx context.Context, suggested, skipped int, duration time.Duration) {
	m.scanRuns.Inc(ctx)
	m.scanSuggested.Add(ctx, int64(suggested))
	m.scanSkipped.Add(ctx, int64(skipped))
	m.scanDuration.RecordDuration(ctx, duration)
}

// StartPeriodicCollection collects the seller gauges every interval until
// Stop is called or ctx ends. Only the first call starts a collector.
func (m *ReceivableMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	m.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go m.runPeriodicCollection(ctx, interval)
	})
}

func (m *ReceivableMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.Collect(ctx)
	for {
		select {
		case <-m.stopChan:
			m.logger.Info("Stopping periodic receivable metrics collection")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Collect(ctx)
		}
	}
}

// Collect records the seller gauges once.
func (m *ReceivableMetrics) Collect(ctx context.Context) {
	if m.provider == nil {
		return
	}
	snapshots, err := m.provider.SellerSnapshots(ctx)
	if err != nil {
		m.logger.Warn("Failed to collect receivable snapshots", zap.Error(err))
		return
	}
	for _, s := range snapshots {
		seller := AttrSellerTaxCode.String(s.SellerTaxCode)
		m.unallocatedAmount.Record(ctx, s.UnallocatedAmount.InexactFloat64(), seller)
		m.unallocatedCount.Record(ctx, s.UnallocatedCount, seller)
		m.openAmount.Record(ctx, s.OpenDocumentAmount.InexactFloat64(), seller)
	}
}

// Stop stops the periodic collection.
func (m *ReceivableMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}
