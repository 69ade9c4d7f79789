package integration

import (
	"testing"
	"time"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/infrastructure/cache"
	"github.com/erp/receivables/internal/infrastructure/event"
	"github.com/erp/receivables/internal/infrastructure/persistence"
	"go.uber.org/zap/zaptest"
)

const (
	sellerTaxCode   = "0101234567"
	customerTaxCode = "0309876543"
)

// services wires the application layer over a real database the way
// cmd/server does
type services struct {
	db         *TestDB
	serializer *event.EventSerializer
	receipts   *appreceivable.ReceiptService
	documents  *appreceivable.DebtDocumentService
	guard      *appreceivable.PeriodLockGuard
	projector  *appreceivable.BalanceProjector
	scanner    *appreceivable.SuggestionScanner
}

func newServices(t *testing.T) *services {
	t.Helper()

	db := NewTestDB(t)
	log := zaptest.NewLogger(t)

	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	scope := persistence.NewGormTransactionScope(db.DB, event.NewOutboxPublisher(serializer))
	sink := persistence.NewGormAuditSink(db.DB)

	guard := appreceivable.NewPeriodLockGuard(scope, sink, log)
	projector := appreceivable.NewBalanceProjector(scope, sink, log)
	return &services{
		db:         db,
		serializer: serializer,
		receipts:   appreceivable.NewReceiptService(scope, sink, guard, projector, appreceivable.WithReceiptLogger(log)),
		documents:  appreceivable.NewDebtDocumentService(scope, sink, guard, projector, appreceivable.WithDocumentLogger(log)),
		guard:      guard,
		projector:  projector,
		scanner: appreceivable.NewSuggestionScanner(scope, cache.NewInMemoryRunLocker(),
			appreceivable.WithScannerLogger(log)),
	}
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
