package integration

import (
	"net/http"
	"testing"
	"time"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/infrastructure/auth"
	"github.com/erp/receivables/internal/infrastructure/cache"
	"github.com/erp/receivables/internal/infrastructure/config"
	"github.com/erp/receivables/internal/infrastructure/event"
	"github.com/erp/receivables/internal/interfaces/http/handler"
	"github.com/erp/receivables/internal/interfaces/http/middleware"
	"github.com/erp/receivables/internal/interfaces/http/router"
	"github.com/erp/receivables/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiServer struct {
	*services
	engine *gin.Engine
	jwt    *auth.JWTService
}

func newAPIServer(t *testing.T) *apiServer {
	t.Helper()
	s := newServices(t)
	require.NoError(t, middleware.SetupValidator())

	jwt := auth.NewJWTService(config.JWTConfig{Secret: "integration-secret", Issuer: "receivables-test"})
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
			Validator: jwt,
			SkipPaths: []string{"/health"},
		}),
	)
	router.Setup(engine, router.Handlers{
		Receipts:    handler.NewReceiptHandler(s.receipts),
		Documents:   handler.NewDebtDocumentHandler(s.documents),
		PeriodLocks: handler.NewPeriodLockHandler(s.guard),
		Suggestions: handler.NewSuggestionHandler(s.scanner),
		Customers:   handler.NewCustomerHandler(s.projector),
		System:      handler.NewSystemHandler("receivables", "test", s.db.SqlDB),
		Outbox:      handler.NewOutboxHandler(event.NewGormOutboxRepository(s.db.DB)),
		Idempotency: middleware.Idempotency(middleware.IdempotencyConfig{
			Store: cache.NewInMemoryIdempotencyStore(),
			TTL:   time.Hour,
		}),
	})
	return &apiServer{services: s, engine: engine, jwt: jwt}
}

func (a *apiServer) client(t *testing.T, actor appreceivable.Actor) *testutil.APIClient {
	t.Helper()
	token, err := a.jwt.GenerateToken(auth.GenerateTokenInput{
		UserID: actor.UserID,
		Roles:  actor.Roles,
		TTL:    time.Hour,
	})
	require.NoError(t, err)
	return &testutil.APIClient{Handler: a.engine, Token: token}
}

const apiBase = "/api/v1/receivables"

func TestAPI_ReceiptLifecycle(t *testing.T) {
	a := newAPIServer(t)
	actor := testutil.AccountantActor("lan")
	a.db.CreateCustomer(sellerTaxCode, customerTaxCode, 15, actor.UserID)
	client := a.client(t, actor)

	w := client.Do(t, http.MethodPost, apiBase+"/invoices", map[string]any{
		"seller_tax_code":   sellerTaxCode,
		"customer_tax_code": customerTaxCode,
		"document_number":   "INV-001",
		"total_amount":      "800",
		"issue_date":        "2024-05-02",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	invoice := testutil.DecodeData[appreceivable.CreateDebtDocumentResult](t, w).Document
	assert.Equal(t, "INVOICE", invoice.Type)

	w = client.Do(t, http.MethodPost, apiBase+"/receipts/preview", map[string]any{
		"seller_tax_code":   sellerTaxCode,
		"customer_tax_code": customerTaxCode,
		"amount":            "500",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	preview := testutil.DecodeData[appreceivable.PreviewResult](t, w)
	assert.True(t, preview.AllocatedAmount.Equal(decimal.NewFromInt(500)))

	w = client.Do(t, http.MethodPost, apiBase+"/receipts", map[string]any{
		"seller_tax_code":   sellerTaxCode,
		"customer_tax_code": customerTaxCode,
		"receipt_number":    "PT-001",
		"receipt_date":      "2024-05-10",
		"amount":            "500",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	receipt := testutil.DecodeData[appreceivable.ReceiptResponse](t, w)

	client.Headers = map[string]string{middleware.IdempotencyKeyHeader: "approve-pt-001"}
	w = client.Do(t, http.MethodPost, apiBase+"/receipts/"+receipt.ID.String()+"/approve", map[string]any{"version": receipt.Version})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	approved := testutil.DecodeData[appreceivable.ApproveReceiptResult](t, w)
	assert.Equal(t, "APPROVED", approved.Receipt.Status)

	// A retried approval with the same key is rejected before it reaches the service
	w = client.Do(t, http.MethodPost, apiBase+"/receipts/"+receipt.ID.String()+"/approve", map[string]any{"version": receipt.Version})
	assert.Equal(t, http.StatusConflict, w.Code)
	client.Headers = nil

	w = client.Do(t, http.MethodGet, apiBase+"/receipts/"+receipt.ID.String()+"/allocations", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	allocations := testutil.DecodeData[[]appreceivable.AllocationResponse](t, w)
	require.Len(t, allocations, 1)
	assert.Equal(t, invoice.ID, allocations[0].TargetID)

	w = client.Do(t, http.MethodGet, apiBase+"/invoices/"+invoice.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	doc := testutil.DecodeData[appreceivable.DebtDocumentResponse](t, w)
	assert.Equal(t, "PARTIAL", doc.Status)
	assert.True(t, doc.OutstandingAmount.Equal(decimal.NewFromInt(300)))

	w = client.Do(t, http.MethodGet, apiBase+"/customers/"+invoice.CustomerID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	customer := testutil.DecodeData[appreceivable.CustomerResponse](t, w)
	assert.True(t, customer.CurrentBalance.Equal(decimal.NewFromInt(300)))
}

func TestAPI_Errors(t *testing.T) {
	a := newAPIServer(t)
	owner := testutil.AccountantActor("lan")
	a.db.CreateCustomer(sellerTaxCode, customerTaxCode, 0, owner.UserID)

	t.Run("missing token", func(t *testing.T) {
		w := (&testutil.APIClient{Handler: a.engine}).Do(t, http.MethodGet, apiBase+"/period-locks", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("health needs no token", func(t *testing.T) {
		w := (&testutil.APIClient{Handler: a.engine}).Do(t, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("not the customer's accountant", func(t *testing.T) {
		w := a.client(t, testutil.AccountantActor("minh")).Do(t, http.MethodPost, apiBase+"/advances", map[string]any{
			"seller_tax_code":   sellerTaxCode,
			"customer_tax_code": customerTaxCode,
			"document_number":   "ADV-001",
			"total_amount":      "100",
			"issue_date":        "2024-05-02",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", testutil.DecodeResponse(t, w).Error.Code)
	})

	t.Run("locked period", func(t *testing.T) {
		admin := a.client(t, testutil.AdminActor())
		w := admin.Do(t, http.MethodPost, apiBase+"/period-locks", map[string]any{
			"period_key": "2024-04",
			"reason":     "April closed",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = a.client(t, owner).Do(t, http.MethodPost, apiBase+"/receipts", map[string]any{
			"seller_tax_code":   sellerTaxCode,
			"customer_tax_code": customerTaxCode,
			"receipt_number":    "PT-APR",
			"receipt_date":      "2024-04-30",
			"amount":            "100",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		receipt := testutil.DecodeData[appreceivable.ReceiptResponse](t, w)

		w = a.client(t, owner).Do(t, http.MethodPost, apiBase+"/receipts/"+receipt.ID.String()+"/approve",
			map[string]any{"version": receipt.Version})
		assert.Equal(t, http.StatusLocked, w.Code, w.Body.String())
	})

	t.Run("outbox stats are admin only", func(t *testing.T) {
		w := a.client(t, owner).Do(t, http.MethodGet, apiBase+"/system/outbox/stats", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = a.client(t, testutil.AdminActor()).Do(t, http.MethodGet, apiBase+"/system/outbox/stats", nil)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})
}
