package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/interfaces/http/handler"
	"github.com/erp/receivables/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouter(t *testing.T) {
	t.Run("defaults to v1", func(t *testing.T) {
		r := NewRouter(gin.New())
		assert.Equal(t, "v1", r.apiVersion)
		assert.Empty(t, r.registrars)
	})

	t.Run("mounts groups under the version", func(t *testing.T) {
		engine := gin.New()
		group := NewDomainGroup("test", "/test")
		group.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

		NewRouter(engine, WithAPIVersion("v2")).Register(group).Setup()

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/test/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pong", w.Body.String())
	})
}

func TestDomainGroup(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("catalog", "/catalog")
	g.Use(func(c *gin.Context) {
		c.Header("X-Group", "catalog")
		c.Next()
	})
	g.POST("/items", func(c *gin.Context) { c.Status(http.StatusCreated) })
	g.DELETE("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	g.Group("nested", "/nested").GET("/deep", func(c *gin.Context) { c.Status(http.StatusOK) })
	g.RegisterRoutes(engine.Group("/api/v1"))

	assert.Equal(t, "catalog", g.Name())
	assert.Equal(t, "/catalog", g.Prefix())

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodPost, "/api/v1/catalog/items", http.StatusCreated},
		{http.MethodDelete, "/api/v1/catalog/items/7", http.StatusNoContent},
		{http.MethodGet, "/api/v1/catalog/nested/deep", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "catalog", w.Header().Get("X-Group"))
		})
	}
}

// newReceivablesEngine mounts the API with handlers whose services are nil,
// which is enough for requests that never reach a service.
func newReceivablesEngine(actor appreceivable.Actor, idempotency gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID(), func(c *gin.Context) {
		c.Set(middleware.ActorKey, actor)
		c.Next()
	})
	Setup(engine, Handlers{
		Receipts:    handler.NewReceiptHandler(nil),
		Documents:   handler.NewDebtDocumentHandler(nil),
		PeriodLocks: handler.NewPeriodLockHandler(nil),
		Suggestions: handler.NewSuggestionHandler(nil),
		Customers:   handler.NewCustomerHandler(nil),
		System:      handler.NewSystemHandler("receivables", "test", nil),
		Outbox:      handler.NewOutboxHandler(nil),
		Idempotency: idempotency,
	})
	return engine
}

func TestSetup_RegistersReceivablesAPI(t *testing.T) {
	engine := newReceivablesEngine(appreceivable.Actor{UserID: uuid.New()}, nil)

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"POST /api/v1/receivables/receipts",
		"GET /api/v1/receivables/receipts",
		"POST /api/v1/receivables/receipts/preview",
		"POST /api/v1/receivables/receipts/approve-bulk",
		"GET /api/v1/receivables/receipts/:id",
		"GET /api/v1/receivables/receipts/:id/allocations",
		"POST /api/v1/receivables/receipts/:id/approve",
		"POST /api/v1/receivables/receipts/:id/void",
		"POST /api/v1/receivables/receipts/:id/unvoid",
		"GET /api/v1/receivables/open-items",
		"POST /api/v1/receivables/invoices",
		"GET /api/v1/receivables/invoices/:id",
		"POST /api/v1/receivables/invoices/:id/void",
		"POST /api/v1/receivables/invoices/:id/unvoid",
		"POST /api/v1/receivables/advances",
		"GET /api/v1/receivables/advances/:id",
		"POST /api/v1/receivables/advances/:id/void",
		"POST /api/v1/receivables/advances/:id/unvoid",
		"POST /api/v1/receivables/debt-documents/import",
		"GET /api/v1/receivables/period-locks",
		"POST /api/v1/receivables/period-locks",
		"DELETE /api/v1/receivables/period-locks/:id",
		"POST /api/v1/receivables/suggestions/scan",
		"GET /api/v1/receivables/customers/:id",
		"POST /api/v1/receivables/customers/:id/recompute-balance",
		"GET /api/v1/receivables/system/info",
		"GET /api/v1/receivables/system/outbox/stats",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestSetup_AdminOnlyRoutes(t *testing.T) {
	accountant := appreceivable.Actor{UserID: uuid.New(), Roles: []string{"ACCOUNTANT"}}
	engine := newReceivablesEngine(accountant, nil)
	id := uuid.NewString()

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/receivables/period-locks"},
		{http.MethodDelete, "/api/v1/receivables/period-locks/" + id},
		{http.MethodPost, "/api/v1/receivables/customers/" + id + "/recompute-balance"},
		{http.MethodGet, "/api/v1/receivables/system/outbox/stats"},
	} {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}

func TestSetup_IdempotencyGuard(t *testing.T) {
	replayed := func(c *gin.Context) {
		c.AbortWithStatus(http.StatusConflict)
	}
	engine := newReceivablesEngine(appreceivable.Actor{UserID: uuid.New()}, replayed)

	for _, path := range []string{
		"/api/v1/receivables/receipts",
		"/api/v1/receivables/receipts/approve-bulk",
		"/api/v1/receivables/receipts/" + uuid.NewString() + "/approve",
		"/api/v1/receivables/invoices",
		"/api/v1/receivables/debt-documents/import",
	} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusConflict, w.Code, path)
	}

	// Unguarded routes reach the handler, which rejects the empty body.
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/receivables/receipts/preview", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetup_HealthIsUnversioned(t *testing.T) {
	engine := newReceivablesEngine(appreceivable.Actor{}, nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
