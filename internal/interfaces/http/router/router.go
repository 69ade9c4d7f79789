package router

import (
	"net/http"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/erp/receivables/internal/interfaces/http/handler"
	"github.com/erp/receivables/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts route registrars under a versioned API prefix
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be mounted by Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup mounts every registrar under /api/<version>
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup collects the routes of one bounded context before they are
// mounted on the engine.
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

func (dg *DomainGroup) handle(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, path, handlers)
}

// DELETE registers a DELETE route
func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodDelete, path, handlers)
}

// Group creates a sub-group within this domain
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix, dg.middleware...)
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// Handlers are the HTTP handlers of the receivables API
type Handlers struct {
	Receipts    *handler.ReceiptHandler
	Documents   *handler.DebtDocumentHandler
	PeriodLocks *handler.PeriodLockHandler
	Suggestions *handler.SuggestionHandler
	Customers   *handler.CustomerHandler
	System      *handler.SystemHandler
	Outbox      *handler.OutboxHandler

	// Idempotency guards the endpoints whose retries would apply twice.
	// Nil leaves them unguarded.
	Idempotency gin.HandlerFunc
}

// documentCollections maps each debt document route segment to its type
var documentCollections = []struct {
	segment string
	docType receivable.DocumentType
}{
	{"invoices", receivable.DocumentTypeInvoice},
	{"advances", receivable.DocumentTypeAdvance},
}

// NewReceivablesGroup builds the /receivables route tree. Period locks,
// balance recomputation and outbox inspection are admin only.
func NewReceivablesGroup(h Handlers) *DomainGroup {
	adminOnly := middleware.RequireRole(appreceivable.RoleAdmin)
	guarded := func(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
		if h.Idempotency == nil {
			return handlers
		}
		return append([]gin.HandlerFunc{h.Idempotency}, handlers...)
	}

	root := NewDomainGroup("receivables", "/receivables")

	receipts := root.Group("receipts", "/receipts")
	receipts.POST("", guarded(h.Receipts.Create)...)
	receipts.GET("", h.Receipts.List)
	receipts.POST("/preview", h.Receipts.Preview)
	receipts.POST("/approve-bulk", guarded(h.Receipts.ApproveBulk)...)
	receipts.GET("/:id", h.Receipts.Get)
	receipts.GET("/:id/allocations", h.Receipts.ListAllocations)
	receipts.POST("/:id/approve", guarded(h.Receipts.Approve)...)
	receipts.POST("/:id/void", h.Receipts.Void)
	receipts.POST("/:id/unvoid", h.Receipts.Unvoid)

	root.GET("/open-items", h.Receipts.OpenItems)

	for _, col := range documentCollections {
		docs := root.Group(col.segment, "/"+col.segment)
		docs.POST("", guarded(h.Documents.Create(col.docType))...)
		docs.GET("/:id", h.Documents.Get(col.docType))
		docs.POST("/:id/void", h.Documents.Void(col.docType))
		docs.POST("/:id/unvoid", h.Documents.Unvoid(col.docType))
	}
	root.POST("/debt-documents/import", guarded(h.Documents.Import)...)

	locks := root.Group("period-locks", "/period-locks")
	locks.GET("", h.PeriodLocks.List)
	locks.POST("", adminOnly, h.PeriodLocks.Lock)
	locks.DELETE("/:id", adminOnly, h.PeriodLocks.Unlock)

	root.POST("/suggestions/scan", h.Suggestions.Scan)

	customers := root.Group("customers", "/customers")
	customers.GET("/:id", h.Customers.GetByID)
	customers.POST("/:id/recompute-balance", adminOnly, h.Customers.RecomputeBalance)

	system := root.Group("system", "/system")
	system.GET("/info", h.System.GetSystemInfo)
	system.GET("/outbox/stats", adminOnly, h.Outbox.GetStats)

	return root
}

// Setup mounts the health probe and the receivables API on engine
func Setup(engine *gin.Engine, h Handlers) {
	engine.GET("/health", h.System.Health)
	NewRouter(engine).Register(NewReceivablesGroup(h)).Setup()
}
