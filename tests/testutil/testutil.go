// Package testutil holds helpers shared by the receivables test suites:
// a sqlmock-backed GORM handle, gin contexts carrying a caller identity,
// polling assertions and an HTTP client for end-to-end tests.
package testutil

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB wraps a GORM database with sqlmock for testing.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a postgres-dialect GORM handle over sqlmock. The
// connection is closed on test cleanup.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err, "Failed to open GORM connection")

	return &MockDB{DB: gormDB, Mock: mock, SqlDB: mockDB}
}

// ExpectationsWereMet verifies that all expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// TestContext wraps a Gin test context with HTTP recorder.
type TestContext struct {
	Context  *gin.Context
	Recorder *httptest.ResponseRecorder
}

// NewTestContext creates a gin context for a request to method and path.
func NewTestContext(t *testing.T, method, path string) *TestContext {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)
	return &TestContext{Context: c, Recorder: w}
}

// SetRequestID sets the request ID the way the RequestID middleware does.
func (tc *TestContext) SetRequestID(id string) {
	tc.Context.Set(middleware.RequestIDKey, id)
}

// SetActor authenticates the context as actor.
func (tc *TestContext) SetActor(actor appreceivable.Actor) {
	tc.Context.Set(middleware.ActorKey, actor)
	tc.Context.Set(middleware.JWTUserIDKey, actor.UserID.String())
}

// ResponseCode returns the HTTP status code.
func (tc *TestContext) ResponseCode() int {
	return tc.Recorder.Code
}

// NewTestUUID generates a deterministic UUID from seed.
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

// AccountantActor returns a non-admin caller with a stable ID derived from name.
func AccountantActor(name string) appreceivable.Actor {
	return appreceivable.Actor{UserID: NewTestUUID("accountant-" + name), Roles: []string{"ACCOUNTANT"}}
}

// AdminActor returns the standard admin caller.
func AdminActor() appreceivable.Actor {
	return appreceivable.Actor{UserID: NewTestUUID("admin"), Roles: []string{appreceivable.RoleAdmin}}
}

// ContextWithTimeout returns a context cancelled on test cleanup or after timeout.
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// RequireEventually polls condition until it holds or timeout elapses.
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}
	require.Fail(t, "Condition not met within "+timeout.String(), msgAndArgs...)
}

// StatusOK reports whether the recorder holds a 2xx response.
func StatusOK(w *httptest.ResponseRecorder) bool {
	return w.Code >= http.StatusOK && w.Code < http.StatusMultipleChoices
}
