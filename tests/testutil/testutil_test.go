package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/receivables/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)
	require.NotNil(t, mockDB.DB)

	mockDB.Mock.ExpectExec("DELETE FROM period_locks").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, mockDB.DB.Exec("DELETE FROM period_locks").Error)
	mockDB.ExpectationsWereMet(t)
}

func TestTestContext_SetActor(t *testing.T) {
	tc := NewTestContext(t, http.MethodPost, "/receipts")
	actor := AccountantActor("lan")
	tc.SetActor(actor)
	tc.SetRequestID("req-1")

	got, ok := middleware.GetActor(tc.Context)
	require.True(t, ok)
	assert.Equal(t, actor, got)
	assert.Equal(t, actor.UserID.String(), middleware.GetJWTUserID(tc.Context))
	assert.Equal(t, "req-1", middleware.GetRequestID(tc.Context))
}

func TestActors(t *testing.T) {
	assert.Equal(t, AccountantActor("lan"), AccountantActor("lan"))
	assert.NotEqual(t, AccountantActor("lan").UserID, AccountantActor("minh").UserID)
	assert.False(t, AccountantActor("lan").IsAdmin())
	assert.True(t, AdminActor().IsAdmin())
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("seed"), NewTestUUID("seed"))
	assert.NotEqual(t, NewTestUUID("seed"), NewTestUUID("other"))
}

func TestContextWithTimeout(t *testing.T) {
	ctx := ContextWithTimeout(t, 10*time.Millisecond)
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
}

func TestRequireEventually(t *testing.T) {
	start := time.Now()
	RequireEventually(t, func() bool { return time.Since(start) > 20*time.Millisecond }, time.Second, 5*time.Millisecond)
}

func TestAPIClient(t *testing.T) {
	engine := gin.New()
	engine.POST("/echo", func(c *gin.Context) {
		var body map[string]any
		_ = c.ShouldBindJSON(&body)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
			"auth": c.GetHeader("Authorization"),
			"key":  c.GetHeader("Idempotency-Key"),
			"name": body["name"],
		}})
	})

	client := &APIClient{Handler: engine, Token: "tok", Headers: map[string]string{"Idempotency-Key": "k1"}}
	w := client.Do(t, http.MethodPost, "/echo", map[string]string{"name": "receipt"})

	assert.True(t, StatusOK(w))
	data := DecodeData[map[string]string](t, w)
	assert.Equal(t, "Bearer tok", data["auth"])
	assert.Equal(t, "k1", data["key"])
	assert.Equal(t, "receipt", data["name"])
	assert.True(t, DecodeResponse(t, w).Success)
}

func TestStatusOK(t *testing.T) {
	assert.True(t, StatusOK(&httptest.ResponseRecorder{Code: http.StatusCreated}))
	assert.False(t, StatusOK(&httptest.ResponseRecorder{Code: http.StatusConflict}))
}
