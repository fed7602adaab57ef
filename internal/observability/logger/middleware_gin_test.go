package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/repairdesk/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func TestGinMiddlewarePropagatesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen string
	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))
	r.GET("/ping", func(c *gin.Context) {
		seen = obscontext.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))
}

func TestGinMiddlewareGeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("WITH x AS (SELECT 1) SELECT * FROM x"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
	assert.Equal(t, "INSERT", operationFromSQL(`INSERT INTO "payments" ("invoice_id") VALUES ($1)`))
}

func TestTableFromSQL(t *testing.T) {
	assert.Equal(t, "invoices", tableFromSQL(`SELECT i.id FROM invoices i LEFT JOIN customers c ON c.id = i.customer_id`))
	assert.Equal(t, "payments", tableFromSQL(`INSERT INTO "payments" ("invoice_id") VALUES ($1)`))
	assert.Equal(t, "invoice_items", tableFromSQL("UPDATE `invoice_items` SET tax = 0"))
	assert.Equal(t, "", tableFromSQL("SELECT 1"))
}

func TestGormLoggerConfigFor(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLoggerConfigFor(true).Level)
	assert.Equal(t, gormlogger.Warn, GormLoggerConfigFor(false).Level)
}
