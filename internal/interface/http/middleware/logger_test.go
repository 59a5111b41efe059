package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/jpashop/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()

	r := gin.New()
	r.Use(Logger(logger))
	r.GET("/ping", func(c *gin.Context) {
		assert.NotEmpty(t, c.GetString("request_id"))
		c.String(http.StatusOK, "pong")
	})

	t.Run("生成请求ID", func(t *testing.T) {
		hook.Reset()
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		requestID := w.Header().Get(RequestIDHeader)
		assert.Len(t, requestID, 36)

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, log.InfoLevel, entry.Level)
		assert.Equal(t, requestID, entry.Data["request_id"])
		assert.Equal(t, 200, entry.Data["status"])
		assert.Equal(t, "/ping", entry.Data["path"])
	})

	t.Run("沿用上游请求ID", func(t *testing.T) {
		hook.Reset()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "upstream-id")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "upstream-id", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "upstream-id", hook.LastEntry().Data["request_id"])
	})
}

func TestMetrics(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/api/v1/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	labels := map[string]string{"method": "GET", "path": "/api/v1/orders/:id", "status": "200"}
	before := testutil.ToFloat64(metrics.HTTPRequestsTotal.With(labels))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders/42", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.HTTPRequestsTotal.With(labels)), "标签使用路由模板")
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.HTTPRequestsInProgress))
}
