package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func findEntry(logs []observer.LoggedEntry, msg string) *observer.LoggedEntry {
	for i := range logs {
		if logs[i].Message == msg {
			return &logs[i]
		}
	}
	return nil
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("generates request id and logs request", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)

		router := gin.New()
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/test", func(c *gin.Context) {
			assert.NotEmpty(t, GetRequestID(c.Request.Context()))
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

		entry := findEntry(recorded.All(), "HTTP Request")
		require.NotNil(t, entry)
		assert.Equal(t, zapcore.InfoLevel, entry.Level)
	})

	t.Run("keeps incoming request id", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)

		router := gin.New()
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusConflict) })

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "req-abc")
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-abc", w.Header().Get(RequestIDHeader))
		entry := findEntry(recorded.All(), "HTTP Request")
		require.NotNil(t, entry)
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
		assert.Equal(t, "req-abc", entry.ContextMap()["request_id"])
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotNil(t, findEntry(recorded.All(), "Panic recovered"))
}
