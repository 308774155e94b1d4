package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campus/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsRouter(cfg CORSConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSWithConfig(cfg))
	router.POST("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestCORSConfigFrom(t *testing.T) {
	cfg := CORSConfigFrom(config.HTTPConfig{CORSAllowOrigins: []string{"https://admin.campus.example"}})

	assert.Equal(t, []string{"https://admin.campus.example"}, cfg.AllowOrigins)
	assert.Contains(t, cfg.AllowHeaders, TenantHeaderKey)
	assert.Contains(t, cfg.AllowHeaders, UserHeaderKey)
	assert.Contains(t, cfg.AllowMethods, "POST")
}

func TestCORSWithConfig(t *testing.T) {
	const admin = "https://admin.campus.example"

	tests := []struct {
		name        string
		origins     []string
		method      string
		origin      string
		wantStatus  int
		wantOrigin  string
		wantCreds   string
		wantMaxAge  string
		wantMethods bool
	}{
		{"allowed origin", []string{admin}, http.MethodPost, admin, http.StatusOK, admin, "true", "43200", true},
		{"unlisted origin", []string{admin}, http.MethodPost, "https://evil.example", http.StatusOK, "", "", "", false},
		{"empty whitelist", nil, http.MethodPost, admin, http.StatusOK, "", "", "", false},
		{"wildcard drops credentials", []string{"*"}, http.MethodPost, admin, http.StatusOK, "*", "", "43200", true},
		{"preflight allowed", []string{admin}, http.MethodOptions, admin, http.StatusNoContent, admin, "true", "43200", true},
		{"preflight rejected", []string{admin}, http.MethodOptions, "https://evil.example", http.StatusNoContent, "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := corsRouter(CORSConfigFrom(config.HTTPConfig{CORSAllowOrigins: tt.origins}))

			req := httptest.NewRequest(tt.method, "/test", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCreds, w.Header().Get("Access-Control-Allow-Credentials"))
			assert.Equal(t, tt.wantMaxAge, w.Header().Get("Access-Control-Max-Age"))
			assert.Equal(t, tt.wantMethods, w.Header().Get("Access-Control-Allow-Methods") != "")
		})
	}
}

func TestSecure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Secure())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
}
