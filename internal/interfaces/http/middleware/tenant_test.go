package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apptenancy "github.com/campus/backend/internal/application/tenancy"
	"github.com/campus/backend/internal/domain/shared"
	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/campus/backend/internal/infrastructure/logger"
	"github.com/campus/backend/internal/infrastructure/persistence"
	"github.com/campus/backend/internal/interfaces/http/dto"
	"github.com/campus/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, ref string) (tenancy.TenantContext, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(tenancy.TenantContext), args.Error(1)
}

func school42() tenancy.TenantContext {
	return tenancy.TenantContext{
		TenantID:        uuid.MustParse("7a1f0c52-94c5-4f8e-9a39-3c1d3f1f4242"),
		PartitionName:   "school_42",
		InstitutionName: "School 42",
		Status:          tenancy.InstitutionStatusActive,
		SubDomain:       "north",
	}
}

func newTenantRouter(cfg TenantMiddlewareConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(TenantMiddlewareWithConfig(cfg))
	handler := func(c *gin.Context) {
		tc, ok := GetTenantContext(c)
		c.JSON(http.StatusOK, gin.H{
			"found":     ok,
			"partition": tc.PartitionName,
			"log_scope": logger.GetPartition(c.Request.Context()),
		})
	}
	router.GET("/test", handler)
	router.GET("/health", handler)
	return router
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestTenantMiddleware_HeaderResolution(t *testing.T) {
	for _, ref := range []string{"7a1f0c52-94c5-4f8e-9a39-3c1d3f1f4242", "school_42", "north"} {
		t.Run(ref, func(t *testing.T) {
			resolver := new(mockResolver)
			resolver.On("Resolve", mock.Anything, ref).Return(school42(), nil)
			router := newTenantRouter(DefaultTenantConfig(resolver))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(TenantHeaderKey, " "+ref+" ")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			body := decode(t, w)
			assert.Equal(t, true, body["found"])
			assert.Equal(t, "school_42", body["partition"])
			assert.Equal(t, "school_42", body["log_scope"])
			resolver.AssertExpectations(t)
		})
	}
}

func TestTenantMiddleware_MissingTenant(t *testing.T) {
	resolver := new(mockResolver)
	router := newTenantRouter(DefaultTenantConfig(resolver))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, dto.ErrCodeTenantRequired, body["error"].(map[string]any)["code"])
	resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestTenantMiddleware_ResolutionErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unknown tenant", shared.ErrTenantNotFound, http.StatusNotFound, shared.CodeTenantNotFound},
		{"suspended tenant", shared.ErrTenantSuspended, http.StatusForbidden, shared.CodeTenantSuspended},
		{"bad reference", shared.NewValidationError("tenant", "Invalid tenant reference"), http.StatusBadRequest, shared.CodeValidation},
		{"store failure", assert.AnError, http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := new(mockResolver)
			resolver.On("Resolve", mock.Anything, "school_99").Return(tenancy.TenantContext{}, tt.err)
			router := newTenantRouter(DefaultTenantConfig(resolver))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(TenantHeaderKey, "school_99")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode(t, w)["error"].(map[string]any)["code"])
			assert.NotContains(t, w.Body.String(), assert.AnError.Error())
		})
	}
}

func TestTenantMiddleware_SuspendedTenantIsRefused(t *testing.T) {
	db, err := persistence.NewDatabaseFromGorm(testutil.NewSQLiteDB(t), testutil.GlobalSchema)
	require.NoError(t, err)
	planID := testutil.SeedPlan(t, db.DB, "basic", "view_students")
	testutil.SeedInstitution(t, db.DB, testutil.InstitutionFixture{
		PartitionName: "school_42", PlanID: &planID, Status: tenancy.InstitutionStatusSuspended,
	})
	resolver := apptenancy.NewResolver(persistence.NewGormInstitutionRepository(db.Global()))
	router := newTenantRouter(DefaultTenantConfig(resolver))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(TenantHeaderKey, "school_42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	errBody := decode(t, w)["error"].(map[string]any)
	assert.Equal(t, shared.CodeTenantSuspended, errBody["code"])
	assert.Equal(t, "Tenant is suspended", errBody["message"])
}

func TestTenantMiddleware_SkipPaths(t *testing.T) {
	resolver := new(mockResolver)
	router := newTenantRouter(DefaultTenantConfig(resolver))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["found"])
}

func TestTenantMiddleware_SubdomainFallback(t *testing.T) {
	resolver := new(mockResolver)
	resolver.On("Resolve", mock.Anything, "north").Return(school42(), nil)
	cfg := DefaultTenantConfig(resolver)
	cfg.SubdomainEnabled = true
	cfg.BaseDomain = "campus.example"
	router := newTenantRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Host = "north.campus.example:8080"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resolver.AssertExpectations(t)
}

func TestExtractTenantFromSubdomain(t *testing.T) {
	tests := []struct {
		host, base, expected string
	}{
		{"north.campus.example", "campus.example", "north"},
		{"a.b.campus.example", "campus.example", "a"},
		{"www.campus.example", "campus.example", ""},
		{"campus.example", "campus.example", ""},
		{"north.other.example", "campus.example", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, extractTenantFromSubdomain(tt.host, tt.base), tt.host)
	}
}

func TestActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Actor())
	router.GET("/test", func(c *gin.Context) {
		id, ok := GetActorID(c)
		require.True(t, ok)
		c.String(http.StatusOK, id.String())
	})

	t.Run("valid actor", func(t *testing.T) {
		actor := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(UserHeaderKey, actor.String())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, actor.String(), w.Body.String())
	})

	for _, header := range []string{"", "admin", uuid.Nil.String()} {
		t.Run("rejects "+header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(UserHeaderKey, header)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), dto.ErrCodeUnauthorized)
		})
	}
}
