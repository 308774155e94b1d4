package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campus/backend/internal/application/provisioning"
	"github.com/campus/backend/internal/domain/identity"
	"github.com/campus/backend/internal/domain/shared"
	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/campus/backend/internal/interfaces/http/dto"
	"github.com/campus/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockProvisioner struct {
	mock.Mock
}

func (m *mockProvisioner) result(args mock.Arguments) (*provisioning.ProvisionResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provisioning.ProvisionResult), args.Error(1)
}

func (m *mockProvisioner) CreateTeacher(ctx context.Context, tc tenancy.TenantContext, actorID uuid.UUID, in provisioning.CreateTeacherInput) (*provisioning.ProvisionResult, error) {
	return m.result(m.Called(ctx, tc, actorID, in))
}

func (m *mockProvisioner) CreateStudent(ctx context.Context, tc tenancy.TenantContext, actorID uuid.UUID, in provisioning.CreateStudentInput) (*provisioning.ProvisionResult, error) {
	return m.result(m.Called(ctx, tc, actorID, in))
}

func (m *mockProvisioner) CreateStaff(ctx context.Context, tc tenancy.TenantContext, actorID uuid.UUID, in provisioning.CreateStaffInput) (*provisioning.ProvisionResult, error) {
	return m.result(m.Called(ctx, tc, actorID, in))
}

func (m *mockProvisioner) CreateParent(ctx context.Context, tc tenancy.TenantContext, actorID uuid.UUID, in provisioning.CreateParentInput) (*provisioning.ProvisionResult, error) {
	return m.result(m.Called(ctx, tc, actorID, in))
}

func (m *mockProvisioner) BulkCreateUsers(ctx context.Context, tc tenancy.TenantContext, actorID uuid.UUID, in provisioning.BulkCreateInput) (*provisioning.BulkResult, error) {
	args := m.Called(ctx, tc, actorID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provisioning.BulkResult), args.Error(1)
}

func (m *mockProvisioner) DeactivateUser(ctx context.Context, tc tenancy.TenantContext, actorID, userID uuid.UUID) error {
	return m.Called(ctx, tc, actorID, userID).Error(0)
}

func (m *mockProvisioner) ReactivateUser(ctx context.Context, tc tenancy.TenantContext, actorID, userID uuid.UUID) error {
	return m.Called(ctx, tc, actorID, userID).Error(0)
}

var (
	testTenant = tenancy.TenantContext{
		TenantID:      uuid.MustParse("7a1f0c52-94c5-4f8e-9a39-3c1d3f1f4242"),
		PartitionName: "school_42",
		PlanID:        uuid.MustParse("0b6b2b2e-5f53-4d5e-8f1c-1f0f5b5a0001"),
		Status:        tenancy.InstitutionStatusActive,
	}
	testActor = uuid.MustParse("3d2c1b0a-0000-4000-8000-000000000001")
)

// newTestRouter wires the handler behind a stand-in for the tenant and actor middleware
func newTestRouter(svc Provisioner, scoped bool) *gin.Engine {
	router := gin.New()
	if scoped {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.TenantContextKey, testTenant)
			c.Set(middleware.ActorIDKey, testActor)
			c.Next()
		})
	}
	NewProvisioningHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func post(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error, w.Body.String())
	assert.False(t, resp.Success)
	return *resp.Error
}

func provisioned(t *testing.T, userType identity.UserType) *provisioning.ProvisionResult {
	t.Helper()
	user, err := identity.NewUser("Jane.Doe@School.edu", userType, "$2a$10$secret-hash", testActor)
	require.NoError(t, err)
	return &provisioning.ProvisionResult{User: user, TempPassword: "Xy7#kLm2pQ9z"}
}

func TestProvisioningHandler_CreateTeacher(t *testing.T) {
	svc := new(mockProvisioner)
	svc.On("CreateTeacher", mock.Anything, testTenant, testActor, mock.MatchedBy(func(in provisioning.CreateTeacherInput) bool {
		return in.Email == "jane.doe@school.edu" && in.Qualification == "MSc Physics"
	})).Return(provisioned(t, identity.UserTypeTeacher), nil)

	w := post(t, newTestRouter(svc, true), "/api/v1/provisioning/teachers", map[string]any{
		"email":         "jane.doe@school.edu",
		"first_name":    "Jane",
		"qualification": "MSc Physics",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Success bool                  `json:"success"`
		Data    dto.ProvisionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "jane.doe@school.edu", resp.Data.User.Email)
	assert.Equal(t, identity.UserTypeTeacher, resp.Data.User.UserType)
	assert.True(t, resp.Data.User.MustChangePassword)
	assert.Equal(t, "Xy7#kLm2pQ9z", resp.Data.TempPassword)
	assert.NotContains(t, w.Body.String(), "secret-hash")
	svc.AssertExpectations(t)
}

func TestProvisioningHandler_CreateOtherTypes(t *testing.T) {
	tests := []struct {
		path     string
		method   string
		userType identity.UserType
	}{
		{"/api/v1/provisioning/students", "CreateStudent", identity.UserTypeStudent},
		{"/api/v1/provisioning/staff", "CreateStaff", identity.UserTypeStaff},
		{"/api/v1/provisioning/parents", "CreateParent", identity.UserTypeParent},
	}

	for _, tt := range tests {
		t.Run(string(tt.userType), func(t *testing.T) {
			svc := new(mockProvisioner)
			svc.On(tt.method, mock.Anything, testTenant, testActor, mock.Anything).
				Return(provisioned(t, tt.userType), nil)

			w := post(t, newTestRouter(svc, true), tt.path, map[string]any{"email": "jane.doe@school.edu"})

			assert.Equal(t, http.StatusCreated, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestProvisioningHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		field  string
	}{
		{"validation", shared.NewValidationError("email", "email must be a valid email address"), http.StatusBadRequest, shared.CodeValidation, "email"},
		{"duplicate", shared.NewDuplicateEntityError("User", "email"), http.StatusConflict, shared.CodeDuplicateEntity, "email"},
		{"suspended", shared.ErrTenantSuspended, http.StatusForbidden, shared.CodeTenantSuspended, ""},
		{"forbidden", shared.ErrForbidden, http.StatusForbidden, shared.CodeForbidden, ""},
		{"plan missing", shared.ErrPlanNotFound, http.StatusInternalServerError, shared.CodePlanNotFound, ""},
		{"aborted", shared.NewTransactionAbortedError("assign_role", assert.AnError), http.StatusInternalServerError, shared.CodeTransactionAborted, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockProvisioner)
			svc.On("CreateStudent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			w := post(t, newTestRouter(svc, true), "/api/v1/provisioning/students", map[string]any{
				"email": "kid@school.edu", "admission_number": "A-1",
			})

			assert.Equal(t, tt.status, w.Code)
			info := errorCode(t, w)
			assert.Equal(t, tt.code, info.Code)
			assert.Equal(t, tt.field, info.Field)
			assert.NotContains(t, w.Body.String(), assert.AnError.Error())
		})
	}
}

func TestProvisioningHandler_DuplicateReportsStep(t *testing.T) {
	dup := shared.NewDuplicateEntityError("StudentProfile", "admission_number")
	dup.Step = provisioning.StepCreateProfile
	svc := new(mockProvisioner)
	svc.On("CreateStudent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, dup)

	w := post(t, newTestRouter(svc, true), "/api/v1/provisioning/students", map[string]any{
		"email": "kid@school.edu", "admission_number": "A-1",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	info := errorCode(t, w)
	assert.Equal(t, "admission_number", info.Field)
	assert.Equal(t, provisioning.StepCreateProfile, info.Step)
}

func TestProvisioningHandler_RejectsMalformedRequests(t *testing.T) {
	svc := new(mockProvisioner)

	t.Run("invalid json", func(t *testing.T) {
		w := post(t, newTestRouter(svc, true), "/api/v1/provisioning/teachers", `{"email":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, errorCode(t, w).Code)
	})

	t.Run("no tenant scope", func(t *testing.T) {
		w := post(t, newTestRouter(svc, false), "/api/v1/provisioning/teachers", map[string]any{"email": "a@b.edu"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeTenantRequired, errorCode(t, w).Code)
	})

	t.Run("user id not a uuid", func(t *testing.T) {
		w := post(t, newTestRouter(svc, true), "/api/v1/provisioning/users/42/deactivate", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		info := errorCode(t, w)
		assert.Equal(t, shared.CodeValidation, info.Code)
		assert.Equal(t, "id", info.Field)
	})

	svc.AssertNotCalled(t, "CreateTeacher", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "DeactivateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProvisioningHandler_DeactivateAndReactivate(t *testing.T) {
	userID := uuid.New()
	svc := new(mockProvisioner)
	svc.On("DeactivateUser", mock.Anything, testTenant, testActor, userID).Return(nil)
	svc.On("ReactivateUser", mock.Anything, testTenant, testActor, userID).Return(shared.ErrNotFound)
	router := newTestRouter(svc, true)

	w := post(t, router, "/api/v1/provisioning/users/"+userID.String()+"/deactivate", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = post(t, router, "/api/v1/provisioning/users/"+userID.String()+"/reactivate", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, shared.CodeNotFound, errorCode(t, w).Code)
	svc.AssertExpectations(t)
}

func TestProvisioningHandler_BulkCreateUsers(t *testing.T) {
	first := provisioned(t, identity.UserTypeStudent)
	third := provisioned(t, identity.UserTypeStudent)
	svc := new(mockProvisioner)
	svc.On("BulkCreateUsers", mock.Anything, testTenant, testActor, mock.MatchedBy(func(in provisioning.BulkCreateInput) bool {
		return in.UserType == identity.UserTypeStudent && len(in.Users) == 3 && in.DefaultMetadata["campus"] == "north"
	})).Return(&provisioning.BulkResult{
		Success: []provisioning.BulkSuccess{
			{Index: 0, User: first.User, TempPassword: first.TempPassword},
			{Index: 2, User: third.User, TempPassword: third.TempPassword},
		},
		Failed: []provisioning.BulkFailure{
			{Index: 1, Email: "a@school.edu", Code: shared.CodeDuplicateEntity, Field: "email", Error: "User with this email already exists"},
		},
	}, nil)

	w := post(t, newTestRouter(svc, true), "/api/v1/provisioning/users/bulk", map[string]any{
		"user_type":        "student",
		"default_metadata": map[string]string{"campus": "north"},
		"users": []map[string]any{
			{"email": "a@school.edu", "admission_number": "A-1"},
			{"email": "A@school.edu", "admission_number": "A-2"},
			{"email": "c@school.edu", "admission_number": "A-3"},
		},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Data dto.BulkResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.Total)
	require.Len(t, resp.Data.Success, 2)
	assert.Equal(t, 2, resp.Data.Success[1].Index)
	require.Len(t, resp.Data.Failed, 1)
	assert.Equal(t, 1, resp.Data.Failed[0].Index)
	assert.Equal(t, shared.CodeDuplicateEntity, resp.Data.Failed[0].Code)
	svc.AssertExpectations(t)
}

func TestProvisioningHandler_BulkBatchError(t *testing.T) {
	svc := new(mockProvisioner)
	svc.On("BulkCreateUsers", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, shared.NewValidationError("users", "batch exceeds 500 users"))

	w := post(t, newTestRouter(svc, true), "/api/v1/provisioning/users/bulk", map[string]any{"user_type": "student"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "users", errorCode(t, w).Field)
}
