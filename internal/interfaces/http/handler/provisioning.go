package handler

import (
	"context"

	"github.com/campus/backend/internal/application/provisioning"
	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/campus/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Provisioner is the subset of the provisioning service the admin console uses
type Provisioner interface {
	CreateTeacher(ctx context.Context, tc tenancy.TenantContext, actorID uuid.UUID, in provisioning.CreateTeacherInput) (*provisioning.ProvisionResult, error)
	CreateStudent(ctx context.Context, tc tenancy.TenantContext, actorID uuid.UUID, in provisioning.CreateStudentInput) (*provisioning.ProvisionResult, error)
	CreateStaff(ctx context.Context, tc tenancy.TenantContext, actorID uuid.UUID, in provisioning.CreateStaffInput) (*provisioning.ProvisionResult, error)
	CreateParent(ctx context.Context, tc tenancy.TenantContext, actorID uuid.UUID, in provisioning.CreateParentInput) (*provisioning.ProvisionResult, error)
	BulkCreateUsers(ctx context.Context, tc tenancy.TenantContext, actorID uuid.UUID, in provisioning.BulkCreateInput) (*provisioning.BulkResult, error)
	DeactivateUser(ctx context.Context, tc tenancy.TenantContext, actorID, userID uuid.UUID) error
	ReactivateUser(ctx context.Context, tc tenancy.TenantContext, actorID, userID uuid.UUID) error
}

// ProvisioningHandler serves the admin console provisioning endpoints
type ProvisioningHandler struct {
	BaseHandler
	service Provisioner
}

// NewProvisioningHandler creates a ProvisioningHandler
func NewProvisioningHandler(service Provisioner) *ProvisioningHandler {
	return &ProvisioningHandler{service: service}
}

// RegisterRoutes mounts the provisioning endpoints on rg
func (h *ProvisioningHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/provisioning")
	g.POST("/teachers", h.CreateTeacher)
	g.POST("/students", h.CreateStudent)
	g.POST("/staff", h.CreateStaff)
	g.POST("/parents", h.CreateParent)
	g.POST("/users/bulk", h.BulkCreateUsers)
	g.POST("/users/:id/deactivate", h.DeactivateUser)
	g.POST("/users/:id/reactivate", h.ReactivateUser)
}

// createFunc adapts one typed create workflow to the shared handler flow
type createFunc[T any] func(ctx context.Context, tc tenancy.TenantContext, actorID uuid.UUID, in T) (*provisioning.ProvisionResult, error)

func handleCreate[T any](h *ProvisioningHandler, c *gin.Context, create createFunc[T]) {
	tc, actorID, ok := requestScope(c)
	if !ok {
		h.ErrorWithCode(c, dto.ErrCodeTenantRequired, "Tenant identification required")
		return
	}

	var in T
	if err := c.ShouldBindJSON(&in); err != nil {
		h.ErrorWithCode(c, dto.ErrCodeInvalidJSON, "Request body must be valid JSON")
		return
	}

	result, err := create(c.Request.Context(), tc, actorID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToProvisionResponse(result))
}

// CreateTeacher godoc
// @Summary      Provision a teacher
// @Tags         provisioning
// @Param        X-Tenant-ID header string true "Tenant reference"
// @Param        X-User-ID   header string true "Acting administrator"
// @Param        request body provisioning.CreateTeacherInput true "Teacher"
// @Success      201 {object} dto.Response
// @Router       /provisioning/teachers [post]
func (h *ProvisioningHandler) CreateTeacher(c *gin.Context) {
	handleCreate(h, c, h.service.CreateTeacher)
}

// CreateStudent provisions a student
// @Router /provisioning/students [post]
func (h *ProvisioningHandler) CreateStudent(c *gin.Context) {
	handleCreate(h, c, h.service.CreateStudent)
}

// CreateStaff provisions a staff member
// @Router /provisioning/staff [post]
func (h *ProvisioningHandler) CreateStaff(c *gin.Context) {
	handleCreate(h, c, h.service.CreateStaff)
}

// CreateParent provisions a parent or guardian
// @Router /provisioning/parents [post]
func (h *ProvisioningHandler) CreateParent(c *gin.Context) {
	handleCreate(h, c, h.service.CreateParent)
}

// BulkCreateUsers godoc
// @Summary      Provision many users of one type
// @Description  Every row is reported once, in input order. Failed rows can be retried on their own.
// @Tags         provisioning
// @Param        request body provisioning.BulkCreateInput true "Batch"
// @Success      200 {object} dto.Response
// @Router       /provisioning/users/bulk [post]
func (h *ProvisioningHandler) BulkCreateUsers(c *gin.Context) {
	tc, actorID, ok := requestScope(c)
	if !ok {
		h.ErrorWithCode(c, dto.ErrCodeTenantRequired, "Tenant identification required")
		return
	}

	var in provisioning.BulkCreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.ErrorWithCode(c, dto.ErrCodeInvalidJSON, "Request body must be valid JSON")
		return
	}

	result, err := h.service.BulkCreateUsers(c.Request.Context(), tc, actorID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToBulkResponse(result))
}

// DeactivateUser godoc
// @Summary      Deactivate a user
// @Tags         provisioning
// @Param        id path string true "User ID"
// @Success      204
// @Router       /provisioning/users/{id}/deactivate [post]
func (h *ProvisioningHandler) DeactivateUser(c *gin.Context) {
	h.setActive(c, h.service.DeactivateUser)
}

// ReactivateUser reverses a deactivation
// @Router /provisioning/users/{id}/reactivate [post]
func (h *ProvisioningHandler) ReactivateUser(c *gin.Context) {
	h.setActive(c, h.service.ReactivateUser)
}

func (h *ProvisioningHandler) setActive(c *gin.Context, apply func(context.Context, tenancy.TenantContext, uuid.UUID, uuid.UUID) error) {
	tc, actorID, ok := requestScope(c)
	if !ok {
		h.ErrorWithCode(c, dto.ErrCodeTenantRequired, "Tenant identification required")
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "id", "id must be a UUID")
		return
	}

	if err := apply(c.Request.Context(), tc, actorID, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
