package dto

import (
	"time"

	"github.com/campus/backend/internal/application/provisioning"
	"github.com/campus/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// UserResponse is the public view of a provisioned user.
// The password hash never leaves the service.
type UserResponse struct {
	ID                 uuid.UUID         `json:"id"`
	Email              string            `json:"email"`
	FirstName          string            `json:"first_name,omitempty"`
	LastName           string            `json:"last_name,omitempty"`
	Phone              string            `json:"phone,omitempty"`
	UserType           identity.UserType `json:"user_type"`
	IsActive           bool              `json:"is_active"`
	MustChangePassword bool              `json:"must_change_password"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	CreatedBy          *uuid.UUID        `json:"created_by,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
}

// ProvisionResponse is returned once per created user
type ProvisionResponse struct {
	User         UserResponse `json:"user"`
	TempPassword string       `json:"temp_password"`
}

// BulkSuccessResponse is a provisioned row of a bulk batch
type BulkSuccessResponse struct {
	Index        int          `json:"index"`
	User         UserResponse `json:"user"`
	TempPassword string       `json:"temp_password"`
}

// BulkResponse reports every row of a batch
type BulkResponse struct {
	Total   int                        `json:"total"`
	Success []BulkSuccessResponse      `json:"success"`
	Failed  []provisioning.BulkFailure `json:"failed"`
}

// ToUserResponse converts a domain user
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Phone:              u.Phone,
		UserType:           u.UserType,
		IsActive:           u.IsActive,
		MustChangePassword: u.MustChangePassword,
		Metadata:           u.Metadata,
		CreatedBy:          u.CreatedBy,
		CreatedAt:          u.CreatedAt,
	}
}

// ToProvisionResponse converts a workflow result
func ToProvisionResponse(r *provisioning.ProvisionResult) ProvisionResponse {
	return ProvisionResponse{
		User:         ToUserResponse(r.User),
		TempPassword: r.TempPassword,
	}
}

// ToBulkResponse converts a bulk result. Both lists are always present.
func ToBulkResponse(r *provisioning.BulkResult) BulkResponse {
	resp := BulkResponse{
		Total:   r.Total(),
		Success: make([]BulkSuccessResponse, 0, len(r.Success)),
		Failed:  make([]provisioning.BulkFailure, 0, len(r.Failed)),
	}
	for _, s := range r.Success {
		resp.Success = append(resp.Success, BulkSuccessResponse{
			Index:        s.Index,
			User:         ToUserResponse(s.User),
			TempPassword: s.TempPassword,
		})
	}
	resp.Failed = append(resp.Failed, r.Failed...)
	return resp
}
