package tenancy

import (
	"strings"
	"time"

	"github.com/campus/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InstitutionStatus represents the lifecycle status of an institution
type InstitutionStatus string

const (
	InstitutionStatusActive    InstitutionStatus = "active"
	InstitutionStatusSuspended InstitutionStatus = "suspended" // Suspended due to billing/violation issues
	InstitutionStatusInactive  InstitutionStatus = "inactive"
	InstitutionStatusPending   InstitutionStatus = "pending" // Partition not provisioned yet
)

// Institution is a tenant of the platform. It lives in the global partition
// and is read-only from the provisioning core's point of view.
type Institution struct {
	shared.BaseEntity
	Name          string
	PartitionName string
	SubDomain     string
	Type          string
	PlanID        *uuid.UUID
	Status        InstitutionStatus
	Metadata      map[string]string
	DeletedAt     *time.Time
}

// IsActive returns true if users may be provisioned under the institution
func (i *Institution) IsActive() bool {
	return i.Status == InstitutionStatusActive
}

// IsDeleted returns true if the institution was soft-deleted
func (i *Institution) IsDeleted() bool {
	return i.DeletedAt != nil
}

// HasPlan returns true if the institution references a subscription plan
func (i *Institution) HasPlan() bool {
	return i.PlanID != nil && *i.PlanID != uuid.Nil
}

// NormalizeSubDomain lower-cases and trims a sub-domain for lookups
func NormalizeSubDomain(sub string) string {
	return strings.ToLower(strings.TrimSpace(sub))
}
