package tenancy

import (
	"maps"

	"github.com/google/uuid"
)

// TenantContext is the resolved, request-scoped view of a tenant. It is built
// once per request by the partition resolver and passed by value afterwards;
// every tenant-scoped repository call of the request is routed to PartitionName.
type TenantContext struct {
	TenantID        uuid.UUID         `json:"tenant_id"`
	PartitionName   string            `json:"partition_name"`
	InstitutionName string            `json:"institution_name"`
	PlanID          uuid.UUID         `json:"plan_id"`
	Status          InstitutionStatus `json:"status"`
	SubDomain       string            `json:"sub_domain"`
	Type            string            `json:"type"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// NewTenantContext builds a TenantContext from an institution row
func NewTenantContext(inst *Institution) TenantContext {
	tc := TenantContext{
		TenantID:        inst.ID,
		PartitionName:   inst.PartitionName,
		InstitutionName: inst.Name,
		Status:          inst.Status,
		SubDomain:       inst.SubDomain,
		Type:            inst.Type,
		Metadata:        maps.Clone(inst.Metadata),
	}
	if inst.HasPlan() {
		tc.PlanID = *inst.PlanID
	}
	return tc
}

// IsActive returns true if provisioning is allowed under this tenant
func (tc TenantContext) IsActive() bool {
	return tc.Status == InstitutionStatusActive
}

// IsResolved returns true if the context addresses a valid partition
func (tc TenantContext) IsResolved() bool {
	return tc.TenantID != uuid.Nil && IsValidPartitionName(tc.PartitionName)
}

// MetadataValue returns a metadata value without exposing the map
func (tc TenantContext) MetadataValue(key string) string {
	return tc.Metadata[key]
}
