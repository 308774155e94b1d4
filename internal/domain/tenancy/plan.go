package tenancy

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Plan is a subscription plan in the global partition
type Plan struct {
	ID          uuid.UUID
	Slug        string
	Name        string
	Permissions []PlanPermission
	CreatedAt   time.Time
}

// PlanPermission grants a permission key to users provisioned under a plan.
// An empty RoleType grants the key to every role type.
type PlanPermission struct {
	PlanID        uuid.UUID
	PermissionKey string
	RoleType      string
}

// AppliesTo reports whether the grant covers roleType
func (p PlanPermission) AppliesTo(roleType string) bool {
	return p.RoleType == "" || p.RoleType == roleType
}

// InstitutionPlan is the global-partition view of which plan a tenant is on
type InstitutionPlan struct {
	InstitutionID uuid.UUID
	PlanID        uuid.UUID
	Realm         string
}

// PlanSnapshot is the value produced by the read phase of a workflow. It is
// computed before the tenant transaction begins and never refreshed while the
// transaction is open, so grants reflect the plan at that moment.
type PlanSnapshot struct {
	InstitutionID uuid.UUID
	PlanID        uuid.UUID
	PlanSlug      string
	Realm         string
	TakenAt       time.Time
	grants        []PlanPermission
}

// NewPlanSnapshot freezes the permission set of plan for ip
func NewPlanSnapshot(ip InstitutionPlan, plan *Plan) PlanSnapshot {
	return PlanSnapshot{
		InstitutionID: ip.InstitutionID,
		PlanID:        ip.PlanID,
		PlanSlug:      plan.Slug,
		Realm:         ip.Realm,
		TakenAt:       time.Now().UTC(),
		grants:        slices.Clone(plan.Permissions),
	}
}

// KeysFor returns the sorted, de-duplicated permission keys the plan grants to roleType
func (s PlanSnapshot) KeysFor(roleType string) []string {
	keys := make([]string, 0, len(s.grants))
	for _, g := range s.grants {
		if g.AppliesTo(roleType) {
			keys = append(keys, g.PermissionKey)
		}
	}
	slices.Sort(keys)
	return slices.Compact(keys)
}

// AllKeys returns every distinct key of the plan regardless of role type
func (s PlanSnapshot) AllKeys() []string {
	keys := make([]string, 0, len(s.grants))
	for _, g := range s.grants {
		keys = append(keys, g.PermissionKey)
	}
	slices.Sort(keys)
	return slices.Compact(keys)
}
