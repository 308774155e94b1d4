package provisioning

import (
	"context"

	"github.com/campus/backend/internal/domain/identity"
	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/google/uuid"
)

// PlanSnapshotter performs the global read phase of a workflow
type PlanSnapshotter interface {
	Snapshot(ctx context.Context, tc tenancy.TenantContext) (tenancy.PlanSnapshot, error)
}

// TenantRevalidator re-reads a tenant from the global partition, bypassing any cache.
// Invalidate drops cached contexts of a tenant found suspended or gone.
type TenantRevalidator interface {
	ResolveFresh(ctx context.Context, ref string) (tenancy.TenantContext, error)
	Invalidate(ctx context.Context, refs ...string) error
}

// Action names an operation checked against the AccessPolicy
type Action string

const (
	ActionCreateUser     Action = "users.create"
	ActionBulkCreate     Action = "users.bulk_create"
	ActionDeactivateUser Action = "users.deactivate"
	ActionReactivateUser Action = "users.reactivate"
)

// AccessPolicy is the external RBAC evaluator. Authorize returns nil to allow,
// or an error (normally shared.ErrForbidden) to deny.
type AccessPolicy interface {
	Authorize(ctx context.Context, tc tenancy.TenantContext, actorID uuid.UUID, action Action, userType identity.UserType) error
}

// AllowAllPolicy allows every action
type AllowAllPolicy struct{}

// Authorize always allows
func (AllowAllPolicy) Authorize(context.Context, tenancy.TenantContext, uuid.UUID, Action, identity.UserType) error {
	return nil
}

// CredentialNotifier delivers a temporary password to a newly provisioned user.
// It is called after commit; its failure never undoes the provisioning.
type CredentialNotifier interface {
	NotifyTemporaryPassword(ctx context.Context, tc tenancy.TenantContext, user *identity.User, tempPassword string) error
}

// NoopNotifier discards credentials; the caller relays the password returned in the result
type NoopNotifier struct{}

// NotifyTemporaryPassword does nothing
func (NoopNotifier) NotifyTemporaryPassword(context.Context, tenancy.TenantContext, *identity.User, string) error {
	return nil
}
