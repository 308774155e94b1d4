package tenancy

import (
	"context"
	"errors"
	"fmt"

	"github.com/campus/backend/internal/domain/shared"
	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/campus/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Lookup reads plan data from the global partition on behalf of a tenant.
// It only holds global repositories, so its reads run on the connection pool
// and never join a tenant transaction.
type Lookup struct {
	institutions tenancy.InstitutionRepository
	plans        tenancy.PlanRepository
	logger       *zap.Logger
}

// NewLookup creates a new Lookup
func NewLookup(institutions tenancy.InstitutionRepository, plans tenancy.PlanRepository, logger *zap.Logger) *Lookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lookup{institutions: institutions, plans: plans, logger: logger}
}

// GetInstitutionPlan returns which plan the tenant is subscribed to.
// Returns TENANT_NOT_FOUND if the institution is gone, TENANT_SUSPENDED if it is
// no longer active and PLAN_NOT_FOUND if it has no plan. The status is read here,
// not taken from tc, so a context served from the tenant cache cannot outlive a suspension.
func (l *Lookup) GetInstitutionPlan(ctx context.Context, tc tenancy.TenantContext) (tenancy.InstitutionPlan, error) {
	inst, err := l.institutions.FindByID(ctx, tc.TenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return tenancy.InstitutionPlan{}, shared.ErrTenantNotFound
		}
		return tenancy.InstitutionPlan{}, fmt.Errorf("load institution: %w", err)
	}
	if !inst.IsActive() {
		l.logger.Info("Institution is not active",
			zap.String("tenant_id", inst.ID.String()),
			zap.String("status", string(inst.Status)))
		return tenancy.InstitutionPlan{}, &shared.DomainError{
			Code:    shared.CodeTenantSuspended,
			Message: fmt.Sprintf("Tenant is %s", inst.Status),
		}
	}
	if !inst.HasPlan() {
		l.logger.Error("Institution has no plan",
			zap.String("tenant_id", inst.ID.String()),
			zap.String("partition", inst.PartitionName))
		return tenancy.InstitutionPlan{}, shared.ErrPlanNotFound
	}
	return tenancy.InstitutionPlan{
		InstitutionID: inst.ID,
		PlanID:        *inst.PlanID,
		Realm:         inst.PartitionName,
	}, nil
}

// GetPlanScope returns the permission grants of a plan.
// Returns PLAN_NOT_FOUND if the plan does not exist.
func (l *Lookup) GetPlanScope(ctx context.Context, planID uuid.UUID) ([]tenancy.PlanPermission, error) {
	plan, err := l.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return plan.Permissions, nil
}

// Snapshot performs the read phase of a workflow: institution plan plus plan scope,
// frozen into a PlanSnapshot. Call it before opening the tenant transaction.
func (l *Lookup) Snapshot(ctx context.Context, tc tenancy.TenantContext) (tenancy.PlanSnapshot, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tenancy", "plan_snapshot",
		attribute.String(telemetry.AttrTenantID, tc.TenantID.String()),
		attribute.String(telemetry.AttrPartition, tc.PartitionName),
	)
	defer span.End()

	ip, err := l.GetInstitutionPlan(ctx, tc)
	if err != nil {
		telemetry.RecordError(span, err)
		return tenancy.PlanSnapshot{}, err
	}
	plan, err := l.loadPlan(ctx, ip.PlanID)
	if err != nil {
		telemetry.RecordError(span, err)
		return tenancy.PlanSnapshot{}, err
	}

	snap := tenancy.NewPlanSnapshot(ip, plan)
	span.SetAttributes(
		attribute.String("plan.slug", snap.PlanSlug),
		attribute.Int("plan.permission_count", len(snap.AllKeys())),
	)
	return snap, nil
}

func (l *Lookup) loadPlan(ctx context.Context, planID uuid.UUID) (*tenancy.Plan, error) {
	if planID == uuid.Nil {
		return nil, shared.ErrPlanNotFound
	}
	plan, err := l.plans.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrPlanNotFound
		}
		return nil, fmt.Errorf("load plan: %w", err)
	}
	return plan, nil
}
