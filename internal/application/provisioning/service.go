// Package provisioning creates and deactivates users inside tenant partitions.
//
// Every workflow runs in two phases. The read phase takes a PlanSnapshot from
// the global partition; the write phase runs one transaction on the tenant
// partition that consumes it. No transaction ever spans both partitions.
package provisioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campus/backend/internal/domain/identity"
	"github.com/campus/backend/internal/domain/shared"
	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/campus/backend/internal/infrastructure/logger"
	"github.com/campus/backend/internal/infrastructure/telemetry"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Workflow steps reported by TRANSACTION_ABORTED errors
const (
	StepCreateUser       = "create_user"
	StepResolveRole      = "resolve_role"
	StepAssignRole       = "assign_role"
	StepGrantPermissions = "grant_permissions"
	StepCreateProfile    = "create_profile"
	StepLoadUser         = "load_user"
	StepUpdateStatus     = "update_status"
	StepCommit           = "commit"
)

// Config holds workflow limits
type Config struct {
	TxTimeout          time.Duration
	BulkConcurrency    int
	MaxBatchSize       int
	TempPasswordLength int
	BcryptCost         int
}

// DefaultConfig returns the workflow limits used when none are configured
func DefaultConfig() Config {
	return Config{
		TxTimeout:          10 * time.Second,
		BulkConcurrency:    4,
		MaxBatchSize:       500,
		TempPasswordLength: identity.DefaultTempPasswordLength,
		BcryptCost:         12,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TxTimeout <= 0 {
		c.TxTimeout = d.TxTimeout
	}
	if c.BulkConcurrency <= 0 {
		c.BulkConcurrency = d.BulkConcurrency
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = d.MaxBatchSize
	}
	if c.TempPasswordLength <= 0 {
		c.TempPasswordLength = d.TempPasswordLength
	}
	if c.BcryptCost <= 0 {
		c.BcryptCost = d.BcryptCost
	}
	return c
}

// Service orchestrates the provisioning workflows
type Service struct {
	txScope  TransactionScope
	plans    PlanSnapshotter
	tenants  TenantRevalidator
	policy   AccessPolicy
	notifier CredentialNotifier
	validate *validator.Validate
	metrics  *telemetry.ProvisioningMetrics
	cfg      Config
	logger   *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithConfig sets workflow limits; zero fields keep their defaults
func WithConfig(cfg Config) Option {
	return func(s *Service) { s.cfg = cfg.withDefaults() }
}

// WithAccessPolicy sets the RBAC evaluator. The default allows everything.
func WithAccessPolicy(p AccessPolicy) Option {
	return func(s *Service) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithNotifier sets where temporary passwords are delivered
func WithNotifier(n CredentialNotifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithMetrics records provisioning outcomes. Without it nothing is recorded.
func WithMetrics(m *telemetry.ProvisioningMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a new provisioning service
func NewService(
	txScope TransactionScope,
	plans PlanSnapshotter,
	tenants TenantRevalidator,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		txScope:  txScope,
		plans:    plans,
		tenants:  tenants,
		policy:   AllowAllPolicy{},
		notifier: NoopNotifier{},
		validate: newValidator(),
		cfg:      DefaultConfig(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// provisionRequest is the type-independent form of a create workflow
type provisionRequest struct {
	userType        identity.UserType
	user            UserInput
	defaultMetadata map[string]string
	createProfile   func(ctx context.Context, repos TransactionalRepositories, userID uuid.UUID) error
}

// CreateTeacher provisions a teacher with its TeacherProfile
func (s *Service) CreateTeacher(ctx context.Context, tc tenancy.TenantContext, actorID uuid.UUID, in CreateTeacherInput) (*ProvisionResult, error) {
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	return s.create(ctx, tc, actorID, teacherRequest(in))
}

// CreateStudent provisions a student with its StudentProfile
func (s *Service) CreateStudent(ctx context.Context, tc tenancy.TenantContext, actorID uuid.UUID, in CreateStudentInput) (*ProvisionResult, error) {
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	return s.create(ctx, tc, actorID, studentRequest(in))
}

// CreateStaff provisions a staff member with its StaffProfile
func (s *Service) CreateStaff(ctx context.Context, tc tenancy.TenantContext, actorID uuid.UUID, in CreateStaffInput) (*ProvisionResult, error) {
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	return s.create(ctx, tc, actorID, staffRequest(in))
}

// CreateParent provisions a parent with its ParentProfile
func (s *Service) CreateParent(ctx context.Context, tc tenancy.TenantContext, actorID uuid.UUID, in CreateParentInput) (*ProvisionResult, error) {
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	return s.create(ctx, tc, actorID, parentRequest(in))
}

func (s *Service) create(ctx context.Context, tc tenancy.TenantContext, actorID uuid.UUID, req provisionRequest) (*ProvisionResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "provisioning", "create_"+string(req.userType), spanAttrs(tc, req.userType)...)
	defer span.End()

	if err := s.preflight(ctx, tc, actorID, ActionCreateUser, req.userType); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	snap, err := s.plans.Snapshot(ctx, tc)
	if err != nil {
		s.forgetStaleTenant(ctx, tc, err)
		telemetry.RecordError(span, err)
		return nil, err
	}

	result, err := s.provision(ctx, tc, actorID, snap, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String(telemetry.AttrUserID, result.User.ID.String()))
	return result, nil
}

// preflight refuses unresolved or inactive tenants and asks the access policy
func (s *Service) preflight(ctx context.Context, tc tenancy.TenantContext, actorID uuid.UUID, action Action, userType identity.UserType) error {
	if !tc.IsResolved() {
		return shared.ErrTenantNotFound
	}
	if !tc.IsActive() {
		return shared.ErrTenantSuspended
	}
	return s.policy.Authorize(ctx, tc, actorID, action, userType)
}

// provision runs the write phase of one user: one tenant transaction, then credential delivery
func (s *Service) provision(ctx context.Context, tc tenancy.TenantContext, actorID uuid.UUID, snap tenancy.PlanSnapshot, req provisionRequest) (_ *ProvisionResult, err error) {
	log := s.log(ctx, tc).With(zap.String("user_type", string(req.userType)))
	start := time.Now()
	defer func() {
		s.metrics.RecordProvisioned(ctx, string(req.userType), outcomeOf(err), time.Since(start))
	}()

	tempPassword, err := identity.GenerateTemporaryPassword(s.cfg.TempPasswordLength)
	if err != nil {
		return nil, fmt.Errorf("generate temporary password: %w", err)
	}
	hash, err := identity.HashPassword(tempPassword, s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash temporary password: %w", err)
	}

	user, err := identity.NewUser(req.user.Email, req.userType, hash, actorID)
	if err != nil {
		return nil, err
	}
	if err := user.SetName(req.user.FirstName, req.user.LastName); err != nil {
		return nil, err
	}
	if err := user.SetPhone(req.user.Phone); err != nil {
		return nil, err
	}
	user.MergeMetadata(req.defaultMetadata, req.user.Metadata)

	roleType := req.userType.RoleType()
	keys := snap.KeysFor(string(roleType))

	txCtx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout)
	defer cancel()

	step := StepCreateUser
	err = s.txScope.Execute(txCtx, tc, func(repos TransactionalRepositories) error {
		step = StepCreateUser
		if err := repos.UserRepo().Create(txCtx, user); err != nil {
			return err
		}

		step = StepResolveRole
		role, err := repos.RoleRepo().FindOrCreateByType(txCtx, roleType)
		if err != nil {
			return err
		}

		step = StepAssignRole
		userRole := identity.NewUserRole(user.ID, role.ID, actorID)
		if err := repos.UserRoleRepo().Create(txCtx, &userRole); err != nil {
			return err
		}

		step = StepGrantPermissions
		if err := repos.PermissionRepo().BulkInsert(txCtx, identity.NewUserPermissions(user.ID, keys, actorID)); err != nil {
			return err
		}

		step = StepCreateProfile
		if err := req.createProfile(txCtx, repos, user.ID); err != nil {
			return err
		}

		step = StepCommit
		return nil
	})
	if err != nil {
		err = abortError(step, err)
		s.recordAbort(ctx, "provision", step, err)
		logFailure(log, "User provisioning rolled back", step, err)
		return nil, err
	}

	log.Info("User provisioned",
		zap.String("user_id", user.ID.String()),
		zap.String("plan", snap.PlanSlug),
		zap.Int("permissions", len(keys)),
	)

	if err := s.notifier.NotifyTemporaryPassword(ctx, tc, user, tempPassword); err != nil {
		log.Warn("Temporary password delivery failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}

	return &ProvisionResult{User: user, TempPassword: tempPassword}, nil
}

// DeactivateUser clears is_active of a user in the tenant partition. No other
// column changes. The institution is re-read from the global partition first so
// a suspension is honored even if tc came from a cache. Deactivating an inactive
// user is a no-op.
func (s *Service) DeactivateUser(ctx context.Context, tc tenancy.TenantContext, actorID, userID uuid.UUID) error {
	return s.setActive(ctx, tc, actorID, userID, false)
}

// ReactivateUser is the explicit inverse of DeactivateUser
func (s *Service) ReactivateUser(ctx context.Context, tc tenancy.TenantContext, actorID, userID uuid.UUID) error {
	return s.setActive(ctx, tc, actorID, userID, true)
}

func (s *Service) setActive(ctx context.Context, tc tenancy.TenantContext, actorID, userID uuid.UUID, active bool) error {
	action, method := ActionDeactivateUser, "deactivate_user"
	if active {
		action, method = ActionReactivateUser, "reactivate_user"
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "provisioning", method,
		append(spanAttrs(tc, ""), attribute.String(telemetry.AttrUserID, userID.String()))...)
	defer span.End()

	if userID == uuid.Nil {
		return shared.NewValidationError("user_id", "user_id is required")
	}
	if err := s.preflight(ctx, tc, actorID, action, ""); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	fresh, err := s.tenants.ResolveFresh(ctx, tc.TenantID.String())
	if err != nil {
		s.forgetStaleTenant(ctx, tc, err)
		telemetry.RecordError(span, err)
		return err
	}
	if fresh.PartitionName != tc.PartitionName {
		// the institution was moved to another partition after tc was built
		telemetry.RecordError(span, shared.ErrTenantNotFound)
		return shared.ErrTenantNotFound
	}

	log := s.log(ctx, fresh).With(zap.String("user_id", userID.String()))

	txCtx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout)
	defer cancel()

	changed := false
	step := StepLoadUser
	err = s.txScope.Execute(txCtx, fresh, func(repos TransactionalRepositories) error {
		step = StepLoadUser
		user, err := repos.UserRepo().FindByID(txCtx, userID)
		if err != nil {
			return err
		}
		toggled := user.Deactivate
		if active {
			toggled = user.Reactivate
		}
		if !toggled() {
			return nil
		}

		step = StepUpdateStatus
		if active {
			changed, err = repos.UserRepo().Reactivate(txCtx, userID)
		} else {
			changed, err = repos.UserRepo().SoftDeactivate(txCtx, userID)
		}
		if err != nil {
			return err
		}

		step = StepCommit
		return nil
	})
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			err = abortError(step, err)
			s.recordAbort(ctx, method, step, err)
		}
		telemetry.RecordError(span, err)
		logFailure(log, "User status change failed", step, err)
		return err
	}

	if changed {
		log.Info("User status changed", zap.Bool("is_active", active), zap.String("actor_id", actorID.String()))
	} else {
		log.Debug("User already in requested state", zap.Bool("is_active", active))
	}
	return nil
}

// abortError keeps caller-fixable errors as they are and wraps everything else
// in TRANSACTION_ABORTED naming the failed step. A duplicate is tagged with the
// step that hit it, so a clash on a profile column is told apart from one on the user.
func abortError(step string, err error) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		switch de.Code {
		case shared.CodeDuplicateEntity:
			tagged := *de
			tagged.Step = step
			return &tagged
		case shared.CodeValidation, shared.CodeTransactionAborted:
			return err
		}
	}
	return shared.NewTransactionAbortedError(step, err)
}

// forgetStaleTenant drops cached contexts of a tenant whose status changed after tc was resolved
func (s *Service) forgetStaleTenant(ctx context.Context, tc tenancy.TenantContext, err error) {
	if !errors.Is(err, shared.ErrTenantSuspended) && !errors.Is(err, shared.ErrTenantNotFound) {
		return
	}
	if ierr := s.tenants.Invalidate(ctx, tc.TenantID.String(), tc.PartitionName, tc.SubDomain); ierr != nil {
		s.log(ctx, tc).Warn("Tenant cache invalidation failed", zap.Error(ierr))
	}
}

func (s *Service) recordAbort(ctx context.Context, operation, step string, err error) {
	if errors.Is(err, shared.ErrTransactionAborted) {
		s.metrics.RecordAborted(ctx, operation, step)
	}
}

// outcomeOf labels a provisioning result for metrics: success or the error code
func outcomeOf(err error) string {
	if err == nil {
		return telemetry.OutcomeSuccess
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return "INTERNAL_ERROR"
}

func logFailure(log *zap.Logger, msg, step string, err error) {
	var de *shared.DomainError
	if errors.As(err, &de) && de.Code != shared.CodeTransactionAborted {
		log.Info(msg, zap.String("step", step), zap.String("code", de.Code), zap.String("field", de.Field))
		return
	}
	log.Error(msg, zap.String("step", step), zap.Error(err))
}

func (s *Service) log(ctx context.Context, tc tenancy.TenantContext) *zap.Logger {
	l := s.logger.With(
		zap.String("tenant_id", tc.TenantID.String()),
		zap.String("partition", tc.PartitionName),
	)
	if rid := logger.GetRequestID(ctx); rid != "" {
		l = l.With(zap.String("request_id", rid))
	}
	return logger.WithTraceContext(ctx, l)
}

func spanAttrs(tc tenancy.TenantContext, userType identity.UserType) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(telemetry.AttrTenantID, tc.TenantID.String()),
		attribute.String(telemetry.AttrPartition, tc.PartitionName),
	}
	if userType != "" {
		attrs = append(attrs, attribute.String(telemetry.AttrUserType, string(userType)))
	}
	return attrs
}
