package provisioning

import (
	"context"
	"errors"
	"fmt"

	"github.com/campus/backend/internal/domain/identity"
	"github.com/campus/backend/internal/domain/shared"
	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/campus/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BulkCreateUsers provisions every row of the batch in its own transaction.
// A failing row never rolls back another; it is reported in Failed instead.
//
// Rows are validated and de-duplicated by email before any storage access: a
// repeated email fails as DUPLICATE_ENTITY and the first occurrence is kept.
// All rows share one plan snapshot taken before the first transaction.
// The call itself fails only for batch-level problems (bad user type, empty or
// oversized batch, unresolvable tenant or plan, denied access).
func (s *Service) BulkCreateUsers(ctx context.Context, tc tenancy.TenantContext, actorID uuid.UUID, in BulkCreateInput) (*BulkResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "provisioning", "bulk_create_users",
		append(spanAttrs(tc, in.UserType), attribute.Int(telemetry.AttrBatchSize, len(in.Users)))...)
	defer span.End()

	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	if len(in.Users) > s.cfg.MaxBatchSize {
		return nil, shared.NewValidationError("users",
			fmt.Sprintf("users must contain at most %d item(s)", s.cfg.MaxBatchSize))
	}
	if err := s.preflight(ctx, tc, actorID, ActionBulkCreate, in.UserType); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	snap, err := s.plans.Snapshot(ctx, tc)
	if err != nil {
		s.forgetStaleTenant(ctx, tc, err)
		telemetry.RecordError(span, err)
		return nil, err
	}

	outcomes := make([]bulkOutcome, len(in.Users))
	requests := s.prepareBatch(in, outcomes)

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.BulkConcurrency)
	for i, req := range requests {
		if req == nil {
			continue
		}
		g.Go(func() error {
			res, err := s.provision(ctx, tc, actorID, snap, *req)
			if err != nil {
				outcomes[i].err = err
				return nil
			}
			outcomes[i].result = res
			return nil
		})
	}
	_ = g.Wait()

	result := collect(in.Users, outcomes)
	s.metrics.RecordBatch(ctx, string(in.UserType), len(in.Users), len(result.Failed))
	span.SetAttributes(
		attribute.Int("provisioning.succeeded", len(result.Success)),
		attribute.Int("provisioning.failed", len(result.Failed)),
	)
	s.log(ctx, tc).Info("Bulk provisioning finished",
		zap.String("user_type", string(in.UserType)),
		zap.Int("total", len(in.Users)),
		zap.Int("succeeded", len(result.Success)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

type bulkOutcome struct {
	result *ProvisionResult
	err    error
}

// prepareBatch validates every row and rejects repeated emails. Rejected rows get
// their error recorded in outcomes and a nil request.
func (s *Service) prepareBatch(in BulkCreateInput, outcomes []bulkOutcome) []*provisionRequest {
	requests := make([]*provisionRequest, len(in.Users))
	firstSeen := make(map[string]int, len(in.Users))

	for i, row := range in.Users {
		req, err := s.bulkRequest(in.UserType, row, in.DefaultMetadata)
		if err != nil {
			outcomes[i].err = err
			continue
		}

		email := identity.NormalizeEmail(row.Email)
		if first, dup := firstSeen[email]; dup {
			outcomes[i].err = &shared.DomainError{
				Code:    shared.CodeDuplicateEntity,
				Message: fmt.Sprintf("Email repeats row %d of the batch", first),
				Field:   "email",
			}
			continue
		}
		firstSeen[email] = i
		requests[i] = &req
	}
	return requests
}

func collect(rows []BulkUserInput, outcomes []bulkOutcome) *BulkResult {
	result := &BulkResult{
		Success: make([]BulkSuccess, 0, len(rows)),
		Failed:  make([]BulkFailure, 0),
	}
	for i, o := range outcomes {
		if o.err == nil && o.result != nil {
			result.Success = append(result.Success, BulkSuccess{
				Index:        i,
				User:         o.result.User,
				TempPassword: o.result.TempPassword,
			})
			continue
		}
		result.Failed = append(result.Failed, failureFor(i, rows[i].Email, o.err))
	}
	return result
}

// failureFor builds a caller-safe failure record. The cause of an aborted
// transaction is logged, never returned.
func failureFor(index int, email string, err error) BulkFailure {
	f := BulkFailure{Index: index, Email: email}
	if err == nil {
		err = shared.NewTransactionAbortedError("", errors.New("row was not processed"))
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		f.Code = de.Code
		f.Field = de.Field
		f.Error = de.Message
		return f
	}
	f.Code = shared.CodeTransactionAborted
	f.Error = "Provisioning failed"
	return f
}
