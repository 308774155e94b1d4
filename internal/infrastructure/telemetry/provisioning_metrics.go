package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OutcomeSuccess labels a user provisioned without error
const OutcomeSuccess = "success"

// ProvisioningMetrics counts provisioning outcomes. A nil *ProvisioningMetrics
// is valid and records nothing.
type ProvisioningMetrics struct {
	provisioned   *Counter
	aborted       *Counter
	duration      *Histogram
	batchRows     *Histogram
	batchFailures *Histogram
}

// NewProvisioningMetrics creates the provisioning instruments on meter
func NewProvisioningMetrics(meter metric.Meter) (*ProvisioningMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		m   ProvisioningMetrics
		err error
	)
	m.provisioned, err = NewCounter(meter,
		"campus_users_provisioned_total",
		"Users provisioned, by user type and outcome (success or error code)",
		"{users}")
	if err != nil {
		return nil, err
	}
	m.aborted, err = NewCounter(meter,
		"campus_provisioning_aborted_total",
		"Tenant transactions rolled back as TRANSACTION_ABORTED, by failed step",
		"{transactions}")
	if err != nil {
		return nil, err
	}
	m.duration, err = NewHistogram(meter, HistogramOpts{
		Name:        "campus_provisioning_duration_seconds",
		Description: "Time to provision one user, hashing included",
		Unit:        "s",
		Boundaries:  ProvisionDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	m.batchRows, err = NewHistogram(meter, HistogramOpts{
		Name:        "campus_bulk_batch_rows",
		Description: "Rows per bulk provisioning request",
		Unit:        "{rows}",
		Boundaries:  BatchSizeBuckets,
	})
	if err != nil {
		return nil, err
	}
	m.batchFailures, err = NewHistogram(meter, HistogramOpts{
		Name:        "campus_bulk_failed_rows",
		Description: "Failed rows per bulk provisioning request",
		Unit:        "{rows}",
		Boundaries:  BatchSizeBuckets,
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordProvisioned records one provisioning attempt
func (m *ProvisioningMetrics) RecordProvisioned(ctx context.Context, userType, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(AttrUserType, userType),
		attribute.String(AttrOutcome, outcome),
	}
	m.provisioned.Inc(ctx, attrs...)
	m.duration.RecordDuration(ctx, d, attrs...)
}

// RecordAborted records a rolled back transaction and the step that failed
func (m *ProvisioningMetrics) RecordAborted(ctx context.Context, operation, step string) {
	if m == nil {
		return
	}
	m.aborted.Inc(ctx,
		attribute.String("provisioning.operation", operation),
		attribute.String(AttrStep, step))
}

// RecordBatch records the size and failure count of a bulk request
func (m *ProvisioningMetrics) RecordBatch(ctx context.Context, userType string, rows, failed int) {
	if m == nil {
		return
	}
	attr := attribute.String(AttrUserType, userType)
	m.batchRows.Record(ctx, float64(rows), attr)
	m.batchFailures.Record(ctx, float64(failed), attr)
}
