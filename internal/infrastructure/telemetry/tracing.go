package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer used for application spans
const TracerName = "campus-backend"

// Span attribute keys shared by provisioning spans
const (
	AttrTenantID  = "tenant.id"
	AttrPartition = "tenant.partition"
	AttrUserType  = "user.type"
	AttrUserID    = "user.id"
	AttrStep      = "provisioning.step"
	AttrBatchSize = "provisioning.batch_size"
)

// StartServiceSpan starts a span named {service}.{method}.
// The caller must call span.End().
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "provisioning", "create_teacher",
//	    attribute.String(telemetry.AttrPartition, tc.PartitionName))
//	defer span.End()
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, fmt.Sprintf("%s.%s", service, method),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError records err on the span and marks it failed
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddEvent adds a string-attributed event to the span
func AddEvent(span trace.Span, name string, keyValues ...string) {
	if span == nil {
		return
	}
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		attrs = append(attrs, attribute.String(keyValues[i], keyValues[i+1]))
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
