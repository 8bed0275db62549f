package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/lumen-labs/lumenplug"
)

// MetricsHandler translates registry events into OpenTelemetry metrics:
// invocation counts, failures, resolution failures, and durations.
type MetricsHandler struct {
	invocations        metric.Int64Counter
	failures           metric.Int64Counter
	resolutionFailures metric.Int64Counter
	duration           metric.Float64Histogram
}

// NewMetricsHandler creates a MetricsHandler that uses the given meter
// to create instruments for recording dispatch metrics.
func NewMetricsHandler(meter metric.Meter) (*MetricsHandler, error) {
	invocations, err := meter.Int64Counter("lumenplug.invocation.count",
		metric.WithDescription("Number of contribution invocations"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter("lumenplug.invocation.failures",
		metric.WithDescription("Number of failed contribution invocations"),
	)
	if err != nil {
		return nil, err
	}

	resolutionFailures, err := meter.Int64Counter("lumenplug.resolution.failures",
		metric.WithDescription("Number of entry-point resolution failures"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("lumenplug.invocation.duration",
		metric.WithDescription("Duration of contribution invocation in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &MetricsHandler{
		invocations:        invocations,
		failures:           failures,
		resolutionFailures: resolutionFailures,
		duration:           duration,
	}, nil
}

// Handle processes a registry event and records the appropriate metrics.
func (h *MetricsHandler) Handle(e lumenplug.Event) {
	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String("plugin", e.Plugin),
		attribute.String("contribution_id", e.ContributionID),
		attribute.String("contribution_kind", string(e.ContributionKind)),
	)

	switch e.Kind {
	case lumenplug.EventInvocationFinished:
		h.invocations.Add(ctx, 1, attrs)
		h.duration.Record(ctx, e.Elapsed.Seconds(), attrs)
	case lumenplug.EventInvocationFailed:
		h.invocations.Add(ctx, 1, attrs)
		h.failures.Add(ctx, 1, attrs)
		h.duration.Record(ctx, e.Elapsed.Seconds(), attrs)
	case lumenplug.EventResolutionFailed:
		h.invocations.Add(ctx, 1, attrs)
		h.resolutionFailures.Add(ctx, 1, attrs)
	}
}
