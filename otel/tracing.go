// Package otel provides OpenTelemetry integration for contribution
// dispatch events: one span per invocation, counters and histograms for
// dispatch outcomes, and OTLP/HTTP exporter setup for serve mode.
package otel

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lumen-labs/lumenplug"
)

// TracingHandler translates registry events into OpenTelemetry spans.
// Each invocation gets one span, opened on invocation_started and
// closed by the matching finished/failed event.
type TracingHandler struct {
	tracer trace.Tracer

	mu    sync.RWMutex
	spans map[string]trace.Span // invocationID -> span

	// Ended spans keep their contexts around so handlers running after
	// this one in the fan-out can still stamp the terminal event.
	ended      map[string]trace.SpanContext
	endedOrder []string
}

// endedRetention bounds how many ended invocations keep a span context.
const endedRetention = 128

// NewTracingHandler creates a TracingHandler that uses the given tracer
// to create spans from registry events.
func NewTracingHandler(tracer trace.Tracer) *TracingHandler {
	return &TracingHandler{
		tracer: tracer,
		spans:  make(map[string]trace.Span),
		ended:  make(map[string]trace.SpanContext),
	}
}

// Handle processes a registry event and creates or ends spans accordingly.
func (h *TracingHandler) Handle(e lumenplug.Event) {
	switch e.Kind {
	case lumenplug.EventInvocationStarted:
		h.handleStarted(e)
	case lumenplug.EventInvocationFinished:
		h.handleFinished(e)
	case lumenplug.EventInvocationFailed, lumenplug.EventResolutionFailed:
		h.handleFailed(e)
	}
}

// ActiveSpanContext returns the span context for an in-flight
// invocation, or an invalid context when none is active.
func (h *TracingHandler) ActiveSpanContext(invocationID string) trace.SpanContext {
	h.mu.RLock()
	span, ok := h.spans[invocationID]
	h.mu.RUnlock()
	if !ok {
		return trace.SpanContext{}
	}
	return span.SpanContext()
}

func (h *TracingHandler) handleStarted(e lumenplug.Event) {
	spanName := "invoke:" + e.ContributionID

	_, span := h.tracer.Start(context.Background(), spanName,
		trace.WithAttributes(
			attribute.String("lumenplug.plugin", e.Plugin),
			attribute.String("lumenplug.contribution_id", e.ContributionID),
			attribute.String("lumenplug.contribution_kind", string(e.ContributionKind)),
			attribute.String("lumenplug.reference", e.Reference),
		),
		trace.WithTimestamp(e.Time),
	)

	h.mu.Lock()
	h.spans[e.InvocationID] = span
	h.mu.Unlock()
}

func (h *TracingHandler) handleFinished(e lumenplug.Event) {
	span, ok := h.takeSpan(e.InvocationID)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("lumenplug.duration", e.Elapsed.String()))
	span.SetStatus(codes.Ok, "")
	span.End(trace.WithTimestamp(e.Time))
}

func (h *TracingHandler) handleFailed(e lumenplug.Event) {
	span, ok := h.takeSpan(e.InvocationID)
	if !ok {
		return
	}
	errMsg := e.Err
	if errMsg == "" {
		errMsg = "unknown error"
	}
	span.SetStatus(codes.Error, errMsg)
	span.RecordError(errors.New(errMsg), trace.WithTimestamp(e.Time))
	if e.Kind == lumenplug.EventResolutionFailed {
		span.SetAttributes(attribute.Bool("lumenplug.resolution_failed", true))
	}
	span.End(trace.WithTimestamp(e.Time))
}

// takeSpan removes the invocation's span from the active set, parking
// its context in the ended set so spanContextFor still answers for the
// terminal event's fan-out pass.
func (h *TracingHandler) takeSpan(invocationID string) (trace.Span, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	span, ok := h.spans[invocationID]
	if !ok {
		return nil, false
	}
	delete(h.spans, invocationID)

	h.ended[invocationID] = span.SpanContext()
	h.endedOrder = append(h.endedOrder, invocationID)
	for len(h.endedOrder) > endedRetention {
		delete(h.ended, h.endedOrder[0])
		h.endedOrder = h.endedOrder[1:]
	}
	return span, true
}

// spanContextFor answers for both in-flight and recently ended
// invocations; EnrichHandler uses it so terminal events are stamped
// even though the tracing handler ends the span first.
func (h *TracingHandler) spanContextFor(invocationID string) trace.SpanContext {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if span, ok := h.spans[invocationID]; ok {
		return span.SpanContext()
	}
	return h.ended[invocationID]
}

// EnrichHandler wraps a downstream event handler, stamping the
// invocation span's trace and span ids onto each event before passing
// it on. Register the TracingHandler first so the span exists by the
// time downstream handlers (journal recorder, custom sinks) run;
// terminal events are stamped from the just-ended span's retained
// context.
func EnrichHandler(next lumenplug.EventHandler, tracing *TracingHandler) lumenplug.EventHandler {
	return lumenplug.EventHandlerFunc(func(e lumenplug.Event) {
		if e.InvocationID != "" {
			sc := tracing.spanContextFor(e.InvocationID)
			if sc.IsValid() {
				e.TraceID = sc.TraceID().String()
				e.SpanID = sc.SpanID().String()
			}
		}
		next.Handle(e)
	})
}
