package lumenplug

import (
	"time"
)

// EventKind identifies the type of event emitted by the registry.
type EventKind string

const (
	// EventInvocationStarted is emitted when a contribution invocation begins.
	EventInvocationStarted EventKind = "invocation_started"

	// EventInvocationFinished is emitted when an invocation completes successfully.
	EventInvocationFinished EventKind = "invocation_finished"

	// EventInvocationFailed is emitted when the resolved callable returns an
	// error, panics, or produces a result of the wrong shape.
	EventInvocationFailed EventKind = "invocation_failed"

	// EventResolutionFailed is emitted when an entry point cannot be resolved.
	// Resolution failures are terminal per reference, but the event repeats on
	// every invocation attempt against the broken contribution.
	EventResolutionFailed EventKind = "resolution_failed"
)

// String returns the string representation of the EventKind.
func (k EventKind) String() string {
	return string(k)
}

// Event is a structured record of one step of contribution dispatch.
// Events should stay small; sample-data payloads and widget instances are
// never attached, only identifiers and timing.
type Event struct {
	// Kind identifies the event type.
	Kind EventKind

	// InvocationID groups the events of a single dispatch.
	InvocationID string

	// Plugin is the owning plugin's manifest name.
	Plugin string

	// ContributionID is the command id being dispatched. For sample-data
	// loads this is the linked command id; Payload carries the key.
	ContributionID string

	// ContributionKind is the kind of contribution the host asked for.
	ContributionKind ContributionKind

	// Reference is the entry-point locator, when known.
	Reference string

	// Time is when the event occurred.
	Time time.Time

	// Elapsed is the duration since the invocation started.
	Elapsed time.Duration

	// Err is the failure message for failed events, empty otherwise.
	Err string

	// TraceID and SpanID tie the event to an active trace, when tracing
	// is enabled.
	TraceID string
	SpanID  string

	// Payload contains event-specific data (sample key, arg count).
	Payload map[string]any
}

// EventHandler consumes registry events. Handlers must be fast and must
// not panic; dispatch calls them synchronously.
type EventHandler interface {
	Handle(e Event)
}

// EventHandlerFunc adapts a function to the EventHandler interface.
type EventHandlerFunc func(e Event)

// Handle calls f(e).
func (f EventHandlerFunc) Handle(e Event) {
	f(e)
}

// Handlers fans one event out to multiple handlers in order.
type Handlers []EventHandler

// Handle dispatches the event to every non-nil handler.
func (hs Handlers) Handle(e Event) {
	for _, h := range hs {
		if h != nil {
			h.Handle(e)
		}
	}
}
