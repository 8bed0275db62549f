// Package journal records contribution dispatch events so hosts can
// show users what a plugin did and when it failed. A Recorder plugs
// into the registry's event stream and appends one entry per event to a
// Store; stores keep entries until retention pruning drops them.
package journal

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lumen-labs/lumenplug"
)

// Entry is one persisted dispatch event.
type Entry struct {
	ID               string        `json:"id"`
	Kind             string        `json:"kind"`
	InvocationID     string        `json:"invocation_id"`
	Plugin           string        `json:"plugin"`
	ContributionID   string        `json:"contribution_id"`
	ContributionKind string        `json:"contribution_kind"`
	Reference        string        `json:"reference,omitempty"`
	Time             time.Time     `json:"time"`
	Elapsed          time.Duration `json:"elapsed"`
	Err              string        `json:"error,omitempty"`
	TraceID          string        `json:"trace_id,omitempty"`
	SpanID           string        `json:"span_id,omitempty"`
}

// Store persists journal entries.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	// ListRecent returns the most recent entries, newest first.
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
	// ListByContribution returns a contribution's entries, newest first.
	ListByContribution(ctx context.Context, contributionID string, limit int) ([]Entry, error)
	Close() error
}

// Recorder converts registry events into journal entries. It implements
// lumenplug.EventHandler; append failures are counted, never propagated,
// so journaling problems cannot fail a user's action.
type Recorder struct {
	store   Store
	dropped atomic.Int64
}

// NewRecorder creates a Recorder writing to the given store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Dropped reports how many entries failed to append since the Recorder
// was created.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Handle appends the event to the store.
func (r *Recorder) Handle(e lumenplug.Event) {
	if r.store == nil {
		return
	}
	err := r.store.Append(context.Background(), Entry{
		ID:               uuid.NewString(),
		Kind:             string(e.Kind),
		InvocationID:     e.InvocationID,
		Plugin:           e.Plugin,
		ContributionID:   e.ContributionID,
		ContributionKind: string(e.ContributionKind),
		Reference:        e.Reference,
		Time:             e.Time,
		Elapsed:          e.Elapsed,
		Err:              e.Err,
		TraceID:          e.TraceID,
		SpanID:           e.SpanID,
	})
	if err != nil {
		r.dropped.Add(1)
	}
}

// Compile-time interface check.
var _ lumenplug.EventHandler = (*Recorder)(nil)
