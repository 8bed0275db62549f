package lumenplug

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lumen-labs/lumenplug/manifest"
	"github.com/lumen-labs/lumenplug/resolve"
)

// Registry is the façade the host queries. It holds one plugin's
// validated contribution table, resolves entry points lazily on first
// invocation, and isolates invocation failures per contribution.
//
// Construction is fail-closed: a manifest that does not validate
// produces no registry at all. After construction the table is
// immutable; the only mutable state is the resolver's memoization
// cache, which it guards itself.
type Registry struct {
	manifest *manifest.Manifest
	resolver *resolve.Resolver
	exports  *resolve.Exports

	commands map[string]manifest.Command
	samples  map[string]manifest.SampleData
	widgets  map[string]manifest.Widget

	handlers Handlers
	logger   *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithResolver sets the entry resolver. Mostly a test seam; production
// hosts normally use WithExports or the global export table.
func WithResolver(r *resolve.Resolver) Option {
	return func(reg *Registry) { reg.resolver = r }
}

// WithExports resolves entry points against the given export table
// instead of the process-wide one.
func WithExports(e *resolve.Exports) Option {
	return func(reg *Registry) { reg.exports = e }
}

// WithEventHandler appends a handler for registry events. Multiple
// handlers are invoked in registration order.
func WithEventHandler(h EventHandler) Option {
	return func(reg *Registry) { reg.handlers = append(reg.handlers, h) }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(reg *Registry) { reg.logger = l }
}

// New builds a registry from a manifest. The manifest is validated as a
// unit; any load-time violation aborts construction and nothing is
// registered. Entry points are not resolved here; resolution is
// deferred to first invocation so listing contributions never pays the
// plugin's import cost.
func New(m *manifest.Manifest, opts ...Option) (*Registry, error) {
	if m == nil {
		return nil, fmt.Errorf("lumenplug: nil manifest")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	reg := &Registry{
		manifest: m,
		commands: make(map[string]manifest.Command, len(m.Contributions.Commands)),
		samples:  make(map[string]manifest.SampleData, len(m.Contributions.SampleData)),
		widgets:  make(map[string]manifest.Widget, len(m.Contributions.Widgets)),
	}
	for _, opt := range opts {
		opt(reg)
	}
	if reg.logger == nil {
		reg.logger = slog.Default()
	}
	if reg.resolver == nil {
		reg.resolver = resolve.New(reg.exports)
	}

	for _, c := range m.Contributions.Commands {
		reg.commands[c.ID] = c
	}
	for _, sd := range m.Contributions.SampleData {
		reg.samples[sd.Key] = sd
	}
	// Widgets dispatch by their backing command id. Two widget entries
	// may share a command; the last declaration wins for dispatch, so
	// warn that the earlier one is listed but unreachable.
	for _, w := range m.Contributions.Widgets {
		if prev, dup := reg.widgets[w.Command]; dup {
			reg.logger.Warn("widget command declared twice",
				"plugin", m.Name, "command", w.Command,
				"kept", w.DisplayName, "shadowed", prev.DisplayName)
		}
		reg.widgets[w.Command] = w
	}

	return reg, nil
}

// Name returns the plugin's manifest name.
func (r *Registry) Name() string {
	return r.manifest.Name
}

// DisplayName returns the plugin's human-readable name.
func (r *Registry) DisplayName() string {
	return r.manifest.DisplayName
}

// Commands lists declared commands in declaration order for menu
// population. No entry points are resolved.
func (r *Registry) Commands() []CommandDescriptor {
	out := make([]CommandDescriptor, 0, len(r.manifest.Contributions.Commands))
	for _, c := range r.manifest.Contributions.Commands {
		out = append(out, CommandDescriptor{ID: c.ID, Title: c.Title})
	}
	return out
}

// HasCommand reports whether the command id is declared.
func (r *Registry) HasCommand(id string) bool {
	_, ok := r.commands[id]
	return ok
}

// SampleData lists declared sample datasets in declaration order.
func (r *Registry) SampleData() []SampleDataDescriptor {
	out := make([]SampleDataDescriptor, 0, len(r.manifest.Contributions.SampleData))
	for _, sd := range r.manifest.Contributions.SampleData {
		out = append(out, SampleDataDescriptor{
			Key:         sd.Key,
			DisplayName: sd.DisplayName,
			Command:     sd.Command,
		})
	}
	return out
}

// Widgets lists declared widgets in declaration order.
func (r *Registry) Widgets() []WidgetDescriptor {
	out := make([]WidgetDescriptor, 0, len(r.manifest.Contributions.Widgets))
	for _, w := range r.manifest.Contributions.Widgets {
		out = append(out, WidgetDescriptor{ID: w.Command, DisplayName: w.DisplayName})
	}
	return out
}

// InvokeCommand looks up the command, resolves its entry point through
// the memoizing resolver, and invokes it with the given arguments.
//
// An id not in the table fails with *UnknownCommandError before any
// resolution is attempted. A resolution failure surfaces the resolver's
// cached *resolve.ResolutionError verbatim. An error or panic from the
// callable itself is wrapped in *ExecutionError carrying the command id,
// so a broken contribution never crashes the host's dispatch loop or
// disables its siblings.
func (r *Registry) InvokeCommand(ctx context.Context, id string, args ...any) (any, error) {
	cmd, ok := r.commands[id]
	if !ok {
		return nil, &UnknownCommandError{ID: id}
	}
	return r.invoke(ctx, KindCommand, cmd, map[string]any{"args": len(args)}, args...)
}

// LoadSampleData looks up the sample entry by key, invokes its linked
// command, and validates that the result is a sequence of layer tuples.
func (r *Registry) LoadSampleData(ctx context.Context, key string) ([]LayerData, error) {
	sd, ok := r.samples[key]
	if !ok {
		return nil, &UnknownSampleDataError{Key: key}
	}

	// The linked command is guaranteed declared by manifest validation.
	cmd, _ := r.manifest.Command(sd.Command)
	result, err := r.invoke(ctx, KindSampleData, cmd, map[string]any{"key": key})
	if err != nil {
		return nil, err
	}

	layers, reason := coerceLayers(result)
	if reason != "" {
		return nil, &MalformedSampleDataError{Key: key, Reason: reason}
	}
	return layers, nil
}

// CreateWidget looks up the widget by its command id, invokes the
// command, and checks the result against the Widget capability. Every
// call yields an independent panel handle; widget commands must be safe
// to invoke repeatedly.
func (r *Registry) CreateWidget(ctx context.Context, id string) (*WidgetHandle, error) {
	w, ok := r.widgets[id]
	if !ok {
		return nil, &UnknownWidgetError{ID: id}
	}

	cmd, _ := r.manifest.Command(w.Command)
	result, err := r.invoke(ctx, KindWidget, cmd, nil)
	if err != nil {
		return nil, &WidgetConstructionError{ID: id, Cause: err}
	}

	widget, ok := result.(Widget)
	if !ok {
		return nil, &WidgetConstructionError{
			ID:    id,
			Cause: fmt.Errorf("command result %T does not implement Widget", result),
		}
	}
	return newWidgetHandle(id, w.DisplayName, widget), nil
}

// invoke is the shared dispatch path: resolve, call, report.
func (r *Registry) invoke(ctx context.Context, kind ContributionKind, cmd manifest.Command, payload map[string]any, args ...any) (any, error) {
	invID := uuid.NewString()
	start := time.Now()

	r.emit(Event{
		Kind:             EventInvocationStarted,
		InvocationID:     invID,
		ContributionID:   cmd.ID,
		ContributionKind: kind,
		Reference:        cmd.EntryPoint,
		Time:             start,
		Payload:          payload,
	})

	fn, err := r.resolver.Resolve(cmd.EntryPoint)
	if err != nil {
		r.logger.Warn("entry point resolution failed",
			"plugin", r.manifest.Name, "command", cmd.ID, "reference", cmd.EntryPoint, "error", err)
		r.emit(Event{
			Kind:             EventResolutionFailed,
			InvocationID:     invID,
			ContributionID:   cmd.ID,
			ContributionKind: kind,
			Reference:        cmd.EntryPoint,
			Time:             time.Now(),
			Elapsed:          time.Since(start),
			Err:              err.Error(),
			Payload:          payload,
		})
		return nil, err
	}

	result, err := callSafely(ctx, fn, args...)
	if err != nil {
		r.logger.Warn("command invocation failed",
			"plugin", r.manifest.Name, "command", cmd.ID, "error", err)
		r.emit(Event{
			Kind:             EventInvocationFailed,
			InvocationID:     invID,
			ContributionID:   cmd.ID,
			ContributionKind: kind,
			Reference:        cmd.EntryPoint,
			Time:             time.Now(),
			Elapsed:          time.Since(start),
			Err:              err.Error(),
			Payload:          payload,
		})
		return nil, &ExecutionError{ID: cmd.ID, Cause: err}
	}

	r.emit(Event{
		Kind:             EventInvocationFinished,
		InvocationID:     invID,
		ContributionID:   cmd.ID,
		ContributionKind: kind,
		Reference:        cmd.EntryPoint,
		Time:             time.Now(),
		Elapsed:          time.Since(start),
		Payload:          payload,
	})
	return result, nil
}

func (r *Registry) emit(e Event) {
	if len(r.handlers) == 0 {
		return
	}
	e.Plugin = r.manifest.Name
	r.handlers.Handle(e)
}

// callSafely invokes the callable, converting a panic into an error so
// one misbehaving contribution cannot crash the dispatch loop.
func callSafely(ctx context.Context, fn resolve.Callable, args ...any) (result any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn(ctx, args...)
}
