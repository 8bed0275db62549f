// Package resolve turns manifest entry-point locators into live
// callables. A locator has the form "location:attribute"; locations are
// export modules that compiled-in plugin packages register at init
// time, and attributes are the callables each module exports.
//
// Module initializers run at most once per location, on first
// resolution of any of the module's attributes. Resolution results,
// including failures, are memoized per literal reference string for the
// process lifetime.
package resolve

import (
	"context"
	"fmt"
	"sync"
)

// Callable is the shape every contribution entry point must have.
// Commands take zero or more positional arguments; the host decides
// what, if anything, to do with the result.
type Callable func(ctx context.Context, args ...any) (any, error)

// ModuleInit produces a module's exported callables. It runs at most
// once per registered location; side effects in the initializer
// (resource setup, backend registration) therefore happen exactly once.
type ModuleInit func() (map[string]Callable, error)

// Exports maps export-module locations to their initializers and, after
// first use, their loaded attribute tables.
type Exports struct {
	mu      sync.Mutex
	modules map[string]*moduleEntry
}

type moduleEntry struct {
	once    sync.Once
	init    ModuleInit
	exports map[string]Callable
	err     error
}

// NewExports creates an empty export table.
func NewExports() *Exports {
	return &Exports{modules: make(map[string]*moduleEntry)}
}

// RegisterModule registers an export module under a location. It panics
// if the location is already registered, mirroring the fail-loud
// semantics of duplicate handler registration at program init.
func (e *Exports) RegisterModule(location string, init ModuleInit) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.modules[location]; exists {
		panic(fmt.Sprintf("resolve: export module %q already registered", location))
	}
	e.modules[location] = &moduleEntry{init: init}
}

// RegisterFunc registers a single callable as a one-attribute module.
// Convenience for plugins that export standalone functions.
func (e *Exports) RegisterFunc(location, attribute string, fn Callable) {
	e.RegisterModule(location, func() (map[string]Callable, error) {
		return map[string]Callable{attribute: fn}, nil
	})
}

// Locations returns the registered module locations. Test helper and
// diagnostics surface; order is unspecified.
func (e *Exports) Locations() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.modules))
	for loc := range e.modules {
		out = append(out, loc)
	}
	return out
}

// lookup loads the module at location (running its initializer at most
// once) and returns the named attribute.
func (e *Exports) lookup(location, attribute string) (Callable, error) {
	e.mu.Lock()
	entry, ok := e.modules[location]
	e.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no export module registered at %q", location)
	}

	entry.once.Do(func() {
		entry.exports, entry.err = entry.init()
	})
	if entry.err != nil {
		return nil, fmt.Errorf("initializing export module %q: %w", location, entry.err)
	}

	fn, ok := entry.exports[attribute]
	if !ok {
		return nil, fmt.Errorf("export module %q has no attribute %q", location, attribute)
	}
	if fn == nil {
		return nil, fmt.Errorf("attribute %q of export module %q is not callable", attribute, location)
	}
	return fn, nil
}

var (
	global     *Exports
	globalOnce sync.Once
)

// Global returns the process-wide export table. Compiled-in plugin
// packages register their modules here from init functions.
func Global() *Exports {
	globalOnce.Do(func() {
		global = NewExports()
	})
	return global
}
