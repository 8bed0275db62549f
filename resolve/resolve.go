package resolve

import (
	"fmt"
	"strings"
	"sync"
)

// ResolutionError reports a reference that could not be turned into a
// callable: missing separator, unknown location, failed module
// initialization, or an absent attribute. Resolution failure is
// permanent for a reference within the process lifetime; the same error
// is surfaced verbatim on every subsequent attempt.
type ResolutionError struct {
	Reference string
	Cause     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving %q: %v", e.Reference, e.Cause)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// Resolver memoizes reference resolution against an export table. The
// cache is keyed by the literal reference string and stores terminal
// outcomes only: once a reference is Resolved or ResolutionFailed it
// never transitions again, so repeated failing lookups stay cheap and
// module initializers never re-run.
type Resolver struct {
	exports *Exports

	mu    sync.Mutex
	cache map[string]*resolution
}

type resolution struct {
	once sync.Once
	fn   Callable
	err  error
}

// New creates a Resolver backed by the given export table. A nil table
// falls back to the process-wide Global table.
func New(exports *Exports) *Resolver {
	if exports == nil {
		exports = Global()
	}
	return &Resolver{
		exports: exports,
		cache:   make(map[string]*resolution),
	}
}

// Resolve turns a "location:attribute" reference into a callable.
// Repeated calls with the same reference return the identical cached
// callable, or the identical cached error.
func (r *Resolver) Resolve(reference string) (Callable, error) {
	r.mu.Lock()
	res, ok := r.cache[reference]
	if !ok {
		res = &resolution{}
		r.cache[reference] = res
	}
	r.mu.Unlock()

	res.once.Do(func() {
		res.fn, res.err = r.resolve(reference)
	})
	if res.err != nil {
		return nil, res.err
	}
	return res.fn, nil
}

func (r *Resolver) resolve(reference string) (Callable, error) {
	location, attribute, found := strings.Cut(reference, ":")
	if !found || location == "" || attribute == "" {
		return nil, &ResolutionError{
			Reference: reference,
			Cause:     fmt.Errorf("locator must have the form \"location:attribute\""),
		}
	}

	fn, err := r.exports.lookup(location, attribute)
	if err != nil {
		return nil, &ResolutionError{Reference: reference, Cause: err}
	}
	return fn, nil
}
