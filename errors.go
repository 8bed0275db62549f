package lumenplug

import "fmt"

// UnknownCommandError reports an invocation against a command id that is
// not in the contribution table. No resolution is attempted for unknown
// ids; this is a caller error, not a plugin failure.
type UnknownCommandError struct {
	ID string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.ID)
}

// UnknownSampleDataError reports a load against an undeclared sample key.
type UnknownSampleDataError struct {
	Key string
}

func (e *UnknownSampleDataError) Error() string {
	return fmt.Sprintf("unknown sample data %q", e.Key)
}

// UnknownWidgetError reports a widget request against an undeclared
// widget command id.
type UnknownWidgetError struct {
	ID string
}

func (e *UnknownWidgetError) Error() string {
	return fmt.Sprintf("unknown widget %q", e.ID)
}

// ExecutionError wraps any failure raised while resolving or running a
// contribution's callable. It carries the offending contribution id so
// the host can tie the error to the action the user attempted; the
// registry and the plugin's other contributions stay usable.
type ExecutionError struct {
	ID    string
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.ID, e.Cause)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// MalformedSampleDataError reports a sample-data provider whose result
// was not a sequence of (data, metadata, layer-kind) tuples.
type MalformedSampleDataError struct {
	Key    string
	Reason string
}

func (e *MalformedSampleDataError) Error() string {
	return fmt.Sprintf("sample data %q returned malformed layers: %s", e.Key, e.Reason)
}

// WidgetConstructionError wraps any failure while building a widget
// panel, including results that do not satisfy the Widget capability.
type WidgetConstructionError struct {
	ID    string
	Cause error
}

func (e *WidgetConstructionError) Error() string {
	return fmt.Sprintf("constructing widget %q: %v", e.ID, e.Cause)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *WidgetConstructionError) Unwrap() error {
	return e.Cause
}
