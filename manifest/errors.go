package manifest

import "fmt"

// ParseError reports a structurally malformed manifest: unreadable
// document, wrong field type, or a missing required field.
type ParseError struct {
	Path  string // source path, empty when loaded from bytes
	Field string // offending field, when known
	Cause error  // underlying decode error (may be nil)
}

func (e *ParseError) Error() string {
	switch {
	case e.Field != "" && e.Path != "":
		return fmt.Sprintf("manifest %s: missing or invalid field %q", e.Path, e.Field)
	case e.Field != "":
		return fmt.Sprintf("manifest: missing or invalid field %q", e.Field)
	case e.Path != "":
		return fmt.Sprintf("manifest %s: %v", e.Path, e.Cause)
	default:
		return fmt.Sprintf("manifest: %v", e.Cause)
	}
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// DuplicateIDError reports an identifier declared more than once within
// its contribution kind.
type DuplicateIDError struct {
	Kind string // "command" or "sample_data"
	ID   string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("manifest: duplicate %s id %q", e.Kind, e.ID)
}

// DanglingReferenceError reports a sample_data or widget entry whose
// command reference matches no declared command id.
type DanglingReferenceError struct {
	Kind    string // "sample_data" or "widget"
	Command string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("manifest: %s entry references undeclared command %q", e.Kind, e.Command)
}
