package models

import (
	"errors"
	"strings"
)

// ErrToolCallLimit is returned when the model keeps requesting tools past the
// configured maximum for a run
var ErrToolCallLimit = errors.New("maximum tool call depth reached")

// UpstreamModelError means the model endpoint was unreachable or its
// response could not be interpreted
type UpstreamModelError struct {
	Operation string
	Err       error
}

func (e *UpstreamModelError) Error() string {
	return "upstream model: " + e.Operation + ": " + e.Err.Error()
}

func (e *UpstreamModelError) Unwrap() error { return e.Err }

// ToolInvocationError means a requested tool failed or does not exist
type ToolInvocationError struct {
	Tool  string
	Query string
	Err   error
}

func (e *ToolInvocationError) Error() string {
	return "tool " + e.Tool + ": " + e.Err.Error()
}

func (e *ToolInvocationError) Unwrap() error { return e.Err }

// SchemaValidationError means the final text did not satisfy the record shape
type SchemaValidationError struct {
	Fields []string // Offending field names, empty when the text was not an object at all
	Err    error
}

func (e *SchemaValidationError) Error() string {
	msg := "schema validation: " + e.Err.Error()
	if len(e.Fields) > 0 {
		msg += " (" + strings.Join(e.Fields, ", ") + ")"
	}
	return msg
}

func (e *SchemaValidationError) Unwrap() error { return e.Err }
