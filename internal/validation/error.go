// Package validation carries field level validation failures across package
// boundaries so every layer reports bad input the same way.
package validation

import (
	"sort"
	"strings"
)

// Error captures field level validation issues that callers can surface to users.
type Error struct {
	FieldErrors map[string]string
}

// New returns an Error with a single field populated.
func New(field, message string) *Error {
	e := &Error{}
	e.Add(field, message)
	return e
}

// Error implements the error interface. Fields are listed alphabetically.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if len(e.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e.FieldErrors))
	for field := range e.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, field := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(field)
		b.WriteString(" ")
		b.WriteString(e.FieldErrors[field])
	}
	return b.String()
}

// HasErrors reports whether any field level issues were recorded.
func (e *Error) HasErrors() bool {
	return e != nil && len(e.FieldErrors) > 0
}

// Add records a field level validation error.
func (e *Error) Add(field, message string) {
	if e.FieldErrors == nil {
		e.FieldErrors = make(map[string]string)
	}
	e.FieldErrors[field] = message
}

// Merge copies entries from another validation error into the receiver.
func (e *Error) Merge(other *Error) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		e.Add(field, msg)
	}
}

// OrNil returns e when it holds errors and nil otherwise, so callers can
// collect issues and return the result directly.
func (e *Error) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}
