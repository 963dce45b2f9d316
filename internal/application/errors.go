package application

import (
	"errors"

	"github.com/example/study-planner/internal/validation"
)

var (
	// ErrNotFound is returned when a lookup matches nothing, such as an urgency
	// query with no pending work.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidDate is returned when a date argument cannot be parsed.
	ErrInvalidDate = errors.New("application: invalid date")
	// ErrNoSource is returned by a service built without a record source.
	ErrNoSource = errors.New("application: no record source configured")
)

// ValidationError captures field level issues callers can surface to users.
// The engine packages report the same type.
type ValidationError = validation.Error
