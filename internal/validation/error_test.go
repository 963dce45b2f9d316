package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	t.Parallel()

	var err *Error
	assert.Equal(t, "", err.Error())

	assert.Equal(t, "validation failed", (&Error{}).Error())

	withFields := &Error{FieldErrors: map[string]string{"window.start": "must not be negative", "days": "exactly 7 required"}}
	assert.Equal(t, "validation failed: days exactly 7 required; window.start must not be negative", withFields.Error())
}

func TestError_HasErrorsAndOrNil(t *testing.T) {
	t.Parallel()

	empty := &Error{}
	assert.False(t, empty.HasErrors())
	assert.NoError(t, empty.OrNil())

	populated := New("field", "bad")
	assert.True(t, populated.HasErrors())
	assert.Error(t, populated.OrNil())
}

func TestError_AddAndMerge(t *testing.T) {
	t.Parallel()

	base := &Error{}
	base.Add("first", "value")
	assert.Equal(t, "value", base.FieldErrors["first"])

	base.Merge(New("second", "another"))
	assert.Equal(t, "another", base.FieldErrors["second"])

	base.Merge(nil)
	assert.Len(t, base.FieldErrors, 2)
}

func TestError_UnwrapsThroughWrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("compute day: %w", New("window.end", "must not exceed 24:00"))

	var vErr *Error
	require.True(t, errors.As(wrapped, &vErr))
	assert.Equal(t, "must not exceed 24:00", vErr.FieldErrors["window.end"])
}
