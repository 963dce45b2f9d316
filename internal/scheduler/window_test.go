package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/study-planner/internal/validation"
)

func TestParseWindow(t *testing.T) {
	t.Parallel()

	w, err := ParseWindow("08:00", "22:30")
	require.NoError(t, err)
	assert.Equal(t, Window{Start: 8 * time.Hour, End: 22*time.Hour + 30*time.Minute}, w)
	assert.Equal(t, "08:00-22:30", w.String())

	w, err = ParseWindow("7:15", "24:00")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, w.End)
	assert.Equal(t, DefaultWindow().End, w.End)
}

func TestParseWindowRejectsBadInput(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		start, end string
		field      string
	}{
		"non numeric start": {start: "ab:00", end: "10:00", field: "window.start"},
		"start as 24:00":    {start: "24:00", end: "24:00", field: "window.start"},
		"bad end":           {start: "08:00", end: "25:00", field: "window.end"},
		"reversed":          {start: "18:00", end: "08:00", field: "window.end"},
		"empty":             {start: "10:00", end: "10:00", field: "window.end"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseWindow(tc.start, tc.end)
			var vErr *validation.Error
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Contains(t, vErr.FieldErrors, tc.field)
		})
	}
}

func TestWindowValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, DefaultWindow().Validate())

	err := Window{Start: -time.Minute, End: 25 * time.Hour}.Validate()
	var vErr *validation.Error
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "must not be negative", vErr.FieldErrors["window.start"])
	assert.Equal(t, "must not exceed 24:00", vErr.FieldErrors["window.end"])
}
