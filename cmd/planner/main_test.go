package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/example/study-planner/internal/application"
	"github.com/example/study-planner/internal/testfixtures"
)

const pinnedNow = "2024-03-05T08:00:00Z"

func writeSemester(t *testing.T) string {
	t.Helper()
	data, err := yaml.Marshal(testfixtures.Semester())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "semester.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestQueryCommands(t *testing.T) {
	records := writeSemester(t)

	t.Run("day lists busy slots and conflicts", func(t *testing.T) {
		out, err := execute(t, "day", "2024-03-06", "--records", records, "--now", pinnedNow)
		require.NoError(t, err)
		assert.Contains(t, out, "Wednesday 2024-03-06  busy 180m  free 1260m")
		assert.Contains(t, out, "CONFLICT")
	})

	t.Run("week as json", func(t *testing.T) {
		out, err := execute(t, "week", "2024-03-07", "-o", "json", "--records", records, "--now", pinnedNow)
		require.NoError(t, err)

		var view application.WeekView
		require.NoError(t, json.Unmarshal([]byte(out), &view))
		assert.Len(t, view.Days, 7)
		assert.Equal(t, 10, view.Summary.TotalEvents)
		assert.Equal(t, 2, view.Summary.BusiestDay.Index)
		assert.Equal(t, 3, view.Summary.UpcomingDeadlines)
	})

	t.Run("most urgent pending event", func(t *testing.T) {
		out, err := execute(t, "urgent", "--top", "--records", records, "--now", pinnedNow)
		require.NoError(t, err)
		assert.Contains(t, out, testfixtures.MidtermID)
		assert.Contains(t, out, "score 90")
	})

	t.Run("urgent ranking with recommendations", func(t *testing.T) {
		out, err := execute(t, "urgent", "--records", records, "--now", pinnedNow)
		require.NoError(t, err)
		assert.Contains(t, out, "pending 3")
		assert.Contains(t, out, testfixtures.ProblemSetID)
	})

	t.Run("search by kind within dates", func(t *testing.T) {
		out, err := execute(t, "search", "--kind", "exam,assignment", "--from", "2024-03-04", "--to", "2024-03-10",
			"--records", records, "--now", pinnedNow)
		require.NoError(t, err)
		assert.Contains(t, out, "3 events")
		assert.Contains(t, out, testfixtures.ProjectID)
	})

	t.Run("saved events", func(t *testing.T) {
		out, err := execute(t, "search", "--saved", "--records", records, "--now", pinnedNow)
		require.NoError(t, err)
		assert.Contains(t, out, "1 events")
		assert.Contains(t, out, testfixtures.ProjectID)
	})
}

func TestQueryCommandErrors(t *testing.T) {
	records := writeSemester(t)

	t.Run("no record sources", func(t *testing.T) {
		_, err := execute(t, "day")
		require.ErrorIs(t, err, errNoRecords)
	})

	t.Run("unknown output format", func(t *testing.T) {
		_, err := execute(t, "day", "-o", "xml", "--records", records)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown output")
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := execute(t, "day", "06-03-2024", "--records", records, "--now", pinnedNow)
		require.ErrorIs(t, err, application.ErrInvalidDate)
	})

	t.Run("bad now", func(t *testing.T) {
		_, err := execute(t, "day", "--records", records, "--now", "yesterday")
		require.Error(t, err)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := execute(t, "search", "--kind", "party", "--records", records, "--now", pinnedNow)
		var vErr *application.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.FieldErrors, "kind")
	})
}

func TestMetricsTextfile(t *testing.T) {
	dir := t.TempDir()
	textfile := filepath.Join(dir, "planner.prom")
	cfgPath := filepath.Join(dir, "planner.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("records:\n  path: "+writeSemester(t)+"\nmetrics:\n  textfile: "+textfile+"\n"), 0o600))

	_, err := execute(t, "day", "2024-03-06", "--config", cfgPath, "--now", pinnedNow)
	require.NoError(t, err)

	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `planner_computations_total{scope="day"} 1`)
	assert.Contains(t, string(data), "planner_conflict_groups_total 1")
}
