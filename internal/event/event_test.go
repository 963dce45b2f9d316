package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKindAcceptsAliases(t *testing.T) {
	t.Parallel()

	kind, ok := ParseKind("Class_Session")
	require.True(t, ok)
	assert.Equal(t, KindClassSession, kind)

	_, ok = ParseKind("lecture")
	assert.False(t, ok)
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	status, ok := ParseStatus(" Canceled ")
	require.True(t, ok)
	assert.Equal(t, StatusCancelled, status)

	_, ok = ParseStatus("archived")
	assert.False(t, ok)
}

func TestPriorityTextRoundTrip(t *testing.T) {
	t.Parallel()

	payload, err := json.Marshal(struct {
		P Priority `json:"p"`
	}{P: PriorityCritical})
	require.NoError(t, err)
	assert.JSONEq(t, `{"p":"critical"}`, string(payload))

	var decoded struct {
		P Priority `json:"p"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"p":"HIGH"}`), &decoded))
	assert.Equal(t, PriorityHigh, decoded.P)

	assert.Error(t, json.Unmarshal([]byte(`{"p":"urgent"}`), &decoded))
	assert.True(t, PriorityCritical > PriorityHigh)
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	original := CalendarEvent{ID: "e1", Tags: []string{"a"}, Metadata: map[string]string{"k": "v"}}
	cloned := original.Clone()
	cloned.Tags[0] = "b"
	cloned.Metadata["k"] = "changed"

	assert.Equal(t, "a", original.Tags[0])
	assert.Equal(t, "v", original.Metadata["k"])
}

func TestNormalizeTags(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"exam", "math"}, NormalizeTags([]string{"math", " exam", "", "math"}))
	assert.Nil(t, NormalizeTags([]string{" "}))
}

func TestOverlayIsCopyOnWrite(t *testing.T) {
	t.Parallel()

	base := NewOverlay(map[string]FlagSet{"e1": FlagSet(FlagSaved)})
	withFavorite := base.With("e1", FlagFavorite)

	assert.False(t, base.Has("e1", FlagFavorite), "original overlay must not change")
	assert.True(t, withFavorite.Has("e1", FlagFavorite))
	assert.True(t, withFavorite.Has("e1", FlagSaved))

	cleared := withFavorite.Without("e1", FlagFavorite).Without("e1", FlagSaved)
	assert.Equal(t, 0, cleared.Len())
	assert.Equal(t, 1, withFavorite.Len())

	var zero Overlay
	assert.False(t, zero.Has("missing", FlagRegistered))
	assert.True(t, zero.With("x", FlagRegistered).Has("x", FlagRegistered))
	assert.Empty(t, zero.IDs())
	assert.Equal(t, []string{"e1", "e2"}, withFavorite.With("e2", FlagSaved).IDs())
}

func TestFlagSetNames(t *testing.T) {
	t.Parallel()

	assert.Empty(t, FlagSet(0).Names())
	set := FlagSet(FlagRegistered) | FlagSet(FlagFavorite)
	assert.Equal(t, []string{"favorite", "registered"}, set.Names())
}
