// ABOUTME: Tests for the demo sandbox staging and turn limit
// ABOUTME: Runs against the in-memory mock store

package demo

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/nova-dashboard/internal/form"
	"github.com/2389/nova-dashboard/internal/store"
)

func newSandbox(t *testing.T) (*Sandbox, *store.MockStore) {
	t.Helper()
	s := store.NewMockStore()
	return NewSandbox(s, 30*time.Minute, "https://widget.example", nil), s
}

func validConfig() Config {
	return Config{AgentName: "Ada", BusinessName: "Ada's Bakery", BusinessDescription: "Bread", PersonalityType: "luxury"}
}

func TestSave_RequiresNameAndDescription(t *testing.T) {
	sb, s := newSandbox(t)

	err := sb.Save(t.Context(), "tab", Config{BusinessName: "Only a name"})
	v, ok := form.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, MsgConfigRequired, v.Message)

	_, err = s.GetHandoff(t.Context(), "tab", store.HandoffDemoConfig)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSave_StagesConfigAndResetsTurns(t *testing.T) {
	sb, s := newSandbox(t)
	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	sb.now = func() time.Time { return fixed }
	s.Now = sb.now

	require.NoError(t, sb.Save(t.Context(), "tab", validConfig()))
	_, _, err := sb.RecordTurn(t.Context(), "tab")
	require.NoError(t, err)
	require.NoError(t, sb.Save(t.Context(), "tab", validConfig()))

	h, err := s.GetHandoff(t.Context(), "tab", store.HandoffDemoConfig)
	require.NoError(t, err)
	var staged Config
	require.NoError(t, json.Unmarshal(h.Payload, &staged))
	assert.Equal(t, "Ada's Bakery", staged.BusinessName)
	assert.Equal(t, fixed.UnixMilli(), staged.Timestamp)
	assert.Equal(t, fixed.Add(30*time.Minute), h.ExpiresAt)

	turns, err := sb.Turns(t.Context(), "tab")
	require.NoError(t, err)
	assert.Equal(t, 0, turns)
}

func TestSave_DefaultsAgentName(t *testing.T) {
	sb, _ := newSandbox(t)
	cfg := validConfig()
	cfg.AgentName = "  "
	require.NoError(t, sb.Save(t.Context(), "tab", cfg))

	got, err := sb.Load(t.Context(), "tab")
	require.NoError(t, err)
	assert.Equal(t, "Nova", got.AgentName)
}

func TestStart(t *testing.T) {
	sb, _ := newSandbox(t)

	_, err := sb.Start(t.Context(), "tab")
	v, ok := form.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, MsgSaveFirst, v.Message)

	require.NoError(t, sb.Save(t.Context(), "tab", validConfig()))
	u, err := sb.Start(t.Context(), "tab")
	require.NoError(t, err)
	assert.Equal(t, "https://widget.example?demo=true", u)

	// Another tab has its own state.
	_, err = sb.Start(t.Context(), "other-tab")
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	sb, _ := newSandbox(t)
	require.NoError(t, sb.Save(t.Context(), "tab", validConfig()))
	require.NoError(t, sb.Save(t.Context(), "other-tab", validConfig()))
	_, _, err := sb.RecordTurn(t.Context(), "tab")
	require.NoError(t, err)

	require.NoError(t, sb.Reset(t.Context(), "tab"))

	cfg, err := sb.Load(t.Context(), "tab")
	require.NoError(t, err)
	assert.Nil(t, cfg)
	turns, err := sb.Turns(t.Context(), "tab")
	require.NoError(t, err)
	assert.Equal(t, 0, turns)

	_, err = sb.Start(t.Context(), "tab")
	assert.Error(t, err)
	_, err = sb.Start(t.Context(), "other-tab")
	assert.NoError(t, err)

	// Nothing staged is not an error.
	assert.NoError(t, sb.Reset(t.Context(), "tab"))
}

func TestRecordTurn_Limit(t *testing.T) {
	sb, _ := newSandbox(t)
	require.NoError(t, sb.Save(t.Context(), "tab", validConfig()))

	for i := 1; i < TurnLimit; i++ {
		turns, limit, err := sb.RecordTurn(t.Context(), "tab")
		require.NoError(t, err)
		assert.Equal(t, i, turns)
		assert.False(t, limit)
	}

	turns, limit, err := sb.RecordTurn(t.Context(), "tab")
	require.NoError(t, err)
	assert.Equal(t, TurnLimit, turns)
	assert.True(t, limit)

	turns, limit, err = sb.RecordTurn(t.Context(), "tab")
	require.NoError(t, err)
	assert.Equal(t, TurnLimit, turns)
	assert.True(t, limit)
}

func TestLoad_Expired(t *testing.T) {
	sb, s := newSandbox(t)
	require.NoError(t, sb.Save(t.Context(), "tab", validConfig()))
	s.Now = func() time.Time { return time.Now().Add(time.Hour) }

	cfg, err := sb.Load(t.Context(), "tab")
	require.NoError(t, err)
	assert.Nil(t, cfg)
}
