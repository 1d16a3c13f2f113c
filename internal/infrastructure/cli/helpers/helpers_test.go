package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/apex/internal/domain"
)

func TestLookupKey(t *testing.T) {
	cfg := domain.Config{
		Knowledge: domain.KnowledgeSettings{Strategy: domain.StrategySearch, TimeoutSeconds: 20},
	}

	got, err := LookupKey(cfg, "knowledge.strategy")
	require.NoError(t, err)
	assert.Equal(t, "search", got)

	got, err = LookupKey(cfg, "knowledge.timeout")
	require.NoError(t, err)
	assert.Equal(t, "20", got)

	_, err = LookupKey(cfg, "knowledge.missing")
	assert.ErrorIs(t, err, ErrUnknownKey)

	_, err = LookupKey(cfg, "knowledge.strategy.deeper")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestSetKey(t *testing.T) {
	cfg := domain.Config{Assistant: domain.AssistantSettings{Name: "APEX"}}

	updated, err := SetKey(cfg, "knowledge.timeout", "45")
	require.NoError(t, err)
	assert.Equal(t, 45, updated.Knowledge.TimeoutSeconds)
	assert.Equal(t, "APEX", updated.Assistant.Name)

	updated, err = SetKey(updated, "assistant.wake_word", "jarvis")
	require.NoError(t, err)
	assert.Equal(t, "jarvis", updated.Assistant.WakeWord)
	assert.Equal(t, 45, updated.Knowledge.TimeoutSeconds)

	_, err = SetKey(cfg, "knowledge.timeout", "not-a-number")
	assert.Error(t, err)

	_, err = SetKey(cfg, "", "x")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestTopCounts(t *testing.T) {
	freq := map[string]int{"chat": 3, "search": 3, "cache": 1}

	assert.Equal(t, []Count{{"chat", 3}, {"search", 3}}, TopCounts(freq, 2))
	assert.Len(t, TopCounts(freq, 0), 3)
	assert.Empty(t, TopCounts(nil, 5))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(1, 0))
	assert.Equal(t, 50.0, Percent(1, 2))
}
