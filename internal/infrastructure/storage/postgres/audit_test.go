package postgres

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_CompressionRoundTrip(t *testing.T) {
	s, err := NewAuditService()
	require.NoError(t, err)

	payload := bytes.Repeat([]byte(`{"field":"value","n":12345}`), 1000)
	require.Greater(t, len(payload), s.compressThreshold)

	compressed := s.encoder.EncodeAll(payload, nil)
	assert.Less(t, len(compressed), len(payload))

	restored, err := s.decoder.DecodeAll(compressed, nil)
	require.NoError(t, err)
	assert.Equal(t, payload, restored)
}

func TestDiff(t *testing.T) {
	oldState := map[string]any{
		"number":  "INV-2026-00001",
		"paid":    false,
		"comment": "draft",
	}
	newState := map[string]any{
		"number": "INV-2026-00001",
		"paid":   true,
		"series": "A",
	}

	changes := Diff(oldState, newState)

	assert.NotContains(t, changes, "number")

	assert.Equal(t, map[string]any{"old": false, "new": true}, changes["paid"])
	assert.Equal(t, map[string]any{"old": nil, "new": "A"}, changes["series"])
	assert.Equal(t, map[string]any{"old": "draft", "new": nil}, changes["comment"])
}

func TestDiff_NoChanges(t *testing.T) {
	state := map[string]any{"a": 1, "b": "x"}
	assert.Empty(t, Diff(state, state))
}
