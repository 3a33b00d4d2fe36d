package importer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_HappyPath(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, StateInput, m.Current())

	path := []State{StateParsing, StateResolving, StateMetadata, StatePreview, StateCreating, StateSuccess}
	for _, next := range path {
		require.NoError(t, m.Transition(next))
		assert.Equal(t, next, m.Current())
	}
}

func TestMachine_ErrorFallbacks(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Transition(StateParsing))

	// Parsing found nothing: back to input.
	require.NoError(t, m.Transition(StateInput))
	assert.Equal(t, StateInput, m.Current())

	for _, next := range []State{StateParsing, StateResolving, StateMetadata, StatePreview, StateCreating} {
		require.NoError(t, m.Transition(next))
	}

	// Shelf creation failed: back to preview.
	require.NoError(t, m.Transition(StatePreview))
	assert.Equal(t, StatePreview, m.Current())
}

func TestMachine_RejectsSkippedStages(t *testing.T) {
	tests := []struct {
		from State
		to   State
	}{
		{StateInput, StateResolving},
		{StateInput, StateSuccess},
		{StateParsing, StateMetadata},
		{StateResolving, StateInput},
		{StatePreview, StateSuccess},
		{StateSuccess, StateParsing},
	}

	for _, tt := range tests {
		m := &Machine{current: tt.from}
		err := m.Transition(tt.to)
		require.Error(t, err, "%s -> %s", tt.from, tt.to)
		assert.True(t, errors.Is(err, ErrInvalidTransition))
		// A rejected transition leaves the state untouched.
		assert.Equal(t, tt.from, m.Current())
	}
}

func TestMachine_ResetFromAnywhere(t *testing.T) {
	for _, from := range []State{StateInput, StateParsing, StateResolving, StateMetadata, StatePreview, StateCreating, StateSuccess} {
		m := &Machine{current: from}
		m.Reset()
		assert.Equal(t, StateInput, m.Current())
	}
}
