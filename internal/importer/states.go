package importer

import (
	"errors"
	"fmt"
)

// State is one step of the import flow. Transitions are restricted to the
// table below so illegal states are unrepresentable outside of it.
type State string

const (
	StateInput     State = "input"
	StateParsing   State = "parsing"
	StateResolving State = "resolving"
	StateMetadata  State = "metadata"
	StatePreview   State = "preview"
	StateCreating  State = "creating"
	StateSuccess   State = "success"
)

// ErrInvalidTransition is returned when a transition is not in the table.
var ErrInvalidTransition = errors.New("invalid state transition")

// transitions is the allowed-successor table. Parsing may fall back to
// input (no URLs found) and creating may fall back to preview (shelf
// creation failed); everything else moves strictly forward.
var transitions = map[State][]State{
	StateInput:     {StateParsing},
	StateParsing:   {StateResolving, StateInput},
	StateResolving: {StateMetadata},
	StateMetadata:  {StatePreview},
	StatePreview:   {StateCreating},
	StateCreating:  {StateSuccess, StatePreview},
	StateSuccess:   {},
}

// CanTransition reports whether the table allows moving from one state to
// another.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Machine tracks the current import state.
type Machine struct {
	current State
}

// NewMachine starts a machine in the input state.
func NewMachine() *Machine {
	return &Machine{current: StateInput}
}

// Current returns the machine's state.
func (m *Machine) Current() State {
	return m.current
}

// Transition advances to the given state, or fails without changing
// anything when the table does not allow the move.
func (m *Machine) Transition(to State) error {
	if !CanTransition(m.current, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.current, to)
	}
	m.current = to
	return nil
}

// Reset returns to the input state unconditionally, from any state.
func (m *Machine) Reset() {
	m.current = StateInput
}
