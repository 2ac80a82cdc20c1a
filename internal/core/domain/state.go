package domain

import "fmt"

// JobState is a stage of the extraction state machine.
type JobState string

// Job states, in pipeline order.
const (
	StateIdle        JobState = "idle"
	StateExtracting  JobState = "extracting"
	StateClassifying JobState = "classifying"
	StateResolving   JobState = "resolving"
	StateFinalizing  JobState = "finalizing"
	StateDone        JobState = "done"
	StateFailed      JobState = "failed"
)

// next maps each non-terminal state to its successor on success.
var next = map[JobState]JobState{
	StateIdle:        StateExtracting,
	StateExtracting:  StateClassifying,
	StateClassifying: StateResolving,
	StateResolving:   StateFinalizing,
	StateFinalizing:  StateDone,
}

// IsTerminal returns true for Done and Failed.
func (s JobState) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// CanTransition reports whether moving from s to to is legal.
// Failed is reachable from every non-terminal state.
func (s JobState) CanTransition(to JobState) bool {
	if s.IsTerminal() {
		return false
	}
	if to == StateFailed {
		return true
	}
	return next[s] == to
}

// String returns the string representation.
func (s JobState) String() string {
	return string(s)
}

// StateMachine tracks a job through its states.
// It is not safe for concurrent use; a job runs on one goroutine.
type StateMachine struct {
	current JobState
	history []JobState
}

// NewStateMachine returns a machine in StateIdle.
func NewStateMachine() *StateMachine {
	return &StateMachine{current: StateIdle, history: []JobState{StateIdle}}
}

// Current returns the current state.
func (m *StateMachine) Current() JobState {
	return m.current
}

// History returns every state visited, in order.
func (m *StateMachine) History() []JobState {
	out := make([]JobState, len(m.history))
	copy(out, m.history)
	return out
}

// Transition moves to the given state or returns ErrInvalidTransition.
func (m *StateMachine) Transition(to JobState) error {
	if !m.current.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.current, to)
	}
	m.current = to
	m.history = append(m.history, to)
	return nil
}

// Fail moves to StateFailed. It is a no-op once the machine is terminal.
func (m *StateMachine) Fail() {
	if m.current.IsTerminal() {
		return
	}
	m.current = StateFailed
	m.history = append(m.history, StateFailed)
}
