// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"errors"
	"fmt"
)

const (
	// StateIdle is the state before a dispatch starts.
	StateIdle State = iota
	// StateResolving looks the task name up in the registry.
	StateResolving
	// StateBinding binds arguments to the recipe's parameters.
	StateBinding
	// StateExecuting runs one step; Transition.Step carries its index.
	StateExecuting
	// StateFailed is terminal: resolution, binding or a step failed.
	StateFailed
	// StateSucceeded is terminal: every step exited zero.
	StateSucceeded
)

// ErrInvalidTransition is the sentinel error wrapped by InvalidTransitionError.
var ErrInvalidTransition = errors.New("invalid state transition")

type (
	// State is a dispatch lifecycle state.
	State int

	// Transition records one state change of a dispatch.
	Transition struct {
		From State
		To   State
		// Step is the step index for transitions into StateExecuting, -1 otherwise.
		Step int
	}

	// InvalidTransitionError is returned when a dispatch attempts a state
	// change the lifecycle does not allow.
	InvalidTransitionError struct {
		From     State
		To       State
		FromStep int
		ToStep   int
	}

	// machine tracks the lifecycle of a single dispatch.
	machine struct {
		state   State
		step    int
		history []Transition
	}
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateBinding:
		return "binding"
	case StateExecuting:
		return "executing"
	case StateFailed:
		return "failed"
	case StateSucceeded:
		return "succeeded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s State) IsTerminal() bool {
	return s == StateFailed || s == StateSucceeded
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition %s -> %s", label(e.From, e.FromStep), label(e.To, e.ToStep))
}

// Unwrap returns ErrInvalidTransition for errors.Is.
func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

func label(s State, step int) string {
	if s == StateExecuting {
		return fmt.Sprintf("%s(%d)", s, step)
	}
	return s.String()
}

func newMachine() *machine {
	return &machine{state: StateIdle, step: -1}
}

// advance moves to the target state. step is the index of the step about to
// run when to is StateExecuting and is ignored otherwise.
func (m *machine) advance(to State, step int) error {
	if to != StateExecuting {
		step = -1
	}
	if !allowed(m.state, m.step, to, step) {
		return &InvalidTransitionError{From: m.state, To: to, FromStep: m.step, ToStep: step}
	}
	m.history = append(m.history, Transition{From: m.state, To: to, Step: step})
	m.state = to
	m.step = step
	return nil
}

func allowed(from State, fromStep int, to State, toStep int) bool {
	switch from {
	case StateIdle:
		return to == StateResolving
	case StateResolving:
		return to == StateBinding || to == StateFailed
	case StateBinding:
		// A recipe without steps succeeds straight from binding.
		return (to == StateExecuting && toStep == 0) || to == StateFailed || to == StateSucceeded
	case StateExecuting:
		return (to == StateExecuting && toStep == fromStep+1) || to == StateFailed || to == StateSucceeded
	default:
		return false
	}
}
