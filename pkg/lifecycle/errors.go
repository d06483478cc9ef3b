// Package lifecycle drives a stake account through its on-chain
// lifecycle: create, delegate, deactivate, withdraw. Transitions are
// strictly linear, each blocking on network confirmation before the
// state advances, and operate on an injected State value so a caller
// can enter at any phase.
package lifecycle

import "errors"

// Error types for lifecycle transitions.
var (
	// ErrInvalidTransition indicates a transition invoked from the wrong
	// phase.
	ErrInvalidTransition = errors.New("lifecycle: invalid phase transition")

	// ErrNoValidators indicates an empty active validator set.
	ErrNoValidators = errors.New("lifecycle: no active validators")
)
