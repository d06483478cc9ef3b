// Package stakeprog builds Stake Program instructions and decodes stake
// account state for the staking lifecycle.
package stakeprog

import "errors"

// Error types for stake account layout handling.
var (
	// ErrUnexpectedLayout indicates account data that does not match the
	// expected stake account layout version.
	ErrUnexpectedLayout = errors.New("stakeprog: account data does not match stake layout v2")

	// ErrInvalidStakeState indicates an unknown stake state discriminant.
	ErrInvalidStakeState = errors.New("stakeprog: invalid stake state")
)
