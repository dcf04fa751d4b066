package glitch

import "errors"

var (
	// ErrResourceExhausted reports a texture that could not be allocated.
	// The frame is skipped; the pass stays usable.
	ErrResourceExhausted = errors.New("glitch: resource exhausted")

	// ErrMisconfigured reports a pass built without a required collaborator.
	// Such a pass never executes.
	ErrMisconfigured = errors.New("glitch: misconfigured pipeline")

	// ErrInvalidParameter reports a parameter outside [0,1].
	ErrInvalidParameter = errors.New("glitch: invalid parameter")
)
