package halftone

import "errors"

var (
	// ErrInvalidParameter is returned when an argument violates an operation's
	// precondition. No output is produced.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrUnknownKernel is returned when a kernel identifier is not in the catalog.
	ErrUnknownKernel = errors.New("unknown diffusion kernel")
)
