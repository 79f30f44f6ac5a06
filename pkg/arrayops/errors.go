package arrayops

import "errors"

// Errors returned by operations in this package. Call sites wrap these with
// additional context; use [errors.Is] to test for a category.
var (
	// ErrType denotes an input array whose type does not match what the
	// operation requires.
	ErrType = errors.New("type error")

	// ErrValue denotes a violated structural precondition on an auxiliary
	// input, such as unsorted or out-of-range parent indices.
	ErrValue = errors.New("value error")

	// ErrOverflow denotes an index or length computation that would exceed
	// the addressable range of the output's index width. It is detected
	// before any output buffer is allocated.
	ErrOverflow = errors.New("overflow error")
)
