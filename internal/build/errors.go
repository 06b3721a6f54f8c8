package build

import "errors"

// Sentinel errors classifying pipeline failures. They are always wrapped with
// context at the call site.
var (
	ErrStaging  = errors.New("picopage: staging error")
	ErrCanceled = errors.New("picopage: build canceled")

	// ErrOutputContainsSource rejects an output directory that is, or
	// contains, the source root: promotion would replace the source.
	ErrOutputContainsSource = errors.New("picopage: output directory contains the source")
)
