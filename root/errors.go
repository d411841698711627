package root

import "errors"

var (
	// ErrTruncated is returned when a root manifest ends before a
	// length-prefixed section is fully present.
	ErrTruncated = errors.New("root: truncated manifest")

	// ErrInvalidDelta is returned when a block's FDID table does not
	// strictly increase, which would make the delta encoding ambiguous.
	ErrInvalidDelta = errors.New("root: non-increasing FileDataID delta")

	// ErrUnsupportedVersion is returned for a detected version this
	// package does not know how to parse.
	ErrUnsupportedVersion = errors.New("root: unsupported manifest version")
)
