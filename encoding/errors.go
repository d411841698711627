package encoding

import "fmt"

var (
	// ErrInvalidMagic is returned when the header does not start with "EN".
	ErrInvalidMagic = fmt.Errorf("encoding: invalid magic")

	// ErrTruncated is returned when the input ends before a header, page,
	// or entry is fully readable.
	ErrTruncated = fmt.Errorf("encoding: truncated input")

	// ErrUnsupportedVersion is returned for a header whose key hash sizes
	// are not the 16-byte MD5 form this codec understands.
	ErrUnsupportedVersion = fmt.Errorf("encoding: unsupported manifest version")

	// errPagePadding is a page-internal sentinel: it signals "the
	// remainder of this page is padding", not a caller-visible failure.
	errPagePadding = fmt.Errorf("encoding: page padding")
)
