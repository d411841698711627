package zbsdiff

import "errors"

var (
	// ErrInvalidMagic is returned when the header's magic bytes are not
	// "ZBSDIFF1".
	ErrInvalidMagic = errors.New("zbsdiff: invalid magic")

	// ErrTruncated is returned when patch data ends before a length-
	// prefixed section is fully present.
	ErrTruncated = errors.New("zbsdiff: truncated patch")

	// ErrSizeMismatch is returned when the bytes produced by applying a
	// patch don't match the header's declared output_size.
	ErrSizeMismatch = errors.New("zbsdiff: output size mismatch")

	// ErrInsufficientDiffData is returned when a control entry's diff_size
	// exceeds the remaining decompressed diff stream.
	ErrInsufficientDiffData = errors.New("zbsdiff: insufficient diff data")

	// ErrInsufficientExtraData is returned when a control entry's
	// extra_size exceeds the remaining decompressed extra stream.
	ErrInsufficientExtraData = errors.New("zbsdiff: insufficient extra data")
)
