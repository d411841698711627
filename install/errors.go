package install

import "errors"

var (
	// ErrInvalidMagic is returned when the header's magic bytes are not "IN".
	ErrInvalidMagic = errors.New("install: invalid magic")

	// ErrTruncated is returned when the manifest ends before a
	// length-prefixed or count-prefixed section is fully present.
	ErrTruncated = errors.New("install: truncated manifest")

	// ErrUnsupportedCKeyLength is returned for a ckey_length other than 16,
	// the only content-key width this package understands.
	ErrUnsupportedCKeyLength = errors.New("install: unsupported content key length")

	// ErrBitMaskSizeMismatch is returned when a tag's bit mask length does
	// not equal ceil(entry_count/8).
	ErrBitMaskSizeMismatch = errors.New("install: tag bit mask size mismatch")
)
