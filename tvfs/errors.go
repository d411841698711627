package tvfs

import "errors"

var (
	// ErrInvalidMagic is returned when the header does not begin with "TVFS".
	ErrInvalidMagic = errors.New("tvfs: invalid magic")
	// ErrTruncated is returned when data ends before a required field or table
	// entry has been fully read.
	ErrTruncated = errors.New("tvfs: truncated data")
	// ErrInvalidVarint is returned when a varint does not terminate within the
	// 5-byte window a 32-bit value can occupy.
	ErrInvalidVarint = errors.New("tvfs: varint too long")
	// ErrBadPathIndex is returned when a VFS entry references a path table
	// index beyond the parsed path table.
	ErrBadPathIndex = errors.New("tvfs: path index out of range")
	// ErrBadSpan is returned when a VFS file entry's span range falls outside
	// the parsed container file table.
	ErrBadSpan = errors.New("tvfs: span out of range")
)
