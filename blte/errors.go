package blte

import "fmt"

// Sentinel errors for BLTE parse/decode failures. Callers match with
// errors.Is; the wrapped detail is available via errors.As on the
// concrete types below where one is carried.
var (
	// ErrInvalidMagic is returned when the first 4 bytes are not "BLTE".
	ErrInvalidMagic = fmt.Errorf("blte: invalid magic")

	// ErrTruncated is returned when a header or chunk table runs past the
	// end of the supplied buffer.
	ErrTruncated = fmt.Errorf("blte: truncated input")

	// ErrSingleChunkEncrypted is returned by DecompressWithKeys when the file has no
	// extended header (single-chunk form) but its one chunk is mode 'E'.
	// The encrypted mode's IV derivation depends on the chunk index from
	// the extended header's table, so this combination cannot be decoded.
	ErrSingleChunkEncrypted = fmt.Errorf("blte: single-chunk encrypted files are not valid")

	// ErrUnsupportedMode is returned for an unrecognized per-chunk mode byte.
	ErrUnsupportedMode = fmt.Errorf("blte: unsupported chunk mode")

	// ErrMissingKey is returned when decrypting a chunk whose key name is
	// not present in the supplied key store.
	ErrMissingKey = fmt.Errorf("blte: missing decryption key")

	// ErrInvalidChunkSize is returned by the builder when asked to chunk
	// at a size outside [1 KiB, 16 MiB].
	ErrInvalidChunkSize = fmt.Errorf("blte: chunk size out of range")
)

// CorruptChunkError reports that a decompressed chunk's MD5 did not match
// the checksum recorded in the extended header's chunk table.
type CorruptChunkError struct {
	Index int
}

func (e *CorruptChunkError) Error() string {
	return fmt.Sprintf("blte: chunk %d failed checksum verification", e.Index)
}

// UnsupportedModeError names the offending mode byte.
type UnsupportedModeError struct {
	Mode byte
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("blte: unsupported chunk mode %q (0x%02x)", e.Mode, e.Mode)
}

func (e *UnsupportedModeError) Unwrap() error { return ErrUnsupportedMode }
