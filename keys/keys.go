// Package keys defines the fixed-width identifier types shared by every
// NGDP/CASC codec and network component: content keys, encoding keys,
// their truncated index form, and numeric file data IDs.
package keys

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// ContentKey is the 16-byte MD5 of decoded file content.
type ContentKey [16]byte

// EncodingKey is the 16-byte MD5 of BLTE-encoded file content.
type EncodingKey [16]byte

// TruncatedEncodingKey is the first 9 bytes of an EncodingKey, as stored in
// archive index entries.
type TruncatedEncodingKey [9]byte

// FileDataID is a 32-bit numeric file identifier.
type FileDataID uint32

// Truncate returns the 9-byte truncated form of the key used in archive
// index tables.
func (k EncodingKey) Truncate() TruncatedEncodingKey {
	var t TruncatedEncodingKey
	copy(t[:], k[:9])
	return t
}

// String renders the key as lowercase hex.
func (k ContentKey) String() string { return hex.EncodeToString(k[:]) }

// String renders the key as lowercase hex.
func (k EncodingKey) String() string { return hex.EncodeToString(k[:]) }

// String renders the key as lowercase hex.
func (k TruncatedEncodingKey) String() string { return hex.EncodeToString(k[:]) }

// IsZero reports whether the key is all-zero.
func (k ContentKey) IsZero() bool { return k == ContentKey{} }

// IsZero reports whether the key is all-zero.
func (k EncodingKey) IsZero() bool { return k == EncodingKey{} }

// Compare returns -1, 0, or 1 ordering two keys lexicographically, matching
// the sort order archive index pages and encoding manifest pages are stored
// in on disk.
func (k ContentKey) Compare(other ContentKey) int { return bytes.Compare(k[:], other[:]) }

// Compare returns -1, 0, or 1 ordering two keys lexicographically.
func (k EncodingKey) Compare(other EncodingKey) int { return bytes.Compare(k[:], other[:]) }

// Compare returns -1, 0, or 1 ordering two truncated keys lexicographically.
func (k TruncatedEncodingKey) Compare(other TruncatedEncodingKey) int {
	return bytes.Compare(k[:], other[:])
}

// ParseContentKey decodes a 32-character hex string into a ContentKey.
func ParseContentKey(s string) (ContentKey, error) {
	var k ContentKey
	if err := parseFixedHex(s, k[:]); err != nil {
		return ContentKey{}, fmt.Errorf("content key: %w", err)
	}
	return k, nil
}

// ParseEncodingKey decodes a 32-character hex string into an EncodingKey.
func ParseEncodingKey(s string) (EncodingKey, error) {
	var k EncodingKey
	if err := parseFixedHex(s, k[:]); err != nil {
		return EncodingKey{}, fmt.Errorf("encoding key: %w", err)
	}
	return k, nil
}

// ErrBadHexLength is returned when a hex string does not match the expected
// decoded length for a fixed-width key.
type ErrBadHexLength struct {
	Expected int
	Got      int
}

func (e *ErrBadHexLength) Error() string {
	return fmt.Sprintf("bad hex length: expected %d decoded bytes, got %d", e.Expected, e.Got)
}

func parseFixedHex(s string, dst []byte) error {
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(b) != len(dst) {
		return &ErrBadHexLength{Expected: len(dst), Got: len(b)}
	}
	copy(dst, b)
	return nil
}

// FileDataIDFromBytes interprets 4 little-endian bytes as a FileDataID, the
// layout used by root manifest delta-encoded FDID arrays once decoded.
func FileDataIDFromBytes(b [4]byte) FileDataID {
	return FileDataID(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
}
