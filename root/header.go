package root

import (
	"encoding/binary"
	"fmt"
)

// Version identifies a root manifest header layout.
type Version uint8

const (
	// V1 carries no file-level header; blocks start at offset 0 and every
	// block carries name hashes unless it sets ContentNoNameHash.
	V1 Version = iota + 1
	// V2 adds a 4-byte magic plus total_files/named_files counts.
	V2
	// V3 adds an explicit header_size so parsers can skip unknown trailing
	// header fields without a version-specific struct.
	V3
	// V4 adds a flags word after header_size; bit 0 marks
	// "non-named files are permitted" (FilesNotAllNamed).
	V4
)

// magic is the little-endian u32 0x4D465354 read as four bytes in file
// order: 'T','S','F','M'.
var magic = [4]byte{'T', 'S', 'F', 'M'}

// FilesNotAllNamed, when set in a V4 header's flags, indicates named_files
// may be less than total_files without every excess file being an error.
const FilesNotAllNamed uint32 = 1 << 0

// Header is the file-level root manifest header. V1 manifests decode to a
// zero Header with Version set to V1 and TotalFiles/NamedFiles left 0,
// since V1 carries no such counts.
type Header struct {
	Version    Version
	TotalFiles uint32
	NamedFiles uint32
	Flags      uint32
}

// ParseHeader detects the manifest version from the first bytes of data and
// decodes the file-level header, returning the header and the number of
// bytes it occupies (0 for V1, since V1 has no header to skip).
func ParseHeader(data []byte) (Header, int, error) {
	if len(data) < 4 || data[0] != magic[0] || data[1] != magic[1] || data[2] != magic[2] || data[3] != magic[3] {
		return Header{Version: V1}, 0, nil
	}

	if len(data) < 12 {
		return Header{}, 0, fmt.Errorf("%w: v2+ header truncated", ErrTruncated)
	}
	h := Header{
		Version:    V2,
		TotalFiles: binary.LittleEndian.Uint32(data[4:8]),
		NamedFiles: binary.LittleEndian.Uint32(data[8:12]),
	}
	pos := 12

	if len(data) < pos+4 {
		return h, pos, nil
	}
	headerSize := binary.LittleEndian.Uint32(data[pos : pos+4])
	if headerSize < uint32(pos)+4 {
		return h, pos, nil
	}
	h.Version = V3
	pos += 4

	if headerSize >= uint32(pos)+4 && len(data) >= pos+4 {
		h.Version = V4
		h.Flags = binary.LittleEndian.Uint32(data[pos : pos+4])
	}

	if len(data) < int(headerSize) {
		return Header{}, 0, fmt.Errorf("%w: header_size exceeds available data", ErrTruncated)
	}
	return h, int(headerSize), nil
}

// WriteHeader appends h's wire encoding to dst. A V1 header writes nothing.
func WriteHeader(dst []byte, h Header) []byte {
	if h.Version == V1 {
		return dst
	}
	dst = append(dst, magic[:]...)
	var counts [8]byte
	binary.LittleEndian.PutUint32(counts[0:4], h.TotalFiles)
	binary.LittleEndian.PutUint32(counts[4:8], h.NamedFiles)
	dst = append(dst, counts[:]...)
	if h.Version == V2 {
		return dst
	}

	headerSize := uint32(12 + 4)
	if h.Version == V4 {
		headerSize += 4
	}
	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], headerSize)
	dst = append(dst, sizeBuf[:]...)
	if h.Version == V3 {
		return dst
	}

	var flagsBuf [4]byte
	binary.LittleEndian.PutUint32(flagsBuf[:], h.Flags)
	dst = append(dst, flagsBuf[:]...)
	return dst
}
