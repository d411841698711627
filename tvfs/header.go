package tvfs

import (
	"encoding/binary"
	"fmt"

	"github.com/wowemulation-dev/cascette-go/keys"
)

var magic = [4]byte{'T', 'V', 'F', 'S'}

// Flag bits in Header.Flags.
const (
	FlagWriteSupport     = 1 << 0
	FlagPatchReferences  = 1 << 1
	FlagESpecTable       = 1 << 2
)

// fixedHeaderSize is the byte width of the header up to and including Flags,
// before the optional ESpec table offset/size pair.
const fixedHeaderSize = 4 + 1 + 1 + 1 + 5*6 + 2 + 1

// Header is the fixed-layout TVFS manifest header: table offsets and sizes
// are 40-bit little-endian integers, matching the rest of TVFS's on-disk
// layout.
type Header struct {
	Version         uint8
	HeaderSize      uint8
	ESpecEntrySize  uint8
	PathTableOffset uint64
	PathTableSize   uint64
	VFSTableOffset  uint64
	VFSTableSize    uint64
	CFTTableOffset  uint64
	CFTTableSize    uint64
	MaxPathDepth    uint16
	Flags           uint8
	ESpecTableOffset uint64
	ESpecTableSize   uint64
}

// HasWriteSupport reports whether the write-support flag is set.
func (h Header) HasWriteSupport() bool { return h.Flags&FlagWriteSupport != 0 }

// HasPatchReferences reports whether the patch-references flag is set.
func (h Header) HasPatchReferences() bool { return h.Flags&FlagPatchReferences != 0 }

// HasESpecTable reports whether an ESpec table is present.
func (h Header) HasESpecTable() bool { return h.Flags&FlagESpecTable != 0 }

// ParseHeader decodes a TVFS header from the start of data.
func ParseHeader(data []byte) (Header, int, error) {
	if len(data) < fixedHeaderSize {
		return Header{}, 0, fmt.Errorf("%w: header needs %d bytes, got %d", ErrTruncated, fixedHeaderSize, len(data))
	}
	if [4]byte(data[0:4]) != magic {
		return Header{}, 0, ErrInvalidMagic
	}

	h := Header{
		Version:         data[4],
		HeaderSize:      data[5],
		ESpecEntrySize:  data[6],
		PathTableOffset: keys.Uint40LE(data[7:12]),
		PathTableSize:   keys.Uint40LE(data[12:17]),
		VFSTableOffset:  keys.Uint40LE(data[17:22]),
		VFSTableSize:    keys.Uint40LE(data[22:27]),
		CFTTableOffset:  keys.Uint40LE(data[27:32]),
		CFTTableSize:    keys.Uint40LE(data[32:37]),
		MaxPathDepth:    binary.LittleEndian.Uint16(data[37:39]),
		Flags:           data[39],
	}
	pos := fixedHeaderSize

	if h.Flags&FlagESpecTable != 0 {
		if len(data) < pos+10 {
			return Header{}, 0, fmt.Errorf("%w: espec table offsets", ErrTruncated)
		}
		h.ESpecTableOffset = keys.Uint40LE(data[pos : pos+5])
		h.ESpecTableSize = keys.Uint40LE(data[pos+5 : pos+10])
		pos += 10
	}

	return h, pos, nil
}

// WriteHeader appends h's wire encoding to dst and returns the result.
func WriteHeader(dst []byte, h Header) []byte {
	dst = append(dst, magic[:]...)
	dst = append(dst, h.Version, h.HeaderSize, h.ESpecEntrySize)

	var buf [5]byte
	appendUint40 := func(v uint64) {
		keys.PutUint40LE(buf[:], v)
		dst = append(dst, buf[:]...)
	}
	appendUint40(h.PathTableOffset)
	appendUint40(h.PathTableSize)
	appendUint40(h.VFSTableOffset)
	appendUint40(h.VFSTableSize)
	appendUint40(h.CFTTableOffset)
	appendUint40(h.CFTTableSize)

	var depth [2]byte
	binary.LittleEndian.PutUint16(depth[:], h.MaxPathDepth)
	dst = append(dst, depth[:]...)
	dst = append(dst, h.Flags)

	if h.Flags&FlagESpecTable != 0 {
		appendUint40(h.ESpecTableOffset)
		appendUint40(h.ESpecTableSize)
	}
	return dst
}
