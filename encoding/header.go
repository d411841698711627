// Package encoding parses and builds NGDP encoding manifests: the paged
// content-key/encoding-key translation tables and embedded ESpec string
// table every content lookup ultimately resolves through.
package encoding

import (
	"encoding/binary"
	"fmt"
)

var magic = [2]byte{'E', 'N'}

// Header is the fixed-size preamble of an encoding manifest.
type Header struct {
	Version        uint8
	HashSizeCKey   uint8
	HashSizeEKey   uint8
	CKeyPageSizeKB uint16
	EKeyPageSizeKB uint16
	CKeyPageCount  uint32
	EKeyPageCount  uint32
	ESpecBlockSize uint32
}

const headerSize = 2 + 1 + 1 + 1 + 2 + 2 + 4 + 4 + 4

// ParseHeader reads the fixed header from the front of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < headerSize {
		return Header{}, fmt.Errorf("%w: need %d bytes, got %d", ErrTruncated, headerSize, len(data))
	}
	if data[0] != magic[0] || data[1] != magic[1] {
		return Header{}, ErrInvalidMagic
	}
	h := Header{
		Version:        data[2],
		HashSizeCKey:   data[3],
		HashSizeEKey:   data[4],
		CKeyPageSizeKB: binary.BigEndian.Uint16(data[5:7]),
		EKeyPageSizeKB: binary.BigEndian.Uint16(data[7:9]),
		CKeyPageCount:  binary.BigEndian.Uint32(data[9:13]),
		EKeyPageCount:  binary.BigEndian.Uint32(data[13:17]),
		ESpecBlockSize: binary.BigEndian.Uint32(data[17:21]),
	}
	if h.HashSizeCKey != 16 || h.HashSizeEKey != 16 {
		return Header{}, fmt.Errorf("%w: unsupported key hash size ckey=%d ekey=%d", ErrUnsupportedVersion, h.HashSizeCKey, h.HashSizeEKey)
	}
	return h, nil
}

// WriteHeader appends the wire encoding of h to dst.
func WriteHeader(dst []byte, h Header) []byte {
	dst = append(dst, magic[:]...)
	dst = append(dst, h.Version, h.HashSizeCKey, h.HashSizeEKey)
	var buf [16]byte
	binary.BigEndian.PutUint16(buf[0:2], h.CKeyPageSizeKB)
	binary.BigEndian.PutUint16(buf[2:4], h.EKeyPageSizeKB)
	binary.BigEndian.PutUint32(buf[4:8], h.CKeyPageCount)
	binary.BigEndian.PutUint32(buf[8:12], h.EKeyPageCount)
	binary.BigEndian.PutUint32(buf[12:16], h.ESpecBlockSize)
	return append(dst, buf[:]...)
}
