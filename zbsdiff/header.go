package zbsdiff

import (
	"encoding/binary"
	"fmt"
)

var magic = [8]byte{'Z', 'B', 'S', 'D', 'I', 'F', 'F', '1'}

// HeaderSize is the fixed 32-byte header: an 8-byte magic plus three
// big-endian i64 size fields.
const HeaderSize = 32

// Header is a ZBSDIFF1 patch's fixed-size file header.
type Header struct {
	ControlSize int64
	DiffSize    int64
	OutputSize  int64
}

// ParseHeader decodes the fixed-size header from the start of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, HeaderSize, len(data))
	}
	for i, b := range magic {
		if data[i] != b {
			return Header{}, ErrInvalidMagic
		}
	}
	return Header{
		ControlSize: int64(binary.BigEndian.Uint64(data[8:16])),
		DiffSize:    int64(binary.BigEndian.Uint64(data[16:24])),
		OutputSize:  int64(binary.BigEndian.Uint64(data[24:32])),
	}, nil
}

// WriteHeader appends h's wire encoding to dst.
func WriteHeader(dst []byte, h Header) []byte {
	var buf [HeaderSize]byte
	copy(buf[0:8], magic[:])
	binary.BigEndian.PutUint64(buf[8:16], uint64(h.ControlSize))
	binary.BigEndian.PutUint64(buf[16:24], uint64(h.DiffSize))
	binary.BigEndian.PutUint64(buf[24:32], uint64(h.OutputSize))
	return append(dst, buf[:]...)
}
