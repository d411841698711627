package install

import (
	"encoding/binary"
	"fmt"
)

var magic = [2]byte{'I', 'N'}

// headerSize is the fixed 10-byte header: magic(2) + version(1) +
// ckey_length(1) + tag_count(2, big-endian) + entry_count(4, big-endian).
const headerSize = 10

// Header is the install manifest's fixed-size file header.
type Header struct {
	Version    uint8
	CKeyLength uint8
	TagCount   uint16
	EntryCount uint32
}

// BitMaskSize returns the number of bytes a tag's bit mask must occupy:
// ceil(EntryCount/8).
func (h Header) BitMaskSize() int {
	return (int(h.EntryCount) + 7) / 8
}

// ParseHeader decodes the fixed-size header from the start of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < headerSize {
		return Header{}, fmt.Errorf("%w: header", ErrTruncated)
	}
	if data[0] != magic[0] || data[1] != magic[1] {
		return Header{}, ErrInvalidMagic
	}
	h := Header{
		Version:    data[2],
		CKeyLength: data[3],
		TagCount:   binary.BigEndian.Uint16(data[4:6]),
		EntryCount: binary.BigEndian.Uint32(data[6:10]),
	}
	if h.CKeyLength != 16 {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedCKeyLength, h.CKeyLength)
	}
	return h, nil
}

// WriteHeader appends h's wire encoding to dst.
func WriteHeader(dst []byte, h Header) []byte {
	var buf [headerSize]byte
	buf[0], buf[1] = magic[0], magic[1]
	buf[2] = h.Version
	buf[3] = h.CKeyLength
	binary.BigEndian.PutUint16(buf[4:6], h.TagCount)
	binary.BigEndian.PutUint32(buf[6:10], h.EntryCount)
	return append(dst, buf[:]...)
}
