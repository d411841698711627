package blte

import (
	"encoding/binary"
	"fmt"
)

// magic is the 4-byte BLTE container signature.
var magic = [4]byte{'B', 'L', 'T', 'E'}

// ChunkInfo is one entry of the extended header's per-chunk table.
type ChunkInfo struct {
	CompressedSize   uint32
	DecompressedSize uint32
	Checksum         [16]byte // MD5 of the decompressed chunk
}

// Header is a parsed BLTE header. Extended is false for single-chunk files
// (header_size == 0 in the wire format).
type Header struct {
	Flags      uint8
	ChunkCount uint32 // 24-bit on the wire
	Chunks     []ChunkInfo
	Extended   bool
}

// SingleChunkHeader returns the header for a single-chunk BLTE file: no
// chunk table, the remainder of the stream is one chunk.
func SingleChunkHeader() Header {
	return Header{Extended: false}
}

// HeaderSize returns the wire size of the extended header (12 bytes of
// magic, header_size, flags and chunk_count plus 24 bytes per chunk), or 0
// for a single-chunk header.
func (h Header) HeaderSize() uint32 {
	if !h.Extended {
		return 0
	}
	return 12 + uint32(len(h.Chunks))*24
}

// ParseHeader reads the BLTE magic and header from the front of data,
// returning the header and the number of bytes it occupied.
func ParseHeader(data []byte) (Header, int, error) {
	if len(data) < 8 {
		return Header{}, 0, fmt.Errorf("%w: need at least 8 bytes, got %d", ErrTruncated, len(data))
	}
	if data[0] != magic[0] || data[1] != magic[1] || data[2] != magic[2] || data[3] != magic[3] {
		return Header{}, 0, ErrInvalidMagic
	}
	headerSize := binary.BigEndian.Uint32(data[4:8])
	if headerSize == 0 {
		return SingleChunkHeader(), 8, nil
	}

	const fixedSize = 8 + 4 // magic+header_size, then flags+chunk_count
	if len(data) < fixedSize {
		return Header{}, 0, fmt.Errorf("%w: extended header truncated", ErrTruncated)
	}
	flags := data[8]
	chunkCount := uint32(data[9])<<16 | uint32(data[10])<<8 | uint32(data[11])

	tableStart := 12
	tableEnd := tableStart + int(chunkCount)*24
	if len(data) < tableEnd {
		return Header{}, 0, fmt.Errorf("%w: chunk table truncated, need %d bytes have %d", ErrTruncated, tableEnd, len(data))
	}

	chunks := make([]ChunkInfo, chunkCount)
	for i := range chunks {
		rec := data[tableStart+i*24 : tableStart+(i+1)*24]
		chunks[i] = ChunkInfo{
			CompressedSize:   binary.BigEndian.Uint32(rec[0:4]),
			DecompressedSize: binary.BigEndian.Uint32(rec[4:8]),
		}
		copy(chunks[i].Checksum[:], rec[8:24])
	}

	if headerSize != uint32(tableEnd) {
		return Header{}, 0, fmt.Errorf("%w: header_size %d does not match computed %d", ErrTruncated, headerSize, tableEnd)
	}

	return Header{Flags: flags, ChunkCount: chunkCount, Chunks: chunks, Extended: true}, tableEnd, nil
}

// WriteHeader appends the wire encoding of h (magic, header_size, and the
// extended chunk table when present) to dst.
func WriteHeader(dst []byte, h Header) []byte {
	dst = append(dst, magic[:]...)
	var headerSizeBuf [4]byte
	binary.BigEndian.PutUint32(headerSizeBuf[:], h.HeaderSize())
	dst = append(dst, headerSizeBuf[:]...)
	if !h.Extended {
		return dst
	}

	dst = append(dst, h.Flags, byte(len(h.Chunks)>>16), byte(len(h.Chunks)>>8), byte(len(h.Chunks)))
	for _, c := range h.Chunks {
		var rec [24]byte
		binary.BigEndian.PutUint32(rec[0:4], c.CompressedSize)
		binary.BigEndian.PutUint32(rec[4:8], c.DecompressedSize)
		copy(rec[8:24], c.Checksum[:])
		dst = append(dst, rec[:]...)
	}
	return dst
}
