package blte

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pierrec/lz4/v4"
)

// decompressPayload decompresses a chunk's mode-specific payload (the bytes
// following the mode tag byte). index is the chunk's 0-based position,
// threaded through for Frame's recursive parse and for error context.
func decompressPayload(mode Mode, payload []byte, index int) ([]byte, error) {
	switch mode {
	case ModeNone:
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil

	case ModeZlib:
		r, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("blte: chunk %d: zlib init: %w", index, err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("blte: chunk %d: zlib inflate: %w", index, err)
		}
		return out, nil

	case ModeLZ4:
		if len(payload) < 4 {
			return nil, fmt.Errorf("blte: chunk %d: lz4 payload shorter than size prefix", index)
		}
		size := binary.LittleEndian.Uint32(payload[0:4])
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(payload[4:], out)
		if err != nil {
			return nil, fmt.Errorf("blte: chunk %d: lz4 decompress: %w", index, err)
		}
		return out[:n], nil

	case ModeFrame:
		inner, _, err := Parse(payload)
		if err != nil {
			return nil, fmt.Errorf("blte: chunk %d: nested frame: %w", index, err)
		}
		return inner.Decompress()

	default:
		return nil, &UnsupportedModeError{Mode: byte(mode)}
	}
}

// compressPayload produces the mode-specific payload (not including the
// leading mode tag) for plaintext under mode.
func compressPayload(mode Mode, plaintext []byte) ([]byte, error) {
	switch mode {
	case ModeNone:
		out := make([]byte, len(plaintext))
		copy(out, plaintext)
		return out, nil

	case ModeZlib:
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(plaintext); err != nil {
			return nil, fmt.Errorf("blte: zlib deflate: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("blte: zlib close: %w", err)
		}
		return buf.Bytes(), nil

	case ModeLZ4:
		bound := lz4.CompressBlockBound(len(plaintext))
		out := make([]byte, 4+bound)
		binary.LittleEndian.PutUint32(out[0:4], uint32(len(plaintext)))
		var c lz4.Compressor
		n, err := c.CompressBlock(plaintext, out[4:])
		if err != nil {
			return nil, fmt.Errorf("blte: lz4 compress: %w", err)
		}
		return out[:4+n], nil

	default:
		return nil, &UnsupportedModeError{Mode: byte(mode)}
	}
}

func checksum(data []byte) [16]byte {
	return md5.Sum(data)
}
