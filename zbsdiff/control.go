package zbsdiff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// controlEntrySize is the wire size of one control-block triple:
// diff_size(8) + extra_size(8) + seek_offset(8), all big-endian i64.
const controlEntrySize = 24

// ControlEntry is one instruction in a ZBSDIFF1 control block: apply
// DiffSize bytes of diff against the old file, copy ExtraSize bytes
// verbatim, then seek the old-file cursor by SeekOffset.
type ControlEntry struct {
	DiffSize   int64
	ExtraSize  int64
	SeekOffset int64
}

// ControlBlock is the parsed, decompressed sequence of control entries.
type ControlBlock struct {
	Entries []ControlEntry
}

// decompressZlib inflates a zlib-compressed stream.
func decompressZlib(compressed []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("zbsdiff: zlib: %w", err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

// compressZlib deflates data with zlib at the default compression level.
func compressZlib(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("zbsdiff: zlib: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zbsdiff: zlib: %w", err)
	}
	return buf.Bytes(), nil
}

// parseControlBlock decompresses and decodes a control block.
func parseControlBlock(compressed []byte) (ControlBlock, error) {
	raw, err := decompressZlib(compressed)
	if err != nil {
		return ControlBlock{}, err
	}
	if len(raw)%controlEntrySize != 0 {
		return ControlBlock{}, fmt.Errorf("%w: control block length %d not a multiple of %d", ErrTruncated, len(raw), controlEntrySize)
	}
	entries := make([]ControlEntry, 0, len(raw)/controlEntrySize)
	for off := 0; off < len(raw); off += controlEntrySize {
		e := raw[off : off+controlEntrySize]
		entries = append(entries, ControlEntry{
			DiffSize:   int64(binary.BigEndian.Uint64(e[0:8])),
			ExtraSize:  int64(binary.BigEndian.Uint64(e[8:16])),
			SeekOffset: int64(binary.BigEndian.Uint64(e[16:24])),
		})
	}
	return ControlBlock{Entries: entries}, nil
}

// buildControlBlock serializes and zlib-compresses a control block.
func buildControlBlock(cb ControlBlock) ([]byte, error) {
	raw := make([]byte, 0, len(cb.Entries)*controlEntrySize)
	for _, e := range cb.Entries {
		var buf [controlEntrySize]byte
		binary.BigEndian.PutUint64(buf[0:8], uint64(e.DiffSize))
		binary.BigEndian.PutUint64(buf[8:16], uint64(e.ExtraSize))
		binary.BigEndian.PutUint64(buf[16:24], uint64(e.SeekOffset))
		raw = append(raw, buf[:]...)
	}
	return compressZlib(raw)
}
