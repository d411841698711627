package tvfs

import (
	"fmt"

	"github.com/wowemulation-dev/cascette-go/keys"
)

// CFTEntry is one container file table record: a span's encoding key, size,
// and optional index into the ESpec table.
type CFTEntry struct {
	EncodingKey  keys.EncodingKey
	FileSize     uint64
	ESpecIndex   uint32
	HasESpec     bool
}

// parseCFTTable decodes size bytes of container file table entries, each a
// 16-byte encoding key plus a 40-bit file size and an optional
// especEntrySize-byte little-endian ESpec index.
func parseCFTTable(data []byte, size uint64, especEntrySize uint8) ([]CFTEntry, error) {
	var entries []CFTEntry
	var read uint64
	entrySize := uint64(16+5) + uint64(especEntrySize)

	for read < size {
		if read+entrySize > uint64(len(data)) {
			return nil, fmt.Errorf("%w: cft entry", ErrTruncated)
		}
		var entry CFTEntry
		copy(entry.EncodingKey[:], data[read:read+16])
		read += 16
		entry.FileSize = keys.Uint40LE(data[read : read+5])
		read += 5

		if especEntrySize > 0 {
			var index uint32
			for i := uint8(0); i < especEntrySize; i++ {
				index |= uint32(data[read]) << (8 * i)
				read++
			}
			entry.ESpecIndex = index
			entry.HasESpec = true
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// buildCFTTable encodes entries using especEntrySize bytes per ESpec index.
func buildCFTTable(entries []CFTEntry, especEntrySize uint8) []byte {
	var out []byte
	var buf [5]byte
	for _, e := range entries {
		out = append(out, e.EncodingKey[:]...)
		keys.PutUint40LE(buf[:], e.FileSize)
		out = append(out, buf[:]...)
		for i := uint8(0); i < especEntrySize; i++ {
			out = append(out, byte(e.ESpecIndex>>(8*i)))
		}
	}
	return out
}
