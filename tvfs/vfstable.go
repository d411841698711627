package tvfs

import (
	"encoding/binary"
	"fmt"

	"github.com/wowemulation-dev/cascette-go/keys"
)

// EntryType classifies a VFS table entry.
type EntryType uint8

const (
	EntryFile EntryType = iota
	EntryDeleted
	EntryInline
	EntryLink
)

func (t EntryType) String() string {
	switch t {
	case EntryFile:
		return "file"
	case EntryDeleted:
		return "deleted"
	case EntryInline:
		return "inline"
	case EntryLink:
		return "link"
	default:
		return "unknown"
	}
}

// VFSEntry maps one path table entry to its file data: either a run of
// container file table spans, or (for EntryInline) an inline data location.
type VFSEntry struct {
	Type       EntryType
	SpanOffset uint32
	SpanCount  uint32
	PathIndex  uint32
	FileOffset uint64
	FileSize   uint32
}

// parseVFSTable decodes size bytes of VFS table entries.
func parseVFSTable(data []byte, size uint64) ([]VFSEntry, error) {
	var entries []VFSEntry
	var read uint64

	for read < size {
		if read >= uint64(len(data)) {
			return nil, fmt.Errorf("%w: vfs entry type", ErrTruncated)
		}
		typeByte := data[read]
		read++
		entry := VFSEntry{Type: EntryType(typeByte & 0x03)}

		if entry.Type == EntryFile {
			offset, n, err := readVarint(data[read:])
			if err != nil {
				return nil, fmt.Errorf("vfs table: span offset: %w", err)
			}
			read += uint64(n)
			count, n, err := readVarint(data[read:])
			if err != nil {
				return nil, fmt.Errorf("vfs table: span count: %w", err)
			}
			read += uint64(n)
			entry.SpanOffset, entry.SpanCount = offset, count
		}

		pathIndex, n, err := readVarint(data[read:])
		if err != nil {
			return nil, fmt.Errorf("vfs table: path index: %w", err)
		}
		read += uint64(n)
		entry.PathIndex = pathIndex

		if entry.Type == EntryInline {
			if read+9 > uint64(len(data)) {
				return nil, fmt.Errorf("%w: inline file data", ErrTruncated)
			}
			entry.FileOffset = keys.Uint40LE(data[read : read+5])
			read += 5
			entry.FileSize = binary.LittleEndian.Uint32(data[read : read+4])
			read += 4
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// writeVFSEntry appends one entry's wire encoding to dst.
func writeVFSEntry(dst []byte, e VFSEntry) []byte {
	dst = append(dst, byte(e.Type))
	if e.Type == EntryFile {
		dst = appendVarint(dst, e.SpanOffset)
		dst = appendVarint(dst, e.SpanCount)
	}
	dst = appendVarint(dst, e.PathIndex)
	if e.Type == EntryInline {
		var buf [5]byte
		keys.PutUint40LE(buf[:], e.FileOffset)
		dst = append(dst, buf[:]...)
		var size [4]byte
		binary.LittleEndian.PutUint32(size[:], e.FileSize)
		dst = append(dst, size[:]...)
	}
	return dst
}

func buildVFSTable(entries []VFSEntry) []byte {
	var out []byte
	for _, e := range entries {
		out = writeVFSEntry(out, e)
	}
	return out
}
