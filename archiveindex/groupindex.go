package archiveindex

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/wowemulation-dev/cascette-go/keys"
)

// GroupIndex is a parsed `.index` (group index) file: entries reference
// one of several archives by position in an explicit archive table,
// distinct from a per-archive `.idx`'s implicit single-archive scope.
type GroupIndex struct {
	BucketNum uint8
	Archives  []string
	Entries   []GroupEntry
}

// ParseGroupIndex decodes a group `.index` file. archives is the ordered
// table of archive hashes the file's ArchiveIndex fields index into; group
// index files don't carry the table inline in the layout this package
// targets; callers supply it from the accompanying manifest (e.g. the
// CDN's archive list). bucket must be supplied explicitly.
func ParseGroupIndex(data []byte, archives []string, bucket uint8) (*GroupIndex, error) {
	if bucket >= NumBuckets {
		return nil, fmt.Errorf("%w: %d", ErrBucketOutOfRange, bucket)
	}

	var entries []GroupEntry
	pos := 0
	for pos+groupEntrySize <= len(data) {
		e := parseGroupEntry(data[pos : pos+groupEntrySize])
		if int(e.ArchiveIndex) >= len(archives) {
			return nil, fmt.Errorf("%w: %d", ErrUnknownArchiveIndex, e.ArchiveIndex)
		}
		entries = append(entries, e)
		pos += groupEntrySize
	}

	if !sort.SliceIsSorted(entries, func(i, j int) bool {
		return entries[i].EncodingKey.Compare(entries[j].EncodingKey) < 0
	}) {
		return nil, ErrNotSorted
	}

	return &GroupIndex{BucketNum: bucket, Archives: archives, Entries: entries}, nil
}

func parseGroupEntry(b []byte) GroupEntry {
	var e GroupEntry
	copy(e.EncodingKey[:], b[0:9])
	e.ArchiveIndex = binary.BigEndian.Uint16(b[9:11])
	e.Offset = binary.BigEndian.Uint32(b[11:15])
	e.Size = binary.BigEndian.Uint32(b[15:19])
	return e
}

func writeGroupEntry(dst []byte, e GroupEntry) []byte {
	dst = append(dst, e.EncodingKey[:]...)
	var buf [10]byte
	binary.BigEndian.PutUint16(buf[0:2], e.ArchiveIndex)
	binary.BigEndian.PutUint32(buf[2:6], e.Offset)
	binary.BigEndian.PutUint32(buf[6:10], e.Size)
	return append(dst, buf[:]...)
}

// Build serializes the group index's entries back into `.index` wire form.
func (gi *GroupIndex) Build() []byte {
	var out []byte
	for _, e := range gi.Entries {
		out = writeGroupEntry(out, e)
	}
	return out
}

// Bucket returns the group index's bucket number, satisfying BucketIndex.
func (gi *GroupIndex) Bucket() uint8 { return gi.BucketNum }

// Lookup returns the archive location for a truncated EncodingKey via
// binary search over the sorted entry table.
func (gi *GroupIndex) Lookup(tek keys.TruncatedEncodingKey) (Location, bool) {
	i := sort.Search(len(gi.Entries), func(i int) bool {
		return gi.Entries[i].EncodingKey.Compare(tek) >= 0
	})
	if i >= len(gi.Entries) || gi.Entries[i].EncodingKey != tek {
		return Location{}, false
	}
	e := gi.Entries[i]
	return Location{
		ArchiveHash: gi.Archives[e.ArchiveIndex],
		Offset:      uint64(e.Offset),
		Size:        uint64(e.Size),
	}, true
}
