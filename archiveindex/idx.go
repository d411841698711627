package archiveindex

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/wowemulation-dev/cascette-go/keys"
)

// DefaultPreambleSize is the standard byte offset at which a per-archive
// `.idx` file's entry table begins.
const DefaultPreambleSize = 0x108

// Index is a parsed per-archive `.idx` file: a sorted table of truncated
// EncodingKeys to byte ranges within the single archive it describes.
type Index struct {
	ArchiveHash string
	BucketNum   uint8
	Entries     []Entry
}

// BucketFromFilename extracts a bucket number from a conventional
// "<nn>.idx" filename, where nn is two hex digits. It returns false rather
// than guessing when the name doesn't match, since there is no safe
// default bucket.
func BucketFromFilename(name string) (uint8, bool) {
	base := name
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	if len(base) < 2 {
		return 0, false
	}
	v, err := strconv.ParseUint(base[:2], 16, 8)
	if err != nil {
		return 0, false
	}
	return uint8(v), true
}

// ParseIdx decodes a per-archive `.idx` file. archiveHash identifies the
// single archive this index's offsets are relative to (conventionally the
// file's own base name). bucket must be supplied explicitly: there is no
// silent fallback to bucket 0 when it cannot be determined from context.
func ParseIdx(data []byte, archiveHash string, bucket uint8) (*Index, error) {
	if bucket >= NumBuckets {
		return nil, fmt.Errorf("%w: %d", ErrBucketOutOfRange, bucket)
	}
	if len(data) < DefaultPreambleSize {
		return nil, fmt.Errorf("%w: preamble", ErrTruncated)
	}
	pos := DefaultPreambleSize

	var entries []Entry
	for pos+entrySize <= len(data) {
		e := parseEntry(data[pos : pos+entrySize])
		entries = append(entries, e)
		pos += entrySize
	}

	if !sort.SliceIsSorted(entries, func(i, j int) bool {
		return entries[i].EncodingKey.Compare(entries[j].EncodingKey) < 0
	}) {
		return nil, ErrNotSorted
	}

	return &Index{ArchiveHash: archiveHash, BucketNum: bucket, Entries: entries}, nil
}

func parseEntry(b []byte) Entry {
	var e Entry
	copy(e.EncodingKey[:], b[0:9])
	e.Size = binary.BigEndian.Uint32(b[9:13])
	e.Offset = binary.BigEndian.Uint32(b[13:17])
	return e
}

func writeEntry(dst []byte, e Entry) []byte {
	dst = append(dst, e.EncodingKey[:]...)
	var buf [8]byte
	binary.BigEndian.PutUint32(buf[0:4], e.Size)
	binary.BigEndian.PutUint32(buf[4:8], e.Offset)
	return append(dst, buf[:]...)
}

// Build serializes the index's entries back into `.idx` wire form,
// preceded by a zeroed preamble of DefaultPreambleSize bytes.
func (idx *Index) Build() []byte {
	out := make([]byte, DefaultPreambleSize)
	for _, e := range idx.Entries {
		out = writeEntry(out, e)
	}
	return out
}

// Bucket returns the index's bucket number, satisfying BucketIndex.
func (idx *Index) Bucket() uint8 { return idx.BucketNum }

// Lookup returns the archive location for a truncated EncodingKey via
// binary search over the sorted entry table.
func (idx *Index) Lookup(tek keys.TruncatedEncodingKey) (Location, bool) {
	i := sort.Search(len(idx.Entries), func(i int) bool {
		return idx.Entries[i].EncodingKey.Compare(tek) >= 0
	})
	if i >= len(idx.Entries) || idx.Entries[i].EncodingKey != tek {
		return Location{}, false
	}
	e := idx.Entries[i]
	return Location{ArchiveHash: idx.ArchiveHash, Offset: uint64(e.Offset), Size: uint64(e.Size)}, true
}
