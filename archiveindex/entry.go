package archiveindex

import "github.com/wowemulation-dev/cascette-go/keys"

// Location is a fully resolved position within a CDN archive.
type Location struct {
	ArchiveHash string
	Offset      uint64
	Size        uint64
}

// Entry is one record of a per-archive `.idx` file: a truncated EncodingKey
// and its byte range within the archive the index belongs to.
type Entry struct {
	EncodingKey keys.TruncatedEncodingKey
	Offset      uint32
	Size        uint32
}

// entrySize is the wire size of one per-archive .idx entry:
// ekey9(9) + size_be(4) + offset_be(4).
const entrySize = 17

// GroupEntry is one record of a group `.index` file: a truncated
// EncodingKey plus which archive (by position in the index's archive
// table) owns the range.
type GroupEntry struct {
	EncodingKey  keys.TruncatedEncodingKey
	ArchiveIndex uint16
	Offset       uint32
	Size         uint32
}

// groupEntrySize is the wire size of one group .index entry:
// ekey9(9) + archive_index_be(2) + offset_be(4) + size_be(4).
const groupEntrySize = 19
