package root

import (
	"encoding/binary"
	"fmt"

	"github.com/wowemulation-dev/cascette-go/keys"
)

// Record is one file entry within a Block: an absolute FileDataID (already
// delta-decoded), its ContentKey, and an optional name hash.
type Record struct {
	FileDataID keys.FileDataID
	ContentKey keys.ContentKey
	NameHash   uint64
	HasName    bool
}

// Block is a sequence of records sharing one locale/content flag pair.
type Block struct {
	ContentFlags ContentFlags
	LocaleFlags  LocaleFlags
	Records      []Record
}

// parseBlock reads one block from data at offset, returning the block and
// the number of bytes consumed. hasNamedFiles is the file-level named_files
// gate; a block's own ContentNoNameHash bit can additionally suppress name
// hashes even when the file has named files elsewhere.
func parseBlock(data []byte, hasNamedFiles bool) (Block, int, error) {
	if len(data) < 12 {
		return Block{}, 0, fmt.Errorf("%w: block header truncated", ErrTruncated)
	}
	numRecords := binary.LittleEndian.Uint32(data[0:4])
	contentFlags := ContentFlags(binary.LittleEndian.Uint32(data[4:8]))
	localeFlags := LocaleFlags(binary.LittleEndian.Uint32(data[8:12]))
	pos := 12

	withNames := hasNamedFiles && contentFlags&ContentNoNameHash == 0

	deltaEnd := pos + int(numRecords)*4
	if len(data) < deltaEnd {
		return Block{}, 0, fmt.Errorf("%w: block FDID table truncated", ErrTruncated)
	}
	deltas := make([]uint32, numRecords)
	for i := range deltas {
		deltas[i] = binary.LittleEndian.Uint32(data[pos+i*4 : pos+i*4+4])
	}
	pos = deltaEnd

	recordSize := 16
	if withNames {
		recordSize += 8
	}
	recordsEnd := pos + int(numRecords)*recordSize
	if len(data) < recordsEnd {
		return Block{}, 0, fmt.Errorf("%w: block record table truncated", ErrTruncated)
	}

	records := make([]Record, numRecords)
	var fdid uint32
	var prevAbsolute uint32
	for i := range records {
		if i == 0 {
			fdid = deltas[0]
		} else {
			// Each delta is the gap since the previous absolute FDID, minus
			// one, so consecutive IDs encode as delta 0.
			fdid = prevAbsolute + deltas[i] + 1
		}
		if i > 0 && fdid <= prevAbsolute {
			return Block{}, 0, fmt.Errorf("%w: FDID %d does not strictly increase after %d", ErrInvalidDelta, fdid, prevAbsolute)
		}
		prevAbsolute = fdid

		rec := data[pos : pos+recordSize]
		pos += recordSize

		var ck keys.ContentKey
		copy(ck[:], rec[0:16])

		r := Record{FileDataID: keys.FileDataID(fdid), ContentKey: ck}
		if withNames {
			r.NameHash = binary.LittleEndian.Uint64(rec[16:24])
			r.HasName = true
		}
		records[i] = r
	}

	return Block{ContentFlags: contentFlags, LocaleFlags: localeFlags, Records: records}, pos, nil
}

// writeBlock appends the wire encoding of b to dst. Records must already be
// sorted by ascending FileDataID; writeBlock delta-encodes them.
func writeBlock(dst []byte, b Block, hasNamedFiles bool) []byte {
	withNames := hasNamedFiles && b.ContentFlags&ContentNoNameHash == 0

	var header [12]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(len(b.Records)))
	binary.LittleEndian.PutUint32(header[4:8], uint32(b.ContentFlags))
	binary.LittleEndian.PutUint32(header[8:12], uint32(b.LocaleFlags))
	dst = append(dst, header[:]...)

	var prevAbsolute uint32
	for i, r := range b.Records {
		var delta uint32
		if i == 0 {
			delta = uint32(r.FileDataID)
		} else {
			delta = uint32(r.FileDataID) - prevAbsolute - 1
		}
		prevAbsolute = uint32(r.FileDataID)
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], delta)
		dst = append(dst, buf[:]...)
	}

	for _, r := range b.Records {
		dst = append(dst, r.ContentKey[:]...)
		if withNames {
			var nh [8]byte
			binary.LittleEndian.PutUint64(nh[:], r.NameHash)
			dst = append(dst, nh[:]...)
		}
	}

	return dst
}
