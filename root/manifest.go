package root

import (
	"strings"

	"github.com/wowemulation-dev/cascette-go/jenkins96"
	"github.com/wowemulation-dev/cascette-go/keys"
)

// Entry is a resolved candidate: one record together with the block it came
// from, kept for stable tie-breaking (earlier blocks win ties).
type Entry struct {
	BlockIndex   int
	ContentKey   keys.ContentKey
	LocaleFlags  LocaleFlags
	ContentFlags ContentFlags
}

// File is a fully parsed root manifest: its header, blocks in file order,
// and lookup tables built from them.
type File struct {
	Header Header
	Blocks []Block

	byFDID     map[keys.FileDataID][]Entry
	byNameHash map[uint64][]Entry
	byPathHash map[uint64][]Entry
}

// Parse decodes a complete root manifest from data.
//
// Blocks are read until the input is exhausted. A block that fails to parse
// after at least one block has already been read is tolerated and parsing
// stops there, matching client behavior that treats trailing garbage as
// end-of-file rather than a hard error; a failure on the very first block is
// still reported.
func Parse(data []byte) (*File, error) {
	header, headerLen, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	pos := headerLen

	hasNamedFiles := header.Version == V1 || header.NamedFiles > 0 ||
		(header.Version == V4 && header.Flags&FilesNotAllNamed != 0)

	f := &File{
		Header:     header,
		byFDID:     make(map[keys.FileDataID][]Entry),
		byNameHash: make(map[uint64][]Entry),
		byPathHash: make(map[uint64][]Entry),
	}

	for pos < len(data) {
		block, n, err := parseBlock(data[pos:], hasNamedFiles)
		if err != nil {
			if len(f.Blocks) == 0 {
				return nil, err
			}
			break
		}
		pos += n
		f.addBlock(block)
	}

	return f, nil
}

func (f *File) addBlock(b Block) {
	idx := len(f.Blocks)
	f.Blocks = append(f.Blocks, b)
	for _, r := range b.Records {
		e := Entry{BlockIndex: idx, ContentKey: r.ContentKey, LocaleFlags: b.LocaleFlags, ContentFlags: b.ContentFlags}
		f.byFDID[r.FileDataID] = append(f.byFDID[r.FileDataID], e)
		if r.HasName {
			f.byNameHash[r.NameHash] = append(f.byNameHash[r.NameHash], e)
		}
	}
}

// IndexPath registers path for hash-based lookup against fileDataID,
// allowing ResolveByPath to work without the manifest itself carrying name
// hashes (the FDID<->path association is known from the install/download
// manifests or an external listfile, not from root alone).
func (f *File) IndexPath(path string, fileDataID keys.FileDataID) {
	entries := f.byFDID[fileDataID]
	if len(entries) == 0 {
		return
	}
	h := pathHash(path)
	f.byPathHash[h] = append(f.byPathHash[h], entries...)
}

func pathHash(path string) uint64 {
	normalized := strings.ToUpper(strings.ReplaceAll(path, "/", "\\"))
	return jenkins96.Hash([]byte(normalized)).Hash64
}

// resolve returns the first candidate among entries whose locale flags
// intersect want and whose content flags satisfy need, in block order.
func resolve(entries []Entry, locale LocaleFlags, need ContentFlags) (Entry, bool) {
	for _, e := range entries {
		if !e.LocaleFlags.Intersects(locale) {
			continue
		}
		if !e.ContentFlags.Satisfies(need) {
			continue
		}
		return e, true
	}
	return Entry{}, false
}

// ResolveByID returns the ContentKey for fileDataID under locale, requiring
// every bit of need to be present in the matching record's content flags.
func (f *File) ResolveByID(fileDataID keys.FileDataID, locale LocaleFlags, need ContentFlags) (keys.ContentKey, bool) {
	e, ok := resolve(f.byFDID[fileDataID], locale, need)
	return e.ContentKey, ok
}

// ResolveByNameHash returns the ContentKey for a Jenkins96 64-bit name hash
// as stored directly in the manifest's records.
func (f *File) ResolveByNameHash(nameHash uint64, locale LocaleFlags, need ContentFlags) (keys.ContentKey, bool) {
	e, ok := resolve(f.byNameHash[nameHash], locale, need)
	return e.ContentKey, ok
}

// ResolveByPath returns the ContentKey for path, which must previously have
// been registered with IndexPath.
func (f *File) ResolveByPath(path string, locale LocaleFlags, need ContentFlags) (keys.ContentKey, bool) {
	e, ok := resolve(f.byPathHash[pathHash(path)], locale, need)
	return e.ContentKey, ok
}

// FileDataIDs returns every FileDataID present in the manifest, unordered.
func (f *File) FileDataIDs() []keys.FileDataID {
	out := make([]keys.FileDataID, 0, len(f.byFDID))
	for id := range f.byFDID {
		out = append(out, id)
	}
	return out
}

// Build serializes the manifest back to its wire form. Blocks are written
// in their current order; each block's records must already be sorted by
// ascending FileDataID.
func (f *File) Build() []byte {
	hasNamedFiles := f.Header.Version == V1 || f.Header.NamedFiles > 0 ||
		(f.Header.Version == V4 && f.Header.Flags&FilesNotAllNamed != 0)

	out := WriteHeader(nil, f.Header)
	for _, b := range f.Blocks {
		out = writeBlock(out, b, hasNamedFiles)
	}
	return out
}
