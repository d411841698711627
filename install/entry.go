package install

import (
	"encoding/binary"
	"fmt"
	"path"
	"strings"

	"github.com/ryanuber/go-glob"
	"github.com/wowemulation-dev/cascette-go/keys"
)

// Entry is one installable file: its path, content key, and decoded size.
type Entry struct {
	Path       string
	ContentKey keys.ContentKey
	FileSize   uint32
}

// Extension returns the entry's lowercase file extension, without the
// leading dot, or "" if it has none.
func (e Entry) Extension() string {
	ext := path.Ext(e.Path)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MatchesPattern reports whether the entry's path matches a case-insensitive
// glob pattern (supporting the `*` wildcard).
func (e Entry) MatchesPattern(pattern string) bool {
	return glob.Glob(strings.ToLower(pattern), strings.ToLower(e.Path))
}

func parseEntry(data []byte) (Entry, int, error) {
	name, n, err := readCString(data)
	if err != nil {
		return Entry{}, 0, fmt.Errorf("entry path: %w", err)
	}
	pos := n

	if len(data) < pos+16+4 {
		return Entry{}, 0, fmt.Errorf("%w: entry body", ErrTruncated)
	}
	var ck keys.ContentKey
	copy(ck[:], data[pos:pos+16])
	pos += 16
	size := binary.BigEndian.Uint32(data[pos : pos+4])
	pos += 4

	return Entry{Path: name, ContentKey: ck, FileSize: size}, pos, nil
}

func writeEntry(dst []byte, e Entry) []byte {
	dst = appendCString(dst, e.Path)
	dst = append(dst, e.ContentKey[:]...)
	var sizeBuf [4]byte
	binary.BigEndian.PutUint32(sizeBuf[:], e.FileSize)
	return append(dst, sizeBuf[:]...)
}
