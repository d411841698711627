package tvfs

import (
	"fmt"

	"github.com/wowemulation-dev/cascette-go/jenkins96"
)

// PathEntry is one decoded path table record: a path string and its Jenkins96
// hash. Manifest.ResolvePath looks paths up by string, not by this hash.
type PathEntry struct {
	Path string
	Hash uint64
}

// pathHash hashes path directly (TVFS paths are case-sensitive and
// forward-slash delimited, unlike the root manifest's uppercased
// backslash-normalized form).
func pathHash(path string) uint64 {
	return jenkins96.Hash([]byte(path)).Hash64
}

// parsePathTable decodes size bytes of varint-length-prefixed path strings
// starting at the beginning of data.
func parsePathTable(data []byte, size uint64) ([]PathEntry, error) {
	var entries []PathEntry
	var read uint64

	for read < size {
		remaining := data[read:]
		length, n, err := readVarint(remaining)
		if err != nil {
			return nil, fmt.Errorf("path table: %w", err)
		}
		read += uint64(n)
		if length == 0 || read >= size {
			break
		}

		if read+uint64(length) > uint64(len(data)) {
			return nil, fmt.Errorf("%w: path string", ErrTruncated)
		}
		path := string(data[read : read+uint64(length)])
		read += uint64(length)

		entries = append(entries, PathEntry{Path: path, Hash: pathHash(path)})
	}

	return entries, nil
}

// buildPathTable encodes entries in the varint-length-prefixed path table
// format.
func buildPathTable(entries []PathEntry) []byte {
	var out []byte
	for _, e := range entries {
		out = appendVarint(out, uint32(len(e.Path)))
		out = append(out, e.Path...)
	}
	return out
}
