package tvfs

import (
	"fmt"
	"strings"

	"github.com/wowemulation-dev/cascette-go/keys"
)

// FileSpan is one container file table span backing a regular file.
type FileSpan struct {
	EncodingKey keys.EncodingKey
	FileSize    uint64
	ESpec       string
	HasESpec    bool
}

// FileInfo is the resolved result of looking up a path: either a sequence of
// spans (EntryFile) or an inline data location (EntryInline).
type FileInfo struct {
	Path           string
	Type           EntryType
	Spans          []FileSpan
	InlineOffset   uint64
	InlineSize     uint32
	HasInlineData  bool
}

// DirEntry is one child of a directory listing.
type DirEntry struct {
	Name string
	Path string
	Size uint64
}

// Manifest is a fully parsed TVFS virtual file system manifest.
type Manifest struct {
	Header     Header
	PathTable  []PathEntry
	VFSTable   []VFSEntry
	CFTTable   []CFTEntry
	ESpecTable []string

	pathIndex map[string]int
}

// Parse decodes a complete TVFS manifest from data.
func Parse(data []byte) (*Manifest, error) {
	header, _, err := ParseHeader(data)
	if err != nil {
		return nil, fmt.Errorf("tvfs: header: %w", err)
	}

	pathTable, err := sliceTable(data, header.PathTableOffset, header.PathTableSize, func(b []byte, size uint64) ([]PathEntry, error) {
		return parsePathTable(b, size)
	})
	if err != nil {
		return nil, fmt.Errorf("tvfs: path table: %w", err)
	}

	vfsTable, err := sliceTable(data, header.VFSTableOffset, header.VFSTableSize, func(b []byte, size uint64) ([]VFSEntry, error) {
		return parseVFSTable(b, size)
	})
	if err != nil {
		return nil, fmt.Errorf("tvfs: vfs table: %w", err)
	}

	cftTable, err := sliceTable(data, header.CFTTableOffset, header.CFTTableSize, func(b []byte, size uint64) ([]CFTEntry, error) {
		return parseCFTTable(b, size, header.ESpecEntrySize)
	})
	if err != nil {
		return nil, fmt.Errorf("tvfs: cft table: %w", err)
	}

	var especTable []string
	if header.HasESpecTable() {
		especTable, err = sliceTable(data, header.ESpecTableOffset, header.ESpecTableSize, parseESpecTable)
		if err != nil {
			return nil, fmt.Errorf("tvfs: espec table: %w", err)
		}
	}

	m := &Manifest{
		Header:     header,
		PathTable:  pathTable,
		VFSTable:   vfsTable,
		CFTTable:   cftTable,
		ESpecTable: especTable,
		pathIndex:  make(map[string]int, len(vfsTable)),
	}

	for idx, entry := range vfsTable {
		if int(entry.PathIndex) >= len(pathTable) {
			return nil, fmt.Errorf("%w: vfs entry %d references path %d of %d", ErrBadPathIndex, idx, entry.PathIndex, len(pathTable))
		}
		m.pathIndex[pathTable[entry.PathIndex].Path] = idx
	}

	return m, nil
}

func sliceTable[T any](data []byte, offset, size uint64, parse func([]byte, uint64) ([]T, error)) ([]T, error) {
	if offset > uint64(len(data)) {
		return nil, fmt.Errorf("%w: table offset %d beyond %d bytes", ErrTruncated, offset, len(data))
	}
	return parse(data[offset:], size)
}

func parseESpecTable(data []byte, size uint64) ([]string, error) {
	var entries []string
	var read uint64

	for read < size {
		length, n, err := readVarint(data[read:])
		if err != nil {
			return nil, fmt.Errorf("espec table: %w", err)
		}
		read += uint64(n)
		if length == 0 || read >= size {
			break
		}
		if read+uint64(length) > uint64(len(data)) {
			return nil, fmt.Errorf("%w: espec string", ErrTruncated)
		}
		entries = append(entries, string(data[read:read+uint64(length)]))
		read += uint64(length)
	}

	return entries, nil
}

// ResolvePath resolves path to its file information, or reports false if no
// VFS entry maps to that path.
func (m *Manifest) ResolvePath(path string) (FileInfo, bool) {
	idx, ok := m.pathIndex[path]
	if !ok {
		return FileInfo{}, false
	}
	entry := m.VFSTable[idx]

	switch entry.Type {
	case EntryFile:
		spans := make([]FileSpan, 0, entry.SpanCount)
		for i := uint32(0); i < entry.SpanCount; i++ {
			cftIndex := int(entry.SpanOffset + i)
			if cftIndex >= len(m.CFTTable) {
				break
			}
			cft := m.CFTTable[cftIndex]
			span := FileSpan{EncodingKey: cft.EncodingKey, FileSize: cft.FileSize}
			if cft.HasESpec && int(cft.ESpecIndex) < len(m.ESpecTable) {
				span.ESpec = m.ESpecTable[cft.ESpecIndex]
				span.HasESpec = true
			}
			spans = append(spans, span)
		}
		return FileInfo{Path: path, Type: EntryFile, Spans: spans}, true
	case EntryInline:
		return FileInfo{
			Path:          path,
			Type:          EntryInline,
			InlineOffset:  entry.FileOffset,
			InlineSize:    entry.FileSize,
			HasInlineData: true,
		}, true
	default:
		return FileInfo{}, false
	}
}

// ListDirectory returns the direct children of dirPath (non-recursive).
func (m *Manifest) ListDirectory(dirPath string) []DirEntry {
	prefix := dirPath
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var entries []DirEntry
	for _, pe := range m.PathTable {
		if !strings.HasPrefix(pe.Path, prefix) {
			continue
		}
		rel := pe.Path[len(prefix):]
		if rel == "" || strings.Contains(rel, "/") {
			continue
		}
		entries = append(entries, DirEntry{Name: rel, Path: pe.Path, Size: m.fileSize(pe.Path)})
	}
	return entries
}

func (m *Manifest) fileSize(path string) uint64 {
	idx, ok := m.pathIndex[path]
	if !ok {
		return 0
	}
	entry := m.VFSTable[idx]
	if entry.Type != EntryFile {
		return 0
	}
	var total uint64
	for i := uint32(0); i < entry.SpanCount; i++ {
		cftIndex := int(entry.SpanOffset + i)
		if cftIndex >= len(m.CFTTable) {
			break
		}
		total += m.CFTTable[cftIndex].FileSize
	}
	return total
}

// FileCount returns the number of regular and inline file entries.
func (m *Manifest) FileCount() int {
	n := 0
	for _, e := range m.VFSTable {
		if e.Type == EntryFile || e.Type == EntryInline {
			n++
		}
	}
	return n
}

// DeletedCount returns the number of tombstoned entries.
func (m *Manifest) DeletedCount() int {
	n := 0
	for _, e := range m.VFSTable {
		if e.Type == EntryDeleted {
			n++
		}
	}
	return n
}

// TotalSize sums every container file table span's size.
func (m *Manifest) TotalSize() uint64 {
	var total uint64
	for _, e := range m.CFTTable {
		total += e.FileSize
	}
	return total
}

// Build serializes the manifest back to its on-disk byte layout, tables
// packed in path/vfs/cft/espec order immediately after the header.
func (m *Manifest) Build() []byte {
	pathBytes := buildPathTable(m.PathTable)
	vfsBytes := buildVFSTable(m.VFSTable)
	cftBytes := buildCFTTable(m.CFTTable, m.Header.ESpecEntrySize)

	headerSize := fixedHeaderSize
	if m.Header.HasESpecTable() {
		headerSize += 10
	}

	header := m.Header
	header.PathTableOffset = uint64(headerSize)
	header.PathTableSize = uint64(len(pathBytes))
	header.VFSTableOffset = header.PathTableOffset + header.PathTableSize
	header.VFSTableSize = uint64(len(vfsBytes))
	header.CFTTableOffset = header.VFSTableOffset + header.VFSTableSize
	header.CFTTableSize = uint64(len(cftBytes))

	var especBytes []byte
	if header.HasESpecTable() {
		especBytes = buildESpecTable(m.ESpecTable)
		header.ESpecTableOffset = header.CFTTableOffset + header.CFTTableSize
		header.ESpecTableSize = uint64(len(especBytes))
	}

	out := WriteHeader(nil, header)
	out = append(out, pathBytes...)
	out = append(out, vfsBytes...)
	out = append(out, cftBytes...)
	out = append(out, especBytes...)
	return out
}

func buildESpecTable(entries []string) []byte {
	var out []byte
	for _, s := range entries {
		out = appendVarint(out, uint32(len(s)))
		out = append(out, s...)
	}
	return out
}
