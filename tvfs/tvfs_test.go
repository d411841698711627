package tvfs

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wowemulation-dev/cascette-go/keys"
)

func ekey(b byte) keys.EncodingKey {
	var k keys.EncodingKey
	for i := range k {
		k[i] = b
	}
	return k
}

func buildSample(t *testing.T) *Manifest {
	t.Helper()
	m := &Manifest{
		Header: Header{
			Version:        1,
			ESpecEntrySize: 1,
			MaxPathDepth:   4,
			Flags:          FlagESpecTable,
		},
		PathTable: []PathEntry{
			{Path: "world/model.m2"},
			{Path: "world/texture.blp"},
			{Path: "meta/deleted.txt"},
		},
		VFSTable: []VFSEntry{
			{Type: EntryFile, SpanOffset: 0, SpanCount: 1, PathIndex: 0},
			{Type: EntryInline, PathIndex: 1, FileOffset: 1000, FileSize: 42},
			{Type: EntryDeleted, PathIndex: 2},
		},
		CFTTable: []CFTEntry{
			{EncodingKey: ekey(0xAA), FileSize: 2048, ESpecIndex: 0, HasESpec: true},
		},
		ESpecTable: []string{"z"},
	}
	m.PathTable[0].Hash = pathHash(m.PathTable[0].Path)
	m.PathTable[1].Hash = pathHash(m.PathTable[1].Path)
	m.PathTable[2].Hash = pathHash(m.PathTable[2].Path)
	m.pathIndex = map[string]int{
		"world/model.m2":   0,
		"world/texture.blp": 1,
		"meta/deleted.txt":  2,
	}
	return m
}

func TestBuildParseRoundTrip(t *testing.T) {
	original := buildSample(t)
	data := original.Build()

	parsed, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, original.PathTable, parsed.PathTable)
	require.Equal(t, original.VFSTable, parsed.VFSTable)
	require.Equal(t, original.CFTTable, parsed.CFTTable)
	require.Equal(t, original.ESpecTable, parsed.ESpecTable)
}

func TestResolvePathFile(t *testing.T) {
	m := buildSample(t)
	data := m.Build()
	parsed, err := Parse(data)
	require.NoError(t, err)

	info, ok := parsed.ResolvePath("world/model.m2")
	require.True(t, ok)
	require.Equal(t, EntryFile, info.Type)
	require.Len(t, info.Spans, 1)
	require.Equal(t, ekey(0xAA), info.Spans[0].EncodingKey)
	require.Equal(t, uint64(2048), info.Spans[0].FileSize)
	require.True(t, info.Spans[0].HasESpec)
	require.Equal(t, "z", info.Spans[0].ESpec)
}

func TestResolvePathInline(t *testing.T) {
	m := buildSample(t)
	parsed, err := Parse(m.Build())
	require.NoError(t, err)

	info, ok := parsed.ResolvePath("world/texture.blp")
	require.True(t, ok)
	require.True(t, info.HasInlineData)
	require.Equal(t, uint64(1000), info.InlineOffset)
	require.Equal(t, uint32(42), info.InlineSize)
}

func TestResolvePathDeletedMiss(t *testing.T) {
	m := buildSample(t)
	parsed, err := Parse(m.Build())
	require.NoError(t, err)

	_, ok := parsed.ResolvePath("meta/deleted.txt")
	require.False(t, ok)
}

func TestResolvePathUnknownMiss(t *testing.T) {
	m := buildSample(t)
	parsed, err := Parse(m.Build())
	require.NoError(t, err)

	_, ok := parsed.ResolvePath("no/such/file")
	require.False(t, ok)
}

func TestListDirectory(t *testing.T) {
	m := buildSample(t)
	parsed, err := Parse(m.Build())
	require.NoError(t, err)

	entries := parsed.ListDirectory("world")
	require.Len(t, entries, 2)
	names := []string{entries[0].Name, entries[1].Name}
	require.Contains(t, names, "model.m2")
	require.Contains(t, names, "texture.blp")
}

func TestFileAndDeletedCounts(t *testing.T) {
	m := buildSample(t)
	parsed, err := Parse(m.Build())
	require.NoError(t, err)

	require.Equal(t, 2, parsed.FileCount())
	require.Equal(t, 1, parsed.DeletedCount())
	require.Equal(t, uint64(2048), parsed.TotalSize())
}

func TestInvalidMagicRejected(t *testing.T) {
	data := make([]byte, fixedHeaderSize)
	copy(data, "NOPE")
	_, _, err := ParseHeader(data)
	require.ErrorIs(t, err, ErrInvalidMagic)
}

func TestTruncatedHeaderRejected(t *testing.T) {
	_, _, err := ParseHeader(make([]byte, 5))
	require.ErrorIs(t, err, ErrTruncated)
}

func TestHeaderFlagAccessors(t *testing.T) {
	h := Header{Flags: FlagWriteSupport | FlagPatchReferences | FlagESpecTable}
	require.True(t, h.HasWriteSupport())
	require.True(t, h.HasPatchReferences())
	require.True(t, h.HasESpecTable())
}

func TestVarintRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 127, 128, 300, 1 << 20, 0xFFFFFFFF} {
		buf := appendVarint(nil, v)
		decoded, n, err := readVarint(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.Equal(t, v, decoded)
	}
}

func TestVarintTruncated(t *testing.T) {
	_, _, err := readVarint([]byte{0x80, 0x80})
	require.ErrorIs(t, err, ErrTruncated)
}

func TestBadPathIndexRejected(t *testing.T) {
	m := buildSample(t)
	m.VFSTable[0].PathIndex = 99
	_, err := Parse(m.Build())
	require.ErrorIs(t, err, ErrBadPathIndex)
}
