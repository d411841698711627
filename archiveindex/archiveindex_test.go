package archiveindex

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wowemulation-dev/cascette-go/keys"
)

func tek(b byte) keys.TruncatedEncodingKey {
	var k keys.TruncatedEncodingKey
	k[0] = b
	return k
}

func ek(b byte) keys.EncodingKey {
	var k keys.EncodingKey
	k[0] = b
	return k
}

func buildIdxData(t *testing.T, entries []Entry) []byte {
	t.Helper()
	idx := &Index{Entries: entries}
	return idx.Build()
}

func TestParseIdxLookup(t *testing.T) {
	entries := []Entry{
		{EncodingKey: tek(0x01), Offset: 100, Size: 50},
		{EncodingKey: tek(0x02), Offset: 200, Size: 75},
	}
	data := buildIdxData(t, entries)

	idx, err := ParseIdx(data, "archivehash1", 1)
	require.NoError(t, err)
	require.Equal(t, uint8(1), idx.Bucket())

	loc, ok := idx.Lookup(tek(0x01))
	require.True(t, ok)
	require.Equal(t, Location{ArchiveHash: "archivehash1", Offset: 100, Size: 50}, loc)

	_, ok = idx.Lookup(tek(0xFF))
	require.False(t, ok)
}

func TestParseIdxBucketOutOfRange(t *testing.T) {
	data := buildIdxData(t, nil)
	_, err := ParseIdx(data, "h", 16)
	require.ErrorIs(t, err, ErrBucketOutOfRange)
}

func TestParseIdxNotSortedRejected(t *testing.T) {
	entries := []Entry{
		{EncodingKey: tek(0x02), Offset: 1, Size: 1},
		{EncodingKey: tek(0x01), Offset: 2, Size: 2},
	}
	data := buildIdxData(t, entries)
	_, err := ParseIdx(data, "h", 0)
	require.ErrorIs(t, err, ErrNotSorted)
}

func TestIdxBuildRoundTrip(t *testing.T) {
	entries := []Entry{
		{EncodingKey: tek(0x01), Offset: 10, Size: 20},
	}
	data := buildIdxData(t, entries)
	idx, err := ParseIdx(data, "h", 0)
	require.NoError(t, err)
	require.Equal(t, data, idx.Build())
}

func TestBucketFromFilename(t *testing.T) {
	b, ok := BucketFromFilename("0a.idx")
	require.True(t, ok)
	require.Equal(t, uint8(0x0a), b)

	b, ok = BucketFromFilename("/data/0f.index")
	require.True(t, ok)
	require.Equal(t, uint8(0x0f), b)

	_, ok = BucketFromFilename("bogus")
	require.False(t, ok)
}

func TestParseGroupIndexLookup(t *testing.T) {
	gi := &GroupIndex{
		Archives: []string{"archA", "archB"},
		Entries: []GroupEntry{
			{EncodingKey: tek(0x01), ArchiveIndex: 0, Offset: 10, Size: 20},
			{EncodingKey: tek(0x02), ArchiveIndex: 1, Offset: 30, Size: 40},
		},
	}
	data := gi.Build()

	parsed, err := ParseGroupIndex(data, []string{"archA", "archB"}, 3)
	require.NoError(t, err)

	loc, ok := parsed.Lookup(tek(0x02))
	require.True(t, ok)
	require.Equal(t, Location{ArchiveHash: "archB", Offset: 30, Size: 40}, loc)
}

func TestParseGroupIndexUnknownArchive(t *testing.T) {
	gi := &GroupIndex{
		Entries: []GroupEntry{
			{EncodingKey: tek(0x01), ArchiveIndex: 5, Offset: 0, Size: 0},
		},
	}
	data := gi.Build()
	_, err := ParseGroupIndex(data, []string{"onlyOne"}, 0)
	require.ErrorIs(t, err, ErrUnknownArchiveIndex)
}

func TestResolverDispatchAndFallback(t *testing.T) {
	r := NewResolver(10)

	idxA := &Index{ArchiveHash: "archA", BucketNum: Bucket(ek(0x01)), Entries: []Entry{
		{EncodingKey: ek(0x01).Truncate(), Offset: 1, Size: 2},
	}}
	r.AddIndex(idxA)

	loc, ok := r.Lookup(ek(0x01))
	require.True(t, ok)
	require.Equal(t, "archA", loc.ArchiveHash)

	_, ok = r.Lookup(ek(0x99))
	require.False(t, ok)
}

func TestResolverFallbackAcrossBuckets(t *testing.T) {
	r := NewResolver(0)

	key := ek(0x42)
	wrongBucket := (Bucket(key) + 1) % NumBuckets

	// Registered under the wrong bucket number, still found via fallback
	// linear scan across all buckets.
	idx := &Index{ArchiveHash: "archZ", BucketNum: wrongBucket, Entries: []Entry{
		{EncodingKey: key.Truncate(), Offset: 5, Size: 6},
	}}
	r.AddIndex(idx)

	loc, ok := r.Lookup(key)
	require.True(t, ok)
	require.Equal(t, "archZ", loc.ArchiveHash)
}

func TestResolverLRUEviction(t *testing.T) {
	r := NewResolver(1)

	idx := &Index{ArchiveHash: "arch", Entries: []Entry{
		{EncodingKey: ek(0x01).Truncate(), Offset: 1, Size: 1},
		{EncodingKey: ek(0x02).Truncate(), Offset: 2, Size: 2},
	}}
	idx.BucketNum = Bucket(ek(0x01))
	r.AddIndex(idx)
	idx2 := &Index{ArchiveHash: "arch", BucketNum: Bucket(ek(0x02)), Entries: idx.Entries}
	r.AddIndex(idx2)

	_, ok := r.Lookup(ek(0x01))
	require.True(t, ok)
	require.Equal(t, 1, r.cache.Len())

	_, ok = r.Lookup(ek(0x02))
	require.True(t, ok)
	require.Equal(t, 1, r.cache.Len())
	require.Nil(t, r.cache.Get(ek(0x01)))
}
