package indexmanager

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wowemulation-dev/cascette-go/archiveindex"
	"github.com/wowemulation-dev/cascette-go/keys"
)

func ekey(b byte) keys.EncodingKey {
	var k keys.EncodingKey
	k[0] = b
	return k
}

func writeIdxFile(t *testing.T, dir, name string, bucket uint8, eks []byte) string {
	t.Helper()

	var entries []archiveindex.Entry
	for _, b := range eks {
		entries = append(entries, archiveindex.Entry{
			EncodingKey: ekey(b).Truncate(),
			Offset:      uint32(b) * 100,
			Size:        1024,
		})
	}
	// ParseIdx requires entries sorted ascending; sort keys by b before
	// building since Truncate keeps byte 0 intact.
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if entries[j].EncodingKey.Compare(entries[i].EncodingKey) < 0 {
				entries[i], entries[j] = entries[j], entries[i]
			}
		}
	}

	idx := &archiveindex.Index{ArchiveHash: name, BucketNum: bucket, Entries: entries}
	path := filepath.Join(dir, name+".idx")
	require.NoError(t, os.WriteFile(path, idx.Build(), 0o644))
	return path
}

func TestManagerLoadDirAndLookup(t *testing.T) {
	dir := t.TempDir()
	writeIdxFile(t, dir, "00", 0, []byte{0x00, 0x10})
	writeIdxFile(t, dir, "01", 1, []byte{0x11, 0x21})

	m := New(dir, Config{})
	require.NoError(t, m.LoadDir(context.Background()))

	loc, ok := m.Lookup(ekey(0x10))
	require.True(t, ok)
	assert.Equal(t, "00", loc.ArchiveHash)

	loc, ok = m.Lookup(ekey(0x21))
	require.True(t, ok)
	assert.Equal(t, "01", loc.ArchiveHash)

	_, ok = m.Lookup(ekey(0xff))
	assert.False(t, ok)
}

func TestManagerLoadDirSkipsAlreadyLoaded(t *testing.T) {
	dir := t.TempDir()
	writeIdxFile(t, dir, "00", 0, []byte{0x05})

	m := New(dir, Config{})
	require.NoError(t, m.LoadDir(context.Background()))
	require.NoError(t, m.LoadDir(context.Background()))

	assert.Len(t, m.loaded, 1)
}

func TestManagerLoadDirRejectsUnknownBucketFilename(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "archive.idx"), []byte{}, 0o644))

	m := New(dir, Config{})
	err := m.LoadDir(context.Background())
	assert.ErrorIs(t, err, ErrNoBucket)
}

func TestManagerStartBackgroundRefreshPicksUpNewFile(t *testing.T) {
	dir := t.TempDir()
	writeIdxFile(t, dir, "00", 0, []byte{0x01})

	m := New(dir, Config{RefreshInterval: 20 * time.Millisecond})
	require.NoError(t, m.Start(context.Background()))
	defer m.Close()

	_, ok := m.Lookup(ekey(0x02))
	assert.False(t, ok)

	writeIdxFile(t, dir, "01", 1, []byte{0x12})

	require.Eventually(t, func() bool {
		_, ok := m.Lookup(ekey(0x12))
		return ok
	}, 500*time.Millisecond, 10*time.Millisecond)
}

func TestManagerCloseStopsRefreshTask(t *testing.T) {
	dir := t.TempDir()
	m := New(dir, Config{RefreshInterval: 10 * time.Millisecond})
	require.NoError(t, m.Start(context.Background()))

	require.NoError(t, m.Close())
	require.NoError(t, m.Close()) // idempotent
}

func TestManagerGroupIndexWithoutArchiveTableIsSkipped(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "02.index"), []byte{}, 0o644))

	m := New(dir, Config{})
	require.NoError(t, m.LoadDir(context.Background()))

	_, ok := m.Lookup(ekey(0x20))
	assert.False(t, ok)
}
