package zbsdiff

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyPatchMemorySimple(t *testing.T) {
	oldData := []byte("Hello, World!")
	newData := []byte("Hello, Rust!!")

	patch, err := BuildSimplePatch(oldData, newData)
	require.NoError(t, err)

	result, err := ApplyPatchMemory(oldData, patch)
	require.NoError(t, err)
	require.Equal(t, newData, result)
}

func TestApplyPatchMemoryEmptyToContent(t *testing.T) {
	oldData := []byte{}
	newData := []byte("New content!")

	patch, err := BuildSimplePatch(oldData, newData)
	require.NoError(t, err)

	result, err := ApplyPatchMemory(oldData, patch)
	require.NoError(t, err)
	require.Equal(t, newData, result)
}

func TestStreamingPatcherRoundTrip(t *testing.T) {
	oldData := bytes.Repeat([]byte{42}, 10000)
	newData := append([]byte{}, oldData...)
	newData[5000] = 100
	newData = append(newData, []byte(" Additional data")...)

	patch, err := BuildSimplePatch(oldData, newData)
	require.NoError(t, err)

	patcher := NewPatcher(bytes.NewReader(oldData), int64(len(oldData))).WithBufferSize(1024)
	result, err := patcher.ApplyPatch(patch)
	require.NoError(t, err)
	require.Equal(t, newData, result)
}

func TestHeaderParseFromPatch(t *testing.T) {
	oldData := []byte("test")
	newData := []byte("best!")

	patch, err := BuildSimplePatch(oldData, newData)
	require.NoError(t, err)

	header, err := ParseHeader(patch)
	require.NoError(t, err)
	require.Equal(t, int64(len(newData)), header.OutputSize)
}

func TestInsufficientPatchDataRejected(t *testing.T) {
	_, err := ParseHeader(make([]byte, 10))
	require.ErrorIs(t, err, ErrTruncated)
}

func TestCorruptSignatureRejected(t *testing.T) {
	oldData := []byte("hello")
	newData := []byte("world")

	patch, err := BuildSimplePatch(oldData, newData)
	require.NoError(t, err)

	corrupted := append([]byte{}, patch...)
	corrupted[0] = 0xFF
	_, err = ApplyPatchMemory(oldData, corrupted)
	require.ErrorIs(t, err, ErrInvalidMagic)
}

func TestTruncatedPatchRejected(t *testing.T) {
	oldData := []byte("hello")
	newData := []byte("world")

	patch, err := BuildSimplePatch(oldData, newData)
	require.NoError(t, err)

	truncated := patch[:len(patch)/2]
	_, err = ApplyPatchMemory(oldData, truncated)
	require.Error(t, err)
}

func TestReadOldChunkBeyondEOF(t *testing.T) {
	oldData := []byte("short")
	patcher := NewPatcher(bytes.NewReader(oldData), int64(len(oldData)))

	chunk, err := patcher.readOldChunk(3, 10)
	require.NoError(t, err)
	require.Equal(t, byte('r'), chunk[0])
	require.Equal(t, byte('t'), chunk[1])
	for _, b := range chunk[2:] {
		require.Equal(t, byte(0), b)
	}
}
