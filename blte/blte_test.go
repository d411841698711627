package blte

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSingleChunkNoneRoundTrip(t *testing.T) {
	plaintext := []byte("Hello, BLTE!")
	f, err := NewBuilder(ModeNone).Build(plaintext)
	require.NoError(t, err)

	encoded := Build(f)
	wantPrefix := []byte{0x42, 0x4C, 0x54, 0x45, 0x00, 0x00, 0x00, 0x00, 0x4E}
	require.True(t, bytes.HasPrefix(encoded, wantPrefix))
	require.Equal(t, append(wantPrefix, plaintext...), encoded)

	parsed, n, err := Parse(encoded)
	require.NoError(t, err)
	require.Equal(t, len(encoded), n)

	out, err := parsed.Decompress()
	require.NoError(t, err)
	require.Equal(t, plaintext, out)
}

func TestMultiChunkZlibRoundTrip(t *testing.T) {
	plaintext := bytes.Repeat([]byte{'A'}, 1024)
	b, err := NewBuilder(ModeZlib).WithChunkSize(512)
	require.NoError(t, err)
	f, err := b.Build(plaintext)
	require.NoError(t, err)

	require.True(t, f.Header.Extended)
	require.Equal(t, uint32(2), f.Header.ChunkCount)
	require.Equal(t, uint32(60), f.Header.HeaderSize())
	require.Equal(t, uint8(0x0F), f.Header.Flags)
	for _, c := range f.Header.Chunks {
		require.Equal(t, uint32(512), c.DecompressedSize)
	}

	encoded := Build(f)
	parsed, n, err := Parse(encoded)
	require.NoError(t, err)
	require.Equal(t, len(encoded), n)

	out, err := parsed.Decompress()
	require.NoError(t, err)
	require.Equal(t, plaintext, out)
}

func TestLZ4RoundTrip(t *testing.T) {
	plaintext := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 200)
	f, err := NewBuilder(ModeLZ4).Build(plaintext)
	require.NoError(t, err)
	encoded := Build(f)

	parsed, _, err := Parse(encoded)
	require.NoError(t, err)
	out, err := parsed.Decompress()
	require.NoError(t, err)
	require.Equal(t, plaintext, out)
}

func TestInvalidMagicRejected(t *testing.T) {
	_, _, err := Parse([]byte("NOPE0000"))
	require.ErrorIs(t, err, ErrInvalidMagic)
}

func TestTruncatedHeaderRejected(t *testing.T) {
	_, _, err := Parse([]byte("BLT"))
	require.ErrorIs(t, err, ErrTruncated)
}

func TestCorruptChunkChecksumRejected(t *testing.T) {
	plaintext := bytes.Repeat([]byte{'A'}, 1024)
	f, err := NewBuilder(ModeZlib).WithChunkSize(512)
	require.NoError(t, err)
	built, err := f.Build(plaintext)
	require.NoError(t, err)

	built.Header.Chunks[0].Checksum[0] ^= 0xFF

	var corrupt *CorruptChunkError
	_, err = built.Decompress()
	require.ErrorAs(t, err, &corrupt)
	require.Equal(t, 0, corrupt.Index)
}

func TestSingleChunkEncryptedRejected(t *testing.T) {
	chunk := Chunk{Mode: ModeEncrypted, Payload: []byte{0x08, 1, 2, 3, 4, 5, 6, 7, 8}}
	f := File{Header: SingleChunkHeader(), Chunks: []Chunk{chunk}}

	_, err := f.DecompressWithKeys(MapKeyStore{})
	require.ErrorIs(t, err, ErrSingleChunkEncrypted)
}

func TestEncryptedChunkRoundTrip(t *testing.T) {
	plaintext := []byte("the quick brown fox")
	keyName := []byte{0x12, 0x34, 0x56, 0x78, 0x90, 0xAB, 0xCD, 0xEF}
	iv := []byte{0x11, 0x22, 0x33, 0x44}
	var key [16]byte
	for i := range key {
		key[i] = byte(i)
	}

	chunk, err := EncryptChunk(plaintext, ModeNone, keyName, iv, CipherSalsa20, key, 0)
	require.NoError(t, err)

	info := ChunkInfo{
		CompressedSize:   uint32(len(chunk.Payload) + 1),
		DecompressedSize: uint32(len(plaintext)),
		Checksum:         checksum(plaintext),
	}
	f := File{
		Header: Header{Flags: 0x0F, ChunkCount: 1, Chunks: []ChunkInfo{info}, Extended: true},
		Chunks: []Chunk{chunk},
	}

	keys := MapKeyStore{KeyNameFromBytes(keyName): key}
	out, err := f.DecompressWithKeys(keys)
	require.NoError(t, err)
	require.Equal(t, plaintext, out)
}

func TestEncryptedChunkMissingKey(t *testing.T) {
	plaintext := []byte("secret")
	keyName := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	var key [16]byte
	chunk, err := EncryptChunk(plaintext, ModeNone, keyName, []byte{1, 2, 3, 4}, CipherARC4, key, 0)
	require.NoError(t, err)

	info := ChunkInfo{CompressedSize: uint32(len(chunk.Payload) + 1), DecompressedSize: uint32(len(plaintext)), Checksum: checksum(plaintext)}
	f := File{Header: Header{Flags: 0x0F, ChunkCount: 1, Chunks: []ChunkInfo{info}, Extended: true}, Chunks: []Chunk{chunk}}

	_, err = f.DecompressWithKeys(MapKeyStore{})
	require.ErrorIs(t, err, ErrMissingKey)
}

func TestInvalidChunkSizeRejected(t *testing.T) {
	_, err := NewBuilder(ModeNone).WithChunkSize(10)
	require.ErrorIs(t, err, ErrInvalidChunkSize)

	_, err = NewBuilder(ModeNone).WithChunkSize(32 * 1024 * 1024)
	require.ErrorIs(t, err, ErrInvalidChunkSize)
}
