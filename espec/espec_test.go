package espec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func u32(n uint32) *uint32 { return &n }
func u8(n uint8) *uint8    { return &n }

func TestParseNone(t *testing.T) {
	spec, err := Parse("n")
	require.NoError(t, err)
	require.Equal(t, None{}, spec)
	require.Equal(t, "n", spec.String())
}

func TestParseZLibDefault(t *testing.T) {
	spec, err := Parse("z")
	require.NoError(t, err)
	require.Equal(t, ZLib{}, spec)
	require.Equal(t, "z", spec.String())
}

func TestParseZLibWithLevel(t *testing.T) {
	spec, err := Parse("z:9")
	require.NoError(t, err)
	z, ok := spec.(ZLib)
	require.True(t, ok)
	require.NotNil(t, z.Level)
	require.Equal(t, uint8(9), *z.Level)
	require.Nil(t, z.Bits)
	require.Equal(t, "z:9", spec.String())
}

func TestParseZLibWithLevelAndBits(t *testing.T) {
	spec, err := Parse("z:{9,15}")
	require.NoError(t, err)
	z := spec.(ZLib)
	require.Equal(t, uint8(9), *z.Level)
	require.Equal(t, ZLibBits{Bits: 15}, *z.Bits)
}

func TestParseZLibWithMPQ(t *testing.T) {
	spec, err := Parse("z:{9,mpq}")
	require.NoError(t, err)
	z := spec.(ZLib)
	require.Equal(t, ZLibBits{Named: "mpq"}, *z.Bits)
}

func TestParseEncryptedRoundTrip(t *testing.T) {
	spec, err := Parse("e:{0123456789abcdef,deadbeef,n}")
	require.NoError(t, err)
	e := spec.(Encrypted)
	require.Equal(t, "0123456789abcdef", e.KeyName)
	require.Equal(t, [4]byte{0xde, 0xad, 0xbe, 0xef}, e.IV)
	require.Equal(t, None{}, e.Inner)
	require.Equal(t, "e:{0123456789abcdef,deadbeef,n}", spec.String())
}

func TestParseBlockTableSimple(t *testing.T) {
	spec, err := Parse("b:n")
	require.NoError(t, err)
	bt := spec.(BlockTable)
	require.Len(t, bt.Chunks, 1)
	require.Equal(t, None{}, bt.Chunks[0].Spec)
	require.Nil(t, bt.Chunks[0].Size)
	require.Equal(t, "b:n", spec.String())
}

func TestParseBlockTableWithSizes(t *testing.T) {
	spec, err := Parse("b:{1M*3=z:9,*=n}")
	require.NoError(t, err)
	bt := spec.(BlockTable)
	require.Len(t, bt.Chunks, 2)

	first := bt.Chunks[0]
	require.NotNil(t, first.Size)
	require.Equal(t, uint64(1024*1024), first.Size.Bytes)
	require.Equal(t, uint32(3), *first.Size.Count)
	level9 := bt.Chunks[0].Spec.(ZLib)
	require.Equal(t, uint8(9), *level9.Level)

	second := bt.Chunks[1]
	require.Nil(t, second.Size)
	require.Equal(t, None{}, second.Spec)
}

func TestParseBCPack(t *testing.T) {
	spec, err := Parse("c:{4}")
	require.NoError(t, err)
	require.Equal(t, BCPack{BCN: 4}, spec)
	require.Equal(t, "c:{4}", spec.String())
}

func TestParseGDeflate(t *testing.T) {
	spec, err := Parse("g:{5}")
	require.NoError(t, err)
	require.Equal(t, GDeflate{Level: 5}, spec)
	require.Equal(t, "g:{5}", spec.String())
}

func TestIsCompressedDetection(t *testing.T) {
	require.False(t, IsCompressed(None{}))
	require.True(t, IsCompressed(ZLib{}))
	require.True(t, IsCompressed(BCPack{BCN: 4}))
	require.True(t, IsCompressed(GDeflate{Level: 5}))
}

func TestComplexBlockTable(t *testing.T) {
	spec, err := Parse("b:{256K=n,512K*2=z:6,*=z:9}")
	require.NoError(t, err)
	bt := spec.(BlockTable)

	want := BlockTable{
		Chunks: []BlockChunk{
			{Size: &BlockSize{Bytes: 256 * 1024}, Spec: None{}},
			{Size: &BlockSize{Bytes: 512 * 1024, Count: u32(2)}, Spec: ZLib{Level: u8(6)}},
			{Size: nil, Spec: ZLib{Level: u8(9)}},
		},
	}
	if diff := cmp.Diff(want, bt); diff != "" {
		t.Fatalf("parsed block table mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripFormats(t *testing.T) {
	cases := []string{
		"n",
		"z",
		"z:9",
		"z:{9,15}",
		"z:{9,mpq}",
		"c:{4}",
		"g:{5}",
		"b:n",
		"b:{256K=n,512K*2=z:6,*=z:9}",
		"e:{0123456789abcdef,deadbeef,n}",
	}
	for _, s := range cases {
		spec, err := Parse(s)
		require.NoError(t, err, s)
		require.Equal(t, s, spec.String(), s)
	}
}

func TestUnknownProductionRejected(t *testing.T) {
	_, err := Parse("q")
	require.Error(t, err)
}
