package jenkins96

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashLittleNonZero(t *testing.T) {
	h := HashLittle([]byte("test data"), 0)
	require.NotZero(t, h)
}

func TestHashLittle2NonZero(t *testing.T) {
	var pc, pb uint32
	HashLittle2([]byte("test data"), &pc, &pb)
	require.NotZero(t, pc)
	require.NotZero(t, pb)
}

func TestHashDeterministic(t *testing.T) {
	a := Hash([]byte("world/azeroth/file.blp"))
	b := Hash([]byte("world/azeroth/file.blp"))
	require.Equal(t, a, b)
}

func TestHashDiffersOnCase(t *testing.T) {
	lower := Hash([]byte("world/azeroth/file.blp"))
	upper := Hash([]byte("WORLD/AZEROTH/FILE.BLP"))
	require.NotEqual(t, lower, upper)
}

func TestHashLittleEmpty(t *testing.T) {
	h := HashLittle(nil, 0)
	require.Equal(t, uint32(0xdeadbeef), h)
}

func TestHashLittleLengthBoundaries(t *testing.T) {
	for n := 0; n <= 30; n++ {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i*7 + 3)
		}
		h1 := HashLittle(data, 0)
		h2 := HashLittle(data, 0)
		require.Equal(t, h1, h2, "length %d must hash deterministically", n)
	}
}

func TestHashStringFormat(t *testing.T) {
	h := Hash([]byte("abc"))
	s := h.String()
	require.Len(t, s, 25)
	require.Equal(t, byte(':'), s[16])
}
