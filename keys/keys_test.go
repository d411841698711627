package keys

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContentKeyParseRoundTrip(t *testing.T) {
	const hexKey = "0123456789abcdef0123456789abcdef"[:32]
	ck, err := ParseContentKey(hexKey)
	require.NoError(t, err)
	require.Equal(t, hexKey, ck.String())
}

func TestParseBadLength(t *testing.T) {
	_, err := ParseContentKey("deadbeef")
	require.Error(t, err)
	var badLen *ErrBadHexLength
	require.ErrorAs(t, err, &badLen)
}

func TestEncodingKeyTruncate(t *testing.T) {
	var ek EncodingKey
	for i := range ek {
		ek[i] = byte(i)
	}
	trunc := ek.Truncate()
	require.Len(t, trunc, 9)
	require.Equal(t, ek[:9], trunc[:])
}

func TestKeyOrdering(t *testing.T) {
	a := ContentKey{0x01}
	b := ContentKey{0x02}
	require.Equal(t, -1, a.Compare(b))
	require.Equal(t, 1, b.Compare(a))
	require.Equal(t, 0, a.Compare(a))
}

func TestIsZero(t *testing.T) {
	var ck ContentKey
	require.True(t, ck.IsZero())
	ck[0] = 1
	require.False(t, ck.IsZero())
}
