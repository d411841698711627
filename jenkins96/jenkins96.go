// Package jenkins96 implements Bob Jenkins' lookup3.c "hashlittle" family,
// used by CASC archive indices for path hashing and legacy .idx v1/v2 block
// validation.
package jenkins96

import "fmt"

// Hash96 bundles the dual 32-bit output of HashLittle2 into the 64+32 bit
// value CASC root and archive index lookups key on.
type Hash96 struct {
	Hash64 uint64
	Hash32 uint32
}

// Hash computes the Jenkins96 hash of data: pc becomes the high 32 bits of
// Hash64 and is duplicated as Hash32, pb becomes the low 32 bits.
func Hash(data []byte) Hash96 {
	var pc, pb uint32
	HashLittle2(data, &pc, &pb)
	return Hash96{
		Hash64: uint64(pc)<<32 | uint64(pb),
		Hash32: pc,
	}
}

func (h Hash96) String() string {
	return fmt.Sprintf("%016x:%08x", h.Hash64, h.Hash32)
}

// HashLittle computes a single 32-bit Jenkins hash, matching lookup3.c's
// hashlittle(). Used for legacy .idx v1/v2 guarded-block validation.
func HashLittle(data []byte, initval uint32) uint32 {
	a := 0xdeadbeef + uint32(len(data)) + initval
	b := a
	c := a
	k := data

	if len(k) == 0 {
		return c
	}

	for len(k) > 12 {
		a += le32(k[0:4])
		b += le32(k[4:8])
		c += le32(k[8:12])
		a, b, c = mix(a, b, c)
		k = k[12:]
	}

	a, b, c = tail(k, a, b, c)
	if len(k) == 0 {
		return c
	}
	_, _, c = finalMix(a, b, c)
	return c
}

// HashLittle2 computes a dual 32-bit Jenkins hash, matching lookup3.c's
// hashlittle2(). pc and pb carry optional seed values in and the two hash
// halves out.
func HashLittle2(key []byte, pc, pb *uint32) {
	a := 0xdeadbeef + uint32(len(key)) + *pc
	b := a
	c := a + *pb
	k := key

	if len(k) == 0 {
		*pc = c
		*pb = b
		return
	}

	for len(k) > 12 {
		a += le32(k[0:4])
		b += le32(k[4:8])
		c += le32(k[8:12])
		a, b, c = mix(a, b, c)
		k = k[12:]
	}

	a, b, c = tail(k, a, b, c)
	if len(k) == 0 {
		*pc = c
		*pb = b
		return
	}
	a, b, c = finalMix(a, b, c)
	*pc = c
	*pb = b
}

func le32(b []byte) uint32 {
	_ = b[3]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// tail folds the trailing 1-12 byte remainder into a, b, c. It does not
// modify k; callers return early on an empty key before reaching it.
func tail(k []byte, a, b, c uint32) (uint32, uint32, uint32) {
	n := len(k)
	if n >= 12 {
		c += uint32(k[11]) << 24
	}
	if n >= 11 {
		c += uint32(k[10]) << 16
	}
	if n >= 10 {
		c += uint32(k[9]) << 8
	}
	if n >= 9 {
		c += uint32(k[8])
	}
	if n >= 8 {
		b += uint32(k[7]) << 24
	}
	if n >= 7 {
		b += uint32(k[6]) << 16
	}
	if n >= 6 {
		b += uint32(k[5]) << 8
	}
	if n >= 5 {
		b += uint32(k[4])
	}
	if n >= 4 {
		a += uint32(k[3]) << 24
	}
	if n >= 3 {
		a += uint32(k[2]) << 16
	}
	if n >= 2 {
		a += uint32(k[1]) << 8
	}
	if n >= 1 {
		a += uint32(k[0])
	}
	return a, b, c
}

func rotl(x uint32, n uint) uint32 {
	return x<<n | x>>(32-n)
}

func mix(a, b, c uint32) (uint32, uint32, uint32) {
	a -= c
	a ^= rotl(c, 4)
	c += b

	b -= a
	b ^= rotl(a, 6)
	a += c

	c -= b
	c ^= rotl(b, 8)
	b += a

	a -= c
	a ^= rotl(c, 16)
	c += b

	b -= a
	b ^= rotl(a, 19)
	a += c

	c -= b
	c ^= rotl(b, 4)
	b += a

	return a, b, c
}

func finalMix(a, b, c uint32) (uint32, uint32, uint32) {
	c ^= b
	c -= rotl(b, 14)

	a ^= c
	a -= rotl(c, 11)

	b ^= a
	b -= rotl(a, 25)

	c ^= b
	c -= rotl(b, 16)

	a ^= c
	a -= rotl(c, 4)

	b ^= a
	b -= rotl(a, 14)

	c ^= b
	c -= rotl(b, 24)

	return a, b, c
}
