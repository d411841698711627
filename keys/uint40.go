package keys

import "fmt"

// Uint40Size is the encoded byte width of the truncated 40-bit integers used
// by encoding manifest entries for file sizes.
const Uint40Size = 5

// Uint24Size is the encoded byte width of 24-bit sizes used in archive index
// style offset/size pairs.
const Uint24Size = 3

// MaxUint40 is the largest value representable in 40 bits.
const MaxUint40 = (1 << 40) - 1

// MaxUint24 is the largest value representable in 24 bits.
const MaxUint24 = (1 << 24) - 1

// PutUint40BE writes v into dst as a 5-byte big-endian integer. dst must be
// at least 5 bytes long.
func PutUint40BE(dst []byte, v uint64) {
	_ = dst[4]
	dst[0] = byte(v >> 32)
	dst[1] = byte(v >> 24)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 8)
	dst[4] = byte(v)
}

// Uint40BE reads a 5-byte big-endian integer from src.
func Uint40BE(src []byte) uint64 {
	_ = src[4]
	return uint64(src[0])<<32 | uint64(src[1])<<24 | uint64(src[2])<<16 | uint64(src[3])<<8 | uint64(src[4])
}

// PutUint40LE writes v into dst as a 5-byte little-endian integer, the byte
// order TVFS uses for its 40-bit table offsets and sizes. dst must be at
// least 5 bytes long.
func PutUint40LE(dst []byte, v uint64) {
	_ = dst[4]
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
	dst[4] = byte(v >> 32)
}

// Uint40LE reads a 5-byte little-endian integer from src.
func Uint40LE(src []byte) uint64 {
	_ = src[4]
	return uint64(src[0]) | uint64(src[1])<<8 | uint64(src[2])<<16 | uint64(src[3])<<24 | uint64(src[4])<<32
}

// PutUint24BE writes v into dst as a 3-byte big-endian integer.
func PutUint24BE(dst []byte, v uint32) {
	_ = dst[2]
	dst[0] = byte(v >> 16)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v)
}

// Uint24BE reads a 3-byte big-endian integer from src.
func Uint24BE(src []byte) uint32 {
	_ = src[2]
	return uint32(src[0])<<16 | uint32(src[1])<<8 | uint32(src[2])
}

// CheckUint40 validates that v fits in 40 bits.
func CheckUint40(v uint64) error {
	if v > MaxUint40 {
		return fmt.Errorf("value %d exceeds 40-bit range (max %d)", v, uint64(MaxUint40))
	}
	return nil
}

// CheckUint24 validates that v fits in 24 bits.
func CheckUint24(v uint32) error {
	if v > MaxUint24 {
		return fmt.Errorf("value %d exceeds 24-bit range (max %d)", v, uint32(MaxUint24))
	}
	return nil
}
