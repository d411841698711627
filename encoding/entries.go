package encoding

import (
	"encoding/binary"

	"github.com/wowemulation-dev/cascette-go/keys"
)

// CKeyEntry maps one ContentKey to the EncodingKey(s) that store it and its
// decoded size.
type CKeyEntry struct {
	FileSize     uint64 // 40-bit
	ContentKey   keys.ContentKey
	EncodingKeys []keys.EncodingKey
}

// EKeyEntry maps one EncodingKey to its ESpec table index and encoded size.
type EKeyEntry struct {
	EncodingKey keys.EncodingKey
	ESpecIndex  uint32
	FileSize    uint64 // 40-bit
}

// parseCKeyEntry reads one CKey-page entry from data, returning the number
// of bytes consumed. errPagePadding is returned when key_count is zero,
// meaning the rest of the page is padding rather than a real entry.
func parseCKeyEntry(data []byte) (CKeyEntry, int, error) {
	if len(data) < 1 {
		return CKeyEntry{}, 0, ErrTruncated
	}
	keyCount := int(data[0])
	if keyCount == 0 {
		return CKeyEntry{}, 0, errPagePadding
	}

	need := 1 + 5 + 16 + keyCount*16
	if len(data) < need {
		return CKeyEntry{}, 0, ErrTruncated
	}

	fileSize := uint64(data[1])<<32 | uint64(binary.BigEndian.Uint32(data[2:6]))

	var ck keys.ContentKey
	copy(ck[:], data[6:22])

	eks := make([]keys.EncodingKey, keyCount)
	pos := 22
	for i := range eks {
		copy(eks[i][:], data[pos:pos+16])
		pos += 16
	}

	return CKeyEntry{FileSize: fileSize, ContentKey: ck, EncodingKeys: eks}, need, nil
}

// writeCKeyEntry appends the wire encoding of e to dst.
func writeCKeyEntry(dst []byte, e CKeyEntry) []byte {
	dst = append(dst, byte(len(e.EncodingKeys)))
	dst = append(dst, byte(e.FileSize>>32))
	var sz [4]byte
	binary.BigEndian.PutUint32(sz[:], uint32(e.FileSize))
	dst = append(dst, sz[:]...)
	dst = append(dst, e.ContentKey[:]...)
	for _, ek := range e.EncodingKeys {
		dst = append(dst, ek[:]...)
	}
	return dst
}

// parseEKeyEntry reads one EKey-page entry. Two sentinel patterns mark
// page padding and are reported as errPagePadding: espec_index ==
// 0xFFFFFFFF (the padding pattern written by Agent.exe), or an all-zero
// encoding key together with espec_index == 0 (zero-fill padding written
// by other builders).
func parseEKeyEntry(data []byte) (EKeyEntry, int, error) {
	const size = 16 + 4 + 5
	if len(data) < size {
		return EKeyEntry{}, 0, ErrTruncated
	}

	var ek keys.EncodingKey
	copy(ek[:], data[0:16])
	especIndex := binary.BigEndian.Uint32(data[16:20])

	if especIndex == 0xFFFFFFFF || (especIndex == 0 && ek.IsZero()) {
		return EKeyEntry{}, 0, errPagePadding
	}

	fileSize := uint64(data[20])<<32 | uint64(binary.BigEndian.Uint32(data[21:25]))

	return EKeyEntry{EncodingKey: ek, ESpecIndex: especIndex, FileSize: fileSize}, size, nil
}

// writeEKeyEntry appends the wire encoding of e to dst.
func writeEKeyEntry(dst []byte, e EKeyEntry) []byte {
	dst = append(dst, e.EncodingKey[:]...)
	var buf [9]byte
	binary.BigEndian.PutUint32(buf[0:4], e.ESpecIndex)
	buf[4] = byte(e.FileSize >> 32)
	binary.BigEndian.PutUint32(buf[5:9], uint32(e.FileSize))
	return append(dst, buf[:]...)
}
