package encoding

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wowemulation-dev/cascette-go/keys"
)

// Manifest is a fully parsed encoding manifest: the CKey/EKey lookup
// tables and the ESpec string table they index into.
type Manifest struct {
	Header Header
	ESpecs []string

	byCKey map[keys.ContentKey]CKeyEntry
	byEKey map[keys.EncodingKey]EKeyEntry

	// ckeyOrder/ekeyOrder preserve parse order so Build reproduces the
	// original page layout byte-for-byte given unmodified input.
	ckeyOrder []keys.ContentKey
	ekeyOrder []keys.EncodingKey
}

// Parse decodes a complete encoding manifest from data.
func Parse(data []byte) (*Manifest, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	pos := headerSize

	if len(data) < pos+int(header.ESpecBlockSize) {
		return nil, fmt.Errorf("%w: espec block truncated", ErrTruncated)
	}
	especBlock := data[pos : pos+int(header.ESpecBlockSize)]
	pos += int(header.ESpecBlockSize)
	especs := splitNullDelimited(especBlock)

	m := &Manifest{
		Header: header,
		ESpecs: especs,
		byCKey: make(map[keys.ContentKey]CKeyEntry),
		byEKey: make(map[keys.EncodingKey]EKeyEntry),
	}

	ckeyPageBytes := int(header.CKeyPageSizeKB) * 1024
	for p := uint32(0); p < header.CKeyPageCount; p++ {
		if len(data) < pos+ckeyPageBytes {
			return nil, fmt.Errorf("%w: ckey page %d truncated", ErrTruncated, p)
		}
		page := data[pos : pos+ckeyPageBytes]
		pos += ckeyPageBytes

		off := 0
		for off < len(page) {
			entry, n, err := parseCKeyEntry(page[off:])
			if errors.Is(err, errPagePadding) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("ckey page %d: %w", p, err)
			}
			m.byCKey[entry.ContentKey] = entry
			m.ckeyOrder = append(m.ckeyOrder, entry.ContentKey)
			off += n
		}
	}

	ekeyPageBytes := int(header.EKeyPageSizeKB) * 1024
	for p := uint32(0); p < header.EKeyPageCount; p++ {
		if len(data) < pos+ekeyPageBytes {
			return nil, fmt.Errorf("%w: ekey page %d truncated", ErrTruncated, p)
		}
		page := data[pos : pos+ekeyPageBytes]
		pos += ekeyPageBytes

		off := 0
		for off < len(page) {
			entry, n, err := parseEKeyEntry(page[off:])
			if errors.Is(err, errPagePadding) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("ekey page %d: %w", p, err)
			}
			m.byEKey[entry.EncodingKey] = entry
			m.ekeyOrder = append(m.ekeyOrder, entry.EncodingKey)
			off += n
		}
	}

	return m, nil
}

// LookupByCKey returns the EncodingKeys stored for ck, if any.
func (m *Manifest) LookupByCKey(ck keys.ContentKey) ([]keys.EncodingKey, bool) {
	e, ok := m.byCKey[ck]
	if !ok {
		return nil, false
	}
	return e.EncodingKeys, true
}

// LookupByEKey returns the encoded size and ESpec string for ek, if any.
func (m *Manifest) LookupByEKey(ek keys.EncodingKey) (size uint64, espec string, ok bool) {
	e, found := m.byEKey[ek]
	if !found {
		return 0, "", false
	}
	if int(e.ESpecIndex) >= len(m.ESpecs) {
		return e.FileSize, "", true
	}
	return e.FileSize, m.ESpecs[e.ESpecIndex], true
}

// CKeyEntries returns every CKey entry in original parse order.
func (m *Manifest) CKeyEntries() []CKeyEntry {
	out := make([]CKeyEntry, 0, len(m.ckeyOrder))
	for _, ck := range m.ckeyOrder {
		out = append(out, m.byCKey[ck])
	}
	return out
}

// EKeyEntries returns every EKey entry in original parse order.
func (m *Manifest) EKeyEntries() []EKeyEntry {
	out := make([]EKeyEntry, 0, len(m.ekeyOrder))
	for _, ek := range m.ekeyOrder {
		out = append(out, m.byEKey[ek])
	}
	return out
}

// Build serializes the manifest back to its wire form. Page sizes and
// ordering are taken from Header and the original parse order, so Build
// reproduces byte-identical output for an unmodified Manifest.
func (m *Manifest) Build() []byte {
	out := WriteHeader(nil, m.Header)
	out = append(out, joinNullDelimited(m.ESpecs)...)

	ckeyPageBytes := int(m.Header.CKeyPageSizeKB) * 1024
	out = append(out, buildPages(m.CKeyEntries(), ckeyPageBytes, func(dst []byte, e CKeyEntry) []byte {
		return writeCKeyEntry(dst, e)
	})...)

	ekeyPageBytes := int(m.Header.EKeyPageSizeKB) * 1024
	out = append(out, buildPages(m.EKeyEntries(), ekeyPageBytes, func(dst []byte, e EKeyEntry) []byte {
		return writeEKeyEntry(dst, e)
	})...)

	return out
}

func buildPages[T any](entries []T, pageSize int, write func([]byte, T) []byte) []byte {
	var out []byte
	var page []byte
	for _, e := range entries {
		candidate := write(page, e)
		if len(candidate) > pageSize {
			out = append(out, padPage(page, pageSize)...)
			page = write(nil, e)
			continue
		}
		page = candidate
	}
	if len(page) > 0 {
		out = append(out, padPage(page, pageSize)...)
	}
	return out
}

func padPage(page []byte, size int) []byte {
	if len(page) >= size {
		return page
	}
	padded := make([]byte, size)
	copy(padded, page)
	return padded
}

func splitNullDelimited(b []byte) []string {
	parts := bytes.Split(b, []byte{0})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) == 0 && len(out) == len(parts)-1 {
			continue // trailing empty segment from the final terminator
		}
		out = append(out, string(p))
	}
	return out
}

func joinNullDelimited(specs []string) []byte {
	var out []byte
	for _, s := range specs {
		out = append(out, s...)
		out = append(out, 0)
	}
	return out
}
