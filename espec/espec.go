// Package espec parses and formats Encoding Specification (ESpec) strings:
// the terse per-file compression/encryption pipeline descriptors embedded
// in encoding manifests and BLTE build requests.
package espec

import "fmt"

// Spec is the sum type over every ESpec grammar production. The concrete
// types below are its only implementations.
type Spec interface {
	fmt.Stringer
	isSpec()
}

// None is the 'n' production: stored uncompressed.
type None struct{}

func (None) isSpec()        {}
func (None) String() string { return "n" }

// ZLibBits is the optional window-bits hint following a zlib level.
type ZLibBits struct {
	// Bits holds a numeric window-bits value when Named is empty.
	Bits uint8
	// Named holds one of "mpq", "zlib", "lz4hc" when set, taking
	// precedence over Bits.
	Named string
}

func (b ZLibBits) String() string {
	if b.Named != "" {
		return b.Named
	}
	return fmt.Sprintf("%d", b.Bits)
}

// ZLib is the 'z' production: zlib compression with an optional level and
// window-bits hint.
type ZLib struct {
	Level    *uint8
	Bits     *ZLibBits
	HasLevel bool // not set by Parse and not read by String
}

func (ZLib) isSpec() {}

func (z ZLib) String() string {
	if z.Level == nil {
		return "z"
	}
	if z.Bits != nil {
		return fmt.Sprintf("z:{%d,%s}", *z.Level, z.Bits.String())
	}
	return fmt.Sprintf("z:%d", *z.Level)
}

// Encrypted is the 'e' production: a 16-hex-char key name, a 4-byte IV, and
// a nested spec describing the plaintext's own encoding.
type Encrypted struct {
	KeyName string
	IV      [4]byte
	Inner   Spec
}

func (Encrypted) isSpec() {}

func (e Encrypted) String() string {
	return fmt.Sprintf("e:{%s,%02x%02x%02x%02x,%s}", e.KeyName, e.IV[0], e.IV[1], e.IV[2], e.IV[3], e.Inner)
}

// BlockSize describes a block-table chunk's size (in bytes, already
// expanded from its K/M suffix) and repeat count. A nil count means the
// size applies once; a nil BlockSize pointer on a BlockChunk means "the
// remainder of the file".
type BlockSize struct {
	Bytes uint64
	Count *uint32
}

func (s BlockSize) String() string {
	var unit string
	v := s.Bytes
	switch {
	case v != 0 && v%(1024*1024) == 0:
		unit, v = "M", v/(1024*1024)
	case v != 0 && v%1024 == 0:
		unit, v = "K", v/1024
	}
	out := fmt.Sprintf("%d%s", v, unit)
	if s.Count != nil {
		out += fmt.Sprintf("*%d", *s.Count)
	}
	return out
}

// BlockChunk is one chunk entry in a BlockTable.
type BlockChunk struct {
	Size *BlockSize // nil: this chunk covers the remainder of the file
	Spec Spec
}

// BlockTable is the 'b' production: the file is split into one or more
// chunks, each independently encoded.
type BlockTable struct {
	Chunks []BlockChunk
}

func (BlockTable) isSpec() {}

func (b BlockTable) String() string {
	if len(b.Chunks) == 1 && b.Chunks[0].Size == nil {
		return "b:" + b.Chunks[0].Spec.String()
	}
	out := "b:{"
	for i, c := range b.Chunks {
		if i > 0 {
			out += ","
		}
		if c.Size != nil {
			out += c.Size.String()
		} else {
			out += "*"
		}
		out += "=" + c.Spec.String()
	}
	return out + "}"
}

// BCPack is the 'c' production: block-compressed texture data for a given
// BCn format.
type BCPack struct {
	BCN uint8
}

func (BCPack) isSpec()        {}
func (b BCPack) String() string { return fmt.Sprintf("c:{%d}", b.BCN) }

// GDeflate is the 'g' production.
type GDeflate struct {
	Level uint8
}

func (GDeflate) isSpec()        {}
func (g GDeflate) String() string { return fmt.Sprintf("g:{%d}", g.Level) }

// IsEncrypted reports whether spec or any of its nested specs is Encrypted.
func IsEncrypted(spec Spec) bool {
	switch s := spec.(type) {
	case Encrypted:
		return true
	case BlockTable:
		for _, c := range s.Chunks {
			if IsEncrypted(c.Spec) {
				return true
			}
		}
	}
	return false
}

// IsCompressed reports whether spec (recursively, for BlockTable/Encrypted)
// applies any compression.
func IsCompressed(spec Spec) bool {
	switch s := spec.(type) {
	case None:
		return false
	case ZLib, BCPack, GDeflate:
		return true
	case BlockTable:
		for _, c := range s.Chunks {
			if IsCompressed(c.Spec) {
				return true
			}
		}
		return false
	case Encrypted:
		return IsCompressed(s.Inner)
	default:
		return false
	}
}
