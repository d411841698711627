package espec

import (
	"encoding/hex"
	"fmt"
)

// ParseError reports a failure to parse an ESpec string, with the byte
// offset the parser had reached.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("espec: %s at position %d", e.Msg, e.Pos)
}

// Parse parses an ESpec grammar string into its Spec tree.
func Parse(input string) (Spec, error) {
	p := &parser{input: input}
	spec, err := p.parseSpec()
	if err != nil {
		return nil, err
	}
	return spec, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) consume(ch byte) error {
	if p.peek() != ch {
		return &ParseError{Pos: p.pos, Msg: fmt.Sprintf("expected %q", ch)}
	}
	p.pos++
	return nil
}

func (p *parser) parseNumber() (uint64, error) {
	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, &ParseError{Pos: p.pos, Msg: "expected number"}
	}
	var v uint64
	for _, c := range p.input[start:p.pos] {
		v = v*10 + uint64(c-'0')
	}
	return v, nil
}

func (p *parser) parseIdentifier() string {
	start := p.pos
	for p.pos < len(p.input) && isAlphaNumeric(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func isAlphaNumeric(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func (p *parser) parseHexBytes(n int) ([]byte, error) {
	end := p.pos + n*2
	if end > len(p.input) {
		end = len(p.input)
	}
	b, err := hex.DecodeString(p.input[p.pos:end])
	if err != nil {
		return nil, &ParseError{Pos: p.pos, Msg: "invalid hex: " + err.Error()}
	}
	p.pos = end
	return b, nil
}

func (p *parser) parseSpec() (Spec, error) {
	switch p.peek() {
	case 'n':
		if err := p.consume('n'); err != nil {
			return nil, err
		}
		return None{}, nil
	case 'z':
		return p.parseZLib()
	case 'e':
		return p.parseEncrypted()
	case 'b':
		return p.parseBlockTable()
	case 'c':
		return p.parseBCPack()
	case 'g':
		return p.parseGDeflate()
	default:
		return nil, &ParseError{Pos: p.pos, Msg: "unknown ESpec production"}
	}
}

func (p *parser) parseZLib() (Spec, error) {
	if err := p.consume('z'); err != nil {
		return nil, err
	}
	if p.peek() != ':' {
		return ZLib{}, nil
	}
	if err := p.consume(':'); err != nil {
		return nil, err
	}

	braced := p.peek() == '{'
	if braced {
		if err := p.consume('{'); err != nil {
			return nil, err
		}
	}

	var level *uint8
	if isDigit(p.peek()) {
		n, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		l := uint8(n)
		level = &l
	}

	var bits *ZLibBits
	if braced && p.peek() == ',' {
		if err := p.consume(','); err != nil {
			return nil, err
		}
		b, err := p.parseZLibBits()
		if err != nil {
			return nil, err
		}
		bits = &b
	}

	if braced {
		if err := p.consume('}'); err != nil {
			return nil, err
		}
	}

	return ZLib{Level: level, Bits: bits}, nil
}

func (p *parser) parseZLibBits() (ZLibBits, error) {
	if isDigit(p.peek()) {
		n, err := p.parseNumber()
		if err != nil {
			return ZLibBits{}, err
		}
		return ZLibBits{Bits: uint8(n)}, nil
	}
	ident := p.parseIdentifier()
	switch ident {
	case "mpq", "zlib", "lz4hc":
		return ZLibBits{Named: ident}, nil
	case "":
		return ZLibBits{}, &ParseError{Pos: p.pos, Msg: "expected zlib bits after comma"}
	default:
		return ZLibBits{}, &ParseError{Pos: p.pos, Msg: "unknown zlib bits type " + ident}
	}
}

func (p *parser) parseEncrypted() (Spec, error) {
	if err := p.consume('e'); err != nil {
		return nil, err
	}
	if err := p.consume(':'); err != nil {
		return nil, err
	}
	if err := p.consume('{'); err != nil {
		return nil, err
	}

	key := p.parseIdentifier()
	if len(key) != 16 {
		return nil, &ParseError{Pos: p.pos, Msg: fmt.Sprintf("encryption key must be 16 hex chars, got %d", len(key))}
	}

	if err := p.consume(','); err != nil {
		return nil, err
	}

	ivBytes, err := p.parseHexBytes(4)
	if err != nil {
		return nil, err
	}
	var iv [4]byte
	copy(iv[:], ivBytes)

	if err := p.consume(','); err != nil {
		return nil, err
	}

	inner, err := p.parseSpec()
	if err != nil {
		return nil, err
	}

	if err := p.consume('}'); err != nil {
		return nil, err
	}

	return Encrypted{KeyName: key, IV: iv, Inner: inner}, nil
}

func (p *parser) parseBlockTable() (Spec, error) {
	if err := p.consume('b'); err != nil {
		return nil, err
	}
	if err := p.consume(':'); err != nil {
		return nil, err
	}

	if p.peek() != '{' {
		spec, err := p.parseSpec()
		if err != nil {
			return nil, err
		}
		return BlockTable{Chunks: []BlockChunk{{Spec: spec}}}, nil
	}

	if err := p.consume('{'); err != nil {
		return nil, err
	}

	var chunks []BlockChunk
	for {
		var size *BlockSize
		if p.peek() == '*' {
			if err := p.consume('*'); err != nil {
				return nil, err
			}
			if p.peek() != '=' {
				n, err := p.parseNumber()
				if err != nil {
					return nil, err
				}
				count := uint32(n)
				size = &BlockSize{Count: &count}
			}
		} else {
			s, err := p.parseBlockSize()
			if err != nil {
				return nil, err
			}
			size = &s
		}

		if err := p.consume('='); err != nil {
			return nil, err
		}

		spec, err := p.parseSpec()
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, BlockChunk{Size: size, Spec: spec})

		if p.peek() == ',' {
			if err := p.consume(','); err != nil {
				return nil, err
			}
			continue
		}
		break
	}

	if err := p.consume('}'); err != nil {
		return nil, err
	}

	return BlockTable{Chunks: chunks}, nil
}

func (p *parser) parseBlockSize() (BlockSize, error) {
	size, err := p.parseNumber()
	if err != nil {
		return BlockSize{}, err
	}

	switch p.peek() {
	case 'K':
		p.pos++
		size *= 1024
	case 'M':
		p.pos++
		size *= 1024 * 1024
	}

	var count *uint32
	if p.peek() == '*' {
		p.pos++
		if isDigit(p.peek()) {
			n, err := p.parseNumber()
			if err != nil {
				return BlockSize{}, err
			}
			c := uint32(n)
			count = &c
		}
	}

	return BlockSize{Bytes: size, Count: count}, nil
}

func (p *parser) parseBCPack() (Spec, error) {
	if err := p.consume('c'); err != nil {
		return nil, err
	}
	if err := p.consume(':'); err != nil {
		return nil, err
	}
	if err := p.consume('{'); err != nil {
		return nil, err
	}
	n, err := p.parseNumber()
	if err != nil {
		return nil, err
	}
	if err := p.consume('}'); err != nil {
		return nil, err
	}
	return BCPack{BCN: uint8(n)}, nil
}

func (p *parser) parseGDeflate() (Spec, error) {
	if err := p.consume('g'); err != nil {
		return nil, err
	}
	if err := p.consume(':'); err != nil {
		return nil, err
	}
	if err := p.consume('{'); err != nil {
		return nil, err
	}
	n, err := p.parseNumber()
	if err != nil {
		return nil, err
	}
	if err := p.consume('}'); err != nil {
		return nil, err
	}
	return GDeflate{Level: uint8(n)}, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
