// Package blte implements NGDP's Block Table Encoded container format: the
// per-chunk compressed and optionally encrypted envelope every archive
// entry and loose CDN file is wrapped in.
package blte

import "fmt"

// File is a fully parsed BLTE container: its header plus the raw,
// still-compressed bytes of each chunk.
type File struct {
	Header Header
	Chunks []Chunk
}

// Parse reads a BLTE file from data, returning the parsed File and the
// number of bytes consumed (equal to len(data) for a well-formed,
// non-trailing-garbage input).
func Parse(data []byte) (File, int, error) {
	header, consumed, err := ParseHeader(data)
	if err != nil {
		return File{}, 0, err
	}

	var chunks []Chunk
	if !header.Extended {
		rest := data[consumed:]
		if len(rest) == 0 {
			return File{Header: header}, consumed, nil
		}
		chunks = []Chunk{{Mode: Mode(rest[0]), Payload: rest[1:]}}
		consumed += len(rest)
		return File{Header: header, Chunks: chunks}, consumed, nil
	}

	chunks = make([]Chunk, 0, len(header.Chunks))
	pos := consumed
	for i, info := range header.Chunks {
		end := pos + int(info.CompressedSize)
		if end > len(data) {
			return File{}, 0, fmt.Errorf("%w: chunk %d compressed data truncated", ErrTruncated, i)
		}
		raw := data[pos:end]
		if len(raw) == 0 {
			return File{}, 0, fmt.Errorf("%w: chunk %d has zero compressed size", ErrTruncated, i)
		}
		chunks = append(chunks, Chunk{Mode: Mode(raw[0]), Payload: raw[1:]})
		pos = end
	}
	return File{Header: header, Chunks: chunks}, pos, nil
}

// Build serializes f to its wire form.
func Build(f File) []byte {
	out := WriteHeader(nil, f.Header)
	for _, c := range f.Chunks {
		out = append(out, byte(c.Mode))
		out = append(out, c.Payload...)
	}
	return out
}

// Decompress returns the concatenated plaintext of every chunk, verifying
// each chunk's checksum against the extended header's table when present.
// Single-chunk files have no checksum to verify.
func (f File) Decompress() ([]byte, error) {
	return f.decompress(nil)
}

// DecompressWithKeys is like Decompress but also decrypts any 'E'-mode
// chunks using keys. A single-chunk encrypted file is rejected: its IV
// derivation requires the chunk index carried only by the extended header.
func (f File) DecompressWithKeys(keys KeyStore) ([]byte, error) {
	if !f.Header.Extended && len(f.Chunks) == 1 && f.Chunks[0].Mode == ModeEncrypted {
		return nil, ErrSingleChunkEncrypted
	}
	return f.decompress(keys)
}

func (f File) decompress(keys KeyStore) ([]byte, error) {
	total := 0
	for _, c := range f.Header.Chunks {
		total += int(c.DecompressedSize)
	}
	out := make([]byte, 0, total)

	for i, chunk := range f.Chunks {
		mode := chunk.Mode
		payload := chunk.Payload

		if mode == ModeEncrypted {
			if keys == nil {
				return nil, fmt.Errorf("%w: chunk %d is encrypted but no key store was supplied", ErrMissingKey, i)
			}
			plain, err := decryptChunk(payload, keys, i)
			if err != nil {
				return nil, err
			}
			if len(plain) == 0 {
				return nil, fmt.Errorf("blte: chunk %d: decrypted to empty payload", i)
			}
			mode = Mode(plain[0])
			payload = plain[1:]
		}

		decoded, err := decompressPayload(mode, payload, i)
		if err != nil {
			return nil, err
		}

		if f.Header.Extended {
			want := f.Header.Chunks[i].Checksum
			got := checksum(decoded)
			if got != want {
				return nil, &CorruptChunkError{Index: i}
			}
		}

		out = append(out, decoded...)
	}
	return out, nil
}
