package blte

import "fmt"

const (
	// MinChunkSize is the smallest chunk size the builder accepts; smaller
	// chunks create disproportionate per-chunk header overhead.
	MinChunkSize = 1024
	// MaxChunkSize is the largest chunk size the builder accepts, matching
	// the CDN's own chunking limit.
	MaxChunkSize = 16 * 1024 * 1024
	// DefaultChunkSize balances chunk-table overhead against the ability
	// to decode a chunk without buffering the whole file.
	DefaultChunkSize = 256 * 1024
)

// Builder assembles a File from plaintext, splitting it into chunks and
// compressing each one.
type Builder struct {
	mode      Mode
	chunkSize int
}

// NewBuilder returns a Builder compressing with mode and DefaultChunkSize.
func NewBuilder(mode Mode) *Builder {
	return &Builder{mode: mode, chunkSize: DefaultChunkSize}
}

// WithChunkSize overrides the chunk size used for automatic splitting. It
// must be within [MinChunkSize, MaxChunkSize].
func (b *Builder) WithChunkSize(size int) (*Builder, error) {
	if size < MinChunkSize || size > MaxChunkSize {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidChunkSize, size, MinChunkSize, MaxChunkSize)
	}
	b.chunkSize = size
	return b, nil
}

// Build compresses data into a File, using a single-chunk header when data
// fits in one chunk and an extended multi-chunk header otherwise.
func (b *Builder) Build(data []byte) (File, error) {
	if !validMode(b.mode) || b.mode == ModeEncrypted || b.mode == ModeFrame {
		return File{}, &UnsupportedModeError{Mode: byte(b.mode)}
	}

	if len(data) <= b.chunkSize {
		return buildSingleChunk(data, b.mode)
	}
	return buildMultiChunk(data, b.mode, b.chunkSize)
}

func buildSingleChunk(data []byte, mode Mode) (File, error) {
	payload, err := compressPayload(mode, data)
	if err != nil {
		return File{}, err
	}
	return File{
		Header: SingleChunkHeader(),
		Chunks: []Chunk{{Mode: mode, Payload: payload}},
	}, nil
}

func buildMultiChunk(data []byte, mode Mode, chunkSize int) (File, error) {
	var chunks []Chunk
	var infos []ChunkInfo

	for offset := 0; offset < len(data); {
		end := offset + chunkSize
		if end > len(data) {
			end = len(data)
		}
		plain := data[offset:end]
		payload, err := compressPayload(mode, plain)
		if err != nil {
			return File{}, err
		}
		chunks = append(chunks, Chunk{Mode: mode, Payload: payload})
		infos = append(infos, ChunkInfo{
			CompressedSize:   uint32(len(payload) + 1),
			DecompressedSize: uint32(len(plain)),
			Checksum:         checksum(plain),
		})
		offset = end
	}

	return File{
		Header: Header{Flags: 0x0F, ChunkCount: uint32(len(infos)), Chunks: infos, Extended: true},
		Chunks: chunks,
	}, nil
}

// EncryptChunk wraps plaintext as an 'E'-mode chunk payload: the inner
// header (key name, IV, cipher type) followed by the ciphertext of
// compressPayload(innerMode, plaintext) prefixed with innerMode's tag byte.
// index is the chunk's 0-based position, used to derive the IV.
func EncryptChunk(plaintext []byte, innerMode Mode, keyName []byte, iv []byte, cipher CipherType, key [16]byte, index int) (Chunk, error) {
	inner, err := compressPayload(innerMode, plaintext)
	if err != nil {
		return Chunk{}, err
	}
	plain := append([]byte{byte(innerMode)}, inner...)

	derivedIV := chunkIV(iv, index)
	var ciphertext []byte
	switch cipher {
	case CipherSalsa20:
		ciphertext, err = salsa20Decrypt(plain, key, derivedIV) // Salsa20 is its own inverse
	case CipherARC4:
		ciphertext, err = arc4Decrypt(plain, key, derivedIV) // ARC4 is its own inverse
	default:
		return Chunk{}, fmt.Errorf("blte: unsupported cipher type %q", cipher)
	}
	if err != nil {
		return Chunk{}, err
	}

	payload := make([]byte, 0, 1+len(keyName)+1+len(iv)+1+len(ciphertext))
	payload = append(payload, byte(len(keyName)))
	payload = append(payload, keyName...)
	payload = append(payload, byte(len(iv)))
	payload = append(payload, iv...)
	payload = append(payload, byte(cipher))
	payload = append(payload, ciphertext...)

	return Chunk{Mode: ModeEncrypted, Payload: payload}, nil
}
