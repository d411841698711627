// Package streaming implements progressive BLTE-over-HTTP decoding and
// archive content extraction with range coalescing, on top of the
// httprange abstract range client.
package streaming

// Config tunes the streaming BLTE decoder and archive extractor.
type Config struct {
	// MaxParallelRequests bounds concurrent range GETs issued by an
	// ArchiveExtractor.
	MaxParallelRequests int
	// RangeBufferSize is not read by ArchiveExtractor; the size of a
	// coalesced range is bounded only by CoalesceThreshold.
	RangeBufferSize int
	// VerifyChecksums is not read by ArchiveExtractor or Decoder; it does
	// not switch the blte package's own chunk checks on or off.
	VerifyChecksums bool
	// CoalesceThreshold is the maximum gap between two requested byte
	// ranges that still allows them to be merged into one range request.
	CoalesceThreshold int64
	// MaxBufferSize is not read by Decoder; Decompress and
	// DecompressChunkRange return the whole decoded output in one slice.
	MaxBufferSize int
	// ChunkReadAhead is not read by Decoder; its header reads fetch exactly
	// the prefix and chunk table the header needs.
	ChunkReadAhead int
}

// DefaultConfig matches spec.md's stated defaults.
func DefaultConfig() Config {
	return Config{
		MaxParallelRequests: 4,
		RangeBufferSize:     2 * 1024 * 1024,
		VerifyChecksums:     true,
		CoalesceThreshold:   32 * 1024,
		MaxBufferSize:       16 * 1024 * 1024,
		ChunkReadAhead:      4 * 1024 * 1024,
	}
}
