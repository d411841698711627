package blte

// DecompressChunk decompresses a single raw chunk (the mode byte followed
// by its mode-specific payload, exactly as it appears on the wire). info is
// the extended header's table entry for that chunk, used to verify the
// decompressed checksum; pass nil for a single-chunk (non-extended) file,
// which has no checksum to verify. index is the chunk's 0-based position,
// used for error context and Salsa20 IV derivation when the chunk is
// encrypted.
//
// This is the entry point progressive/streaming decoders use: each chunk
// arrives as its own HTTP range response and is decompressed as it lands,
// rather than waiting for the whole container.
func DecompressChunk(raw []byte, info *ChunkInfo, index int, keys KeyStore) ([]byte, error) {
	if len(raw) == 0 {
		return nil, &CorruptChunkError{Index: index}
	}
	mode := Mode(raw[0])
	payload := raw[1:]

	if mode == ModeEncrypted {
		if keys == nil {
			return nil, ErrMissingKey
		}
		plain, err := decryptChunk(payload, keys, index)
		if err != nil {
			return nil, err
		}
		if len(plain) == 0 {
			return nil, &CorruptChunkError{Index: index}
		}
		mode = Mode(plain[0])
		payload = plain[1:]
	}

	decoded, err := decompressPayload(mode, payload, index)
	if err != nil {
		return nil, err
	}

	if info != nil {
		if got := checksum(decoded); got != info.Checksum {
			return nil, &CorruptChunkError{Index: index}
		}
	}
	return decoded, nil
}
