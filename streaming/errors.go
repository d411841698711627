package streaming

import "errors"

var (
	// ErrNotBLTE is returned when content expected to be a BLTE container
	// doesn't start with the "BLTE" magic.
	ErrNotBLTE = errors.New("streaming: content is not a BLTE container")
	// ErrChunkRangeEmpty is returned by chunk-range decode calls whose
	// requested [start, start+count) window doesn't overlap the file's
	// chunk table at all.
	ErrChunkRangeEmpty = errors.New("streaming: requested chunk range is empty")
	// ErrTooManyArchives is returned when a BatchExtractor is asked to
	// process more archives than it has readers for.
	ErrTooManyArchives = errors.New("streaming: more archive requests than readers")
	// ErrKeyNotFound is returned when an extraction request's encoding key
	// has no entry in the supplied archive index resolver.
	ErrKeyNotFound = errors.New("streaming: encoding key not found in archive index")
)
