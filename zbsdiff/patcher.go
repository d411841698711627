package zbsdiff

import (
	"fmt"
	"io"
)

// ApplyPatchMemory applies a ZBSDIFF1 patch to oldData entirely in memory,
// returning the patched bytes.
func ApplyPatchMemory(oldData, patchData []byte) ([]byte, error) {
	header, control, diff, extra, err := decodePatch(patchData)
	if err != nil {
		return nil, err
	}
	return applyControlBlock(oldData, control, diff, extra, int(header.OutputSize))
}

func decodePatch(patchData []byte) (Header, ControlBlock, []byte, []byte, error) {
	header, err := ParseHeader(patchData)
	if err != nil {
		return Header{}, ControlBlock{}, nil, nil, err
	}
	pos := HeaderSize

	if len(patchData) < pos+int(header.ControlSize) {
		return Header{}, ControlBlock{}, nil, nil, fmt.Errorf("%w: control block", ErrTruncated)
	}
	controlCompressed := patchData[pos : pos+int(header.ControlSize)]
	pos += int(header.ControlSize)

	if len(patchData) < pos+int(header.DiffSize) {
		return Header{}, ControlBlock{}, nil, nil, fmt.Errorf("%w: diff block", ErrTruncated)
	}
	diffCompressed := patchData[pos : pos+int(header.DiffSize)]
	pos += int(header.DiffSize)

	extraCompressed := patchData[pos:]

	control, err := parseControlBlock(controlCompressed)
	if err != nil {
		return Header{}, ControlBlock{}, nil, nil, err
	}
	diff, err := decompressZlib(diffCompressed)
	if err != nil {
		return Header{}, ControlBlock{}, nil, nil, err
	}
	extra, err := decompressZlib(extraCompressed)
	if err != nil {
		return Header{}, ControlBlock{}, nil, nil, err
	}

	return header, control, diff, extra, nil
}

func oldByteAt(old []byte, pos int) byte {
	if pos < 0 || pos >= len(old) {
		return 0
	}
	return old[pos]
}

func applyDiffByte(oldByte, diffByte byte) byte {
	return oldByte + diffByte
}

func applyControlBlock(oldData []byte, control ControlBlock, diff, extra []byte, outputSize int) ([]byte, error) {
	output := make([]byte, 0, outputSize)
	diffPos, extraPos := 0, 0
	oldPos := 0

	for _, entry := range control.Entries {
		if diffPos+int(entry.DiffSize) > len(diff) {
			return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrInsufficientDiffData, entry.DiffSize, len(diff)-diffPos)
		}
		for i := 0; i < int(entry.DiffSize); i++ {
			output = append(output, applyDiffByte(oldByteAt(oldData, oldPos), diff[diffPos]))
			diffPos++
			oldPos++
		}

		if extraPos+int(entry.ExtraSize) > len(extra) {
			return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrInsufficientExtraData, entry.ExtraSize, len(extra)-extraPos)
		}
		output = append(output, extra[extraPos:extraPos+int(entry.ExtraSize)]...)
		extraPos += int(entry.ExtraSize)

		if entry.SeekOffset != 0 {
			oldPos += int(entry.SeekOffset)
		}
	}

	if len(output) != outputSize {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrSizeMismatch, outputSize, len(output))
	}
	return output, nil
}

// Patcher applies ZBSDIFF1 patches by reading old-file data on demand from
// a io.ReaderAt, so the old file need not be loaded entirely into memory.
type Patcher struct {
	old        io.ReaderAt
	oldSize    int64
	bufferSize int
}

// DefaultBufferSize is the chunk size Patcher uses when streaming old-file
// data, matching the teacher's HTTP range download chunking.
const DefaultBufferSize = 8192

// NewPatcher creates a Patcher reading old-file bytes from old, which has
// oldSize bytes total.
func NewPatcher(old io.ReaderAt, oldSize int64) *Patcher {
	return &Patcher{old: old, oldSize: oldSize, bufferSize: DefaultBufferSize}
}

// WithBufferSize overrides the chunk size used to read old-file data,
// clamped to a 1KiB minimum.
func (p *Patcher) WithBufferSize(size int) *Patcher {
	if size < 1024 {
		size = 1024
	}
	p.bufferSize = size
	return p
}

// ApplyPatch applies patchData, reading old-file bytes through p's
// io.ReaderAt rather than requiring them in memory up front.
func (p *Patcher) ApplyPatch(patchData []byte) ([]byte, error) {
	header, control, diff, extra, err := decodePatch(patchData)
	if err != nil {
		return nil, err
	}

	output := make([]byte, 0, header.OutputSize)
	diffPos, extraPos := 0, 0
	oldPos := int64(0)

	for _, entry := range control.Entries {
		remaining := entry.DiffSize
		for remaining > 0 {
			chunk := remaining
			if chunk > int64(p.bufferSize) {
				chunk = int64(p.bufferSize)
			}
			if diffPos+int(chunk) > len(diff) {
				return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrInsufficientDiffData, chunk, len(diff)-diffPos)
			}
			oldChunk, err := p.readOldChunk(oldPos, int(chunk))
			if err != nil {
				return nil, err
			}
			for i := 0; i < int(chunk); i++ {
				output = append(output, applyDiffByte(oldChunk[i], diff[diffPos+i]))
			}
			diffPos += int(chunk)
			oldPos += chunk
			remaining -= chunk
		}

		if extraPos+int(entry.ExtraSize) > len(extra) {
			return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrInsufficientExtraData, entry.ExtraSize, len(extra)-extraPos)
		}
		output = append(output, extra[extraPos:extraPos+int(entry.ExtraSize)]...)
		extraPos += int(entry.ExtraSize)

		if entry.SeekOffset != 0 {
			oldPos += entry.SeekOffset
		}
	}

	if int64(len(output)) != header.OutputSize {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrSizeMismatch, header.OutputSize, len(output))
	}
	return output, nil
}

// readOldChunk reads size bytes starting at pos, zero-filling any portion
// at or beyond the old file's end.
func (p *Patcher) readOldChunk(pos int64, size int) ([]byte, error) {
	chunk := make([]byte, size)
	if pos >= p.oldSize {
		return chunk, nil
	}
	available := int(p.oldSize - pos)
	if available > size {
		available = size
	}
	n, err := p.old.ReadAt(chunk[:available], pos)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("zbsdiff: reading old file: %w", err)
	}
	if n < available {
		return nil, fmt.Errorf("zbsdiff: reading old file: short read (%d of %d)", n, available)
	}
	return chunk, nil
}
