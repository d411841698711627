package zbsdiff

// BuildSimplePatch constructs a ZBSDIFF1 patch transforming oldData into
// newData using a single control entry: a byte-wise diff over the
// overlapping prefix, followed by an extra block for any of newData beyond
// oldData's length. It favors correctness and simplicity over compression
// ratio — small-scale and test use, not a byte-exact match for a
// production bsdiff encoder.
func BuildSimplePatch(oldData, newData []byte) ([]byte, error) {
	overlap := len(oldData)
	if len(newData) < overlap {
		overlap = len(newData)
	}

	diff := make([]byte, overlap)
	for i := 0; i < overlap; i++ {
		diff[i] = newData[i] - oldData[i]
	}
	extra := newData[overlap:]

	control := ControlBlock{Entries: []ControlEntry{
		{DiffSize: int64(overlap), ExtraSize: int64(len(extra)), SeekOffset: 0},
	}}

	controlCompressed, err := buildControlBlock(control)
	if err != nil {
		return nil, err
	}
	diffCompressed, err := compressZlib(diff)
	if err != nil {
		return nil, err
	}
	extraCompressed, err := compressZlib(extra)
	if err != nil {
		return nil, err
	}

	header := Header{
		ControlSize: int64(len(controlCompressed)),
		DiffSize:    int64(len(diffCompressed)),
		OutputSize:  int64(len(newData)),
	}

	out := WriteHeader(nil, header)
	out = append(out, controlCompressed...)
	out = append(out, diffCompressed...)
	out = append(out, extraCompressed...)
	return out, nil
}
