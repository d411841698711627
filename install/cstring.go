package install

import (
	"bytes"
	"fmt"
)

// readCString reads a null-terminated string from data, returning the
// string (without its terminator) and the number of bytes consumed
// including the terminator.
func readCString(data []byte) (string, int, error) {
	i := bytes.IndexByte(data, 0)
	if i < 0 {
		return "", 0, fmt.Errorf("%w: unterminated string", ErrTruncated)
	}
	return string(data[:i]), i + 1, nil
}

// appendCString appends s followed by a null terminator to dst.
func appendCString(dst []byte, s string) []byte {
	dst = append(dst, s...)
	return append(dst, 0)
}
