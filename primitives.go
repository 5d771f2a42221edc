package rosbag

import (
	"encoding/binary"
	"io"
)

const lenInBytes = 4

// headerFieldDelimiter separates a header field's name from its value.
const headerFieldDelimiter = '='

// parseU8At reads a single byte at index i.
func parseU8At(buf []byte, i int) (uint8, error) {
	if i+1 > len(buf) {
		return 0, newErrorf(KindBufferTooSmall, "need 1 byte at index %d, have %d", i, len(buf))
	}
	return buf[i], nil
}

// parseU32LEAt reads a little-endian uint32 at index i.
func parseU32LEAt(buf []byte, i int) (uint32, error) {
	if i+4 > len(buf) {
		return 0, newErrorf(KindBufferTooSmall, "need 4 bytes at index %d, have %d", i, len(buf))
	}
	return binary.LittleEndian.Uint32(buf[i : i+4]), nil
}

// parseU64LEAt reads a little-endian uint64 at index i.
func parseU64LEAt(buf []byte, i int) (uint64, error) {
	if i+8 > len(buf) {
		return 0, newErrorf(KindBufferTooSmall, "need 8 bytes at index %d, have %d", i, len(buf))
	}
	return binary.LittleEndian.Uint64(buf[i : i+8]), nil
}

// fieldSepIndex returns the position of the first '=' byte in buf.
func fieldSepIndex(buf []byte) (int, error) {
	for i, b := range buf {
		if b == headerFieldDelimiter {
			return i, nil
		}
	}
	return 0, newErrorf(KindMissingFieldSeparator, "missing '%c' in header field: %q", headerFieldDelimiter, buf)
}

// readLengthPrefixed reads a 4-byte little-endian length L followed by
// exactly L bytes.
func readLengthPrefixed(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, wrapIOErr(err, "reading length prefix")
	}

	length := binary.LittleEndian.Uint32(lenBuf[:])
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, wrapIOErr(err, "reading length-prefixed body")
	}
	return buf, nil
}
