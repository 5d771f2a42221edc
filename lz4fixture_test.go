package rosbag

// lz4LiteralBlock encodes data as a single-sequence raw LZ4 block
// containing nothing but literals: a valid (if maximally uncompressed)
// LZ4 block that pierrec/lz4's UncompressBlock decodes by copying the
// literal run and stopping, since a block's final sequence carries no
// match. Good enough to exercise the framing-stripping path in tests
// without needing a real LZ4 encoder on hand.
func lz4LiteralBlock(data []byte) []byte {
	var block []byte

	litLen := len(data)
	tokenLitLen := litLen
	if tokenLitLen > 15 {
		tokenLitLen = 15
	}
	block = append(block, byte(tokenLitLen<<4))

	if litLen >= 15 {
		remaining := litLen - 15
		for remaining >= 255 {
			block = append(block, 0xFF)
			remaining -= 255
		}
		block = append(block, byte(remaining))
	}

	block = append(block, data...)
	return block
}

// lz4Frame wraps a raw LZ4 block with placeholder preamble/trailer
// bytes matching the framing that a real bag writer's LZ4 chunk bodies
// carry, which decompressLZ4 strips before decoding.
func lz4Frame(block []byte) []byte {
	preamble := make([]byte, lz4PreambleSize)
	trailer := make([]byte, lz4TrailerSize)
	framed := make([]byte, 0, len(preamble)+len(block)+len(trailer))
	framed = append(framed, preamble...)
	framed = append(framed, block...)
	framed = append(framed, trailer...)
	return framed
}
