package rosbag

import (
	"github.com/pierrec/lz4/v4"
)

// lz4PreambleSize and lz4TrailerSize bound the framing bytes that a ROS
// bag writer wraps around the raw LZ4 block: an 11-byte preamble and an
// 8-byte trailer that pierrec/lz4's raw block decoder knows nothing
// about and that must be stripped before decompression.
const (
	lz4PreambleSize = 11
	lz4TrailerSize  = 8
)

// loadChunkBody reads a chunk's compressed bytes at its recorded file
// offset and returns its decompressed body. For CompressionNone the
// bytes are returned as-is.
func loadChunkBody(r readSeekerAt, meta *ChunkMetadata) ([]byte, error) {
	compressed := make([]byte, meta.CompressedSize)
	if _, err := r.ReadAt(compressed, int64(meta.ChunkDataPos)); err != nil {
		return nil, wrapIOErr(err, "reading chunk body")
	}

	switch meta.Compression {
	case CompressionNone:
		if uint32(len(compressed)) != meta.UncompressedSize {
			return nil, newErrorf(KindDecompression, "uncompressed chunk declared size %d does not match body length %d", meta.UncompressedSize, len(compressed))
		}
		return compressed, nil
	case CompressionLZ4:
		return decompressLZ4(compressed, meta.UncompressedSize)
	default:
		return nil, newErrorf(KindInvalidBag, "unsupported chunk compression %q", meta.Compression)
	}
}

// decompressLZ4 strips the bag writer's framing bytes around a chunk's
// raw LZ4 block and inflates it to exactly uncompressedSize bytes.
func decompressLZ4(framed []byte, uncompressedSize uint32) ([]byte, error) {
	if len(framed) < lz4PreambleSize+lz4TrailerSize {
		return nil, newErrorf(KindDecompression, "lz4 chunk body too short for framing: %d bytes", len(framed))
	}
	block := framed[lz4PreambleSize : len(framed)-lz4TrailerSize]

	dst := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(block, dst)
	if err != nil {
		return nil, &Error{Kind: KindDecompression, Msg: "lz4 block decompression failed", Err: err}
	}
	if uint32(n) != uncompressedSize {
		return nil, newErrorf(KindDecompression, "lz4 decompressed to %d bytes, expected %d", n, uncompressedSize)
	}
	return dst, nil
}
