package rosbag

// ChunkHeaderOffset is the byte position of a chunk's header in the
// file; it serves as the chunk's primary key.
type ChunkHeaderOffset uint64

// Compression names the body encoding of a chunk.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionLZ4  Compression = "lz4"
	CompressionBZ2  Compression = "bz2"
)

// ChunkMetadata describes one chunk: where its header and compressed
// body sit in the file, how to decompress the body, and the aggregate
// message counts and time bounds recorded for it by the writer.
type ChunkMetadata struct {
	Compression      Compression
	UncompressedSize uint32
	CompressedSize   uint32
	ChunkHeaderPos   ChunkHeaderOffset
	ChunkDataPos     uint64
	StartTime        Time
	EndTime          Time
	ConnectionCount  uint32
	MessageCounts    map[ConnectionID]uint32
}

// chunkHeaderRecord is what a ChunkHeader record's own header carries;
// the compressed size and data position are supplied by the walker,
// which alone knows where the record sits in the file.
type chunkHeaderRecord struct {
	chunkHeaderPos   ChunkHeaderOffset
	chunkDataPos     uint64
	compression      Compression
	uncompressedSize uint32
	compressedSize   uint32
}

func parseChunkHeaderFields(header []byte, chunkHeaderPos ChunkHeaderOffset, chunkDataPos uint64, compressedSize uint32) (chunkHeaderRecord, error) {
	rec := chunkHeaderRecord{
		chunkHeaderPos: chunkHeaderPos,
		chunkDataPos:   chunkDataPos,
		compressedSize: compressedSize,
	}
	var haveCompression, haveSize bool

	err := forEachHeaderField(header, func(name, value []byte) error {
		switch string(name) {
		case "compression":
			rec.compression = Compression(value)
			haveCompression = true
		case "size":
			v, err := parseU32LEAt(value, 0)
			if err != nil {
				return err
			}
			rec.uncompressedSize = v
			haveSize = true
		case "op":
			return checkOp("ChunkHeader", OpChunkHeader, value)
		default:
			return unexpectedField("ChunkHeader", name)
		}
		return nil
	})
	if err != nil {
		return rec, err
	}
	if !haveCompression {
		return rec, missingField("ChunkHeader", "compression")
	}
	if !haveSize {
		return rec, missingField("ChunkHeader", "size")
	}
	return rec, nil
}

// chunkInfoHeaderRecord is what a ChunkInfoHeader record's own header
// carries.
type chunkInfoHeaderRecord struct {
	version         uint32
	chunkHeaderPos  ChunkHeaderOffset
	startTime       Time
	endTime         Time
	connectionCount uint32
}

func parseChunkInfoHeaderFields(header []byte) (chunkInfoHeaderRecord, error) {
	var rec chunkInfoHeaderRecord
	var haveVer, havePos, haveStart, haveEnd, haveCount bool

	err := forEachHeaderField(header, func(name, value []byte) error {
		switch string(name) {
		case "ver":
			v, err := parseU32LEAt(value, 0)
			if err != nil {
				return err
			}
			rec.version = v
			haveVer = true
		case "chunk_pos":
			v, err := parseU64LEAt(value, 0)
			if err != nil {
				return err
			}
			rec.chunkHeaderPos = ChunkHeaderOffset(v)
			havePos = true
		case "start_time":
			t, err := timeFrom(value)
			if err != nil {
				return err
			}
			rec.startTime = t
			haveStart = true
		case "end_time":
			t, err := timeFrom(value)
			if err != nil {
				return err
			}
			rec.endTime = t
			haveEnd = true
		case "count":
			v, err := parseU32LEAt(value, 0)
			if err != nil {
				return err
			}
			rec.connectionCount = v
			haveCount = true
		case "op":
			return checkOp("ChunkInfoHeader", OpChunkInfoHeader, value)
		default:
			return unexpectedField("ChunkInfoHeader", name)
		}
		return nil
	})
	if err != nil {
		return rec, err
	}
	if !haveVer {
		return rec, missingField("ChunkInfoHeader", "ver")
	}
	if !havePos {
		return rec, missingField("ChunkInfoHeader", "chunk_pos")
	}
	if !haveStart {
		return rec, missingField("ChunkInfoHeader", "start_time")
	}
	if !haveEnd {
		return rec, missingField("ChunkInfoHeader", "end_time")
	}
	if !haveCount {
		return rec, missingField("ChunkInfoHeader", "count")
	}
	return rec, nil
}

// chunkInfoEntry is one (connection, message count) pair from a
// ChunkInfoHeader record's data payload.
type chunkInfoEntry struct {
	connID ConnectionID
	count  uint32
}

const chunkInfoEntrySize = 8

func parseChunkInfoEntries(buf []byte) ([]chunkInfoEntry, error) {
	if len(buf)%chunkInfoEntrySize != 0 {
		return nil, newErrorf(KindInvalidBag, "chunk info data length %d is not a multiple of %d", len(buf), chunkInfoEntrySize)
	}

	entries := make([]chunkInfoEntry, 0, len(buf)/chunkInfoEntrySize)
	for i := 0; i < len(buf); i += chunkInfoEntrySize {
		connID, err := parseU32LEAt(buf, i)
		if err != nil {
			return nil, err
		}
		count, err := parseU32LEAt(buf, i+4)
		if err != nil {
			return nil, err
		}
		entries = append(entries, chunkInfoEntry{connID: ConnectionID(connID), count: count})
	}
	return entries, nil
}

// joinChunkMetadata pairs each ChunkHeader with the ChunkInfoHeader that
// shares its chunk_header_pos, producing the ChunkMetadata table. A
// chunk header with no matching chunk-info record is rejected rather
// than silently dropped: the two are supposed to be written in lockstep,
// and a missing pair despite balanced counts (already checked by the
// caller) points at real corruption rather than a benign gap.
func joinChunkMetadata(headers []chunkHeaderRecord, infos []chunkInfoHeaderRecord, infoEntries [][]chunkInfoEntry) (map[ChunkHeaderOffset]*ChunkMetadata, error) {
	byPos := make(map[ChunkHeaderOffset]int, len(infos))
	for i, info := range infos {
		byPos[info.chunkHeaderPos] = i
	}

	result := make(map[ChunkHeaderOffset]*ChunkMetadata, len(headers))
	for _, h := range headers {
		idx, ok := byPos[h.chunkHeaderPos]
		if !ok {
			return nil, newErrorf(KindInvalidBag, "chunk header at %d has no matching chunk-info record", h.chunkHeaderPos)
		}
		info := infos[idx]
		entries := infoEntries[idx]

		counts := make(map[ConnectionID]uint32, len(entries))
		for _, e := range entries {
			counts[e.connID] = e.count
		}

		result[h.chunkHeaderPos] = &ChunkMetadata{
			Compression:      h.compression,
			UncompressedSize: h.uncompressedSize,
			CompressedSize:   h.compressedSize,
			ChunkHeaderPos:   h.chunkHeaderPos,
			ChunkDataPos:     h.chunkDataPos,
			StartTime:        info.startTime,
			EndTime:          info.endTime,
			ConnectionCount:  info.connectionCount,
			MessageCounts:    counts,
		}
	}
	return result, nil
}
