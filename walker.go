package rosbag

import (
	"errors"
	"io"
)

// magic is the fixed 13-byte line that must open every v2.0 bag.
var magic = []byte("#ROSBAG V2.0\n")

// bagHeaderRecord is what the single BagHeader record's header carries.
type bagHeaderRecord struct {
	indexPos   uint64
	connCount  uint32
	chunkCount uint32
}

func parseBagHeaderFields(header []byte) (bagHeaderRecord, error) {
	var rec bagHeaderRecord
	var haveIndexPos, haveConnCount, haveChunkCount bool

	err := forEachHeaderField(header, func(name, value []byte) error {
		switch string(name) {
		case "index_pos":
			v, err := parseU64LEAt(value, 0)
			if err != nil {
				return err
			}
			rec.indexPos = v
			haveIndexPos = true
		case "conn_count":
			v, err := parseU32LEAt(value, 0)
			if err != nil {
				return err
			}
			rec.connCount = v
			haveConnCount = true
		case "chunk_count":
			v, err := parseU32LEAt(value, 0)
			if err != nil {
				return err
			}
			rec.chunkCount = v
			haveChunkCount = true
		case "op":
			return checkOp("BagHeader", OpBagHeader, value)
		default:
			return unexpectedField("BagHeader", name)
		}
		return nil
	})
	if err != nil {
		return rec, err
	}
	if !haveIndexPos {
		return rec, missingField("BagHeader", "index_pos")
	}
	if !haveConnCount {
		return rec, missingField("BagHeader", "conn_count")
	}
	if !haveChunkCount {
		return rec, missingField("BagHeader", "chunk_count")
	}
	return rec, nil
}

// readSeeker is the minimal capability the walker needs from its byte
// source: sequential reads plus the ability to skip compressed chunk
// bodies without reading them, and to query the current offset so a
// ChunkHeader record can record its own file position.
type readSeeker interface {
	io.Reader
	io.Seeker
}

// walkResult is everything the walker discovers about a bag's record
// structure: the resolved per-chunk metadata, the connection table, and
// the per-connection index.
type walkResult struct {
	bagHeader      bagHeaderRecord
	chunkMetadata  map[ChunkHeaderOffset]*ChunkMetadata
	connectionData map[ConnectionID]*ConnectionData
	indexByConn    map[ConnectionID][]IndexEntry
}

func checkMagic(r io.Reader) error {
	buf := make([]byte, len(magic))
	if _, err := io.ReadFull(r, buf); err != nil {
		return &Error{Kind: KindNotARosbag, Msg: "short read of magic header", Err: err}
	}
	for i := range magic {
		if buf[i] != magic[i] {
			return newErrorf(KindNotARosbag, "expected magic %q, got %q", magic, buf)
		}
	}
	return nil
}

// walk streams records from r, classifying each one and building the
// index/chunk/connection tables. It never materializes a chunk's
// compressed body; it only records where that body lives so a later
// pass (the chunk body loader) can read it on demand.
func walk(r readSeeker) (*walkResult, error) {
	if err := checkMagic(r); err != nil {
		return nil, err
	}

	var bagHeader *bagHeaderRecord
	var chunkHeaders []chunkHeaderRecord
	var chunkInfoHeaders []chunkInfoHeaderRecord
	var chunkInfoEntries [][]chunkInfoEntry
	var connections []ConnectionData
	indexByConn := make(map[ConnectionID][]IndexEntry)

	var lastChunkHeaderPos ChunkHeaderOffset
	haveLastChunkHeaderPos := false

	for {
		headerLen, err := readU32(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, wrapIOErr(err, "reading record header length")
		}

		header := make([]byte, headerLen)
		if _, err := io.ReadFull(r, header); err != nil {
			return nil, wrapIOErr(err, "reading record header")
		}

		op, err := findOp(header)
		if err != nil {
			return nil, err
		}

		switch op {
		case OpBagHeader:
			fields, err := parseBagHeaderFields(header)
			if err != nil {
				return nil, err
			}
			if fields.indexPos == 0 {
				return nil, newErrorf(KindUnindexedBag, "bag header's index_pos is 0")
			}
			// Data payload is writer-specific padding; skip it.
			dataLen, err := readU32(r)
			if err != nil {
				return nil, wrapIOErr(err, "reading bag header data length")
			}
			if _, err := r.Seek(int64(dataLen), io.SeekCurrent); err != nil {
				return nil, wrapIOErr(err, "skipping bag header padding")
			}
			bh := fields
			bagHeader = &bh

		case OpChunkHeader:
			pos, err := r.Seek(0, io.SeekCurrent)
			if err != nil {
				return nil, wrapIOErr(err, "finding chunk header position")
			}
			chunkHeaderPos := ChunkHeaderOffset(pos - int64(len(header)) - lenInBytes)

			dataLen, err := readU32(r)
			if err != nil {
				return nil, wrapIOErr(err, "reading chunk data length")
			}
			chunkDataPos, err := r.Seek(0, io.SeekCurrent)
			if err != nil {
				return nil, wrapIOErr(err, "finding chunk data position")
			}

			rec, err := parseChunkHeaderFields(header, chunkHeaderPos, uint64(chunkDataPos), dataLen)
			if err != nil {
				return nil, err
			}
			if _, err := r.Seek(int64(dataLen), io.SeekCurrent); err != nil {
				return nil, wrapIOErr(err, "skipping chunk body")
			}

			chunkHeaders = append(chunkHeaders, rec)
			lastChunkHeaderPos = chunkHeaderPos
			haveLastChunkHeaderPos = true

		case OpIndexDataHeader:
			if !haveLastChunkHeaderPos {
				return nil, newErrorf(KindMissingRecord, "IndexDataHeader with no preceding ChunkHeader")
			}
			fields, err := parseIndexDataHeaderFields(header)
			if err != nil {
				return nil, err
			}
			data, err := readLengthPrefixed(r)
			if err != nil {
				return nil, err
			}
			entries, err := parseIndexEntries(data, lastChunkHeaderPos, fields.connID)
			if err != nil {
				return nil, err
			}
			if uint32(len(entries)) != fields.count {
				return nil, newErrorf(KindInvalidBag, "IndexDataHeader declared %d entries, found %d", fields.count, len(entries))
			}
			indexByConn[fields.connID] = append(indexByConn[fields.connID], entries...)

		case OpConnectionHeader:
			hdr, err := parseConnectionRecordHeader(header)
			if err != nil {
				return nil, err
			}
			data, err := readLengthPrefixed(r)
			if err != nil {
				return nil, err
			}
			conn, err := parseConnectionData(data, hdr.connectionID, hdr.topic)
			if err != nil {
				return nil, err
			}
			connections = append(connections, conn)

		case OpChunkInfoHeader:
			fields, err := parseChunkInfoHeaderFields(header)
			if err != nil {
				return nil, err
			}
			data, err := readLengthPrefixed(r)
			if err != nil {
				return nil, err
			}
			entries, err := parseChunkInfoEntries(data)
			if err != nil {
				return nil, err
			}
			if uint32(len(entries)) != fields.connectionCount {
				return nil, newErrorf(KindInvalidBag, "ChunkInfoHeader declared %d connections, found %d", fields.connectionCount, len(entries))
			}
			chunkInfoHeaders = append(chunkInfoHeaders, fields)
			chunkInfoEntries = append(chunkInfoEntries, entries)

		case OpMessageData:
			return nil, newErrorf(KindInvalidBag, "MessageData record found outside of a chunk")

		default:
			return nil, newErrorf(KindInvalidOpCode, "unexpected op %s at the record level", op)
		}
	}

	if bagHeader == nil {
		return nil, newErrorf(KindMissingRecord, "bag has no BagHeader record")
	}
	if int(bagHeader.chunkCount) != len(chunkHeaders) {
		return nil, newErrorf(KindInvalidBag, "bag header declares %d chunks, found %d ChunkHeader records", bagHeader.chunkCount, len(chunkHeaders))
	}
	if int(bagHeader.chunkCount) != len(chunkInfoHeaders) {
		return nil, newErrorf(KindInvalidBag, "bag header declares %d chunks, found %d ChunkInfoHeader records", bagHeader.chunkCount, len(chunkInfoHeaders))
	}
	if int(bagHeader.connCount) != len(connections) {
		return nil, newErrorf(KindInvalidBag, "bag header declares %d connections, found %d ConnectionHeader records", bagHeader.connCount, len(connections))
	}

	chunkMetadata, err := joinChunkMetadata(chunkHeaders, chunkInfoHeaders, chunkInfoEntries)
	if err != nil {
		return nil, err
	}

	connectionData := make(map[ConnectionID]*ConnectionData, len(connections))
	for i := range connections {
		c := connections[i]
		connectionData[c.ConnectionID] = &c
	}

	return &walkResult{
		bagHeader:      *bagHeader,
		chunkMetadata:  chunkMetadata,
		connectionData: connectionData,
		indexByConn:    indexByConn,
	}, nil
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, nil
}
