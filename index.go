package rosbag

// IndexEntry points from a connection's timeline to a single
// MessageData record inside a chunk body. Offset is the byte position
// within the *uncompressed* chunk body at which that record's header
// begins.
type IndexEntry struct {
	ConnID         ConnectionID
	ChunkHeaderPos ChunkHeaderOffset
	Time           Time
	Offset         uint32
}

// indexDataHeaderRecord is what an IndexDataHeader record's own header
// carries.
type indexDataHeaderRecord struct {
	version  uint32
	connID   ConnectionID
	count    uint32
}

func parseIndexDataHeaderFields(header []byte) (indexDataHeaderRecord, error) {
	var rec indexDataHeaderRecord
	var haveVer, haveConn, haveCount bool

	err := forEachHeaderField(header, func(name, value []byte) error {
		switch string(name) {
		case "ver":
			v, err := parseU32LEAt(value, 0)
			if err != nil {
				return err
			}
			rec.version = v
			haveVer = true
		case "conn":
			v, err := parseU32LEAt(value, 0)
			if err != nil {
				return err
			}
			rec.connID = ConnectionID(v)
			haveConn = true
		case "count":
			v, err := parseU32LEAt(value, 0)
			if err != nil {
				return err
			}
			rec.count = v
			haveCount = true
		case "op":
			return checkOp("IndexDataHeader", OpIndexDataHeader, value)
		default:
			return unexpectedField("IndexDataHeader", name)
		}
		return nil
	})
	if err != nil {
		return rec, err
	}
	if !haveVer {
		return rec, missingField("IndexDataHeader", "ver")
	}
	if !haveConn {
		return rec, missingField("IndexDataHeader", "conn")
	}
	if !haveCount {
		return rec, missingField("IndexDataHeader", "count")
	}
	if rec.version != 1 {
		return rec, newErrorf(KindInvalidBag, "unsupported IndexDataHeader version %d", rec.version)
	}
	return rec, nil
}

const indexEntrySize = 12

// parseIndexEntries decodes an IndexDataHeader record's data payload:
// count fixed-size {time:8B, offset:u32} pairs.
func parseIndexEntries(buf []byte, chunkHeaderPos ChunkHeaderOffset, connID ConnectionID) ([]IndexEntry, error) {
	if len(buf)%indexEntrySize != 0 {
		return nil, newErrorf(KindInvalidBag, "index data length %d is not a multiple of %d", len(buf), indexEntrySize)
	}

	entries := make([]IndexEntry, 0, len(buf)/indexEntrySize)
	for i := 0; i < len(buf); i += indexEntrySize {
		t, err := timeFrom(buf[i : i+8])
		if err != nil {
			return nil, err
		}
		offset, err := parseU32LEAt(buf, i+8)
		if err != nil {
			return nil, err
		}
		entries = append(entries, IndexEntry{
			ConnID:         connID,
			ChunkHeaderPos: chunkHeaderPos,
			Time:           t,
			Offset:         offset,
		})
	}
	return entries, nil
}
