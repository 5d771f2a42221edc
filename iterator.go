package rosbag

import "sort"

// messageDataHeaderRecord is what an in-chunk MessageData record's own
// header carries.
type messageDataHeaderRecord struct {
	connID ConnectionID
	time   Time
}

func parseMessageDataHeaderFields(header []byte) (messageDataHeaderRecord, error) {
	var rec messageDataHeaderRecord
	var haveConn, haveTime bool

	err := forEachHeaderField(header, func(name, value []byte) error {
		switch string(name) {
		case "conn":
			v, err := parseU32LEAt(value, 0)
			if err != nil {
				return err
			}
			rec.connID = ConnectionID(v)
			haveConn = true
		case "time":
			t, err := timeFrom(value)
			if err != nil {
				return err
			}
			rec.time = t
			haveTime = true
		case "op":
			return checkOp("MessageData", OpMessageData, value)
		default:
			return unexpectedField("MessageData", name)
		}
		return nil
	})
	if err != nil {
		return rec, err
	}
	if !haveConn {
		return rec, missingField("MessageData", "conn")
	}
	if !haveTime {
		return rec, missingField("MessageData", "time")
	}
	return rec, nil
}

// MessageIterator yields a bag's messages in non-decreasing time order,
// resolved from a Query. It is one-pass and not restartable; re-issue
// ReadMessages to iterate again.
type MessageIterator struct {
	bag     *Bag
	entries []IndexEntry
	cursor  int
}

// ReadMessages resolves q against the bag's connection and index tables
// and returns an iterator over the matching messages. It returns a
// KindUnsupportedMode error if the bag was opened metadata-only, since
// no chunk bodies are available to read message payloads from.
func (b *Bag) ReadMessages(q Query) (*MessageIterator, error) {
	if !b.eager {
		return nil, newErrorf(KindUnsupportedMode, "ReadMessages requires a bag opened with OpenEager or OpenEagerFromBytes")
	}

	ids := q.selectedConnectionIDs(b)

	var entries []IndexEntry
	for _, id := range ids {
		for _, e := range b.indexByConn[id] {
			if q.matchesTime(e.Time) {
				entries = append(entries, e)
			}
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		a, c := entries[i], entries[j]
		if !a.Time.Equal(c.Time) {
			return a.Time.Before(c.Time)
		}
		if a.ChunkHeaderPos != c.ChunkHeaderPos {
			return a.ChunkHeaderPos < c.ChunkHeaderPos
		}
		return a.Offset < c.Offset
	})

	return &MessageIterator{bag: b, entries: entries}, nil
}

// Next returns the next message view, or ok=false when the iterator is
// exhausted.
func (it *MessageIterator) Next() (view *MessageView, ok bool, err error) {
	if it.cursor >= len(it.entries) {
		return nil, false, nil
	}
	entry := it.entries[it.cursor]
	it.cursor++

	body, haveBody := it.bag.bodies[entry.ChunkHeaderPos]
	if !haveBody {
		return nil, false, newErrorf(KindIO, "chunk at %d has not been loaded", entry.ChunkHeaderPos)
	}

	i := int(entry.Offset)
	headerLen, err := parseU32LEAt(body, i)
	if err != nil {
		return nil, false, err
	}
	i += lenInBytes

	if i+int(headerLen) > len(body) {
		return nil, false, newErrorf(KindBufferTooSmall, "MessageData header at %d runs past chunk body", entry.Offset)
	}
	header := body[i : i+int(headerLen)]
	i += int(headerLen)

	fields, err := parseMessageDataHeaderFields(header)
	if err != nil {
		return nil, false, err
	}
	if fields.connID != entry.ConnID {
		return nil, false, newErrorf(KindInvalidBag, "index entry names connection %d but MessageData header names %d", entry.ConnID, fields.connID)
	}

	payloadStart := i
	dataLen, err := parseU32LEAt(body, payloadStart)
	if err != nil {
		return nil, false, err
	}
	payloadEnd := payloadStart + lenInBytes + int(dataLen)
	if payloadEnd > len(body) {
		return nil, false, newErrorf(KindBufferTooSmall, "MessageData payload at %d runs past chunk body", payloadStart)
	}

	conn, ok := it.bag.connectionData[entry.ConnID]
	if !ok {
		return nil, false, newErrorf(KindMissingRecord, "index entry names unknown connection %d", entry.ConnID)
	}

	return &MessageView{
		bag:            it.bag,
		topic:          conn.Topic,
		chunkHeaderPos: entry.ChunkHeaderPos,
		start:          uint32(payloadStart),
		end:            uint32(payloadEnd),
	}, true, nil
}
