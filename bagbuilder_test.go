package rosbag

import (
	"encoding/binary"
)

// bagBuilder assembles a valid ROS bag v2.0 file byte-for-byte, for
// tests that need an end-to-end fixture. Real bags are produced by a
// recording node; this package only reads them, so test fixtures are
// built by hand rather than checked in as binary blobs.
type bagBuilder struct {
	buf []byte
}

func newBagBuilder() *bagBuilder {
	b := &bagBuilder{}
	b.buf = append(b.buf, magic...)
	return b
}

func (b *bagBuilder) pos() uint64 {
	return uint64(len(b.buf))
}

// patchU64At overwrites an already-written little-endian u64 field, for
// fields (like the bag header's index_pos) whose correct value is only
// known after writing everything that follows it.
func (b *bagBuilder) patchU64At(offset int, v uint64) {
	binary.LittleEndian.PutUint64(b.buf[offset:offset+8], v)
}

func u32leBytes(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

func u64leBytes(v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}

// field builds one "<u32 len>name=value" header field.
func field(name string, value []byte) []byte {
	body := append([]byte(name+"="), value...)
	return append(u32leBytes(uint32(len(body))), body...)
}

func timeField(name string, t Time) []byte {
	return field(name, append(u32leBytes(t.Secs), u32leBytes(t.Nsecs)...))
}

// writeRecord appends one complete "<u32 header_len>header<u32 data_len>data" record.
func (b *bagBuilder) writeRecord(header, data []byte) {
	b.buf = append(b.buf, u32leBytes(uint32(len(header)))...)
	b.buf = append(b.buf, header...)
	b.buf = append(b.buf, u32leBytes(uint32(len(data)))...)
	b.buf = append(b.buf, data...)
}

// writeBagHeader writes a BagHeader record with a placeholder index_pos
// and returns the byte offset of that field's value, so the caller can
// patch in the real value with patchU64At once it's known.
func (b *bagBuilder) writeBagHeader(connCount, chunkCount uint32) (indexPosOffset int) {
	opField := field("op", []byte{byte(OpBagHeader)})
	indexPosFieldPrefix := field("index_pos", u64leBytes(0))

	header := concatFields(
		opField,
		indexPosFieldPrefix,
		field("conn_count", u32leBytes(connCount)),
		field("chunk_count", u32leBytes(chunkCount)),
	)

	// index_pos's value sits at the end of its own field, after the
	// field's own length prefix and "index_pos=" name.
	indexPosOffset = len(b.buf) + lenInBytes + len(opField) + len(indexPosFieldPrefix) - 8

	// Real writers pad the bag header's data section so later edits don't
	// have to shift the rest of the file; tests don't need that padding.
	b.writeRecord(header, nil)
	return indexPosOffset
}

// writeChunk writes a ChunkHeader record with the given (already
// framed, if compressed) body and returns the position of its own
// header length prefix, i.e. the chunk_header_pos used elsewhere in the
// file to refer back to this chunk.
func (b *bagBuilder) writeChunk(compression Compression, uncompressedSize uint32, body []byte) ChunkHeaderOffset {
	pos := ChunkHeaderOffset(b.pos())
	header := concatFields(
		field("op", []byte{byte(OpChunkHeader)}),
		field("compression", []byte(compression)),
		field("size", u32leBytes(uncompressedSize)),
	)
	b.writeRecord(header, body)
	return pos
}

func (b *bagBuilder) writeIndexData(connID ConnectionID, entries []chunkMsgEntry) {
	header := concatFields(
		field("op", []byte{byte(OpIndexDataHeader)}),
		field("ver", u32leBytes(1)),
		field("conn", u32leBytes(uint32(connID))),
		field("count", u32leBytes(uint32(len(entries)))),
	)
	var data []byte
	for _, e := range entries {
		data = append(data, u32leBytes(e.time.Secs)...)
		data = append(data, u32leBytes(e.time.Nsecs)...)
		data = append(data, u32leBytes(e.offset)...)
	}
	b.writeRecord(header, data)
}

type connSpec struct {
	id                ConnectionID
	topic             string
	dataType          string
	md5sum            string
	messageDefinition string
}

func (b *bagBuilder) writeConnectionHeader(c connSpec) {
	header := concatFields(
		field("op", []byte{byte(OpConnectionHeader)}),
		field("topic", []byte(c.topic)),
		field("conn", u32leBytes(uint32(c.id))),
	)
	data := concatFields(
		field("topic", []byte(c.topic)),
		field("type", []byte(c.dataType)),
		field("md5sum", []byte(c.md5sum)),
		field("message_definition", []byte(c.messageDefinition)),
	)
	b.writeRecord(header, data)
}

func (b *bagBuilder) writeChunkInfo(chunkPos ChunkHeaderOffset, start, end Time, counts map[ConnectionID]uint32) {
	header := concatFields(
		field("op", []byte{byte(OpChunkInfoHeader)}),
		field("ver", u32leBytes(1)),
		field("chunk_pos", u64leBytes(uint64(chunkPos))),
		timeField("start_time", start),
		timeField("end_time", end),
		field("count", u32leBytes(uint32(len(counts)))),
	)
	var data []byte
	for id, count := range counts {
		data = append(data, u32leBytes(uint32(id))...)
		data = append(data, u32leBytes(count)...)
	}
	b.writeRecord(header, data)
}

func concatFields(fields ...[]byte) []byte {
	var out []byte
	for _, f := range fields {
		out = append(out, f...)
	}
	return out
}

// chunkMsgEntry is one connection's (time, in-chunk-body offset) pair,
// recorded while building a chunk body so the matching IndexData record
// can be written afterwards.
type chunkMsgEntry struct {
	time   Time
	offset uint32
}

// chunkBodyBuilder accumulates MessageData records for a single chunk's
// (uncompressed) body.
type chunkBodyBuilder struct {
	body    []byte
	entries map[ConnectionID][]chunkMsgEntry
}

func newChunkBodyBuilder() *chunkBodyBuilder {
	return &chunkBodyBuilder{entries: make(map[ConnectionID][]chunkMsgEntry)}
}

// addMessage appends one MessageData record: {op, conn, time} header,
// then a u32 "data_len" holding the payload's length, then the payload.
// MessageView.RawBytes() returns data_len together with the payload.
func (c *chunkBodyBuilder) addMessage(connID ConnectionID, t Time, payload []byte) {
	offset := uint32(len(c.body))

	header := concatFields(
		field("op", []byte{byte(OpMessageData)}),
		field("conn", u32leBytes(uint32(connID))),
		timeField("time", t),
	)

	c.body = append(c.body, u32leBytes(uint32(len(header)))...)
	c.body = append(c.body, header...)
	c.body = append(c.body, u32leBytes(uint32(len(payload)))...)
	c.body = append(c.body, payload...)

	c.entries[connID] = append(c.entries[connID], chunkMsgEntry{time: t, offset: offset})
}

// rosString serializes a ROS "string" field: a u32 length prefix
// followed by its raw (non-NUL-terminated) bytes.
func rosString(s string) []byte {
	return append(u32leBytes(uint32(len(s))), []byte(s)...)
}

// rosTime serializes a ROS "time" field: two little-endian u32 values.
func rosTime(t Time) []byte {
	return append(u32leBytes(t.Secs), u32leBytes(t.Nsecs)...)
}
