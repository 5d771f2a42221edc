package rosbag

import "strconv"

const (
	testConnChatter ConnectionID = 0
	testConnArray   ConnectionID = 1
	testConnTime    ConnectionID = 2
)

var testConns = []connSpec{
	{id: testConnChatter, topic: "/chatter", dataType: "std_msgs/String", md5sum: "992ce8a1687cec8c8bd883ec73ca41d1", messageDefinition: "string data\n"},
	{id: testConnArray, topic: "/array", dataType: "std_msgs/Float64MultiArray", md5sum: "6a40e0ffa6a17a503ac3f8616991b1f6", messageDefinition: "float64[] data\n"},
	{id: testConnTime, topic: "/time", dataType: "std_msgs/Time", md5sum: "6a40b07f4a41c246a3727cae98b7f2f8", messageDefinition: "time data\n"},
}

const testMessagesPerTopic = 100

// buildSampleBagBody fills a chunk body with testMessagesPerTopic
// messages per connection, timestamped 0..testMessagesPerTopic-1
// seconds so per-connection ordering is unambiguous, and returns the
// body alongside the (start, end) time bounds and per-connection
// (time, offset) entries needed for the surrounding
// ChunkInfoHeader/IndexData records.
func buildSampleBagBody() (body []byte, entries map[ConnectionID][]chunkMsgEntry, start, end Time) {
	cb := newChunkBodyBuilder()
	for i := 0; i < testMessagesPerTopic; i++ {
		t := Time{Secs: uint32(i), Nsecs: 0}
		cb.addMessage(testConnChatter, t, rosString("foo_"+strconv.Itoa(i)))
		cb.addMessage(testConnArray, t, make([]byte, 8))
		cb.addMessage(testConnTime, t, rosTime(t))
	}
	return cb.body, cb.entries, Time{Secs: 0}, Time{Secs: testMessagesPerTopic - 1}
}

// buildSampleBag assembles a complete, valid bag file with three
// connections and 300 messages in a single chunk. When compress is
// true, the chunk is written with lz4 framing around a literal-only
// LZ4 block; otherwise it is stored uncompressed.
func buildSampleBag(compress bool) []byte {
	body, entries, start, end := buildSampleBagBody()

	b := newBagBuilder()
	indexPosOffset := b.writeBagHeader(uint32(len(testConns)), 1)

	var chunkPos ChunkHeaderOffset
	if compress {
		framed := lz4Frame(lz4LiteralBlock(body))
		chunkPos = b.writeChunk(CompressionLZ4, uint32(len(body)), framed)
	} else {
		chunkPos = b.writeChunk(CompressionNone, uint32(len(body)), body)
	}

	for _, c := range testConns {
		b.writeIndexData(c.id, entries[c.id])
	}

	b.patchU64At(indexPosOffset, b.pos())

	for _, c := range testConns {
		b.writeConnectionHeader(c)
	}

	counts := make(map[ConnectionID]uint32, len(testConns))
	for _, c := range testConns {
		counts[c.id] = uint32(len(entries[c.id]))
	}
	b.writeChunkInfo(chunkPos, start, end, counts)

	return b.buf
}
