package rosbag

import (
	"bytes"
	"io"
	"os"
	"sort"
	"time"
)

// readSeekerAt is what the chunk body loader needs on top of the
// walker's sequential readSeeker: random access to read a chunk's
// compressed bytes directly at its recorded file offset.
type readSeekerAt interface {
	readSeeker
	io.ReaderAt
}

// Bag is the in-memory result of parsing a ROS bag v2.0 file: immutable
// metadata tables plus, in eager mode, every chunk's decompressed body.
// A Bag opened metadata-only supports every accessor except
// ReadMessages.
type Bag struct {
	Version Version

	chunkMetadata  map[ChunkHeaderOffset]*ChunkMetadata
	connectionData map[ConnectionID]*ConnectionData
	indexByConn    map[ConnectionID][]IndexEntry

	topicToConnIDs map[string][]ConnectionID
	typeToConnIDs  map[string][]ConnectionID

	bodies map[ChunkHeaderOffset][]byte
	eager  bool
}

func newBag(result *walkResult) *Bag {
	b := &Bag{
		Version:        supportedVersion,
		chunkMetadata:  result.chunkMetadata,
		connectionData: result.connectionData,
		indexByConn:    result.indexByConn,
		topicToConnIDs: make(map[string][]ConnectionID),
		typeToConnIDs:  make(map[string][]ConnectionID),
	}

	ids := make([]ConnectionID, 0, len(result.connectionData))
	for id := range result.connectionData {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		conn := result.connectionData[id]
		b.topicToConnIDs[conn.Topic] = append(b.topicToConnIDs[conn.Topic], id)
		b.typeToConnIDs[conn.DataType] = append(b.typeToConnIDs[conn.DataType], id)
	}

	return b
}

// OpenMetadata parses the bag at path without loading any chunk bodies.
// The file is closed before this returns; the resulting Bag supports
// every accessor except ReadMessages.
func OpenMetadata(path string) (*Bag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapIOErr(err, "opening bag file")
	}
	defer f.Close()

	result, err := walk(f)
	if err != nil {
		return nil, err
	}
	return newBag(result), nil
}

// OpenFromBytes parses an in-memory bag without loading any chunk
// bodies.
func OpenFromBytes(data []byte) (*Bag, error) {
	result, err := walk(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return newBag(result), nil
}

// OpenEager parses the bag at path and decompresses every chunk body up
// front. The file is closed before this returns.
func OpenEager(path string) (*Bag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapIOErr(err, "opening bag file")
	}
	defer f.Close()
	return openEager(f)
}

// OpenEagerFromBytes parses an in-memory bag and decompresses every
// chunk body up front.
func OpenEagerFromBytes(data []byte) (*Bag, error) {
	return openEager(bytes.NewReader(data))
}

func openEager(r readSeekerAt) (*Bag, error) {
	result, err := walk(r)
	if err != nil {
		return nil, err
	}

	bag := newBag(result)
	bag.eager = true
	bag.bodies = make(map[ChunkHeaderOffset][]byte, len(result.chunkMetadata))

	for pos, meta := range result.chunkMetadata {
		body, err := loadChunkBody(r, meta)
		if err != nil {
			return nil, err
		}
		bag.bodies[pos] = body
	}

	return bag, nil
}

// NumChunks returns the number of chunks in the bag.
func (b *Bag) NumChunks() int {
	return len(b.chunkMetadata)
}

// NumConnections returns the number of distinct connections in the bag.
func (b *Bag) NumConnections() int {
	return len(b.connectionData)
}

// Topics returns the bag's unique topic strings, sorted ascending.
func (b *Bag) Topics() []string {
	topics := make([]string, 0, len(b.topicToConnIDs))
	for t := range b.topicToConnIDs {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}

// Types returns the bag's unique message type strings, sorted ascending.
func (b *Bag) Types() []string {
	types := make([]string, 0, len(b.typeToConnIDs))
	for t := range b.typeToConnIDs {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// TopicAndType pairs a topic with a data type.
type TopicAndType struct {
	Topic string
	Type  string
}

// TopicsAndTypes returns the bag's unique (topic, type) pairs, sorted
// ascending by topic then type.
func (b *Bag) TopicsAndTypes() []TopicAndType {
	seen := make(map[TopicAndType]struct{})
	for _, conn := range b.connectionData {
		seen[TopicAndType{Topic: conn.Topic, Type: conn.DataType}] = struct{}{}
	}

	result := make([]TopicAndType, 0, len(seen))
	for pair := range seen {
		result = append(result, pair)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Topic != result[j].Topic {
			return result[i].Topic < result[j].Topic
		}
		return result[i].Type < result[j].Type
	})
	return result
}

// TopicToConnectionIDs returns the connection ids publishing on topic.
func (b *Bag) TopicToConnectionIDs(topic string) []ConnectionID {
	return b.topicToConnIDs[topic]
}

// TypeToConnectionIDs returns the connection ids carrying messages of
// the given type.
func (b *Bag) TypeToConnectionIDs(dataType string) []ConnectionID {
	return b.typeToConnIDs[dataType]
}

// Connection returns the metadata for one connection id.
func (b *Bag) Connection(id ConnectionID) (ConnectionData, bool) {
	conn, ok := b.connectionData[id]
	if !ok {
		return ConnectionData{}, false
	}
	return *conn, true
}

// Connections returns every connection's metadata, sorted by connection
// id.
func (b *Bag) Connections() []ConnectionData {
	ids := make([]ConnectionID, 0, len(b.connectionData))
	for id := range b.connectionData {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make([]ConnectionData, 0, len(ids))
	for _, id := range ids {
		result = append(result, *b.connectionData[id])
	}
	return result
}

// ChunkMetadataTable returns every chunk's metadata, sorted by its
// header offset.
func (b *Bag) ChunkMetadataTable() []ChunkMetadata {
	positions := make([]ChunkHeaderOffset, 0, len(b.chunkMetadata))
	for pos := range b.chunkMetadata {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })

	result := make([]ChunkMetadata, 0, len(positions))
	for _, pos := range positions {
		result = append(result, *b.chunkMetadata[pos])
	}
	return result
}

// StartTime returns the earliest chunk start time in the bag. It
// returns false if the bag has no chunks.
func (b *Bag) StartTime() (Time, bool) {
	var start Time
	found := false
	for _, meta := range b.chunkMetadata {
		if !found || meta.StartTime.Before(start) {
			start = meta.StartTime
			found = true
		}
	}
	return start, found
}

// EndTime returns the latest chunk end time in the bag. It returns
// false if the bag has no chunks.
func (b *Bag) EndTime() (Time, bool) {
	var end Time
	found := false
	for _, meta := range b.chunkMetadata {
		if !found || meta.EndTime.After(end) {
			end = meta.EndTime
			found = true
		}
	}
	return end, found
}

// Duration returns EndTime() - StartTime(), defaulting either endpoint
// to ZERO when the bag has no chunks (so an empty bag has a zero
// duration, matching the source implementation's own default).
func (b *Bag) Duration() time.Duration {
	start, ok := b.StartTime()
	if !ok {
		start = ZERO
	}
	end, ok := b.EndTime()
	if !ok {
		end = ZERO
	}
	return end.Sub(start)
}

// MessageCount returns the total number of indexed messages in the bag.
func (b *Bag) MessageCount() int {
	total := 0
	for _, entries := range b.indexByConn {
		total += len(entries)
	}
	return total
}

// TopicMessageCounts returns the message count for every topic.
func (b *Bag) TopicMessageCounts() map[string]int {
	counts := make(map[string]int, len(b.topicToConnIDs))
	for topic, ids := range b.topicToConnIDs {
		total := 0
		for _, id := range ids {
			total += len(b.indexByConn[id])
		}
		counts[topic] = total
	}
	return counts
}

// CompressionStat aggregates chunk sizes for one compression kind.
type CompressionStat struct {
	Name                   Compression
	ChunkCount             int
	TotalCompressedBytes   uint64
	TotalUncompressedBytes uint64
}

// CompressionInfo groups chunks by compression kind, sorted descending
// by total compressed bytes.
func (b *Bag) CompressionInfo() []CompressionStat {
	byName := make(map[Compression]*CompressionStat)
	for _, meta := range b.chunkMetadata {
		stat, ok := byName[meta.Compression]
		if !ok {
			stat = &CompressionStat{Name: meta.Compression}
			byName[meta.Compression] = stat
		}
		stat.ChunkCount++
		stat.TotalCompressedBytes += uint64(meta.CompressedSize)
		stat.TotalUncompressedBytes += uint64(meta.UncompressedSize)
	}

	result := make([]CompressionStat, 0, len(byName))
	for _, stat := range byName {
		result = append(result, *stat)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalCompressedBytes != result[j].TotalCompressedBytes {
			return result[i].TotalCompressedBytes > result[j].TotalCompressedBytes
		}
		return result[i].Name < result[j].Name
	})
	return result
}
