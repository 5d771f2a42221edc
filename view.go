package rosbag

// MessageView is a non-owning locator into a decompressed chunk body:
// {topic, chunk_header_pos, start, end} plus a back-reference to the
// bag it was produced from. Creating a view does no I/O; the chunk body
// it points into was decoded up front, when the bag was opened with
// OpenEager or OpenEagerFromBytes.
type MessageView struct {
	bag            *Bag
	topic          string
	chunkHeaderPos ChunkHeaderOffset
	start          uint32
	end            uint32
}

// Topic returns the topic this message was published on.
func (v *MessageView) Topic() string {
	return v.topic
}

// RawBytes returns the message's serialized payload, including the
// leading 4-byte length prefix that an external deserializer expects.
// The returned slice aliases the bag's decompressed chunk body and must
// not be modified, and it does not outlive the bag.
func (v *MessageView) RawBytes() ([]byte, error) {
	body, ok := v.bag.bodies[v.chunkHeaderPos]
	if !ok {
		return nil, newErrorf(KindIO, "chunk at %d has not been loaded", v.chunkHeaderPos)
	}
	if v.end > uint32(len(body)) {
		return nil, newErrorf(KindBufferTooSmall, "message view [%d,%d) runs past chunk body of length %d", v.start, v.end, len(body))
	}
	return body[v.start:v.end], nil
}

// Deserializer turns a message's raw bytes, including the leading
// 4-byte length prefix, into a typed value. Implementations are
// produced by a schema-specific code generator outside this package;
// the core never constructs a T itself.
type Deserializer[T any] interface {
	DeserializeMessage(raw []byte) (T, error)
}

// Instantiate passes v's raw bytes to d and returns the resulting
// value, or a Deserialization error if d fails.
func Instantiate[T any](v *MessageView, d Deserializer[T]) (T, error) {
	var zero T
	raw, err := v.RawBytes()
	if err != nil {
		return zero, err
	}
	val, err := d.DeserializeMessage(raw)
	if err != nil {
		return zero, &Error{Kind: KindDeserialization, Msg: "deserializer failed for topic " + v.topic, Err: err}
	}
	return val, nil
}
