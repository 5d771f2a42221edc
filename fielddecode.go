package rosbag

import (
	"encoding/binary"
	"math"
)

// FieldReader reads sequential fields out of a message's serialized
// ROS binary format: fixed-width primitives and times in wire order, and
// length-prefixed strings. It has no reader for arrays. It is
// building-block support for
// hand-written Deserializer implementations; this package never uses
// it to decode messages itself, since the wire layout of a given
// message type is schema-specific and the schema is outside this
// package's scope.
//
// A zero FieldReader is not usable; construct one with NewFieldReader.
type FieldReader struct {
	buf []byte
	pos int
}

// NewFieldReader returns a reader positioned at the start of buf. When
// buf is a MessageView's RawBytes(), its first 4 bytes are the record's
// own length prefix rather than message content; callers typically
// discard them with ReadUint32 before reading the first real field.
func NewFieldReader(buf []byte) *FieldReader {
	return &FieldReader{buf: buf}
}

func (r *FieldReader) need(n int) error {
	if r.pos+n > len(r.buf) {
		return newErrorf(KindBufferTooSmall, "field read needs %d bytes at offset %d, have %d", n, r.pos, len(r.buf))
	}
	return nil
}

// Remaining returns the number of unread bytes.
func (r *FieldReader) Remaining() int {
	return len(r.buf) - r.pos
}

// ReadBool reads a one-byte boolean.
func (r *FieldReader) ReadBool() (bool, error) {
	if err := r.need(1); err != nil {
		return false, err
	}
	v := r.buf[r.pos] != 0
	r.pos++
	return v, nil
}

// ReadInt8 reads a one-byte signed integer.
func (r *FieldReader) ReadInt8() (int8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := int8(r.buf[r.pos])
	r.pos++
	return v, nil
}

// ReadUint8 reads a one-byte unsigned integer.
func (r *FieldReader) ReadUint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// ReadInt16 reads a little-endian two-byte signed integer.
func (r *FieldReader) ReadInt16() (int16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := int16(binary.LittleEndian.Uint16(r.buf[r.pos:]))
	r.pos += 2
	return v, nil
}

// ReadUint16 reads a little-endian two-byte unsigned integer.
func (r *FieldReader) ReadUint16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadInt32 reads a little-endian four-byte signed integer.
func (r *FieldReader) ReadInt32() (int32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := int32(binary.LittleEndian.Uint32(r.buf[r.pos:]))
	r.pos += 4
	return v, nil
}

// ReadUint32 reads a little-endian four-byte unsigned integer.
func (r *FieldReader) ReadUint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadInt64 reads a little-endian eight-byte signed integer.
func (r *FieldReader) ReadInt64() (int64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := int64(binary.LittleEndian.Uint64(r.buf[r.pos:]))
	r.pos += 8
	return v, nil
}

// ReadUint64 reads a little-endian eight-byte unsigned integer.
func (r *FieldReader) ReadUint64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadFloat32 reads a little-endian IEEE-754 single-precision float.
func (r *FieldReader) ReadFloat32() (float32, error) {
	bits, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// ReadFloat64 reads a little-endian IEEE-754 double-precision float.
func (r *FieldReader) ReadFloat64() (float64, error) {
	bits, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// ReadString reads a ROS string: a u32 length prefix followed by that
// many raw (non-NUL-terminated) bytes.
func (r *FieldReader) ReadString() (string, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	if err := r.need(int(n)); err != nil {
		return "", err
	}
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

// ReadTime reads a ROS time value: two little-endian u32 fields, secs
// then nsecs.
func (r *FieldReader) ReadTime() (Time, error) {
	if err := r.need(8); err != nil {
		return Time{}, err
	}
	t, err := timeFrom(r.buf[r.pos : r.pos+8])
	if err != nil {
		return Time{}, err
	}
	r.pos += 8
	return t, nil
}
