package rosbag

// testStringMsg mirrors std_msgs/String: a single string field.
type testStringMsg struct {
	Data string
}

type stringDeserializer struct{}

func (stringDeserializer) DeserializeMessage(raw []byte) (testStringMsg, error) {
	r := NewFieldReader(raw)
	if _, err := r.ReadUint32(); err != nil { // discard the duplicated data_len prefix
		return testStringMsg{}, err
	}
	s, err := r.ReadString()
	if err != nil {
		return testStringMsg{}, err
	}
	return testStringMsg{Data: s}, nil
}

// testTimeMsg mirrors std_msgs/Time: a single fixed-width time field.
// Unlike stringDeserializer, it insists on consuming every byte of the
// payload, which is what makes it reliably reject a std_msgs/String
// payload instead of silently reinterpreting the wrong bytes.
type testTimeMsg struct {
	Value Time
}

type timeDeserializer struct{}

func (timeDeserializer) DeserializeMessage(raw []byte) (testTimeMsg, error) {
	r := NewFieldReader(raw)
	if _, err := r.ReadUint32(); err != nil {
		return testTimeMsg{}, err
	}
	t, err := r.ReadTime()
	if err != nil {
		return testTimeMsg{}, err
	}
	if r.Remaining() != 0 {
		return testTimeMsg{}, newErrorf(KindDeserialization, "trailing %d bytes after a std_msgs/Time payload", r.Remaining())
	}
	return testTimeMsg{Value: t}, nil
}
