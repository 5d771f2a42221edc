package rosbag

// ConnectionID is the bag writer's opaque identifier for a connection,
// dense enough to use directly as a map key.
type ConnectionID uint32

// ConnectionData describes one connection: the (topic, type) pair
// messages are published under, plus the metadata needed to make sense
// of its serialized payloads.
type ConnectionData struct {
	ConnectionID      ConnectionID
	Topic             string
	DataType          string
	MD5Sum            string
	MessageDefinition string
	CallerID          string
	HasCallerID       bool
	Latching          bool
}

// connectionRecordHeader holds the fields carried in a ConnectionHeader
// record's own header, as opposed to its length-prefixed data payload.
type connectionRecordHeader struct {
	topic        string
	connectionID ConnectionID
}

func parseConnectionRecordHeader(header []byte) (connectionRecordHeader, error) {
	var fields connectionRecordHeader
	var haveTopic, haveConn bool

	err := forEachHeaderField(header, func(name, value []byte) error {
		switch string(name) {
		case "topic":
			fields.topic = string(value)
			haveTopic = true
		case "conn":
			v, err := parseU32LEAt(value, 0)
			if err != nil {
				return err
			}
			fields.connectionID = ConnectionID(v)
			haveConn = true
		case "op":
			return checkOp("ConnectionHeader", OpConnectionHeader, value)
		default:
			return unexpectedField("ConnectionHeader", name)
		}
		return nil
	})
	if err != nil {
		return fields, err
	}
	if !haveTopic {
		return fields, missingField("ConnectionHeader", "topic")
	}
	if !haveConn {
		return fields, missingField("ConnectionHeader", "conn")
	}
	return fields, nil
}

// parseConnectionData decodes a ConnectionHeader record's data payload,
// itself a secondary field list, into a ConnectionData. topic and
// connID come from the record's own header, which is authoritative over
// any "topic" field repeated in the data section.
func parseConnectionData(buf []byte, connID ConnectionID, topic string) (ConnectionData, error) {
	data := ConnectionData{ConnectionID: connID, Topic: topic}
	var haveType, haveMD5, haveDef bool

	err := forEachHeaderField(buf, func(name, value []byte) error {
		switch string(name) {
		case "topic":
			// The header's topic field is authoritative; this one is ignored.
		case "type":
			data.DataType = string(value)
			haveType = true
		case "md5sum":
			data.MD5Sum = string(value)
			haveMD5 = true
		case "message_definition":
			data.MessageDefinition = string(value)
			haveDef = true
		case "callerid":
			data.CallerID = string(value)
			data.HasCallerID = true
		case "latching":
			data.Latching = len(value) > 0 && value[0] == '1'
		default:
			return unexpectedField("ConnectionData", name)
		}
		return nil
	})
	if err != nil {
		return data, err
	}
	if !haveType {
		return data, missingField("ConnectionData", "type")
	}
	if !haveMD5 {
		return data, missingField("ConnectionData", "md5sum")
	}
	if !haveDef {
		return data, missingField("ConnectionData", "message_definition")
	}
	if data.Topic == "" {
		return data, newErrorf(KindInvalidBag, "connection %d has an empty topic", connID)
	}
	if data.DataType == "" {
		return data, newErrorf(KindInvalidBag, "connection %d has an empty type", connID)
	}
	return data, nil
}
