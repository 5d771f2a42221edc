package rosbag

// Op is the one-byte discriminant in a record header's "op" field.
type Op uint8

const (
	OpMessageData      Op = 0x02
	OpBagHeader        Op = 0x03
	OpIndexDataHeader  Op = 0x04
	OpChunkHeader      Op = 0x05
	OpChunkInfoHeader  Op = 0x06
	OpConnectionHeader Op = 0x07
)

func (op Op) String() string {
	switch op {
	case OpMessageData:
		return "MessageData"
	case OpBagHeader:
		return "BagHeader"
	case OpIndexDataHeader:
		return "IndexDataHeader"
	case OpChunkHeader:
		return "ChunkHeader"
	case OpChunkInfoHeader:
		return "ChunkInfoHeader"
	case OpConnectionHeader:
		return "ConnectionHeader"
	default:
		return "Invalid"
	}
}

// opFromByte maps a raw op byte to an Op, or KindInvalidOpCode.
func opFromByte(b uint8) (Op, error) {
	switch Op(b) {
	case OpMessageData, OpBagHeader, OpIndexDataHeader, OpChunkHeader, OpChunkInfoHeader, OpConnectionHeader:
		return Op(b), nil
	default:
		return 0, newErrorf(KindInvalidOpCode, "unrecognized op code 0x%02x", b)
	}
}

// forEachHeaderField walks a record header's flat "<u32 len><name>=<value>"
// field list, calling fn for each field in file order. It does not
// validate field names; callers switch on name themselves so that an
// unrecognized field surfaces as UnexpectedField with the record kind's
// own context.
func forEachHeaderField(header []byte, fn func(name, value []byte) error) error {
	i := 0
	for i < len(header) {
		fieldLen, err := parseU32LEAt(header, i)
		if err != nil {
			return err
		}
		i += lenInBytes

		end := i + int(fieldLen)
		if end > len(header) {
			return newErrorf(KindBufferTooSmall, "header field claims length %d past end of header", fieldLen)
		}
		field := header[i:end]

		sep, err := fieldSepIndex(field)
		if err != nil {
			return err
		}

		if err := fn(field[:sep], field[sep+1:]); err != nil {
			return err
		}

		i = end
	}
	return nil
}

// findOp scans a record's header fields for "op" and decodes it. Every
// record kind requires exactly one "op" field; its absence is
// MissingField, and an unrecognized value is InvalidOpCode.
func findOp(header []byte) (Op, error) {
	var op Op
	found := false

	err := forEachHeaderField(header, func(name, value []byte) error {
		if string(name) == "op" {
			b, err := parseU8At(value, 0)
			if err != nil {
				return err
			}
			op, err = opFromByte(b)
			if err != nil {
				return err
			}
			found = true
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, newErrorf(KindMissingField, "missing field 'op' in record header")
	}
	return op, nil
}

// checkOp verifies that a record's own "op" field matches the op code
// expected for the record kind currently being parsed.
func checkOp(recordName string, expected Op, value []byte) error {
	b, err := parseU8At(value, 0)
	if err != nil {
		return err
	}
	actual, err := opFromByte(b)
	if err != nil {
		return err
	}
	if actual != expected {
		return newErrorf(KindUnexpectedOpCode, "expected op %s in %s, found %s", expected, recordName, actual)
	}
	return nil
}

func unexpectedField(recordName string, name []byte) error {
	return newErrorf(KindUnexpectedField, "unexpected field %q in %s", name, recordName)
}

func missingField(recordName, field string) error {
	return newErrorf(KindMissingField, "missing field %q in %s", field, recordName)
}
