package queue

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/mercadolab/workflow-engine/internal/model"
)

// ErrCorruptedEnvelope is returned when a queue message cannot be
// decoded into a LightTask. The caller should log and drop the
// message; the authoritative Task row, if any, is unaffected.
var ErrCorruptedEnvelope = errors.New("corrupted queue envelope")

// Field numbers for the LightTask wire envelope, encoded in ascending
// order with the real protobuf wire format (field 1 = uid, field 2 =
// path, field 3 = optional on_failure) so the record is deterministic
// and length-prefix-aware without inventing a bespoke binary format.
const (
	fieldUID       protowire.Number = 1
	fieldPath      protowire.Number = 2
	fieldOnFailure protowire.Number = 3
)

// EncodeLightTask serializes a LightTask as a deterministic binary
// record: fields are written in ascending field-number order per the
// protobuf wire format, uid as a varint and the string fields
// length-prefixed.
func EncodeLightTask(t model.LightTask) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldUID, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(uint32(t.UID)))

	b = protowire.AppendTag(b, fieldPath, protowire.BytesType)
	b = protowire.AppendString(b, t.Path)

	if t.OnFailure != nil {
		b = protowire.AppendTag(b, fieldOnFailure, protowire.BytesType)
		b = protowire.AppendString(b, *t.OnFailure)
	}

	return b
}

// DecodeLightTask parses a binary record produced by EncodeLightTask.
func DecodeLightTask(data []byte) (model.LightTask, error) {
	var t model.LightTask
	var sawUID, sawPath bool

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return model.LightTask{}, fmt.Errorf("%w: %v", ErrCorruptedEnvelope, protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldUID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return model.LightTask{}, fmt.Errorf("%w: %v", ErrCorruptedEnvelope, protowire.ParseError(n))
			}
			t.UID = int32(uint32(v))
			sawUID = true
			data = data[n:]

		case num == fieldPath && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return model.LightTask{}, fmt.Errorf("%w: %v", ErrCorruptedEnvelope, protowire.ParseError(n))
			}
			t.Path = v
			sawPath = true
			data = data[n:]

		case num == fieldOnFailure && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return model.LightTask{}, fmt.Errorf("%w: %v", ErrCorruptedEnvelope, protowire.ParseError(n))
			}
			onFailure := v
			t.OnFailure = &onFailure
			data = data[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return model.LightTask{}, fmt.Errorf("%w: %v", ErrCorruptedEnvelope, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}

	if !sawUID || !sawPath {
		return model.LightTask{}, fmt.Errorf("%w: missing required field", ErrCorruptedEnvelope)
	}

	return t, nil
}
