package metainfo

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"reflect"
)

// Tag is the engine's type tag for a metainfo value. Negative tags name a
// scalar variant; a non-negative tag is a string of that many bytes.
type Tag int32

const (
	TagBool    Tag = -1
	TagInt32   Tag = -2
	TagFloat32 Tag = -3
	TagFloat64 Tag = -4
)

// StringTag returns the tag for a string of n bytes.
func StringTag(n int) Tag {
	return Tag(n)
}

// Kind returns the variant named by t.
func (t Tag) Kind() Kind {
	switch {
	case t >= 0:
		return KindString
	case t == TagBool:
		return KindBool
	case t == TagInt32:
		return KindInt32
	case t == TagFloat32:
		return KindFloat32
	case t == TagFloat64:
		return KindFloat64
	}
	return KindInvalid
}

// Size returns the payload size in bytes for t, or -1 for unknown tags.
func (t Tag) Size() int {
	switch t.Kind() {
	case KindBool:
		return 1
	case KindInt32, KindFloat32:
		return 4
	case KindFloat64:
		return 8
	case KindString:
		return int(t)
	}
	return -1
}

// Tag returns the engine tag for v.
func (v Value) Tag() Tag {
	switch v.kind {
	case KindBool:
		return TagBool
	case KindInt32:
		return TagInt32
	case KindFloat32:
		return TagFloat32
	case KindFloat64:
		return TagFloat64
	case KindString:
		return StringTag(len(v.str))
	}
	return Tag(math.MinInt32)
}

// ErrUnsupportedType is matched by every UnsupportedTypeError.
var ErrUnsupportedType = errors.New("unsupported metainfo type")

// ErrInvalidTag is returned when decoding a tag no variant uses.
var ErrInvalidTag = errors.New("invalid metainfo tag")

// UnsupportedTypeError reports a Go value with no metainfo variant.
type UnsupportedTypeError struct {
	Value any
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported metainfo type: %v (%T)", e.Value, e.Value)
}

func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// Encode converts a native Go value into a Value. Integers of any width
// are narrowed to 32 bits.
func Encode(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		if !x.IsValid() {
			return Value{}, &UnsupportedTypeError{Value: v}
		}
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int32(int32(x)), nil
	case int8:
		return Int32(int32(x)), nil
	case int16:
		return Int32(int32(x)), nil
	case int32:
		return Int32(x), nil
	case int64:
		return Int32(int32(x)), nil
	case uint:
		return Int32(int32(x)), nil
	case uint8:
		return Int32(int32(x)), nil
	case uint16:
		return Int32(int32(x)), nil
	case uint32:
		return Int32(int32(x)), nil
	case uint64:
		return Int32(int32(x)), nil
	case float32:
		return Float32(x), nil
	case float64:
		return Float64(x), nil
	case string:
		return String(x), nil
	case []byte:
		return String(string(x)), nil
	case nil:
		return Value{}, &UnsupportedTypeError{Value: v}
	}

	// Named types fall back to their underlying kind.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int32(int32(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Int32(int32(rv.Uint())), nil
	case reflect.Float32:
		return Float32(float32(rv.Float())), nil
	case reflect.Float64:
		return Float64(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	}
	return Value{}, &UnsupportedTypeError{Value: v}
}

// Marshal encodes a native Go value into its engine tag and payload.
func Marshal(v any) (Tag, []byte, error) {
	val, err := Encode(v)
	if err != nil {
		return 0, nil, err
	}
	return val.Tag(), val.Payload(), nil
}

// Payload returns the little-endian payload of v.
func (v Value) Payload() []byte {
	switch v.kind {
	case KindBool:
		return []byte{byte(v.bits)}
	case KindInt32, KindFloat32:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(v.bits))
		return buf
	case KindFloat64:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, v.bits)
		return buf
	case KindString:
		return []byte(v.str)
	}
	return nil
}

// Unmarshal decodes a payload according to its tag.
func Unmarshal(tag Tag, payload []byte) (Value, error) {
	size := tag.Size()
	if size < 0 {
		return Value{}, fmt.Errorf("%w: %d", ErrInvalidTag, tag)
	}
	if len(payload) < size {
		return Value{}, fmt.Errorf("metainfo payload too short for tag %d: got %d bytes, want %d",
			tag, len(payload), size)
	}
	payload = payload[:size]

	switch tag.Kind() {
	case KindBool:
		return Bool(payload[0] != 0), nil
	case KindInt32:
		return Int32(int32(binary.LittleEndian.Uint32(payload))), nil
	case KindFloat32:
		return Float32(math.Float32frombits(binary.LittleEndian.Uint32(payload))), nil
	case KindFloat64:
		return Float64(math.Float64frombits(binary.LittleEndian.Uint64(payload))), nil
	default:
		return String(string(payload)), nil
	}
}
