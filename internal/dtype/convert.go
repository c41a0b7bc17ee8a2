package dtype

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
)

func checkLen(t Type, raw []byte) (int, error) {
	size := t.Size()
	if size == 0 {
		return 0, fmt.Errorf("%w: %v", ErrUnknownType, t)
	}
	if len(raw)%size != 0 {
		return 0, fmt.Errorf("buffer of %d bytes is not a multiple of %v elements", len(raw), t)
	}
	return len(raw) / size, nil
}

// Decode converts a raw little-endian buffer to a typed slice.
func Decode(t Type, raw []byte) (any, error) {
	n, err := checkLen(t, raw)
	if err != nil {
		return nil, err
	}

	le := binary.LittleEndian
	switch t {
	case Int8:
		out := make([]int8, n)
		for i := range out {
			out[i] = int8(raw[i])
		}
		return out, nil
	case Int16:
		out := make([]int16, n)
		for i := range out {
			out[i] = int16(le.Uint16(raw[i*2:]))
		}
		return out, nil
	case Int32:
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(le.Uint32(raw[i*4:]))
		}
		return out, nil
	case Int64:
		out := make([]int64, n)
		for i := range out {
			out[i] = int64(le.Uint64(raw[i*8:]))
		}
		return out, nil
	case Float32:
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(le.Uint32(raw[i*4:]))
		}
		return out, nil
	default:
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Float64frombits(le.Uint64(raw[i*8:]))
		}
		return out, nil
	}
}

// Float64At returns element i of raw widened to float64.
func Float64At(t Type, raw []byte, i int) float64 {
	le := binary.LittleEndian
	switch t {
	case Int8:
		return float64(int8(raw[i]))
	case Int16:
		return float64(int16(le.Uint16(raw[i*2:])))
	case Int32:
		return float64(int32(le.Uint32(raw[i*4:])))
	case Int64:
		return float64(int64(le.Uint64(raw[i*8:])))
	case Float32:
		return float64(math.Float32frombits(le.Uint32(raw[i*4:])))
	case Float64:
		return math.Float64frombits(le.Uint64(raw[i*8:]))
	}
	return math.NaN()
}

// Float64s widens every element of raw to float64.
func Float64s(t Type, raw []byte) ([]float64, error) {
	n, err := checkLen(t, raw)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = Float64At(t, raw, i)
	}
	return out, nil
}

// Encode converts a slice of a supported element type to its raw
// little-endian buffer. Slices of int are stored as Int64.
func Encode(data any) (Type, []byte, error) {
	rv := reflect.ValueOf(data)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return Invalid, nil, fmt.Errorf("encode: expected slice, got %T", data)
	}
	t, err := Of(rv.Type().Elem())
	if err != nil {
		return Invalid, nil, err
	}

	n := rv.Len()
	size := t.Size()
	raw := make([]byte, n*size)
	le := binary.LittleEndian
	for i := 0; i < n; i++ {
		elem := rv.Index(i)
		off := i * size
		switch t {
		case Int8:
			raw[off] = byte(elem.Int())
		case Int16:
			le.PutUint16(raw[off:], uint16(elem.Int()))
		case Int32:
			le.PutUint32(raw[off:], uint32(elem.Int()))
		case Int64:
			le.PutUint64(raw[off:], uint64(elem.Int()))
		case Float32:
			le.PutUint32(raw[off:], math.Float32bits(float32(elem.Float())))
		case Float64:
			le.PutUint64(raw[off:], math.Float64bits(elem.Float()))
		}
	}
	return t, raw, nil
}
