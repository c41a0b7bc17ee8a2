package metainfo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// MarshalJSON encodes v as a JSON scalar. Floating point values always
// carry a fraction or exponent so they decode back as reals.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return strconv.AppendBool(nil, v.Bool()), nil
	case KindInt32:
		return strconv.AppendInt(nil, int64(v.Int()), 10), nil
	case KindFloat32, KindFloat64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("metainfo value %v cannot be represented in JSON", f)
		}
		bitSize := 64
		if v.kind == KindFloat32 {
			bitSize = 32
		}
		out := strconv.AppendFloat(nil, f, 'g', -1, bitSize)
		if !bytes.ContainsAny(out, ".eE") {
			out = append(out, ".0"...)
		}
		return out, nil
	case KindString:
		return json.Marshal(v.str)
	}
	return nil, &UnsupportedTypeError{Value: v}
}

// UnmarshalJSON decodes a JSON scalar. Integral numbers that fit in 32
// bits decode as Int32, all other numbers as Float64.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case bool:
		*v = Bool(x)
	case string:
		*v = String(x)
	case json.Number:
		if i, err := strconv.ParseInt(x.String(), 10, 32); err == nil {
			*v = Int32(int32(i))
			return nil
		}
		f, err := x.Float64()
		if err != nil {
			return fmt.Errorf("metainfo number %q: %w", x, err)
		}
		*v = Float64(f)
	default:
		return fmt.Errorf("metainfo value must be a JSON scalar, got %s", data)
	}
	return nil
}
