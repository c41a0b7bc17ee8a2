package metainfo

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt32
	KindFloat32
	KindFloat64
	KindString
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt32:
		return "int32"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(k))
	}
}

// Value is a single metainfo value. The zero Value is invalid.
//
// Values are comparable with == and can be used as map keys; floating
// point values compare by bit pattern.
type Value struct {
	kind Kind
	bits uint64
	str  string
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	if b {
		return Value{kind: KindBool, bits: 1}
	}
	return Value{kind: KindBool}
}

// Int32 returns an integer value.
func Int32(i int32) Value {
	return Value{kind: KindInt32, bits: uint64(uint32(i))}
}

// Float32 returns a single precision value.
func Float32(f float32) Value {
	return Value{kind: KindFloat32, bits: uint64(math.Float32bits(f))}
}

// Float64 returns a double precision value.
func Float64(f float64) Value {
	return Value{kind: KindFloat64, bits: math.Float64bits(f)}
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Kind returns the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds a value.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// Bool returns the boolean held by v, or false for other kinds.
func (v Value) Bool() bool {
	return v.kind == KindBool && v.bits != 0
}

// Int returns the integer held by v. Floating point values are truncated.
func (v Value) Int() int32 {
	switch v.kind {
	case KindBool, KindInt32:
		return int32(uint32(v.bits))
	case KindFloat32, KindFloat64:
		return int32(v.Float())
	}
	return 0
}

// Float returns v as a float64 for any numeric kind.
func (v Value) Float() float64 {
	switch v.kind {
	case KindBool, KindInt32:
		return float64(int32(uint32(v.bits)))
	case KindFloat32:
		return float64(math.Float32frombits(uint32(v.bits)))
	case KindFloat64:
		return math.Float64frombits(v.bits)
	}
	return 0
}

// Interface returns the native Go value: bool, int32, float32, float64
// or string. It returns nil for the zero Value.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.Bool()
	case KindInt32:
		return int32(uint32(v.bits))
	case KindFloat32:
		return math.Float32frombits(uint32(v.bits))
	case KindFloat64:
		return math.Float64frombits(v.bits)
	case KindString:
		return v.str
	}
	return nil
}

// String formats v. String values are returned unquoted.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.Bool())
	case KindInt32:
		return strconv.FormatInt(int64(v.Int()), 10)
	case KindFloat32:
		return strconv.FormatFloat(v.Float(), 'g', -1, 32)
	case KindFloat64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case KindString:
		return v.str
	}
	return "<invalid>"
}

// Equal reports whether v and w hold the same variant and value.
func (v Value) Equal(w Value) bool {
	return v == w
}

// Compare orders v against w. Values of different kinds are ordered by
// kind; within a kind the natural order applies.
func (v Value) Compare(w Value) int {
	if v.kind != w.kind {
		return cmp.Compare(v.kind, w.kind)
	}
	switch v.kind {
	case KindBool, KindInt32:
		return cmp.Compare(v.Int(), w.Int())
	case KindFloat32, KindFloat64:
		return cmp.Compare(v.Float(), w.Float())
	case KindString:
		return cmp.Compare(v.str, w.str)
	}
	return 0
}
