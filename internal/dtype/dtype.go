package dtype

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrUnknownType is returned for element type names or widths no Type uses.
var ErrUnknownType = errors.New("unknown element type")

// Type is a field element type.
type Type uint8

const (
	Invalid Type = iota
	Int8
	Int16
	Int32
	Int64
	Float32
	Float64
)

// Size returns the width of one element in bytes.
func (t Type) Size() int {
	switch t {
	case Int8:
		return 1
	case Int16:
		return 2
	case Int32, Float32:
		return 4
	case Int64, Float64:
		return 8
	}
	return 0
}

// String returns the Go name of the type.
func (t Type) String() string {
	switch t {
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	}
	return fmt.Sprintf("invalid(%d)", uint8(t))
}

// EngineName returns the name recorded in the fields table.
func (t Type) EngineName() string {
	switch t {
	case Int8, Int16, Int32, Int64:
		return "int"
	case Float32:
		return "float"
	case Float64:
		return "double"
	}
	return ""
}

// IsFloat reports whether t is a floating point type.
func (t Type) IsFloat() bool {
	return t == Float32 || t == Float64
}

// GoType returns the reflect.Type of one element.
func (t Type) GoType() reflect.Type {
	switch t {
	case Int8:
		return reflect.TypeOf(int8(0))
	case Int16:
		return reflect.TypeOf(int16(0))
	case Int32:
		return reflect.TypeOf(int32(0))
	case Int64:
		return reflect.TypeOf(int64(0))
	case Float32:
		return reflect.TypeOf(float32(0))
	case Float64:
		return reflect.TypeOf(float64(0))
	}
	return nil
}

// Parse resolves an engine element type name and byte width.
func Parse(name string, size int) (Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	switch name {
	case "int", "integer", "long":
		switch size {
		case 1:
			return Int8, nil
		case 2:
			return Int16, nil
		case 4:
			return Int32, nil
		case 8:
			return Int64, nil
		}
	case "float":
		switch size {
		case 4:
			return Float32, nil
		case 8:
			return Float64, nil
		}
	case "double":
		if size == 8 {
			return Float64, nil
		}
	default:
		// Go-style names carry their own width.
		for _, t := range []Type{Int8, Int16, Int32, Int64, Float32, Float64} {
			if name == t.String() && (size == 0 || size == t.Size()) {
				return t, nil
			}
		}
	}
	return Invalid, fmt.Errorf("%w: %q with %d bytes per element", ErrUnknownType, name, size)
}

// Of returns the Type of a Go element kind.
func Of(rt reflect.Type) (Type, error) {
	switch rt.Kind() {
	case reflect.Int8:
		return Int8, nil
	case reflect.Int16:
		return Int16, nil
	case reflect.Int32:
		return Int32, nil
	case reflect.Int64, reflect.Int:
		return Int64, nil
	case reflect.Float32:
		return Float32, nil
	case reflect.Float64:
		return Float64, nil
	}
	return Invalid, fmt.Errorf("%w: Go type %v", ErrUnknownType, rt)
}
