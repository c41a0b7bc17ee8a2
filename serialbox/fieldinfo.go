package serialbox

import (
	"fmt"

	"github.com/robert-malhotra/go-serialbox/internal/dtype"
	"github.com/robert-malhotra/go-serialbox/internal/engine"
)

// DataType is the element type of a field.
type DataType = dtype.Type

const (
	TypeInt8    = dtype.Int8
	TypeInt16   = dtype.Int16
	TypeInt32   = dtype.Int32
	TypeInt64   = dtype.Int64
	TypeFloat32 = dtype.Float32
	TypeFloat64 = dtype.Float64
)

// Axis names, in storage order.
const (
	AxisI = iota
	AxisJ
	AxisK
	AxisL
)

// FieldInfo describes a registered field. Sizes include the halo.
type FieldInfo struct {
	Name string
	// ElementType is the type name recorded by the engine, e.g. "double".
	ElementType     string
	Type            DataType
	BytesPerElement int
	Sizes           [4]int
	MinusHalo       [4]int
	PlusHalo        [4]int
}

// NewFieldInfo describes a field of the given type and sizes with no
// halo. Unset trailing sizes default to 1.
func NewFieldInfo(name string, typ DataType, sizes ...int) FieldInfo {
	f := FieldInfo{
		Name:            name,
		ElementType:     typ.EngineName(),
		Type:            typ,
		BytesPerElement: typ.Size(),
		Sizes:           [4]int{1, 1, 1, 1},
	}
	copy(f.Sizes[:], sizes)
	return f
}

// WithHalo returns a copy of f with the halo of one axis set.
func (f FieldInfo) WithHalo(axis, minus, plus int) FieldInfo {
	f.MinusHalo[axis] = minus
	f.PlusHalo[axis] = plus
	return f
}

// Shape returns the full sizes (i, j, k, l).
func (f FieldInfo) Shape() [4]int {
	return f.Sizes
}

// InnerShape returns the sizes with the halo removed.
func (f FieldInfo) InnerShape() [4]int {
	var s [4]int
	for axis := range s {
		s[axis] = f.Sizes[axis] - f.MinusHalo[axis] - f.PlusHalo[axis]
	}
	return s
}

// Rank returns the number of axes whose size differs from 1.
func (f FieldInfo) Rank() int {
	return f.layout().Rank()
}

// Len returns the number of elements including the halo.
func (f FieldInfo) Len() int {
	return f.Sizes[0] * f.Sizes[1] * f.Sizes[2] * f.Sizes[3]
}

func (f FieldInfo) String() string {
	return fmt.Sprintf("%s (%s) [%d,%d,%d,%d] halo i(%d,%d) j(%d,%d) k(%d,%d) l(%d,%d)",
		f.Name, f.ElementType,
		f.Sizes[0], f.Sizes[1], f.Sizes[2], f.Sizes[3],
		f.MinusHalo[0], f.PlusHalo[0], f.MinusHalo[1], f.PlusHalo[1],
		f.MinusHalo[2], f.PlusHalo[2], f.MinusHalo[3], f.PlusHalo[3])
}

func (f FieldInfo) layout() engine.Layout {
	return engine.Layout{
		BytesPerElement: f.BytesPerElement,
		Sizes:           f.Sizes,
		MinusHalo:       f.MinusHalo,
		PlusHalo:        f.PlusHalo,
	}
}

func fieldInfoFrom(name, typeName string, l engine.Layout) (FieldInfo, error) {
	t, err := dtype.Parse(typeName, l.BytesPerElement)
	if err != nil {
		return FieldInfo{}, fmt.Errorf("field %q: %w", name, err)
	}
	return FieldInfo{
		Name:            name,
		ElementType:     typeName,
		Type:            t,
		BytesPerElement: l.BytesPerElement,
		Sizes:           l.Sizes,
		MinusHalo:       l.MinusHalo,
		PlusHalo:        l.PlusHalo,
	}, nil
}
