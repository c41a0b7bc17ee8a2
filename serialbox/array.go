package serialbox

import (
	"fmt"
	"slices"

	"github.com/robert-malhotra/go-serialbox/internal/dtype"
)

// Array is a row-major n-dimensional view over field data. Views built
// by BuildView share the buffer of the array they were built from.
type Array struct {
	typ     DataType
	raw     []byte
	shape   []int
	strides []int // in elements
	offset  int   // in elements
}

func newArray(typ DataType, raw []byte, shape []int) *Array {
	strides := make([]int, len(shape))
	stride := 1
	for axis := len(shape) - 1; axis >= 0; axis-- {
		strides[axis] = stride
		stride *= shape[axis]
	}
	return &Array{typ: typ, raw: raw, shape: slices.Clone(shape), strides: strides}
}

// NewArray wraps a flat slice of a supported element type as an array of
// the given shape. The product of shape must equal the slice length.
func NewArray(data any, shape ...int) (*Array, error) {
	typ, raw, err := dtype.Encode(data)
	if err != nil {
		return nil, err
	}
	n := 1
	for _, s := range shape {
		if s < 1 {
			return nil, fmt.Errorf("invalid shape %v", shape)
		}
		n *= s
	}
	if n*typ.Size() != len(raw) {
		return nil, fmt.Errorf("shape %v needs %d elements, data has %d", shape, n, len(raw)/typ.Size())
	}
	return newArray(typ, raw, shape), nil
}

// DataType returns the element type.
func (a *Array) DataType() DataType { return a.typ }

// Shape returns the extent of each axis.
func (a *Array) Shape() []int { return slices.Clone(a.shape) }

// NDim returns the number of axes.
func (a *Array) NDim() int { return len(a.shape) }

// Len returns the number of elements.
func (a *Array) Len() int {
	n := 1
	for _, s := range a.shape {
		n *= s
	}
	return n
}

func (a *Array) index(idx []int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("serialbox: %d indices for %d-dimensional array", len(idx), len(a.shape)))
	}
	off := a.offset
	for axis, i := range idx {
		if i < 0 || i >= a.shape[axis] {
			panic(fmt.Sprintf("serialbox: index %d out of range [0, %d) on axis %d", i, a.shape[axis], axis))
		}
		off += i * a.strides[axis]
	}
	return off
}

// At returns the element at idx widened to float64. It panics if idx is
// out of range.
func (a *Array) At(idx ...int) float64 {
	return dtype.Float64At(a.typ, a.raw, a.index(idx))
}

// each calls fn with the element offset of every element in row-major
// order.
func (a *Array) each(fn func(off int)) {
	if len(a.shape) == 0 || a.Len() == 0 {
		return
	}
	idx := make([]int, len(a.shape))
	for {
		off := a.offset
		for axis, i := range idx {
			off += i * a.strides[axis]
		}
		fn(off)

		axis := len(idx) - 1
		for ; axis >= 0; axis-- {
			idx[axis]++
			if idx[axis] < a.shape[axis] {
				break
			}
			idx[axis] = 0
		}
		if axis < 0 {
			return
		}
	}
}

// Bytes returns a contiguous little-endian copy of the elements.
func (a *Array) Bytes() []byte {
	size := a.typ.Size()
	out := make([]byte, 0, a.Len()*size)
	a.each(func(off int) {
		out = append(out, a.raw[off*size:(off+1)*size]...)
	})
	return out
}

// Float64s returns the elements widened to float64, in row-major order.
func (a *Array) Float64s() []float64 {
	out := make([]float64, 0, a.Len())
	a.each(func(off int) {
		out = append(out, dtype.Float64At(a.typ, a.raw, off))
	})
	return out
}

// Data returns the elements as a typed slice ([]float64, []int32, ...)
// in row-major order.
func (a *Array) Data() any {
	out, err := dtype.Decode(a.typ, a.Bytes())
	if err != nil {
		// The buffer always holds whole elements of a.typ.
		panic(err)
	}
	return out
}

func (a *Array) String() string {
	return fmt.Sprintf("Array(%s, %v)", a.typ, a.shape)
}
