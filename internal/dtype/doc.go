// Package dtype describes the element types a serializer stores and
// converts raw field buffers to and from Go slices.
//
// The engine records an element type as a name plus a width in bytes.
// Names written by different front-ends vary, so parsing accepts every
// spelling observed in stores:
//
//	Name                 | Width | Type
//	---------------------|-------|---------
//	int, integer         | 1     | Int8
//	int, integer         | 2     | Int16
//	int, integer         | 4     | Int32
//	int, integer, long   | 8     | Int64
//	float                | 4     | Float32
//	float32              | 4     | Float32
//	double, float        | 8     | Float64
//	float64              | 8     | Float64
//
// Raw buffers are little-endian. [Decode] returns a typed slice
// ([]int32, []float64, ...); [Encode] goes the other way and infers the
// Type from the slice's element type. [Float64s] widens any buffer to
// float64 for numeric comparison.
package dtype
