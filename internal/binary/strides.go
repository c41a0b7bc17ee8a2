package binary

import "fmt"

// RowMajorStrides returns byte strides for a 4-axis buffer of the given
// sizes laid out with the last axis varying fastest.
func RowMajorStrides(sizes [4]int, elemSize int) [4]int {
	var s [4]int
	stride := elemSize
	for axis := 3; axis >= 0; axis-- {
		s[axis] = stride
		stride *= sizes[axis]
	}
	return s
}

// ColumnMajorStrides returns byte strides for a 4-axis buffer laid out
// with the first axis varying fastest.
func ColumnMajorStrides(sizes [4]int, elemSize int) [4]int {
	var s [4]int
	stride := elemSize
	for axis := 0; axis < 4; axis++ {
		s[axis] = stride
		stride *= sizes[axis]
	}
	return s
}

// Extent returns the number of bytes a buffer of sizes occupies.
func Extent(sizes [4]int, elemSize int) int {
	return sizes[0] * sizes[1] * sizes[2] * sizes[3] * elemSize
}

func checkStrided(buf []byte, sizes, strides [4]int, elemSize int) error {
	last := 0
	for axis := 0; axis < 4; axis++ {
		if sizes[axis] < 1 {
			return fmt.Errorf("axis %d has size %d", axis, sizes[axis])
		}
		if strides[axis] < 0 {
			return fmt.Errorf("axis %d has negative stride %d", axis, strides[axis])
		}
		last += (sizes[axis] - 1) * strides[axis]
	}
	if last+elemSize > len(buf) {
		return fmt.Errorf("strided buffer of %d bytes too small for sizes %v strides %v", len(buf), sizes, strides)
	}
	return nil
}

// Pack gathers a strided buffer into a contiguous record in column-major
// order (i fastest, l slowest), the order records are stored in.
func Pack(src []byte, sizes, strides [4]int, elemSize int) ([]byte, error) {
	if err := checkStrided(src, sizes, strides, elemSize); err != nil {
		return nil, err
	}
	out := make([]byte, Extent(sizes, elemSize))
	pos := 0
	for l := 0; l < sizes[3]; l++ {
		for k := 0; k < sizes[2]; k++ {
			for j := 0; j < sizes[1]; j++ {
				base := j*strides[1] + k*strides[2] + l*strides[3]
				for i := 0; i < sizes[0]; i++ {
					off := base + i*strides[0]
					copy(out[pos:pos+elemSize], src[off:off+elemSize])
					pos += elemSize
				}
			}
		}
	}
	return out, nil
}

// Unpack scatters a column-major record into a strided destination.
func Unpack(dst, record []byte, sizes, strides [4]int, elemSize int) error {
	if err := checkStrided(dst, sizes, strides, elemSize); err != nil {
		return err
	}
	if want := Extent(sizes, elemSize); len(record) < want {
		return fmt.Errorf("record of %d bytes shorter than field extent %d", len(record), want)
	}
	pos := 0
	for l := 0; l < sizes[3]; l++ {
		for k := 0; k < sizes[2]; k++ {
			for j := 0; j < sizes[1]; j++ {
				base := j*strides[1] + k*strides[2] + l*strides[3]
				for i := 0; i < sizes[0]; i++ {
					off := base + i*strides[0]
					copy(dst[off:off+elemSize], record[pos:pos+elemSize])
					pos += elemSize
				}
			}
		}
	}
	return nil
}
