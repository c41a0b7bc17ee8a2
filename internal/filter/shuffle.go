package filter

// Shuffle implements the byte shuffle filter.
// This filter rearranges bytes to improve compression by grouping
// similar byte positions together (e.g., all MSBs, then all next bytes, etc.).
type Shuffle struct {
	elemSize int
}

// NewShuffle creates a new shuffle filter for elements of elemSize bytes.
func NewShuffle(elemSize uint32) *Shuffle {
	size := 1
	if elemSize > 0 {
		size = int(elemSize)
	}
	return &Shuffle{elemSize: size}
}

func (f *Shuffle) ID() uint8 {
	return FilterShuffle
}

// Encode groups byte j of every element together.
// Trailing bytes that do not form a whole element are kept in place.
func (f *Shuffle) Encode(input []byte) ([]byte, error) {
	numElems := len(input) / f.elemSize
	if f.elemSize <= 1 || numElems == 0 {
		return input, nil
	}

	output := make([]byte, len(input))
	for i := 0; i < numElems; i++ {
		for j := 0; j < f.elemSize; j++ {
			output[j*numElems+i] = input[i*f.elemSize+j]
		}
	}
	copy(output[numElems*f.elemSize:], input[numElems*f.elemSize:])
	return output, nil
}

// Decode reverses the shuffle transformation.
// Input is organized as: [all byte 0s][all byte 1s]...[all byte N-1s]
// Output is organized as: [elem0][elem1]...[elemM]
func (f *Shuffle) Decode(input []byte) ([]byte, error) {
	numElems := len(input) / f.elemSize
	if f.elemSize <= 1 || numElems == 0 {
		return input, nil
	}

	output := make([]byte, len(input))

	// Unshuffle: gather bytes from grouped positions into elements
	for i := 0; i < numElems; i++ {
		for j := 0; j < f.elemSize; j++ {
			// In shuffled format, byte j of all elements is at offset j*numElems
			output[i*f.elemSize+j] = input[j*numElems+i]
		}
	}
	copy(output[numElems*f.elemSize:], input[numElems*f.elemSize:])

	return output, nil
}
