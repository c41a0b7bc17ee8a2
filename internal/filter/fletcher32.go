package filter

import (
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/go-serialbox/internal/binary"
)

// Fletcher32Filter implements the Fletcher-32 checksum filter.
// This filter validates data integrity by checking a checksum
// appended to the data.
type Fletcher32Filter struct{}

// NewFletcher32 creates a new Fletcher-32 filter. The parameter is unused.
func NewFletcher32(uint32) *Fletcher32Filter {
	return &Fletcher32Filter{}
}

func (f *Fletcher32Filter) ID() uint8 {
	return FilterFletcher32
}

// Encode appends the little-endian checksum of input.
func (f *Fletcher32Filter) Encode(input []byte) ([]byte, error) {
	out := make([]byte, len(input)+4)
	copy(out, input)
	binary.LittleEndian.PutUint32(out[len(input):], binpkg.Fletcher32(input))
	return out, nil
}

// Decode verifies the Fletcher-32 checksum and returns the data without it.
// The checksum is stored as the last 4 bytes of the input.
func (f *Fletcher32Filter) Decode(input []byte) ([]byte, error) {
	if len(input) < 4 {
		return nil, fmt.Errorf("fletcher32: input too short for checksum")
	}

	// Split data and checksum
	data := input[:len(input)-4]
	storedChecksum := binary.LittleEndian.Uint32(input[len(input)-4:])

	if !binpkg.VerifyFletcher32(data, storedChecksum) {
		return nil, fmt.Errorf("fletcher32: checksum mismatch (stored=0x%08x, computed=0x%08x)",
			storedChecksum, binpkg.Fletcher32(data))
	}

	return data, nil
}
