package filter

import (
	"fmt"
	"strings"
)

// Filter identifiers as recorded in frames.
const (
	FilterDeflate    uint8 = 1
	FilterShuffle    uint8 = 2
	FilterFletcher32 uint8 = 3
	FilterLZ4        uint8 = 32
	FilterZstd       uint8 = 33
)

// Filter is the interface implemented by all record filters.
type Filter interface {
	// ID returns the filter identifier.
	ID() uint8

	// Encode transforms record data to its stored form.
	Encode(input []byte) ([]byte, error)

	// Decode transforms stored data back to the record.
	Decode(input []byte) ([]byte, error)
}

// Info names a filter and its single parameter.
type Info struct {
	ID    uint8
	Param uint32
}

// Registry maps filter IDs to filter constructors.
var Registry = map[uint8]func(param uint32) Filter{
	FilterDeflate:    func(p uint32) Filter { return NewDeflate(p) },
	FilterShuffle:    func(p uint32) Filter { return NewShuffle(p) },
	FilterFletcher32: func(p uint32) Filter { return NewFletcher32(p) },
	FilterLZ4:        func(p uint32) Filter { return NewLZ4(p) },
	FilterZstd:       func(p uint32) Filter { return NewZstd(p) },
}

// filterNames maps known filter IDs to their names for better error messages.
var filterNames = map[uint8]string{
	FilterDeflate:    "deflate",
	FilterShuffle:    "shuffle",
	FilterFletcher32: "fletcher32",
	FilterLZ4:        "lz4",
	FilterZstd:       "zstd",
}

// Name returns the name of a filter ID.
func Name(id uint8) string {
	if n, ok := filterNames[id]; ok {
		return n
	}
	return fmt.Sprintf("filter(%d)", id)
}

// New creates a filter from an Info.
func New(info Info) (Filter, error) {
	constructor, ok := Registry[info.ID]
	if !ok {
		return nil, fmt.Errorf("unsupported filter ID: %d", info.ID)
	}
	return constructor(info.Param), nil
}

// Codec selects the compressor used for records.
type Codec uint8

const (
	CodecNone Codec = iota
	CodecDeflate
	CodecLZ4
	CodecZstd
)

// String returns the configuration name of the codec.
func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecDeflate:
		return "zlib"
	case CodecLZ4:
		return "lz4"
	case CodecZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCodec parses a codec from its configuration name.
func ParseCodec(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "none", "raw":
		return CodecNone, nil
	case "zlib", "deflate", "gzip":
		return CodecDeflate, nil
	case "lz4":
		return CodecLZ4, nil
	case "zstd":
		return CodecZstd, nil
	default:
		return CodecNone, fmt.Errorf("unknown compression codec: %q", name)
	}
}

// ForCodec returns the filter chain used for records of elemSize-byte
// elements compressed with c: shuffle, the compressor, then a checksum.
// CodecNone yields an empty chain.
func ForCodec(c Codec, elemSize int) []Info {
	var compressor Info
	switch c {
	case CodecDeflate:
		compressor = Info{ID: FilterDeflate, Param: 6}
	case CodecLZ4:
		compressor = Info{ID: FilterLZ4}
	case CodecZstd:
		compressor = Info{ID: FilterZstd}
	default:
		return nil
	}
	return []Info{
		{ID: FilterShuffle, Param: uint32(elemSize)},
		compressor,
		{ID: FilterFletcher32},
	}
}
