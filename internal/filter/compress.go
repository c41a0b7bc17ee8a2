package filter

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// LZ4 implements LZ4 block compression. The stored form starts with a
// mode byte (0 stored, 1 compressed) and the uncompressed length, since
// the block format carries neither.
type LZ4 struct{}

// NewLZ4 creates a new LZ4 filter. The parameter is unused.
func NewLZ4(uint32) *LZ4 {
	return &LZ4{}
}

func (f *LZ4) ID() uint8 {
	return FilterLZ4
}

const lz4HeaderSize = 5

func (f *LZ4) Encode(input []byte) ([]byte, error) {
	out := make([]byte, lz4HeaderSize+lz4.CompressBlockBound(len(input)))
	binary.LittleEndian.PutUint32(out[1:], uint32(len(input)))

	written, err := lz4.CompressBlock(input, out[lz4HeaderSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}

	// CompressBlock returns 0 for incompressible input.
	if written == 0 || written >= len(input) {
		out = append(out[:lz4HeaderSize], input...)
		out[0] = 0
		return out, nil
	}
	out[0] = 1
	return out[:lz4HeaderSize+written], nil
}

func (f *LZ4) Decode(input []byte) ([]byte, error) {
	if len(input) < lz4HeaderSize {
		return nil, fmt.Errorf("lz4: input too short for header")
	}
	size := int(binary.LittleEndian.Uint32(input[1:]))
	body := input[lz4HeaderSize:]

	if input[0] == 0 {
		if len(body) != size {
			return nil, fmt.Errorf("lz4: stored block has %d bytes, expected %d", len(body), size)
		}
		return body, nil
	}

	out := make([]byte, size)
	read, err := lz4.UncompressBlock(body, out)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != size {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, size)
	}
	return out, nil
}

// Zstd encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// Zstd implements Zstandard compression.
type Zstd struct{}

// NewZstd creates a new Zstd filter. The parameter is unused.
func NewZstd(uint32) *Zstd {
	return &Zstd{}
}

func (f *Zstd) ID() uint8 {
	return FilterZstd
}

func (f *Zstd) Encode(input []byte) ([]byte, error) {
	enc, err := getZstdEncoder()
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	defer zstdEncoderPool.Put(enc)
	return enc.EncodeAll(input, nil), nil
}

func (f *Zstd) Decode(input []byte) ([]byte, error) {
	dec, err := getZstdDecoder()
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	defer zstdDecoderPool.Put(dec)

	out, err := dec.DecodeAll(input, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return out, nil
}
