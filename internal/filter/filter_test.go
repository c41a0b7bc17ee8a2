package filter

import (
	"bytes"
	stdbinary "encoding/binary"
	"errors"
	"testing"

	"github.com/robert-malhotra/go-serialbox/internal/binary"
)

func TestDeflateRoundtrip(t *testing.T) {
	original := []byte("Hello, World! This is test data for compression testing.")

	f := NewDeflate(0)
	compressed, err := f.Encode(original)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decompressed, err := f.Decode(compressed)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if !bytes.Equal(decompressed, original) {
		t.Errorf("Decompressed data mismatch:\ngot:  %q\nwant: %q", decompressed, original)
	}
}

func TestShuffleUnshuffle(t *testing.T) {
	// Test data: 4 elements of 4 bytes each
	// Original: [A0 A1 A2 A3] [B0 B1 B2 B3] [C0 C1 C2 C3] [D0 D1 D2 D3]
	// Shuffled: [A0 B0 C0 D0] [A1 B1 C1 D1] [A2 B2 C2 D2] [A3 B3 C3 D3]
	original := []byte{
		0x01, 0x02, 0x03, 0x04, // Element 0
		0x11, 0x12, 0x13, 0x14, // Element 1
		0x21, 0x22, 0x23, 0x24, // Element 2
		0x31, 0x32, 0x33, 0x34, // Element 3
	}

	shuffled := []byte{
		0x01, 0x11, 0x21, 0x31, // All byte 0s
		0x02, 0x12, 0x22, 0x32, // All byte 1s
		0x03, 0x13, 0x23, 0x33, // All byte 2s
		0x04, 0x14, 0x24, 0x34, // All byte 3s
	}

	f := NewShuffle(4) // 4-byte elements
	got, err := f.Encode(original)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(got, shuffled) {
		t.Errorf("Shuffled data mismatch:\ngot:  %v\nwant: %v", got, shuffled)
	}

	unshuffled, err := f.Decode(shuffled)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if !bytes.Equal(unshuffled, original) {
		t.Errorf("Unshuffled data mismatch:\ngot:  %v\nwant: %v", unshuffled, original)
	}
}

func TestShuffleSingleByte(t *testing.T) {
	// Single-byte elements should pass through unchanged
	data := []byte{1, 2, 3, 4, 5}
	f := NewShuffle(1)

	result, err := f.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if !bytes.Equal(result, data) {
		t.Errorf("Single-byte shuffle should be identity")
	}
}

func TestFletcher32Roundtrip(t *testing.T) {
	data := []byte("test data for checksum")
	f := NewFletcher32(0)

	encoded, err := f.Encode(data)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(encoded) != len(data)+4 {
		t.Fatalf("expected %d bytes, got %d", len(data)+4, len(encoded))
	}

	output, err := f.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(output, data) {
		t.Errorf("Output mismatch:\ngot:  %v\nwant: %v", output, data)
	}

	encoded[0] ^= 0xFF
	if _, err := f.Decode(encoded); err == nil {
		t.Error("Expected error for corrupted data")
	}
}

func TestCompressorsRoundtrip(t *testing.T) {
	compressible := bytes.Repeat([]byte("serialbox field data "), 200)
	random := []byte{0x9f, 0x12, 0xc4, 0x01, 0x7e}

	for _, f := range []Filter{NewDeflate(9), NewLZ4(0), NewZstd(0)} {
		for _, input := range [][]byte{compressible, random, {}} {
			t.Run(Name(f.ID()), func(t *testing.T) {
				enc, err := f.Encode(input)
				if err != nil {
					t.Fatalf("Encode failed: %v", err)
				}
				dec, err := f.Decode(enc)
				if err != nil {
					t.Fatalf("Decode failed: %v", err)
				}
				if !bytes.Equal(dec, input) {
					t.Errorf("round trip mismatch for %d bytes", len(input))
				}
			})
		}
	}
}

func TestParseCodec(t *testing.T) {
	tests := []struct {
		name string
		want Codec
	}{
		{"", CodecNone},
		{"none", CodecNone},
		{"zlib", CodecDeflate},
		{"LZ4", CodecLZ4},
		{"zstd", CodecZstd},
	}
	for _, tt := range tests {
		got, err := ParseCodec(tt.name)
		if err != nil {
			t.Fatalf("ParseCodec(%q) failed: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("ParseCodec(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
	if _, err := ParseCodec("brotli"); err == nil {
		t.Error("expected error for unknown codec")
	}
}

func TestPipelineEmpty(t *testing.T) {
	p, err := NewPipeline(nil)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	if !p.Empty() {
		t.Error("Expected empty pipeline")
	}

	data := []byte("unchanged")
	result, err := p.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if !bytes.Equal(result, data) {
		t.Error("Empty pipeline should pass data through unchanged")
	}
}

func TestPipelineDecodeReverseOrder(t *testing.T) {
	p, err := NewPipeline(ForCodec(CodecDeflate, 4))
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	data := bytes.Repeat([]byte{1, 0, 0, 0, 2, 0, 0, 0}, 32)
	encoded, err := p.Encode(data)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	result, err := p.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if !bytes.Equal(result, data) {
		t.Error("Decode should undo Encode")
	}
}

func TestPipelineUnknownFilter(t *testing.T) {
	if _, err := NewPipeline([]Info{{ID: 99}}); err == nil {
		t.Error("expected error for unknown filter")
	}
}

var le = stdbinary.LittleEndian

// bufferAt is an io.WriterAt and io.ReaderAt over a growing byte slice.
type bufferAt struct {
	buf []byte
}

func (b *bufferAt) WriteAt(p []byte, off int64) (int, error) {
	if end := int(off) + len(p); end > len(b.buf) {
		b.buf = append(b.buf, make([]byte, end-len(b.buf))...)
	}
	return copy(b.buf[off:], p), nil
}

func (b *bufferAt) ReadAt(p []byte, off int64) (int, error) {
	return bytes.NewReader(b.buf).ReadAt(p, off)
}

func TestFrameRoundtrip(t *testing.T) {
	record := make([]byte, 800)
	for i := range record {
		record[i] = byte(i / 8)
	}

	for _, codec := range []Codec{CodecNone, CodecDeflate, CodecLZ4, CodecZstd} {
		t.Run(codec.String(), func(t *testing.T) {
			p, err := NewPipeline(ForCodec(codec, 8))
			if err != nil {
				t.Fatalf("NewPipeline failed: %v", err)
			}

			var store bufferAt
			store.buf = []byte("prefix")
			w := binary.NewWriter(&store).At(int64(len(store.buf)))
			n, err := WriteFrame(w, p, record)
			if err != nil {
				t.Fatalf("WriteFrame failed: %v", err)
			}
			if int(n) != len(store.buf)-len("prefix") {
				t.Errorf("WriteFrame reported %d bytes, wrote %d", n, len(store.buf)-len("prefix"))
			}

			got, err := ReadFrame(binary.NewReader(&store).At(int64(len("prefix"))))
			if err != nil {
				t.Fatalf("ReadFrame failed: %v", err)
			}
			if !bytes.Equal(got, record) {
				t.Error("frame round trip mismatch")
			}
		})
	}
}

// forgedFrame returns a frame header with no filters and the given lengths
// followed by a few payload bytes.
func forgedFrame(rawLen, encLen uint64) []byte {
	b := []byte("SBXF")
	b = append(b, 1, 0)
	b = le.AppendUint64(b, rawLen)
	b = le.AppendUint64(b, encLen)
	return append(b, "payload"...)
}

func TestReadFrameRejectsOversizedLength(t *testing.T) {
	tests := []struct {
		name   string
		rawLen uint64
		encLen uint64
	}{
		{"payload past end", 7, 1 << 50},
		{"payload one past end", 8, 8},
		{"negative as int", 7, 1 << 63},
		{"record length negative as int", 1 << 63, 7},
		{"record length mismatch", 1 << 50, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := forgedFrame(tt.rawLen, tt.encLen)

			_, err := ReadFrame(binary.NewReader(bytes.NewReader(frame)))
			if !errors.Is(err, ErrBadFrame) {
				t.Errorf("sized source: expected ErrBadFrame, got %v", err)
			}

			// bufferAt has no Size method
			_, err = ReadFrame(binary.NewReader(&bufferAt{buf: frame}))
			if !errors.Is(err, ErrBadFrame) {
				t.Errorf("unsized source: expected ErrBadFrame, got %v", err)
			}
		})
	}
}

func TestReadFrameExactPayload(t *testing.T) {
	frame := forgedFrame(7, 7)
	got, err := ReadFrame(binary.NewReader(bytes.NewReader(frame)))
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("got %q, want %q", got, "payload")
	}
}

func TestReadFrameRejectsGarbage(t *testing.T) {
	store := &bufferAt{buf: []byte("not a frame at all")}
	if _, err := ReadFrame(binary.NewReader(store)); err == nil {
		t.Error("expected error for bad magic")
	}
}
