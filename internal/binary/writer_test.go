package binary

import (
	"bytes"
	"io"
	"testing"
)

// bytesWriterAt implements io.WriterAt for testing
type bytesWriterAt struct {
	buf []byte
}

func (b *bytesWriterAt) WriteAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, io.ErrUnexpectedEOF
	}
	if int(off)+len(p) > len(b.buf) {
		// Extend buffer if needed
		newBuf := make([]byte, int(off)+len(p))
		copy(newBuf, b.buf)
		b.buf = newBuf
	}
	copy(b.buf[off:], p)
	return len(p), nil
}

func TestWriterRoundTrip(t *testing.T) {
	var out bytesWriterAt
	w := NewWriter(&out)

	if err := w.WriteUint8(0xAB); err != nil {
		t.Fatalf("WriteUint8 failed: %v", err)
	}
	if err := w.WriteUint32(0xCAFEBABE); err != nil {
		t.Fatalf("WriteUint32 failed: %v", err)
	}
	if err := w.WriteUint64(1 << 40); err != nil {
		t.Fatalf("WriteUint64 failed: %v", err)
	}
	if err := w.WriteBytes([]byte("end")); err != nil {
		t.Fatalf("WriteBytes failed: %v", err)
	}
	if w.Pos() != 16 {
		t.Fatalf("expected position 16, got %d", w.Pos())
	}

	r := NewReader(bytes.NewReader(out.buf))
	if v, _ := r.ReadUint8(); v != 0xAB {
		t.Errorf("uint8: got 0x%x", v)
	}
	if v, _ := r.ReadUint32(); v != 0xCAFEBABE {
		t.Errorf("uint32: got 0x%x", v)
	}
	if v, _ := r.ReadUint64(); v != 1<<40 {
		t.Errorf("uint64: got 0x%x", v)
	}
	if b, _ := r.ReadBytes(3); string(b) != "end" {
		t.Errorf("bytes: got %q", b)
	}
}

func TestWriterAt(t *testing.T) {
	out := bytesWriterAt{buf: make([]byte, 4)}
	w := NewWriter(&out).At(2)
	if err := w.WriteUint8(0xEE); err != nil {
		t.Fatalf("WriteUint8 failed: %v", err)
	}
	if err := w.WriteUint8(0xFF); err != nil {
		t.Fatalf("WriteUint8 failed: %v", err)
	}
	if !bytes.Equal(out.buf, []byte{0, 0, 0xEE, 0xFF}) {
		t.Errorf("unexpected buffer %v", out.buf)
	}
}
