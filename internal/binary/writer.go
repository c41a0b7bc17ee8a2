package binary

import "io"

// Writer encodes little-endian values into a data file starting at a
// record offset.
type Writer struct {
	dst io.WriterAt
	off int64
}

// NewWriter returns a writer at offset 0 of dst.
func NewWriter(dst io.WriterAt) *Writer {
	return &Writer{dst: dst}
}

// At returns a writer over the same destination positioned at off.
func (w *Writer) At(off int64) *Writer {
	return &Writer{dst: w.dst, off: off}
}

// Pos returns the offset of the next write.
func (w *Writer) Pos() int64 { return w.off }

// WriteBytes writes data at the current offset.
func (w *Writer) WriteBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	n, err := w.dst.WriteAt(data, w.off)
	w.off += int64(n)
	return err
}

func (w *Writer) WriteUint8(v uint8) error {
	return w.WriteBytes([]byte{v})
}

func (w *Writer) WriteUint32(v uint32) error {
	return w.WriteBytes(le.AppendUint32(nil, v))
}

func (w *Writer) WriteUint64(v uint64) error {
	return w.WriteBytes(le.AppendUint64(nil, v))
}
