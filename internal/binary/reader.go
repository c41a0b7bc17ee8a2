// Package binary provides the low-level byte handling shared by the
// storage engines: framed little-endian reads and writes, the strided
// gather/scatter between caller buffers and stored records, and the
// record checksums.
package binary

import (
	"encoding/binary"
	"io"
)

// chunkedRead is the request size above which a source of unknown length
// is read incrementally instead of into one preallocated buffer.
const chunkedRead = 1 << 20

var le = binary.LittleEndian

// Reader decodes little-endian values from a data file starting at a
// record offset.
type Reader struct {
	src  io.ReaderAt
	off  int64
	size int64 // -1 when unknown
}

// NewReader returns a reader at offset 0 of src. When src reports its
// length through a Size method (bytes.Reader, io.SectionReader) reads
// past the end fail before allocating.
func NewReader(src io.ReaderAt) *Reader {
	size := int64(-1)
	if s, ok := src.(interface{ Size() int64 }); ok {
		size = s.Size()
	}
	return &Reader{src: src, size: size}
}

// NewReaderSize returns a reader over the first size bytes of src.
func NewReaderSize(src io.ReaderAt, size int64) *Reader {
	return &Reader{src: src, size: size}
}

// At returns a reader over the same source positioned at off.
func (r *Reader) At(off int64) *Reader {
	return &Reader{src: r.src, off: off, size: r.size}
}

// Pos returns the offset of the next read.
func (r *Reader) Pos() int64 { return r.off }

// Remaining returns the number of bytes left in the source, or -1 when
// the source length is unknown.
func (r *Reader) Remaining() int64 {
	if r.size < 0 {
		return -1
	}
	if r.off >= r.size {
		return 0
	}
	return r.size - r.off
}

// ReadBytes reads exactly n bytes. A source ending early yields
// io.ErrUnexpectedEOF.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	if rem := r.Remaining(); rem >= 0 && int64(n) > rem {
		return nil, io.ErrUnexpectedEOF
	}
	if r.size < 0 && n > chunkedRead {
		buf, err := io.ReadAll(io.NewSectionReader(r.src, r.off, int64(n)))
		if err != nil {
			return nil, err
		}
		if len(buf) != n {
			return nil, io.ErrUnexpectedEOF
		}
		r.off += int64(n)
		return buf, nil
	}
	buf := make([]byte, n)
	got, err := r.src.ReadAt(buf, r.off)
	switch {
	case got == n:
		err = nil
	case err == nil, err == io.EOF:
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, err
	}
	r.off += int64(n)
	return buf, nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return le.Uint32(b), nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return le.Uint64(b), nil
}
