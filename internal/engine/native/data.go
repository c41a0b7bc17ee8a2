package native

import (
	"fmt"
	"os"

	"github.com/robert-malhotra/go-serialbox/internal/binary"
	"github.com/robert-malhotra/go-serialbox/internal/engine"
	"github.com/robert-malhotra/go-serialbox/internal/filter"
	"github.com/robert-malhotra/go-serialbox/internal/mmap"
)

// WriteField stores the field at the savepoint. The savepoint is added to
// the offset table if needed. A record identical to an earlier one of the
// same field is not written again; the new entry points at the old one.
func (e *Engine) WriteField(ser, sp engine.Handle, name string, src []byte, strides [4]int) error {
	s, err := e.serializer(ser)
	if err != nil {
		return err
	}
	p, err := e.savepoint(sp)
	if err != nil {
		return err
	}
	if s.disabled {
		return nil
	}
	if err := checkWritable(s); err != nil {
		return err
	}
	f, err := s.field(name)
	if err != nil {
		return err
	}

	bpe := f.layout.BytesPerElement
	data, err := binary.Pack(src, f.layout.Sizes, strides, bpe)
	if err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	checksum := binary.Checksum(data)

	id := s.savepointID(p)
	if id >= 0 {
		if _, dup := s.rows[id].records[name]; dup {
			return fmt.Errorf("field %q is already stored at savepoint %s", name, p)
		}
	}

	rec, found := s.alreadySerialized(name, checksum)
	if !found {
		if rec, err = e.appendRecord(s, name, data, bpe); err != nil {
			return err
		}
	}

	if id < 0 {
		if id, err = s.addSavepoint(p); err != nil {
			return err
		}
	}
	s.rows[id].records[name] = rec

	e.logger.Debug("wrote field",
		"field", name, "savepoint", p.String(), "offset", rec.offset,
		"bytes", len(data), "deduplicated", found, "framed", rec.framed)
	return s.writeTables()
}

// appendRecord appends data to the field's data file.
func (e *Engine) appendRecord(s *serializer, name string, data []byte, bpe int) (record, error) {
	path := s.dataPath(name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return record{}, fmt.Errorf("opening data file: %w", err)
	}
	defer file.Close()

	fi, err := file.Stat()
	if err != nil {
		return record{}, fmt.Errorf("opening data file: %w", err)
	}
	rec := record{offset: fi.Size(), checksum: binary.Checksum(data)}
	w := binary.NewWriter(file).At(rec.offset)

	if e.codec == filter.CodecNone {
		if err := w.WriteBytes(data); err != nil {
			return record{}, fmt.Errorf("writing %s: %w", path, err)
		}
	} else {
		p, err := filter.NewPipeline(filter.ForCodec(e.codec, bpe))
		if err != nil {
			return record{}, err
		}
		if _, err := filter.WriteFrame(w, p, data); err != nil {
			return record{}, fmt.Errorf("writing %s: %w", path, err)
		}
		rec.framed = true
	}
	if err := file.Close(); err != nil {
		return record{}, fmt.Errorf("writing %s: %w", path, err)
	}
	return rec, nil
}

// ReadField loads the field stored at the savepoint into dst.
func (e *Engine) ReadField(ser, sp engine.Handle, name string, dst []byte, strides [4]int) error {
	s, err := e.serializer(ser)
	if err != nil {
		return err
	}
	p, err := e.savepoint(sp)
	if err != nil {
		return err
	}
	if s.disabled {
		return nil
	}
	f, err := s.field(name)
	if err != nil {
		return err
	}
	id := s.savepointID(p)
	if id < 0 {
		return fmt.Errorf("savepoint %s is not in the serializer", p)
	}
	rec, ok := s.rows[id].records[name]
	if !ok {
		return fmt.Errorf("field %q is not stored at savepoint %s", name, p)
	}

	m, err := mmap.Open(s.dataPath(name))
	if err != nil {
		return fmt.Errorf("opening data file: %w", err)
	}
	defer m.Close()

	bpe := f.layout.BytesPerElement
	size := binary.Extent(f.layout.Sizes, bpe)
	var data []byte
	if rec.framed {
		data, err = filter.ReadFrame(binary.NewReaderSize(m, int64(m.Size())).At(rec.offset))
		if err != nil {
			return fmt.Errorf("field %q at savepoint %s: %w", name, p, err)
		}
	} else {
		if rec.offset < 0 || rec.offset+int64(size) > int64(m.Size()) {
			return fmt.Errorf("field %q at savepoint %s: record [%d, %d) beyond data file of %d bytes",
				name, p, rec.offset, rec.offset+int64(size), m.Size())
		}
		data = m.Bytes()[rec.offset : rec.offset+int64(size)]
	}
	if len(data) != size {
		return fmt.Errorf("field %q at savepoint %s: record has %d bytes, expected %d", name, p, len(data), size)
	}
	return binary.Unpack(dst, data, f.layout.Sizes, strides, bpe)
}
