package native

import (
	"fmt"

	"github.com/robert-malhotra/go-serialbox/internal/engine"
	"github.com/robert-malhotra/go-serialbox/internal/metainfo"
)

func fillNames(names []string, bufs [][]byte) error {
	if len(bufs) != len(names) {
		return fmt.Errorf("expected %d name buffers, got %d", len(names), len(bufs))
	}
	for i, n := range names {
		if len(bufs[i]) != len(n) {
			return fmt.Errorf("buffer %d has %d bytes, name needs %d", i, len(bufs[i]), len(n))
		}
		copy(bufs[i], n)
	}
	return nil
}

func fillLengths(names []string, lengths []int) error {
	if len(lengths) != len(names) {
		return fmt.Errorf("expected %d lengths, got %d", len(names), len(lengths))
	}
	for i, n := range names {
		lengths[i] = len(n)
	}
	return nil
}

func (e *Engine) FieldCount(ser engine.Handle) (int, error) {
	s, err := e.serializer(ser)
	if err != nil {
		return 0, err
	}
	return len(s.fields), nil
}

func (e *Engine) FieldNameLengths(ser engine.Handle, lengths []int) error {
	s, err := e.serializer(ser)
	if err != nil {
		return err
	}
	return fillLengths(s.fieldNames(), lengths)
}

func (e *Engine) FieldNames(ser engine.Handle, names [][]byte) error {
	s, err := e.serializer(ser)
	if err != nil {
		return err
	}
	return fillNames(s.fieldNames(), names)
}

func (e *Engine) FieldLayout(ser engine.Handle, name string) (engine.Layout, error) {
	s, err := e.serializer(ser)
	if err != nil {
		return engine.Layout{}, err
	}
	f, err := s.field(name)
	if err != nil {
		return engine.Layout{}, err
	}
	return f.layout, nil
}

func (e *Engine) FieldTypeLength(ser engine.Handle, name string) (int, error) {
	s, err := e.serializer(ser)
	if err != nil {
		return 0, err
	}
	f, err := s.field(name)
	if err != nil {
		return 0, err
	}
	return len(f.typeName), nil
}

func (e *Engine) FieldType(ser engine.Handle, name string, buf []byte) error {
	s, err := e.serializer(ser)
	if err != nil {
		return err
	}
	f, err := s.field(name)
	if err != nil {
		return err
	}
	return fillNames([]string{f.typeName}, [][]byte{buf})
}

func (e *Engine) FieldExists(ser engine.Handle, name string) (bool, error) {
	s, err := e.serializer(ser)
	if err != nil {
		return false, err
	}
	_, ok := s.fields[name]
	return ok, nil
}

// RegisterField adds a field to the fields table. Registering the same
// field again with identical information is a no-op.
func (e *Engine) RegisterField(ser engine.Handle, name, typeName string, layout engine.Layout) error {
	s, err := e.serializer(ser)
	if err != nil {
		return err
	}
	if err := checkWritable(s); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("field name must not be empty")
	}
	if typeName == "" {
		return fmt.Errorf("field %q: element type must not be empty", name)
	}
	if err := layout.Validate(); err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}

	if existing, ok := s.fields[name]; ok {
		if !existing.sameLayout(typeName, layout) {
			return fmt.Errorf("field %q was already registered into serializer with different information", name)
		}
		return nil
	}

	s.fields[name] = &field{name: name, typeName: typeName, layout: layout, meta: &metainfo.Set{}}
	e.logger.Debug("registered field", "field", name, "type", typeName, "sizes", layout.Sizes)
	return s.writeTables()
}

func checkWritable(s *serializer) error {
	if !s.mode.Writable() {
		return fmt.Errorf("serializer is open in %s mode, but a write operation was requested", s.mode)
	}
	return nil
}
